package api

import (
	"time"

	"github.com/bktutor/session-portal/internal/scheduling"
)

// timeLayout is the wire format for all appointment timestamps. It sorts
// lexically in chronological order.
const timeLayout = "2006-01-02 15:04:05"

type CreateAppointmentRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Place     string `json:"place"`
	Mode      string `json:"mode"`
	MaxSlot   int    `json:"max_slot"`
}

type RescheduleRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Place     string `json:"place"`
	Mode      string `json:"mode"`
	MaxSlot   int    `json:"max_slot"`
}

type MinutesRequest struct {
	Content        string                     `json:"content"`
	FileLink       string                     `json:"file_link"`
	StudentResults []scheduling.StudentResult `json:"student_results"`
}

type ProfilePatchRequest struct {
	Score            *float64 `json:"score"`
	ConductPoints    *int     `json:"conduct_points"`
	ScholarshipLevel *string  `json:"scholarship_level"`
}

type ResourceUploadRequest struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	CourseCode  string `json:"course_code"`
	Description string `json:"description"`
}

type AppointmentResponse struct {
	ID           string   `json:"id"`
	TutorID      string   `json:"tutor_id"`
	TutorName    string   `json:"tutor_name,omitempty"`
	Name         string   `json:"name"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Place        string   `json:"place"`
	Mode         string   `json:"mode"`
	MaxSlot      int      `json:"max_slot"`
	CurrentSlots []string `json:"current_slots"`
	Status       string   `json:"status"`
}

func newAppointmentResponse(a scheduling.Appointment) AppointmentResponse {
	slots := a.CurrentSlots
	if slots == nil {
		slots = []string{}
	}
	return AppointmentResponse{
		ID:           a.ID.String(),
		TutorID:      a.TutorID,
		TutorName:    a.TutorName,
		Name:         a.Name,
		StartTime:    a.StartTime.Format(timeLayout),
		EndTime:      a.EndTime.Format(timeLayout),
		Place:        a.Place,
		Mode:         string(a.Mode),
		MaxSlot:      a.MaxSlot,
		CurrentSlots: slots,
		Status:       string(a.Status),
	}
}

type NotificationResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
	IsRead    bool   `json:"is_read"`
	Link      string `json:"link,omitempty"`
}

func newNotificationResponse(n scheduling.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
		IsRead:    n.IsRead,
		Link:      n.Link,
	}
}

type UserResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Role             string   `json:"role"`
	Score            *float64 `json:"score,omitempty"`
	ConductPoints    *int     `json:"conduct_points,omitempty"`
	ScholarshipLevel *string  `json:"scholarship_level,omitempty"`
}

func newUserResponse(u scheduling.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             string(u.Role),
		Score:            u.Score,
		ConductPoints:    u.ConductPoints,
		ScholarshipLevel: u.ScholarshipLevel,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
