package portal

import "strings"

// TimeLayout is the collaborator's wire format for appointment timestamps.
// It sorts lexically and chronologically at the same time, so the portal
// keeps timestamps as strings end to end.
const TimeLayout = "2006-01-02 15:04:05"

type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusCancelled Status = "CANCELLED"
)

type Mode string

const (
	ModeOnline  Mode = "ONLINE"
	ModeOffline Mode = "OFFLINE"
)

// ParseMode normalizes user or wire input; the original frontend sent
// "Online"/"Offline" while the enum is upper-case.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ModeOnline):
		return ModeOnline, true
	case string(ModeOffline):
		return ModeOffline, true
	}
	return "", false
}

// Appointment is the portal's view of a tutoring session as the collaborator
// serves it. current_slots holds the ids of the students who booked a seat.
type Appointment struct {
	ID           string   `json:"id"`
	TutorID      string   `json:"tutor_id"`
	TutorName    string   `json:"tutor_name,omitempty"`
	Name         string   `json:"name"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Place        string   `json:"place"`
	Mode         Mode     `json:"mode"`
	MaxSlot      int      `json:"max_slot"`
	CurrentSlots []string `json:"current_slots"`
	Status       Status   `json:"status"`
}

// Date returns the calendar-day part of the start timestamp.
func (a Appointment) Date() string {
	d, _, _ := strings.Cut(a.StartTime, " ")
	return d
}

// TimeRange returns the "HH:MM:SS - HH:MM:SS" display window.
func (a Appointment) TimeRange() string {
	_, from, _ := strings.Cut(a.StartTime, " ")
	_, to, _ := strings.Cut(a.EndTime, " ")
	return from + " - " + to
}

// ReschedulePatch is the partial update a reschedule submits. Only the time
// window, place, mode and capacity ever change; name and bookings stay as
// they are.
type ReschedulePatch struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Place     string `json:"place"`
	Mode      Mode   `json:"mode"`
	MaxSlot   int    `json:"max_slot"`
}

// StudentResult is one graded participant inside a minutes submission.
type StudentResult struct {
	StudentID string `json:"student_id"`
	Score     string `json:"score"`
}

// MinutesPayload is the body of POST /appointments/{id}/minutes.
type MinutesPayload struct {
	Content        string          `json:"content"`
	FileLink       string          `json:"file_link"`
	StudentResults []StudentResult `json:"student_results"`
}

type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
	IsRead    bool   `json:"is_read"`
	Link      string `json:"link,omitempty"`
}

type User struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Role             string   `json:"role"`
	Score            *float64 `json:"score,omitempty"`
	ConductPoints    *int     `json:"conduct_points,omitempty"`
	ScholarshipLevel *string  `json:"scholarship_level,omitempty"`
}

// ProfilePatch is the subset of profile fields PATCH /info/users/{id}
// accepts. Nil fields are left unchanged.
type ProfilePatch struct {
	Score            *float64 `json:"score,omitempty"`
	ConductPoints    *int     `json:"conduct_points,omitempty"`
	ScholarshipLevel *string  `json:"scholarship_level,omitempty"`
}

// ResourceUpload is a study-material record published to the shared library.
type ResourceUpload struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	CourseCode  string `json:"course_code"`
	Description string `json:"description"`
}
