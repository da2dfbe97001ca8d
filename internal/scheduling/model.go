package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusOpen      AppointmentStatus = "OPEN"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

type Mode string

const (
	ModeOnline  Mode = "ONLINE"
	ModeOffline Mode = "OFFLINE"
)

type Role string

const (
	RoleTutor   Role = "TUTOR"
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

type User struct {
	ID               string
	Name             string
	Email            string
	Role             Role
	Score            *float64
	ConductPoints    *int
	ScholarshipLevel *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Appointment is a tutoring session. CurrentSlots holds the booked student
// ids in booking order; its length never exceeds MaxSlot.
type Appointment struct {
	ID           uuid.UUID
	TutorID      string
	TutorName    string // joined in on reads, not stored
	Name         string
	StartTime    time.Time
	EndTime      time.Time
	Place        string
	Mode         Mode
	MaxSlot      int
	CurrentSlots []string
	Status       AppointmentStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Overlaps reports whether the appointment's window intersects [start, end).
func (a Appointment) Overlaps(start, end time.Time) bool {
	return start.Before(a.EndTime) && end.After(a.StartTime)
}

func (a Appointment) HasBooking(studentID string) bool {
	for _, id := range a.CurrentSlots {
		if id == studentID {
			return true
		}
	}
	return false
}

// StudentResult is one graded participant inside a minutes record.
type StudentResult struct {
	StudentID string `json:"student_id"`
	Score     string `json:"score"`
}

// MinutesRecord is the closure record of a session. One per appointment;
// saving again overwrites.
type MinutesRecord struct {
	AppointmentID  uuid.UUID
	Content        string
	FileLink       string
	StudentResults []StudentResult
	CreatedAt      time.Time
}

type Notification struct {
	ID        uuid.UUID
	UserID    string
	Title     string
	Message   string
	Link      string
	IsRead    bool
	CreatedAt time.Time
}

// Resource is a study-material record in the shared library.
type Resource struct {
	ID          uuid.UUID
	UploaderID  string
	Title       string
	Link        string
	CourseCode  string
	Description string
	CreatedAt   time.Time
}
