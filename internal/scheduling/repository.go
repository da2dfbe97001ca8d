package scheduling

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// ProfilePatch is a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	Score            *float64
	ConductPoints    *int
	ScholarshipLevel *string
}

// Repository contains all storage interactions needed by the service.
type Repository interface {
	GetUser(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, u *User) error
	UpdateUserProfile(ctx context.Context, id string, patch ProfilePatch) (*User, error)

	// ListAppointments returns every appointment, cancelled included, in
	// arrival order; the service filters. tutorID narrows to one tutor.
	ListAppointments(ctx context.Context, tutorID string) ([]Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	CreateAppointment(ctx context.Context, a *Appointment) error

	// UpdateAppointmentStatus transitions only if the current status is
	// `from`; a missed compare reports ErrAppointmentNotFound so callers
	// can detect state races.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)
	UpdateSchedule(ctx context.Context, id uuid.UUID, a *Appointment) (*Appointment, error)
	SetBookings(ctx context.Context, id uuid.UUID, slots []string) (*Appointment, error)

	SaveMinutes(ctx context.Context, m *MinutesRecord) error

	ListNotifications(ctx context.Context, userID string) ([]Notification, error)
	InsertNotification(ctx context.Context, n *Notification) error
	// MarkNotificationRead is idempotent: marking a read notification again
	// succeeds without effect.
	MarkNotificationRead(ctx context.Context, userID string, id uuid.UUID) error

	InsertResource(ctx context.Context, r *Resource) error
}
