// Package scheduling implements the collaborator side of the portal: the
// appointment lifecycle rules, booking capacity, minutes persistence and
// the notification fan-out the client feed consumes.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/bktutor/session-portal/internal/redis"
)

var (
	ErrNotOwner            = errors.New("user does not own this appointment")
	ErrAlreadyCancelled    = errors.New("appointment is already cancelled")
	ErrNotOpen             = errors.New("appointment is not open")
	ErrInvalidTimeOrder    = errors.New("end time must be after start time")
	ErrInvalidCapacity     = errors.New("max_slot must be a positive integer")
	ErrCapacityBelowBooked = errors.New("max_slot is below the current booking count")
	ErrAlreadyBooked       = errors.New("student already booked this appointment")
	ErrNotBooked           = errors.New("student has not booked this appointment")
	ErrAppointmentFull     = errors.New("appointment is fully booked")
	ErrAlreadyStarted      = errors.New("appointment has already started")
	ErrBookingInProgress   = errors.New("appointment is being booked, please retry")
	ErrMissingFields       = errors.New("missing required fields")
)

// OverlapError reports a schedule collision and names the session it
// collides with, so the message can be surfaced to the user.
type OverlapError struct {
	Name string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("schedule overlaps with session: %s", e.Name)
}

type Service struct {
	repo   Repository
	locker redisclient.Locker
}

func NewService(repo Repository, locker redisclient.Locker) *Service {
	return &Service{repo: repo, locker: locker}
}

type CreateInput struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Place     string
	Mode      Mode
	MaxSlot   int
}

// Create opens a new session for a tutor after checking the time window and
// that it does not overlap another of the tutor's open sessions.
func (s *Service) Create(ctx context.Context, tutorID string, in CreateInput) (*Appointment, error) {
	if _, err := s.repo.GetUser(ctx, tutorID); err != nil {
		return nil, err
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, ErrInvalidTimeOrder
	}
	if in.MaxSlot <= 0 {
		return nil, ErrInvalidCapacity
	}

	if err := s.checkTutorOverlap(ctx, tutorID, in.StartTime, in.EndTime, uuid.Nil); err != nil {
		return nil, err
	}

	mode := in.Mode
	if mode == "" {
		mode = ModeOffline
	}

	appt := &Appointment{
		ID:        uuid.New(),
		TutorID:   tutorID,
		Name:      in.Name,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Place:     in.Place,
		Mode:      mode,
		MaxSlot:   in.MaxSlot,
		Status:    StatusOpen,
	}
	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

// List returns the non-cancelled appointments in arrival order with the
// tutor's display name joined in. Clients reverse it for listing views.
func (s *Service) List(ctx context.Context, tutorID string) ([]Appointment, error) {
	all, err := s.repo.ListAppointments(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	names := make(map[string]string)
	out := make([]Appointment, 0, len(all))
	for _, appt := range all {
		if appt.Status == StatusCancelled {
			continue
		}
		name, ok := names[appt.TutorID]
		if !ok {
			if tutor, err := s.repo.GetUser(ctx, appt.TutorID); err == nil {
				name = tutor.Name
			} else {
				name = "Unknown Tutor"
			}
			names[appt.TutorID] = name
		}
		appt.TutorName = name
		out = append(out, appt)
	}
	return out, nil
}

// Cancel marks a tutor's appointment cancelled. Cancelling twice is a
// conflict, not a silent success. Booked students are notified.
func (s *Service) Cancel(ctx context.Context, apptID uuid.UUID, tutorID string) (*Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.TutorID != tutorID {
		return nil, ErrNotOwner
	}
	if appt.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, apptID, StatusOpen, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Lost the race with another cancel.
			return nil, ErrAlreadyCancelled
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.notifyStudents(ctx, updated, "Buổi tư vấn đã bị hủy",
		fmt.Sprintf("Buổi \"%s\" (%s) đã bị hủy.", updated.Name, wireTime(updated.StartTime)))

	return updated, nil
}

type RescheduleInput struct {
	StartTime time.Time
	EndTime   time.Time
	Place     string
	Mode      Mode
	MaxSlot   int
}

// Reschedule moves a session to a new window and updates place, mode and
// capacity. It refuses to shrink capacity below the current booking count,
// keeping |current_slots| <= max_slot authoritative server-side.
func (s *Service) Reschedule(ctx context.Context, apptID uuid.UUID, tutorID string, in RescheduleInput) (*Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.TutorID != tutorID {
		return nil, ErrNotOwner
	}
	if appt.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, ErrInvalidTimeOrder
	}
	if in.MaxSlot <= 0 {
		return nil, ErrInvalidCapacity
	}
	if in.MaxSlot < len(appt.CurrentSlots) {
		return nil, ErrCapacityBelowBooked
	}

	if err := s.checkTutorOverlap(ctx, tutorID, in.StartTime, in.EndTime, apptID); err != nil {
		return nil, err
	}

	appt.StartTime = in.StartTime
	appt.EndTime = in.EndTime
	appt.Place = in.Place
	if in.Mode != "" {
		appt.Mode = in.Mode
	}
	appt.MaxSlot = in.MaxSlot

	updated, err := s.repo.UpdateSchedule(ctx, apptID, appt)
	if err != nil {
		return nil, fmt.Errorf("reschedule appointment: %w", err)
	}

	s.notifyStudents(ctx, updated, "Buổi tư vấn đã đổi lịch",
		fmt.Sprintf("Buổi \"%s\" chuyển sang %s - %s tại %s.",
			updated.Name, wireTime(updated.StartTime), wireTime(updated.EndTime), updated.Place))

	return updated, nil
}

// Book reserves one seat for a student. The critical section runs under a
// per-appointment lock so concurrent bookings cannot oversubscribe a
// session.
func (s *Service) Book(ctx context.Context, apptID uuid.UUID, studentID string) (*Appointment, error) {
	if _, err := s.repo.GetUser(ctx, studentID); err != nil {
		return nil, err
	}

	var booked *Appointment

	err := s.locker.WithAppointmentLock(ctx, apptID, func(lockCtx context.Context) error {
		appt, err := s.repo.GetAppointment(lockCtx, apptID)
		if err != nil {
			return err
		}
		if appt.Status != StatusOpen {
			return ErrNotOpen
		}
		if appt.HasBooking(studentID) {
			return ErrAlreadyBooked
		}
		if len(appt.CurrentSlots) >= appt.MaxSlot {
			return ErrAppointmentFull
		}

		if err := s.checkStudentOverlap(lockCtx, studentID, appt); err != nil {
			return err
		}

		booked, err = s.repo.SetBookings(lockCtx, apptID, append(appt.CurrentSlots, studentID))
		if err != nil {
			return fmt.Errorf("book appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrBookingInProgress
		}
		return nil, err
	}

	s.notifyUser(ctx, booked.TutorID, "Lượt đặt chỗ mới",
		fmt.Sprintf("Sinh viên %s đã đặt chỗ buổi \"%s\".", studentID, booked.Name))

	return booked, nil
}

// CancelBooking releases a student's seat. Not allowed once the session has
// started.
func (s *Service) CancelBooking(ctx context.Context, apptID uuid.UUID, studentID string) (*Appointment, error) {
	var released *Appointment

	err := s.locker.WithAppointmentLock(ctx, apptID, func(lockCtx context.Context) error {
		appt, err := s.repo.GetAppointment(lockCtx, apptID)
		if err != nil {
			return err
		}
		if appt.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}
		if !appt.HasBooking(studentID) {
			return ErrNotBooked
		}
		if !time.Now().Before(appt.StartTime) {
			return ErrAlreadyStarted
		}

		slots := make([]string, 0, len(appt.CurrentSlots)-1)
		for _, id := range appt.CurrentSlots {
			if id != studentID {
				slots = append(slots, id)
			}
		}

		released, err = s.repo.SetBookings(lockCtx, apptID, slots)
		if err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrBookingInProgress
		}
		return nil, err
	}

	s.notifyUser(ctx, released.TutorID, "Hủy đặt chỗ",
		fmt.Sprintf("Sinh viên %s đã hủy đặt chỗ buổi \"%s\".", studentID, released.Name))

	return released, nil
}

// SaveMinutes stores the closure record for a tutor's appointment.
func (s *Service) SaveMinutes(ctx context.Context, apptID uuid.UUID, tutorID string, content, fileLink string, results []StudentResult) (*MinutesRecord, error) {
	appt, err := s.repo.GetAppointment(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.TutorID != tutorID {
		return nil, ErrNotOwner
	}

	rec := &MinutesRecord{
		AppointmentID:  apptID,
		Content:        content,
		FileLink:       fileLink,
		StudentResults: results,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.SaveMinutes(ctx, rec); err != nil {
		return nil, fmt.Errorf("save minutes: %w", err)
	}
	return rec, nil
}

// Notifications returns a user's feed, newest first, with the unread count.
func (s *Service) Notifications(ctx context.Context, userID string) ([]Notification, int, error) {
	list, err := s.repo.ListNotifications(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	return list, unread, nil
}

// MarkNotificationRead acknowledges one notification. Idempotent.
func (s *Service) MarkNotificationRead(ctx context.Context, userID string, id uuid.UUID) error {
	return s.repo.MarkNotificationRead(ctx, userID, id)
}

func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetUser(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*User, error) {
	return s.repo.UpdateUserProfile(ctx, userID, patch)
}

// UploadResource publishes a study-material record to the shared library.
func (s *Service) UploadResource(ctx context.Context, uploaderID string, res Resource) (*Resource, error) {
	if res.Title == "" || res.Link == "" || res.CourseCode == "" {
		return nil, ErrMissingFields
	}

	res.ID = uuid.New()
	res.UploaderID = uploaderID
	res.CreatedAt = time.Now()
	if err := s.repo.InsertResource(ctx, &res); err != nil {
		return nil, fmt.Errorf("insert resource: %w", err)
	}
	return &res, nil
}

// checkTutorOverlap rejects a window that intersects another non-cancelled
// session of the same tutor. exclude skips the appointment being moved.
func (s *Service) checkTutorOverlap(ctx context.Context, tutorID string, start, end time.Time, exclude uuid.UUID) error {
	others, err := s.repo.ListAppointments(ctx, tutorID)
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	for _, other := range others {
		if other.ID == exclude || other.Status == StatusCancelled {
			continue
		}
		if other.Overlaps(start, end) {
			return &OverlapError{Name: other.Name}
		}
	}
	return nil
}

// checkStudentOverlap rejects a booking whose window intersects another
// open session the student already booked.
func (s *Service) checkStudentOverlap(ctx context.Context, studentID string, appt *Appointment) error {
	others, err := s.repo.ListAppointments(ctx, "")
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	for _, other := range others {
		if other.ID == appt.ID || other.Status != StatusOpen || !other.HasBooking(studentID) {
			continue
		}
		if other.Overlaps(appt.StartTime, appt.EndTime) {
			return &OverlapError{Name: other.Name}
		}
	}
	return nil
}

func (s *Service) notifyStudents(ctx context.Context, appt *Appointment, title, message string) {
	for _, studentID := range appt.CurrentSlots {
		s.notifyUser(ctx, studentID, title, message)
	}
}

// notifyUser is best-effort: a failed insert is logged, never propagated
// into the triggering operation.
func (s *Service) notifyUser(ctx context.Context, userID, title, message string) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := s.repo.InsertNotification(ctx, n); err != nil {
		log.Printf("failed to insert notification for %s: %v", userID, err)
	}
}

// wireTime renders a timestamp in the portal's wire format.
func wireTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
