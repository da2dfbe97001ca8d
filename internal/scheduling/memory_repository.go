package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is a thread-safe in-memory Repository used by tests and
// database-less dev runs. Appointment arrival order is preserved.
type MemoryRepository struct {
	mu            sync.Mutex
	users         map[string]*User
	appointments  map[uuid.UUID]*Appointment
	order         []uuid.UUID
	minutes       map[uuid.UUID]*MinutesRecord
	notifications map[string][]*Notification
	resources     []*Resource
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         make(map[string]*User),
		appointments:  make(map[uuid.UUID]*Appointment),
		minutes:       make(map[uuid.UUID]*MinutesRecord),
		notifications: make(map[string][]*Notification),
	}
}

func (r *MemoryRepository) GetUser(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) CreateUser(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = cp.CreatedAt
	r.users[cp.ID] = &cp
	return nil
}

func (r *MemoryRepository) UpdateUserProfile(_ context.Context, id string, patch ProfilePatch) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if patch.Score != nil {
		u.Score = patch.Score
	}
	if patch.ConductPoints != nil {
		u.ConductPoints = patch.ConductPoints
	}
	if patch.ScholarshipLevel != nil {
		u.ScholarshipLevel = patch.ScholarshipLevel
	}
	u.UpdatedAt = time.Now()

	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) ListAppointments(_ context.Context, tutorID string) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Appointment, 0, len(r.order))
	for _, id := range r.order {
		appt := r.appointments[id]
		if tutorID != "" && appt.TutorID != tutorID {
			continue
		}
		out = append(out, cloneAppointment(appt))
	}
	return out, nil
}

func (r *MemoryRepository) GetAppointment(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := cloneAppointment(appt)
	return &cp, nil
}

func (r *MemoryRepository) CreateAppointment(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := cloneAppointment(a)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = cp.CreatedAt
	r.appointments[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	return nil
}

func (r *MemoryRepository) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok || appt.Status != from {
		return nil, ErrAppointmentNotFound
	}
	appt.Status = to
	appt.UpdatedAt = time.Now()

	cp := cloneAppointment(appt)
	return &cp, nil
}

func (r *MemoryRepository) UpdateSchedule(_ context.Context, id uuid.UUID, a *Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	appt.StartTime = a.StartTime
	appt.EndTime = a.EndTime
	appt.Place = a.Place
	appt.Mode = a.Mode
	appt.MaxSlot = a.MaxSlot
	appt.UpdatedAt = time.Now()

	cp := cloneAppointment(appt)
	return &cp, nil
}

func (r *MemoryRepository) SetBookings(_ context.Context, id uuid.UUID, slots []string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	appt.CurrentSlots = append([]string(nil), slots...)
	appt.UpdatedAt = time.Now()

	cp := cloneAppointment(appt)
	return &cp, nil
}

func (r *MemoryRepository) SaveMinutes(_ context.Context, m *MinutesRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *m
	cp.StudentResults = append([]StudentResult(nil), m.StudentResults...)
	r.minutes[cp.AppointmentID] = &cp
	return nil
}

// Minutes returns the stored record for an appointment, for tests.
func (r *MemoryRepository) Minutes(id uuid.UUID) (*MinutesRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.minutes[id]
	if !ok {
		return nil, false
	}
	cp := *m
	return &cp, true
}

func (r *MemoryRepository) ListNotifications(_ context.Context, userID string) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.notifications[userID]
	out := make([]Notification, 0, len(list))
	for _, n := range list {
		out = append(out, *n)
	}
	// Newest first.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) InsertNotification(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *n
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.notifications[cp.UserID] = append(r.notifications[cp.UserID], &cp)
	return nil
}

func (r *MemoryRepository) MarkNotificationRead(_ context.Context, userID string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications[userID] {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (r *MemoryRepository) InsertResource(_ context.Context, res *Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *res
	r.resources = append(r.resources, &cp)
	return nil
}

// Resources returns the library contents, for tests.
func (r *MemoryRepository) Resources() []Resource {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Resource, 0, len(r.resources))
	for _, res := range r.resources {
		out = append(out, *res)
	}
	return out
}

func cloneAppointment(a *Appointment) Appointment {
	cp := *a
	cp.CurrentSlots = append([]string(nil), a.CurrentSlots...)
	return cp
}
