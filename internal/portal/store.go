package portal

import (
	"context"
	"sync"
)

// AppointmentStore owns the portal's canonical view of the appointment
// collection for the lifetime of a page. Every read refreshes from the
// collaborator; the cache exists so views can re-render the last known
// state without another round trip.
type AppointmentStore struct {
	client *Client

	mu    sync.Mutex
	cache []Appointment
}

// ListFilter scopes List to one tutor's appointments. The zero value means
// the whole collection.
type ListFilter struct {
	TutorID string
}

func NewAppointmentStore(client *Client) *AppointmentStore {
	return &AppointmentStore{client: client}
}

// List fetches the remote collection, replaces the cache and returns the
// appointments most-recently-created first. The collaborator serves them in
// arrival order, so listing views see the reverse.
func (s *AppointmentStore) List(ctx context.Context, filter ListFilter) ([]Appointment, error) {
	remote, err := s.client.ListAppointments(ctx, filter.TutorID)
	if err != nil {
		return nil, err
	}

	reversed := make([]Appointment, len(remote))
	for i, a := range remote {
		reversed[len(remote)-1-i] = a
	}

	s.mu.Lock()
	s.cache = reversed
	s.mu.Unlock()

	return reversed, nil
}

// Get refreshes the collection and filters it by id. There is no dedicated
// single-item endpoint; this mirrors how the session detail page resolves
// its record. Returns ErrNotFound when the id is absent after the refresh.
func (s *AppointmentStore) Get(ctx context.Context, id string) (*Appointment, error) {
	if _, err := s.List(ctx, ListFilter{}); err != nil {
		return nil, err
	}
	return s.Cached(id)
}

// Cached returns the appointment from the last refresh without touching the
// network.
func (s *AppointmentStore) Cached(id string) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cache {
		if s.cache[i].ID == id {
			a := s.cache[i]
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

// Cancel requests cancellation and, on success, flips the cached record to
// CANCELLED so views reflect the terminal state immediately.
func (s *AppointmentStore) Cancel(ctx context.Context, id string) error {
	if err := s.client.Cancel(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.cache {
		if s.cache[i].ID == id {
			s.cache[i].Status = StatusCancelled
		}
	}
	s.mu.Unlock()

	return nil
}

// Update submits a reschedule patch and then refreshes the whole collection
// so the cache reflects the collaborator's authoritative record.
func (s *AppointmentStore) Update(ctx context.Context, id string, patch ReschedulePatch) (*Appointment, error) {
	if _, err := s.client.Reschedule(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
