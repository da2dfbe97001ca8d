package portal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, StaticCredentials("test-token")), srv
}

func TestListAppointmentsScopesToTutor(t *testing.T) {
	var gotPath, gotQuery string

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]Appointment{
			{ID: "a1", TutorID: "1234567", Name: "Ôn giữa kỳ", Status: StatusOpen},
		})
	})

	list, err := client.ListAppointments(context.Background(), "1234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/appointments/" {
		t.Errorf("path: got %q", gotPath)
	}
	if gotQuery != "tutor_id=1234567" {
		t.Errorf("query: got %q", gotQuery)
	}
	if len(list) != 1 || list[0].ID != "a1" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestListAppointmentsWorksWithoutCredential(t *testing.T) {
	var sawAuth bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization") != ""
		json.NewEncoder(w).Encode([]Appointment{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, StaticCredentials(""))
	if _, err := client.ListAppointments(context.Background(), ""); err != nil {
		t.Fatalf("listing should not require a credential: %v", err)
	}
	if sawAuth {
		t.Error("no Authorization header expected when no token is held")
	}
}

func TestAuthenticatedCallsShortCircuitWithoutCredential(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := NewClient(srv.URL, StaticCredentials(""))
	err := client.Cancel(context.Background(), "a1")
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	if calls != 0 {
		t.Errorf("no request should leave the process, got %d", calls)
	}
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	if err := client.Cancel(context.Background(), "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("authorization: got %q", gotAuth)
	}
}

func TestMapErrorNotFound(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "appointment not found"})
	})

	err := client.Cancel(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMapErrorConflictKeepsMessage(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "appointment already cancelled"})
	})

	err := client.Cancel(context.Background(), "a1")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err.Error() != "conflicting appointment state: appointment already cancelled" {
		t.Errorf("message not kept verbatim: %q", err.Error())
	}
}

func TestMapErrorValidationKeepsMessage(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "mode must be ONLINE or OFFLINE"})
	})

	_, err := client.Reschedule(context.Background(), "a1", ReschedulePatch{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Message != "mode must be ONLINE or OFFLINE" {
		t.Errorf("message: got %q", verr.Message)
	}
}

func TestMapErrorServerFailureIsNetwork(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.Cancel(context.Background(), "a1")
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestTransportFailureIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, StaticCredentials("t"))
	err := client.Cancel(context.Background(), "a1")
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestRescheduleUnwrapsEnvelope(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method: got %s", r.Method)
		}
		var patch ReschedulePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			t.Errorf("decode patch: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"message": "appointment rescheduled",
			"data": Appointment{
				ID:        "a1",
				StartTime: patch.StartTime,
				EndTime:   patch.EndTime,
				Place:     patch.Place,
				Status:    StatusOpen,
			},
		})
	})

	appt, err := client.Reschedule(context.Background(), "a1", ReschedulePatch{
		StartTime: "2026-03-12 09:00:00",
		EndTime:   "2026-03-12 11:00:00",
		Place:     "H6-101",
		Mode:      ModeOffline,
		MaxSlot:   5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.StartTime != "2026-03-12 09:00:00" || appt.Place != "H6-101" {
		t.Errorf("envelope data not unwrapped: %+v", appt)
	}
}

func TestMyNotificationsReturnsUnreadCount(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"notifications": []Notification{
				{ID: "n1", Title: "Thông báo", IsRead: false},
				{ID: "n2", Title: "Thông báo", IsRead: true},
			},
			"unread_count": 1,
		})
	})

	list, unread, err := client.MyNotifications(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || unread != 1 {
		t.Errorf("got %d notifications, %d unread", len(list), unread)
	}
}

func TestProfileUnwrapsUserEnvelope(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"user": User{ID: "2212345", Name: "Nguyễn Văn A", Role: "STUDENT"},
		})
	})

	user, err := client.Profile(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "2212345" || user.Role != "STUDENT" {
		t.Errorf("unexpected user: %+v", user)
	}
}
