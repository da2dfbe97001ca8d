package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the collaborator's REST API. It owns no state beyond the
// base URL and the credential source; callers layer caching on top (see
// AppointmentStore).
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialProvider
}

func NewClient(baseURL string, creds CredentialProvider) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		creds:   creds,
	}
}

// errorBody is the collaborator's uniform failure shape.
type errorBody struct {
	Error string `json:"error"`
}

// do performs one JSON round trip. needAuth short-circuits with
// ErrNoCredential when no token is available; when auth is optional the
// token is attached if present and the call proceeds either way.
func (c *Client) do(ctx context.Context, method, path string, body, out any, needAuth bool) error {
	op := method + " " + path

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, ok := c.creds.Get()
	if !ok && needAuth {
		return ErrNoCredential
	}
	if ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(op, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

// mapError turns an HTTP failure into the portal error taxonomy. The
// collaborator reports rejections as {"error": "..."}; that message is kept
// verbatim for validation and conflict cases.
func (c *Client) mapError(op string, resp *http.Response) error {
	var eb errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&eb)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		if eb.Error != "" {
			return fmt.Errorf("%w: %s", ErrConflict, eb.Error)
		}
		return ErrConflict
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		msg := eb.Error
		if msg == "" {
			msg = resp.Status
		}
		return &ValidationError{Message: msg}
	default:
		return &NetworkError{Op: op, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
}

// ListAppointments fetches the full collection, optionally scoped to one
// tutor. There is no single-item endpoint; callers filter the result.
func (c *Client) ListAppointments(ctx context.Context, tutorID string) ([]Appointment, error) {
	path := "/appointments/"
	if tutorID != "" {
		path += "?tutor_id=" + url.QueryEscape(tutorID)
	}

	var list []Appointment
	if err := c.do(ctx, http.MethodGet, path, nil, &list, false); err != nil {
		return nil, err
	}
	return list, nil
}

// Reschedule applies a patch to one appointment and returns the updated
// record from the collaborator's response envelope.
func (c *Client) Reschedule(ctx context.Context, id string, patch ReschedulePatch) (*Appointment, error) {
	var env struct {
		Message string      `json:"message"`
		Data    Appointment `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/appointments/"+id, patch, &env, true); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Cancel marks an appointment cancelled. Cancelling twice is a conflict.
func (c *Client) Cancel(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/appointments/"+id, nil, nil, true)
}

// SaveMinutes submits the closure record for an appointment.
func (c *Client) SaveMinutes(ctx context.Context, id string, payload MinutesPayload) error {
	return c.do(ctx, http.MethodPost, "/appointments/"+id+"/minutes", payload, nil, true)
}

// MyNotifications returns the current user's feed and its unread count.
func (c *Client) MyNotifications(ctx context.Context) ([]Notification, int, error) {
	var out struct {
		Notifications []Notification `json:"notifications"`
		UnreadCount   int            `json:"unread_count"`
	}
	if err := c.do(ctx, http.MethodGet, "/info/notifications/my", nil, &out, true); err != nil {
		return nil, 0, err
	}
	return out.Notifications, out.UnreadCount, nil
}

// MarkNotificationRead acknowledges one notification server-side.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/info/notifications/"+id+"/read", nil, nil, true)
}

// Profile returns the logged-in user.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &out, true); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateProfile patches a subset of a user's profile fields.
func (c *Client) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) error {
	return c.do(ctx, http.MethodPatch, "/info/users/"+userID, patch, nil, true)
}

// UploadResource publishes a study-material record to the shared library.
func (c *Client) UploadResource(ctx context.Context, res ResourceUpload) error {
	return c.do(ctx, http.MethodPost, "/library/upload", res, nil, true)
}
