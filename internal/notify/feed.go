// Package notify maintains a locally cached, periodically refreshed view of
// the current user's notifications. The feed is ambient UI: it favors
// responsiveness over strict consistency, so fetch failures keep the cached
// state and read acknowledgements are never rolled back.
package notify

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/bktutor/session-portal/internal/portal"
)

const DefaultInterval = 30 * time.Second

type Feed struct {
	client   *portal.Client
	interval time.Duration

	mu            sync.Mutex
	notifications []portal.Notification
	unread        int
}

func NewFeed(client *portal.Client, interval time.Duration) *Feed {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Feed{client: client, interval: interval}
}

// Handle is a running polling loop. Stop is mandatory when the owning view
// goes away and is safe to call more than once.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the loop and waits for it to exit.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
}

// Start fetches once immediately, then keeps refreshing on the feed's
// interval until the handle is stopped or ctx is cancelled.
func (f *Feed) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)

		f.Refresh(ctx)

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.Refresh(ctx)
			}
		}
	}()

	return h
}

// Refresh pulls the feed once. A missing credential skips the fetch
// entirely; a collaborator failure is logged and the previous state stays
// in place. Neither is surfaced to the caller.
func (f *Feed) Refresh(ctx context.Context) {
	notifications, unread, err := f.client.MyNotifications(ctx)
	if err != nil {
		if errors.Is(err, portal.ErrNoCredential) || errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("notification fetch failed, keeping cached state: %v", err)
		return
	}

	f.mu.Lock()
	f.notifications = notifications
	f.unread = unread
	f.mu.Unlock()
}

// MarkRead flips a notification to read locally and decrements the unread
// count (floor 0), then acknowledges remotely. The local state is kept even
// when the acknowledgement fails; the failure is only logged. Marking an
// already-read notification is a no-op on the count.
func (f *Feed) MarkRead(ctx context.Context, id string) {
	f.mu.Lock()
	acked := false
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			if !f.notifications[i].IsRead {
				f.notifications[i].IsRead = true
				if f.unread > 0 {
					f.unread--
				}
			}
			acked = true
		}
	}
	f.mu.Unlock()

	if !acked {
		return
	}

	if err := f.client.MarkNotificationRead(ctx, id); err != nil {
		log.Printf("notification read ack failed for %s: %v", id, err)
	}
}

// Snapshot returns the cached notifications and unread count.
func (f *Feed) Snapshot() ([]portal.Notification, int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]portal.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out, f.unread
}

// Badge renders the unread count for the bell icon, capped at "9+". The
// underlying count is not capped.
func (f *Feed) Badge() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.unread > 9 {
		return "9+"
	}
	return strconv.Itoa(f.unread)
}
