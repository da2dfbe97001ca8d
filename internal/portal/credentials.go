package portal

import "sync"

// CredentialProvider hands out the bearer token for authenticated calls.
// The token lifecycle (login, refresh) is owned elsewhere; components only
// need to read it, and to drop it on logout.
type CredentialProvider interface {
	// Get returns the current token. ok is false when the user is not
	// logged in, in which case authenticated calls are short-circuited.
	Get() (token string, ok bool)
	// Clear forgets the token. Idempotent.
	Clear()
}

// StaticCredentials is a fixed token, useful for tools and tests.
type StaticCredentials string

func (c StaticCredentials) Get() (string, bool) { return string(c), c != "" }
func (c StaticCredentials) Clear()              {}

// MemoryCredentials holds a mutable token behind a mutex.
type MemoryCredentials struct {
	mu    sync.Mutex
	token string
}

func NewMemoryCredentials(token string) *MemoryCredentials {
	return &MemoryCredentials{token: token}
}

func (c *MemoryCredentials) Get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.token != ""
}

func (c *MemoryCredentials) Set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *MemoryCredentials) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}
