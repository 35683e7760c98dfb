// Package session keeps one gallery state per visitor for the HTTP server.
//
// A [Session] owns a live [gallery.App] and the lock that serializes every
// request touching it. Sessions expire after a sliding TTL; each successful
// lookup pushes the expiry forward.
//
// # Usage
//
//	store := session.NewMemoryStore(session.DefaultTTL)
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, session.ErrNotFound) {
//	    sess = session.New(app, session.DefaultTTL)
//	    store.Set(ctx, sess)
//	}
//	sess.Do(func(app *gallery.App) error { return app.LoadMore(ctx) })
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/rigwall/pkg/gallery"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// DefaultTTL is the idle time after which a session is dropped.
const DefaultTTL = 30 * time.Minute

// Session is one visitor's gallery.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu  sync.Mutex // guards app
	app *gallery.App

	expiryMu  sync.Mutex
	expiresAt time.Time
}

// New wraps an initialized app in a session with a fresh id.
func New(app *gallery.App, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        GenerateID(),
		CreatedAt: now,
		app:       app,
		expiresAt: now.Add(ttl),
	}
}

// GenerateID returns a random session id.
func GenerateID() string {
	return uuid.NewString()
}

// Do runs fn with exclusive access to the session's app.
func (s *Session) Do(fn func(*gallery.App) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.app)
}

// ExpiresAt returns the current expiry.
func (s *Session) ExpiresAt() time.Time {
	s.expiryMu.Lock()
	defer s.expiryMu.Unlock()
	return s.expiresAt
}

// IsExpired reports whether the session expired before now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt())
}

func (s *Session) touch(now time.Time, ttl time.Duration) {
	s.expiryMu.Lock()
	s.expiresAt = now.Add(ttl)
	s.expiryMu.Unlock()
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a live session and extends its expiry.
	// Returns ErrNotFound for unknown ids and ErrExpired for stale ones.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}
