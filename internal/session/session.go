// Package session tracks per-conversation state: a time-sortable token,
// the catalog snapshot requests resolve against, and the backend the
// conversation is bound to.
//
// Requests within a session are serialized in arrival order; nothing in a
// session is processed concurrently with another request from the same
// session.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/querychat/querychat/internal/catalog"
)

// Backend names the store a session's queries run against.
type Backend string

const (
	// BackendRelational routes queries to the SQLite backend.
	BackendRelational Backend = "relational"

	// BackendDocument routes queries to the MongoDB backend.
	BackendDocument Backend = "document"
)

// Valid reports whether b names a known backend.
func (b Backend) Valid() bool {
	return b == BackendRelational || b == BackendDocument
}

// TokenGenerator produces session tokens.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so tokens sort
// by creation time - useful when scanning logs for a conversation.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Session is one conversation's state. The catalog snapshot is fixed at
// creation; a re-discovery replaces the whole session rather than mutating
// it underneath in-flight requests.
type Session struct {
	Token   string
	Backend Backend
	Catalog catalog.Snapshot

	// mu serializes request processing within the session.
	mu sync.Mutex
}

// New creates a session bound to the given backend and catalog snapshot.
func New(gen TokenGenerator, backend Backend, cat catalog.Snapshot) *Session {
	return &Session{
		Token:   gen.Generate(),
		Backend: backend,
		Catalog: cat,
	}
}

// Do runs fn holding the session's request lock, so requests from the same
// conversation execute one at a time in arrival order.
func (s *Session) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Registry is a concurrency-safe token-to-session map.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	gen      TokenGenerator
}

// NewRegistry creates a registry using the given token generator.
func NewRegistry(gen TokenGenerator) *Registry {
	return &Registry{sessions: map[string]*Session{}, gen: gen}
}

// Open creates and registers a new session.
func (r *Registry) Open(backend Backend, cat catalog.Snapshot) *Session {
	s := New(r.gen, backend, cat)
	r.mu.Lock()
	r.sessions[s.Token] = s
	r.mu.Unlock()
	return s
}

// Get returns the session for token, or nil when unknown.
func (r *Registry) Get(token string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[token]
}

// Close removes the session for token.
func (r *Registry) Close(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}
