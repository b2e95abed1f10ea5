package wordchain

import (
	"strings"
	"sync"
	"time"
)

// session couples a game with its used-word set. The mutex serializes every
// mutating operation on the session: the original design relied on a single
// thread of control, and this lock reintroduces that guarantee explicitly.
// Operations on different sessions run in parallel.
type session struct {
	mu   sync.Mutex
	game *Game
	used map[string]struct{}
}

// SessionStore maps a session id to exactly one live game and its used
// words. It is an explicitly constructed object with no package state, so
// each test builds its own.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*session)}
}

// get returns the session entry, creating an empty one on first access.
// The game itself is lazily created by the engine so the default parameters
// stay in one place.
func (s *SessionStore) get(sessionID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{used: make(map[string]struct{})}
		s.sessions[sessionID] = sess
	}
	return sess
}

// UserRegistry keeps cross-session identity records. Entries are never
// removed; scores here are a best-effort mirror of game state, not
// authoritative.
type UserRegistry struct {
	mu    sync.RWMutex
	users map[string]*User
	now   func() time.Time
}

func NewUserRegistry() *UserRegistry {
	return &UserRegistry{users: make(map[string]*User), now: time.Now}
}

// Ensure creates the record when absent, deriving a fallback display name
// from the id, and returns a copy.
func (r *UserRegistry) Ensure(id, displayName string) *User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		name := strings.TrimSpace(displayName)
		if name == "" {
			name = defaultDisplayName(id)
		}
		u = &User{ID: id, DisplayName: name, UpdatedAt: r.now()}
		r.users[id] = u
	} else if name := strings.TrimSpace(displayName); name != "" && u.DisplayName != name {
		u.DisplayName = name
		u.UpdatedAt = r.now()
	}
	out := *u
	return &out
}

// SetScore overwrites the mirrored score for id. Missing ids are created.
func (r *UserRegistry) SetScore(id string, score int) *User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		u = &User{ID: id, DisplayName: defaultDisplayName(id)}
		r.users[id] = u
	}
	u.Score = score
	u.UpdatedAt = r.now()
	out := *u
	return &out
}

// Get returns a copy of the record, or nil when unknown.
func (r *UserRegistry) Get(id string) *User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	out := *u
	return &out
}

// Snapshot returns copies of the records for ids, skipping unknown ones,
// preserving input order.
func (r *UserRegistry) Snapshot(ids []string) []*User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out
}

func defaultDisplayName(id string) string {
	id = strings.TrimSpace(id)
	if r := []rune(id); len(r) > 8 {
		id = string(r[:8])
	}
	return "بازیکن " + id
}
