package vault

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/awnumar/memguard"
	"github.com/jmcleod/ironvault/internal/uuid"
	"github.com/jmcleod/ironvault/vaulterr"
)

// Session is the unlocked state of a vault: the derived key, sealed in a
// memguard enclave, and the salt it was derived from. Apart from the
// provisional flag a Session is immutable; locking replaces it rather than
// mutating it.
type Session struct {
	id         string
	key        *memguard.Enclave
	salt       string
	unlockedAt time.Time

	// provisional is set while the session's key has never been written to
	// the vault location, i.e. it came from Login's first-run fallback.
	provisional atomic.Bool
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Salt returns the salt the session key was derived from. Every envelope
// written with this session must carry it.
func (s *Session) Salt() string {
	return s.salt
}

// UnlockedAt reports when the session was created.
func (s *Session) UnlockedAt() time.Time {
	return s.unlockedAt
}

// withKey opens the enclave for the duration of fn. The buffer is destroyed
// when fn returns, so fn must not retain the slice.
func (s *Session) withKey(fn func(key []byte) error) error {
	buf, err := s.key.Open()
	if err != nil {
		return fmt.Errorf("opening session key enclave: %w", err)
	}
	defer buf.Destroy()
	return fn(buf.Bytes())
}

// SessionManager holds at most one live Session. It is the single source of
// truth for whether the vault is unlocked. The zero value is not usable;
// use NewSessionManager.
type SessionManager struct {
	mu      sync.Mutex
	current *Session
}

// NewSessionManager returns an empty (locked) SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// Set seals key into a new session and makes it current, replacing any
// previous one. key is wiped.
func (m *SessionManager) Set(key []byte, salt string) *Session {
	return m.set(key, salt, false)
}

// setProvisional is Set for a key that has no vault file behind it yet.
func (m *SessionManager) setProvisional(key []byte, salt string) *Session {
	return m.set(key, salt, true)
}

func (m *SessionManager) set(key []byte, salt string, provisional bool) *Session {
	// Enclave creation encrypts the key, keep it outside the critical section.
	s := &Session{
		id:         uuid.New(),
		key:        memguard.NewEnclave(key),
		salt:       salt,
		unlockedAt: time.Now(),
	}
	s.provisional.Store(provisional)

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return s
}

// Clear drops the current session and reports whether one was live.
func (m *SessionManager) Clear() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := m.current != nil
	m.current = nil
	return live
}

// Get returns the current session, or ErrNotLoggedIn.
func (m *SessionManager) Get() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, vaulterr.E(vaulterr.NotLoggedIn, "vault.Session", nil)
	}
	return m.current, nil
}

// Unlocked reports whether a session is live.
func (m *SessionManager) Unlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}
