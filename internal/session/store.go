package session

import (
	"encoding/json"
	"sync"

	"github.com/99designs/keyring"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const (
	serviceName = "recipe-client"

	keyToken = "token"
	keyUser  = "user"

	// RoleAdmin is the backstage role string.
	RoleAdmin = "admin"
)

// User is the authenticated identity.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Role     string `json:"role"`
}

// Store holds the session credential and identity. Values live in memory and
// are mirrored into the system keyring so a restart stays logged in;
// keyring failures degrade to memory-only and never fail the caller.
type Store struct {
	mu    sync.RWMutex
	token string
	user  *User
	ring  keyring.Keyring
}

// Open loads any persisted session from the system keyring.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/recipe-client/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("recipe-client-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open keyring")
	}

	s := &Store{ring: ring}
	s.restore()
	return s, nil
}

// NewMemory builds a store without keyring persistence.
func NewMemory() *Store {
	return &Store{}
}

func (s *Store) restore() {
	if item, err := s.ring.Get(keyToken); err == nil {
		s.token = string(item.Data)
	}
	if item, err := s.ring.Get(keyUser); err == nil {
		var u User
		if err := json.Unmarshal(item.Data, &u); err == nil {
			s.user = &u
		}
	}
}

// Token returns the current credential, or "" when logged out.
func (s *Store) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores the credential.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.persist(keyToken, []byte(token))
}

// User returns the current identity, or nil.
func (s *Store) User() *User {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUser stores the identity.
func (s *Store) SetUser(u *User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()

	if u == nil {
		return
	}
	data, err := json.Marshal(u)
	if err != nil {
		logs.Warnf("session: encode user, err: %+v", err)
		return
	}
	s.persist(keyUser, data)
}

// IsAdmin reports whether the current identity has the backstage role.
func (s *Store) IsAdmin() bool {
	u := s.User()
	return u != nil && u.Role == RoleAdmin
}

// Logout clears credential and identity from memory and the keyring.
// It never reports an error; local state is always cleared.
func (s *Store) Logout() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if s.ring == nil {
		return
	}
	if err := s.ring.Remove(keyToken); err != nil {
		logs.Debugf("session: remove token from keyring, err: %+v", err)
	}
	if err := s.ring.Remove(keyUser); err != nil {
		logs.Debugf("session: remove user from keyring, err: %+v", err)
	}
}

func (s *Store) persist(key string, data []byte) {
	if s.ring == nil {
		return
	}
	if err := s.ring.Set(keyring.Item{Key: key, Data: data}); err != nil {
		logs.Warnf("session: persist %s, err: %+v", key, err)
	}
}
