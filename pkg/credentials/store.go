// Package credentials persists the token pair between runs. The lifetime of
// the persisted copy follows the user's "remember me" choice: a long-lived
// file for remembered logins, a short-TTL in-memory cache otherwise.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"evalyze-client/internal/model"

	cache "github.com/patrickmn/go-cache"
)

const (
	sessionKey      = "tokens"
	justLoggedInKey = "just_logged_in"

	// justLoggedInTTL bounds how long the post-login navigation flag can
	// outlive the login that set it.
	justLoggedInTTL = 30 * time.Second
)

type persistedTokens struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Remember bool   `json:"remember"`
}

type Store struct {
	path    string
	session *cache.Cache
}

// NewStore creates a credential store backed by path for remembered logins
// and by a TTL cache (sessionTTL) for non-remembered ones.
func NewStore(path string, sessionTTL time.Duration) *Store {
	return &Store{
		path:    path,
		session: cache.New(sessionTTL, 10*time.Minute),
	}
}

// Save persists the pair under the scope matching the remember choice. The
// opposite scope is cleared so exactly one copy exists.
func (s *Store) Save(pair model.TokenPair, remember bool) error {
	if !remember {
		s.session.SetDefault(sessionKey, pair)
		_ = os.Remove(s.path)
		return nil
	}

	s.session.Delete(sessionKey)

	data, err := json.Marshal(persistedTokens{
		Access:   pair.Access,
		Refresh:  pair.Refresh,
		Remember: true,
	})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Load returns the persisted pair if any scope still holds one.
func (s *Store) Load() (model.TokenPair, bool) {
	if v, ok := s.session.Get(sessionKey); ok {
		if pair, ok := v.(model.TokenPair); ok {
			return pair, true
		}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return model.TokenPair{}, false
	}
	var stored persistedTokens
	if err := json.Unmarshal(data, &stored); err != nil {
		return model.TokenPair{}, false
	}
	if stored.Access == "" && stored.Refresh == "" {
		return model.TokenPair{}, false
	}
	return model.TokenPair{Access: stored.Access, Refresh: stored.Refresh}, true
}

// Remembered reports whether the long-lived file scope currently holds the
// credentials (i.e. the user chose "remember me" on login).
func (s *Store) Remembered() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Clear removes both scopes.
func (s *Store) Clear() {
	s.session.Delete(sessionKey)
	_ = os.Remove(s.path)
}

// MarkJustLoggedIn raises the one-shot post-login flag. It bypasses the race
// between navigation and guard evaluation right after a login.
func (s *Store) MarkJustLoggedIn() {
	s.session.Set(justLoggedInKey, true, justLoggedInTTL)
}

// ConsumeJustLoggedIn reports and clears the flag: the first read wins, every
// later read sees false.
func (s *Store) ConsumeJustLoggedIn() bool {
	_, ok := s.session.Get(justLoggedInKey)
	if ok {
		s.session.Delete(justLoggedInKey)
	}
	return ok
}
