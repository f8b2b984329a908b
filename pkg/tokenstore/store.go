// Package tokenstore holds the process-wide credential pair and authenticated
// identity. It is the single source of truth: the auth gateway is the only
// writer, everything else reads or subscribes.
package tokenstore

import (
	"sync"
	"time"

	"evalyze-client/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// Snapshot is the full store state delivered to subscribers. A subscriber
// always receives the latest state on subscription, then every subsequent
// mutation. Replay-latest, not an event log.
type Snapshot struct {
	Access  string
	Refresh string
	User    *model.User
}

type Store struct {
	mu      sync.RWMutex
	access  string
	refresh string
	user    *model.User

	subs   map[int]chan Snapshot
	nextID int
}

func New() *Store {
	return &Store{subs: make(map[int]chan Snapshot)}
}

// Access returns the current access token, empty when absent.
func (s *Store) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// Refresh returns the current refresh token, empty when absent.
func (s *Store) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// User returns the cached identity, nil when not authenticated.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) IsAuthenticated() bool {
	return s.Access() != ""
}

// SetTokens replaces both tokens atomically and notifies subscribers.
func (s *Store) SetTokens(pair model.TokenPair) {
	s.mu.Lock()
	s.access = pair.Access
	s.refresh = pair.Refresh
	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	s.mu.Unlock()
}

// SetUser replaces the cached identity and notifies subscribers.
func (s *Store) SetUser(user *model.User) {
	s.mu.Lock()
	if user == nil {
		s.user = nil
	} else {
		u := *user
		s.user = &u
	}
	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	s.mu.Unlock()
}

// Clear nulls tokens and identity in one step and notifies subscribers.
func (s *Store) Clear() {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.user = nil
	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	s.mu.Unlock()
}

// Subscribe registers an observer. The current state is delivered immediately;
// afterwards every mutation is. A slow subscriber only ever lags by one value:
// pending deliveries are replaced, not queued. The returned function cancels
// the subscription.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// AccessExpiry reads the exp claim out of the access token without verifying
// the signature (verification is the server's job; the client only needs the
// deadline). Returns false when there is no token or no parsable claim.
func (s *Store) AccessExpiry() (time.Time, bool) {
	access := s.Access()
	if access == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(access, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Access: s.access, Refresh: s.refresh}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *Store) notifyLocked(snap Snapshot) {
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Drop the stale pending value so the channel always holds the
			// latest state.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
