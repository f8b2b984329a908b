package tokenstore

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalyze-client/internal/model"
)

func TestSubscribeDeliversCurrentStateImmediately(t *testing.T) {
	store := New()
	store.SetTokens(model.TokenPair{Access: "a1", Refresh: "r1"})

	ch, cancel := store.Subscribe()
	defer cancel()

	snap := <-ch
	assert.Equal(t, "a1", snap.Access)
	assert.Equal(t, "r1", snap.Refresh)
	assert.Nil(t, snap.User)
}

func TestSlowSubscriberOnlySeesLatestValue(t *testing.T) {
	store := New()
	ch, cancel := store.Subscribe()
	defer cancel()

	// Drain the initial snapshot, then mutate three times without reading.
	<-ch
	store.SetTokens(model.TokenPair{Access: "a1"})
	store.SetTokens(model.TokenPair{Access: "a2"})
	store.SetTokens(model.TokenPair{Access: "a3"})

	snap := <-ch
	assert.Equal(t, "a3", snap.Access, "pending delivery must be replaced, not queued")

	select {
	case extra := <-ch:
		t.Fatalf("expected no queued values, got %+v", extra)
	default:
	}
}

func TestClearIsAtomic(t *testing.T) {
	store := New()
	store.SetTokens(model.TokenPair{Access: "a", Refresh: "r"})
	store.SetUser(&model.User{ID: 1, Email: "x@y.z", Role: model.RoleCandidate})

	ch, cancel := store.Subscribe()
	defer cancel()
	<-ch

	store.Clear()

	snap := <-ch
	assert.Empty(t, snap.Access)
	assert.Empty(t, snap.Refresh)
	assert.Nil(t, snap.User)
	assert.False(t, store.IsAuthenticated())
}

func TestCancelStopsDelivery(t *testing.T) {
	store := New()
	ch, cancel := store.Subscribe()
	<-ch
	cancel()
	cancel() // idempotent

	store.SetTokens(model.TokenPair{Access: "after"})
	_, open := <-ch
	assert.False(t, open, "channel must be closed after cancel")
}

func TestUserReturnsCopy(t *testing.T) {
	store := New()
	store.SetUser(&model.User{ID: 7, Name: "Dana"})

	u := store.User()
	require.NotNil(t, u)
	u.Name = "mutated"

	assert.Equal(t, "Dana", store.User().Name)
}

func TestAccessExpiry(t *testing.T) {
	store := New()

	_, ok := store.AccessExpiry()
	assert.False(t, ok, "no token, no expiry")

	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test_secret"))
	require.NoError(t, err)

	store.SetTokens(model.TokenPair{Access: signed})
	got, ok := store.AccessExpiry()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	store.SetTokens(model.TokenPair{Access: "not-a-jwt"})
	_, ok = store.AccessExpiry()
	assert.False(t, ok)
}
