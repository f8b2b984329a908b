package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type fakeTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func (f *fakeTokens) Access() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access
}

func (f *fakeTokens) Refresh() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh
}

func (f *fakeTokens) set(access, refresh string) {
	f.mu.Lock()
	f.access = access
	f.refresh = refresh
	f.mu.Unlock()
}

type fakeRefresher struct {
	mu       sync.Mutex
	calls    int
	logouts  int
	token    string
	err      error
	onCalled func()
	tokens   *fakeTokens
}

func (f *fakeRefresher) Refresh(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.onCalled != nil {
		f.onCalled()
	}
	if f.err != nil {
		return "", f.err
	}
	if f.tokens != nil {
		f.tokens.set(f.token, f.tokens.Refresh())
	}
	return f.token, nil
}

func (f *fakeRefresher) Logout() {
	f.mu.Lock()
	f.logouts++
	f.mu.Unlock()
}

func (f *fakeRefresher) refreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRefresher) logoutCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logouts
}

func response(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Header:     make(http.Header),
	}
}

func newRequest(t *testing.T, method, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, nil)
	require.NoError(t, err)
	return req
}

func TestRoundTripAttachesBearer(t *testing.T) {
	tokens := &fakeTokens{access: "acc-1"}
	var seen string
	transport := NewAuthTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Get("Authorization")
		return response(http.StatusOK), nil
	}), tokens)

	resp, err := transport.RoundTrip(newRequest(t, http.MethodGet, "http://backend/api/jobs/"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer acc-1", seen)
}

func TestRoundTripSkipsHeaderWithoutToken(t *testing.T) {
	tokens := &fakeTokens{}
	var seen string
	transport := NewAuthTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Get("Authorization")
		return response(http.StatusOK), nil
	}), tokens)

	_, err := transport.RoundTrip(newRequest(t, http.MethodGet, "http://backend/api/jobs/"))
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestAuthEndpointsBypassInterception(t *testing.T) {
	tokens := &fakeTokens{access: "acc", refresh: "ref"}
	refresher := &fakeRefresher{token: "next"}
	calls := 0
	transport := NewAuthTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		assert.Empty(t, req.Header.Get("Authorization"))
		return response(http.StatusUnauthorized), nil
	}), tokens)
	transport.SetRefresher(refresher)

	for _, path := range []string{"/api/auth/login/", "/api/auth/refresh/"} {
		resp, err := transport.RoundTrip(newRequest(t, http.MethodPost, "http://backend"+path))
		require.NoError(t, err)
		// A 401 from the auth endpoints themselves must come straight back.
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	assert.Equal(t, 2, calls)
	assert.Zero(t, refresher.refreshCalls())
}

func TestSingleFlightRefreshAcrossConcurrent401s(t *testing.T) {
	const workers = 8

	tokens := &fakeTokens{access: "stale", refresh: "ref"}
	refresher := &fakeRefresher{token: "fresh", tokens: tokens}

	var unauthorized, authorized int32
	transport := NewAuthTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch req.Header.Get("Authorization") {
		case "Bearer fresh":
			atomic.AddInt32(&authorized, 1)
			return response(http.StatusOK), nil
		default:
			atomic.AddInt32(&unauthorized, 1)
			return response(http.StatusUnauthorized), nil
		}
	}), tokens)

	// Hold the refresh open until every worker has had a chance to 401.
	release := make(chan struct{})
	refresher.onCalled = func() { <-release }
	transport.SetRefresher(refresher)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	statuses := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := transport.RoundTrip(newRequest(t, http.MethodGet, "http://backend/api/interview-sessions/my-active/"))
			errs[i] = err
			if resp != nil {
				statuses[i] = resp.StatusCode
			}
		}(i)
	}

	// Release the refresh only after every worker has hit its 401 and is
	// parked behind the in-flight call.
	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadInt32(&unauthorized) < workers && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, int32(workers), atomic.LoadInt32(&unauthorized))
	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i], "worker %d", i)
		assert.Equal(t, http.StatusOK, statuses[i], "worker %d", i)
	}
	assert.Equal(t, 1, refresher.refreshCalls(), "exactly one refresh for N concurrent 401s")
	assert.Equal(t, int32(workers), atomic.LoadInt32(&authorized))
}

func TestFailedRetryIsNotRetriedAgain(t *testing.T) {
	tokens := &fakeTokens{access: "stale", refresh: "ref"}
	refresher := &fakeRefresher{token: "fresh", tokens: tokens}

	calls := 0
	transport := NewAuthTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return response(http.StatusUnauthorized), nil
	}), tokens)
	transport.SetRefresher(refresher)

	resp, err := transport.RoundTrip(newRequest(t, http.MethodGet, "http://backend/api/jobs/"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "second 401 is the caller's problem")
	assert.Equal(t, 2, calls, "original attempt plus exactly one retry")
	assert.Equal(t, 1, refresher.refreshCalls())
}

func TestRefreshFailureLogsOutAndPropagatesRefreshError(t *testing.T) {
	refreshErr := errors.New("refresh token expired")
	tokens := &fakeTokens{access: "stale", refresh: "ref"}
	refresher := &fakeRefresher{err: refreshErr}

	transport := NewAuthTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return response(http.StatusUnauthorized), nil
	}), tokens)
	transport.SetRefresher(refresher)

	resp, err := transport.RoundTrip(newRequest(t, http.MethodGet, "http://backend/api/jobs/"))
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, refreshErr, "caller sees the refresh error, not the 401")
	assert.Equal(t, 1, refresher.logoutCalls())
}

func TestNoRefreshTokenShortCircuits(t *testing.T) {
	tokens := &fakeTokens{access: "stale"}
	refresher := &fakeRefresher{token: "never"}

	transport := NewAuthTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return response(http.StatusUnauthorized), nil
	}), tokens)
	transport.SetRefresher(refresher)

	resp, err := transport.RoundTrip(newRequest(t, http.MethodGet, "http://backend/api/jobs/"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, refresher.refreshCalls(), "no refresh attempt without a refresh token")
	assert.Equal(t, 1, refresher.logoutCalls())
}

func TestRetryReplaysRequestBody(t *testing.T) {
	tokens := &fakeTokens{access: "stale", refresh: "ref"}
	refresher := &fakeRefresher{token: "fresh", tokens: tokens}

	var bodies []string
	transport := NewAuthTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		data, _ := io.ReadAll(req.Body)
		bodies = append(bodies, string(data))
		if req.Header.Get("Authorization") != "Bearer fresh" {
			return response(http.StatusUnauthorized), nil
		}
		return response(http.StatusOK), nil
	}), tokens)
	transport.SetRefresher(refresher)

	payload := `{"message":"my answer"}`
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost,
		"http://backend/api/interview-sessions/1/send-message/", bytes.NewReader([]byte(payload)))
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, bodies, 2)
	assert.Equal(t, payload, bodies[0])
	assert.Equal(t, payload, bodies[1], "retry must carry the same body")
}

func TestNonReplayableBodyReturnsOriginal401(t *testing.T) {
	tokens := &fakeTokens{access: "stale", refresh: "ref"}
	refresher := &fakeRefresher{token: "fresh", tokens: tokens}

	calls := 0
	transport := NewAuthTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return response(http.StatusUnauthorized), nil
	}), tokens)
	transport.SetRefresher(refresher)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost,
		"http://backend/api/jobs/", io.NopCloser(bytes.NewReader([]byte("x"))))
	require.NoError(t, err)
	req.GetBody = nil

	resp, rtErr := transport.RoundTrip(req)
	require.NoError(t, rtErr)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 1, calls, "no retry when the body cannot be replayed")
}
