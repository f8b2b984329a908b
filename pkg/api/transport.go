package api

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"sync"
)

// authPathPattern matches the endpoints that must never trigger (or carry) the
// refresh protocol: the login and refresh calls themselves.
var authPathPattern = regexp.MustCompile(`/auth/(login|refresh)/`)

// TokenReader is the read-only view of the token store the transport needs.
type TokenReader interface {
	Access() string
	Refresh() string
}

// Refresher performs the credential operations the transport delegates: the
// actual network refresh, and local session termination when recovery fails.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
	Logout()
}

// refreshCall is the shared result of one in-flight refresh. Every request
// that 401s while it is pending waits on done and reuses its outcome, so at
// most one refresh call is ever on the wire.
type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

// AuthTransport attaches bearer tokens to outgoing requests and transparently
// recovers from 401s via a single-flight token refresh. Concurrency contract:
//   - at most one refresh is in flight at a time, however many requests fail;
//   - each failed request is retried exactly once with the refreshed token;
//   - a failed retry is returned as-is, never retried again;
//   - if the refresh itself fails, the session is terminated and the refresh
//     error (not the original 401) is what the caller observes.
type AuthTransport struct {
	base   http.RoundTripper
	tokens TokenReader

	mu        sync.Mutex
	refresher Refresher
	inflight  *refreshCall
}

func NewAuthTransport(base http.RoundTripper, tokens TokenReader) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{base: base, tokens: tokens}
}

// SetRefresher wires the auth gateway in after construction. The gateway needs
// the HTTP client (and therefore this transport) to exist first, so the cycle
// is broken with late binding.
func (t *AuthTransport) SetRefresher(r Refresher) {
	t.mu.Lock()
	t.refresher = r
	t.mu.Unlock()
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if authPathPattern.MatchString(req.URL.Path) {
		return t.base.RoundTrip(req)
	}

	attempt := req
	if access := t.tokens.Access(); access != "" {
		attempt = cloneWithBearer(req, access)
	}

	resp, err := t.base.RoundTrip(attempt)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	refresher := t.currentRefresher()
	if refresher == nil || t.tokens.Refresh() == "" {
		// Nothing to recover with: terminate the session locally and let the
		// caller see the original 401.
		if refresher != nil {
			refresher.Logout()
		}
		return resp, nil
	}

	token, refreshErr := t.awaitRefresh(req.Context(), refresher)
	if refreshErr != nil {
		drainAndClose(resp)
		return nil, refreshErr
	}

	retry, ok := rewind(req)
	if !ok {
		// Body cannot be replayed; surface the original 401 instead.
		return resp, nil
	}
	drainAndClose(resp)

	// One retry with the refreshed token. Whatever comes back, including a
	// second 401, goes to the caller untouched.
	return t.base.RoundTrip(cloneWithBearer(retry, token))
}

func (t *AuthTransport) currentRefresher() Refresher {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.refresher
}

// awaitRefresh joins the in-flight refresh if one exists, otherwise starts it.
// All waiters are released with the single refresh outcome.
func (t *AuthTransport) awaitRefresh(ctx context.Context, refresher Refresher) (string, error) {
	t.mu.Lock()
	if call := t.inflight; call != nil {
		t.mu.Unlock()
		select {
		case <-call.done:
			return call.token, call.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	call := &refreshCall{done: make(chan struct{})}
	t.inflight = call
	t.mu.Unlock()

	// The refresh is detached from the triggering request's context so one
	// cancelled caller cannot fail every waiter sharing the result.
	token, err := refresher.Refresh(context.WithoutCancel(ctx))
	if err != nil {
		refresher.Logout()
	}

	call.token, call.err = token, err
	t.mu.Lock()
	t.inflight = nil
	t.mu.Unlock()
	close(call.done)

	return token, err
}

func cloneWithBearer(req *http.Request, token string) *http.Request {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return clone
}

// rewind produces a replayable copy of req for the retry. Requests built by
// the client use bytes.Reader bodies, so GetBody is always available there.
func rewind(req *http.Request) (*http.Request, bool) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	clone.Body = body
	return clone, true
}

func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
