// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evalyze-client/internal/dto"
	"evalyze-client/internal/model"
	"evalyze-client/internal/pkg/logger"
	"evalyze-client/pkg/api"
	"evalyze-client/pkg/credentials"
	"evalyze-client/pkg/events"
	"evalyze-client/pkg/tokenstore"

	"github.com/go-playground/validator/v10"
)

// ErrNoRefreshToken is returned when a refresh is requested without a stored
// refresh token. The transport uses it to short-circuit straight to logout
// instead of firing a doomed network call.
var ErrNoRefreshToken = errors.New("no refresh token")

// IAuthService is the gateway for every operation that may legitimately change
// the token store. Nothing else writes to it.
type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*model.User, error)
	RegisterCandidate(ctx context.Context, req *dto.RegisterCandidateRequest) (*model.User, error)
	RegisterCompany(ctx context.Context, req *dto.RegisterCompanyRequest) (*model.User, error)
	Refresh(ctx context.Context) (string, error)
	FetchProfile(ctx context.Context) (*model.User, error)
	Logout()
	Restore(ctx context.Context) (*model.User, error)
}

type authService struct {
	api      *api.Client
	store    *tokenstore.Store
	creds    *credentials.Store
	bus      *events.Bus
	log      logger.ILogger
	validate *validator.Validate
}

func NewAuthService(apiClient *api.Client, store *tokenstore.Store, creds *credentials.Store, bus *events.Bus, log logger.ILogger) IAuthService {
	return &authService{
		api:      apiClient,
		store:    store,
		creds:    creds,
		bus:      bus,
		log:      log,
		validate: validator.New(),
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*model.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	var res dto.LoginResponse
	if err := s.api.Post(ctx, "/auth/login/", req, &res); err != nil {
		// Propagated unchanged so the form can render field detail (e.g. a
		// role mismatch) exactly as the backend phrased it.
		return nil, err
	}

	pair := model.TokenPair{Access: res.Access, Refresh: res.Refresh}
	s.store.SetTokens(pair)
	user := res.User
	s.store.SetUser(&user)

	if s.creds != nil {
		if err := s.creds.Save(pair, req.Remember); err != nil {
			s.log.Warn("auth", "failed to persist credentials", map[string]interface{}{"error": err.Error()})
		}
		s.creds.MarkJustLoggedIn()
	}

	s.publish(ctx, events.TypeUserLogin, map[string]interface{}{
		"user_id": user.ID,
		"role":    string(user.Role),
	})

	s.log.Info("auth", "login succeeded", map[string]interface{}{"user_id": user.ID, "role": user.Role})
	return &user, nil
}

func (s *authService) RegisterCandidate(ctx context.Context, req *dto.RegisterCandidateRequest) (*model.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	var res dto.LoginResponse
	if err := s.api.Post(ctx, "/auth/register/candidate/", req, &res); err != nil {
		return nil, err
	}
	return s.adoptSession(ctx, &res)
}

func (s *authService) RegisterCompany(ctx context.Context, req *dto.RegisterCompanyRequest) (*model.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	var res dto.LoginResponse
	if err := s.api.Post(ctx, "/auth/register/company/", req, &res); err != nil {
		return nil, err
	}
	return s.adoptSession(ctx, &res)
}

// adoptSession applies the token pair a registration returned, logging the new
// account straight in.
func (s *authService) adoptSession(ctx context.Context, res *dto.LoginResponse) (*model.User, error) {
	s.store.SetTokens(model.TokenPair{Access: res.Access, Refresh: res.Refresh})
	user := res.User
	s.store.SetUser(&user)
	s.publish(ctx, events.TypeUserLogin, map[string]interface{}{
		"user_id": user.ID,
		"role":    string(user.Role),
	})
	return &user, nil
}

// Refresh exchanges the stored refresh token for a new pair and returns the
// new access token. The caller (normally the transport) owns the logout
// decision on failure.
func (s *authService) Refresh(ctx context.Context) (string, error) {
	refresh := s.store.Refresh()
	if refresh == "" {
		return "", ErrNoRefreshToken
	}

	var res dto.RefreshResponse
	if err := s.api.Post(ctx, "/auth/refresh/", &dto.RefreshRequest{Refresh: refresh}, &res); err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}

	// The server may not rotate the refresh token; an absent field keeps the
	// one we already hold.
	next := model.TokenPair{Access: res.Access, Refresh: res.Refresh}
	if next.Refresh == "" {
		next.Refresh = refresh
	}
	s.store.SetTokens(next)

	if s.creds != nil {
		// Keep the persisted copy in sync with the rotation, under the same
		// scope the user originally chose.
		_ = s.creds.Save(next, s.creds.Remembered())
	}

	s.log.Debug("auth", "token refreshed", nil)
	return res.Access, nil
}

// Logout is pure local invalidation: the discarded tokens simply stop being
// used, revocation on the server side is its own concern.
func (s *authService) Logout() {
	s.store.Clear()
	if s.creds != nil {
		s.creds.Clear()
	}
	s.publish(context.Background(), events.TypeUserLogout, nil)
	s.log.Info("auth", "logged out", nil)
}

// FetchProfile hydrates the identity for an already-stored token, e.g. on
// process start after a remembered login.
func (s *authService) FetchProfile(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := s.api.Get(ctx, "/auth/me/", &user); err != nil {
		return nil, err
	}
	s.store.SetUser(&user)
	return &user, nil
}

// Restore loads persisted credentials (if any) into the store and fetches the
// profile for them. Returns nil user without error when nothing is persisted.
func (s *authService) Restore(ctx context.Context) (*model.User, error) {
	if s.creds == nil {
		return nil, nil
	}
	pair, ok := s.creds.Load()
	if !ok {
		return nil, nil
	}
	s.store.SetTokens(pair)

	user, err := s.FetchProfile(ctx)
	if err != nil {
		// A stale pair that can no longer authenticate is discarded rather
		// than surfaced: the user just logs in again.
		s.store.Clear()
		s.creds.Clear()
		return nil, nil
	}
	return user, nil
}

func (s *authService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.bus == nil {
		return
	}
	event := events.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.log.Warn("auth", "failed to publish event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}
