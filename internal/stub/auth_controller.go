package stub

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"evalyze-client/internal/dto"
	"evalyze-client/internal/model"
)

func (s *Server) mintAccess(user *stubUser) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     time.Now().Add(s.cfg.AccessTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// mintRefresh issues an opaque rotating refresh token. Caller must hold the
// state mutex.
func (s *Server) mintRefresh(userID int) string {
	token := uuid.NewString()
	s.state.refreshTokens[token] = userID
	return token
}

func (s *Server) login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "invalid request body")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	user := s.state.byEmail[strings.ToLower(req.Email)]
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return detail(ctx, fiber.StatusUnauthorized, "invalid email or password")
	}
	if req.Role != "" && req.Role != user.Role {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"role": []string{"this account is registered as " + string(user.Role)},
		})
	}

	access, err := s.mintAccess(user)
	if err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "failed to issue token")
	}

	s.log.Info("stub", "user logged in", map[string]interface{}{"email": user.Email, "role": user.Role})
	return ctx.JSON(dto.LoginResponse{
		Access:  access,
		Refresh: s.mintRefresh(user.ID),
		User:    model.User{ID: user.ID, Email: user.Email, Role: user.Role, Name: user.Name},
	})
}

func (s *Server) refresh(ctx *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := ctx.BodyParser(&req); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "invalid request body")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	userID, ok := s.state.refreshTokens[req.Refresh]
	if !ok {
		return detail(ctx, fiber.StatusUnauthorized, "refresh token is invalid or expired")
	}
	user := s.state.users[userID]
	if user == nil {
		return detail(ctx, fiber.StatusUnauthorized, "refresh token is invalid or expired")
	}

	// Rotation: the presented token is consumed and a fresh one issued.
	delete(s.state.refreshTokens, req.Refresh)

	access, err := s.mintAccess(user)
	if err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "failed to issue token")
	}
	return ctx.JSON(dto.RefreshResponse{
		Access:  access,
		Refresh: s.mintRefresh(user.ID),
	})
}

func (s *Server) me(ctx *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	user := s.state.users[currentUserID(ctx)]
	if user == nil {
		return detail(ctx, fiber.StatusUnauthorized, "user no longer exists")
	}
	return ctx.JSON(model.User{ID: user.ID, Email: user.Email, Role: user.Role, Name: user.Name})
}

func (s *Server) registerCandidate(ctx *fiber.Ctx) error {
	var req dto.RegisterCandidateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	return s.register(ctx, req.Email, req.Password, req.Name, model.RoleCandidate)
}

func (s *Server) registerCompany(ctx *fiber.Ctx) error {
	var req dto.RegisterCompanyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	name := req.CompanyName
	if name == "" {
		name = req.Name
	}
	return s.register(ctx, req.Email, req.Password, name, model.RoleCompany)
}

func (s *Server) register(ctx *fiber.Ctx, email, password, name string, role model.Role) error {
	if email == "" || password == "" || name == "" {
		return detail(ctx, fiber.StatusBadRequest, "email, password and name are required")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if s.state.byEmail[strings.ToLower(email)] != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"email": []string{"a user with this email already exists"},
		})
	}

	user := s.state.addUser(email, password, role, name)
	access, err := s.mintAccess(user)
	if err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "failed to issue token")
	}

	s.log.Info("stub", "user registered", map[string]interface{}{"email": user.Email, "role": role})
	return ctx.Status(fiber.StatusCreated).JSON(dto.LoginResponse{
		Access:  access,
		Refresh: s.mintRefresh(user.ID),
		User:    model.User{ID: user.ID, Email: user.Email, Role: user.Role, Name: user.Name},
	})
}
