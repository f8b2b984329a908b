package stub

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"evalyze-client/internal/model"
)

// authRequired validates the bearer token and stashes user_id and role in
// fiber locals for downstream handlers.
func (s *Server) authRequired(ctx *fiber.Ctx) error {
	header := ctx.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return detail(ctx, fiber.StatusUnauthorized, "authentication credentials were not provided")
	}

	raw := strings.TrimPrefix(header, "Bearer ")
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return detail(ctx, fiber.StatusUnauthorized, "token is invalid or expired")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return detail(ctx, fiber.StatusUnauthorized, "token is invalid or expired")
	}
	role, _ := claims["role"].(string)

	ctx.Locals("user_id", int(userID))
	ctx.Locals("role", model.Role(role))
	return ctx.Next()
}

func currentUserID(ctx *fiber.Ctx) int {
	id, _ := ctx.Locals("user_id").(int)
	return id
}

func currentRole(ctx *fiber.Ctx) model.Role {
	role, _ := ctx.Locals("role").(model.Role)
	return role
}
