package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pyme/internal/application/dto"
	"github.com/jhoicas/inventario-pyme/internal/domain"
)

// LocalUserID key de c.Locals con el id del usuario autenticado.
const LocalUserID = "user_id"

// Authenticator resuelve un bearer (JWT o API key) al id del usuario.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (string, error)
}

// AuthMiddleware valida "Authorization: Bearer <jwt|api_key>" y deja el UserID en c.Locals.
func AuthMiddleware(authn Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "MISSING_TOKEN", "Authorization header requerido")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		credential := strings.TrimSpace(parts[1])
		if credential == "" {
			return unauthorized(c, "MISSING_TOKEN", "token vacío")
		}
		userID, err := authn.Authenticate(c.UserContext(), credential)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return unauthorized(c, "INVALID_TOKEN", "token o API key inválido")
			}
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error al validar credenciales"})
		}
		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, code, msg string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}
