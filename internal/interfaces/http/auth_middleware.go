package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/malexa-pos/internal/application/dto"
	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
)

// LocalSession clave de c.Locals con la sesión autenticada.
const LocalSession = "session"

// SessionResolver valida el token y devuelve la sesión vigente.
// Lo implementa *auth.AuthUseCase.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*entity.Session, error)
}

// AuthMiddleware valida el Bearer Token y deja la sesión en c.Locals.
// Un token bien firmado cuya sesión ya se cerró responde 401.
func AuthMiddleware(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		session, err := resolver.ResolveSession(c.UserContext(), tokenString)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o sesión cerrada"})
			}
			return respondError(c, err)
		}
		c.Locals(LocalSession, session)
		return c.Next()
	}
}

// RequireRole deja pasar solo a las sesiones con alguno de los roles dados.
// Debe usarse después de AuthMiddleware.
func RequireRole(roles ...entity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := GetSession(c)
		if session == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión requerida"})
		}
		for _, r := range roles {
			if session.User.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el rol no tiene permiso para esta operación"})
	}
}

// GetSession devuelve la sesión del contexto (nil sin AuthMiddleware).
func GetSession(c *fiber.Ctx) *entity.Session {
	s, _ := c.Locals(LocalSession).(*entity.Session)
	return s
}

// GetSessionID id de la sesión autenticada.
func GetSessionID(c *fiber.Ctx) string {
	if s := GetSession(c); s != nil {
		return s.ID
	}
	return ""
}

// GetActor identidad a estampar en las ventas.
func GetActor(c *fiber.Ctx) entity.Actor {
	if s := GetSession(c); s != nil {
		return s.Actor()
	}
	return entity.Actor{}
}

// GetRole rol de la sesión autenticada.
func GetRole(c *fiber.Ctx) entity.Role {
	if s := GetSession(c); s != nil {
		return s.User.Role
	}
	return ""
}
