package rest

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vladislavdragonenkov/marketplace/internal/auth"
	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

const actorLocalsKey = "actor"

// authenticate проверяет Bearer-токен и кладёт актора в locals запроса.
//
// Для продавцов дополнительно проверяется состояние учётной записи:
// только одобренный администратором продавец допускается к API.
func (s *Server) authenticate(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return errorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
	}

	actor, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return errorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "token is expired", nil)
		}
		return errorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "token is invalid", nil)
	}

	if actor.Role == domain.RoleSeller {
		account, err := s.accounts.Get(actor.ID)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return errorResponse(c, fiber.StatusForbidden, "FORBIDDEN", domain.ErrAccountSuspended.Error(), nil)
			}
			return domainErrorResponse(c, err)
		}
		if !account.CanAct() {
			return errorResponse(c, fiber.StatusForbidden, "FORBIDDEN", domain.ErrAccountSuspended.Error(), nil)
		}
	}

	c.Locals(actorLocalsKey, actor)
	return c.Next()
}

// requireRole пропускает только акторов с указанной ролью.
func requireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := actorFromCtx(c)
		if actor.Role != role {
			return errorResponse(c, fiber.StatusForbidden, "FORBIDDEN", domain.ErrForbidden.Error(), nil)
		}
		return c.Next()
	}
}

func actorFromCtx(c *fiber.Ctx) domain.Actor {
	actor, _ := c.Locals(actorLocalsKey).(domain.Actor)
	return actor
}
