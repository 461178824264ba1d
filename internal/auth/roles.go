package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/domain"
	apperrors "github.com/spec-kit/support-crm/pkg/errorutil"
)

// RequireRole ensures the caller holds one of the allowed roles. With no
// arguments any authenticated user passes.
func RequireRole(allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[user.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
