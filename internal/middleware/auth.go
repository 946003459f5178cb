package middleware

import (
	"strings"

	"tokoorder/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalRole     = "role"
)

// TokenValidator resolves a bearer token to an identity.
type TokenValidator interface {
	ValidateToken(token string) (*services.Identity, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(tokens TokenValidator, log *zap.Logger) fiber.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return deny(c, fiber.StatusUnauthorized, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return deny(c, fiber.StatusUnauthorized, "Authorization header format must be 'Bearer <token>'")
		}

		identity, err := tokens.ValidateToken(parts[1])
		if err != nil {
			log.Debug("jwt validation failed", zap.String("path", c.Path()), zap.Error(err))
			return deny(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(LocalUserID, identity.UserID)
		c.Locals(LocalUsername, identity.Username)
		c.Locals(LocalRole, identity.Role)

		return c.Next()
	}
}

// RequireRole rejects callers whose role is not one of roles. It must run
// after AuthRequired.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return deny(c, fiber.StatusForbidden, "insufficient permissions")
	}
}

// UserID returns the authenticated user id, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// Role returns the authenticated user's role.
func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalRole).(string)
	return role
}

func deny(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
