package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/movella/studiopos-backend/internal/models"
	jwtPkg "github.com/movella/studiopos-backend/pkg/jwt"
)

// AuthMiddleware validates the bearer token and stores the acting staff
// member's identity on the request. Every authorization decision downstream
// reads identity from request locals; there is no process-wide current user.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authorization header is required"))
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Invalid authorization header format"))
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := jwtPkg.ValidateToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Invalid token"))
		}

		staffIDFloat, ok := claims["staff_id"].(float64)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Invalid staff ID in token"))
		}

		role, ok := claims["role"].(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Invalid role in token"))
		}

		c.Locals("staffID", uint(staffIDFloat))
		c.Locals("staffRole", role)

		return c.Next()
	}
}

// AdminOnly guards catalog management, manual pass issuance and reports.
// Must run after AuthMiddleware.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("staffRole").(string)
		if role != string(models.RoleAdmin) {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Admin access required"))
		}
		return c.Next()
	}
}
