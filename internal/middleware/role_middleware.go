package middleware

import "github.com/gofiber/fiber/v2"

// RequireRole gates a route to one role. Must run after AuthMiddleware.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, ok := c.Locals("role").(string)
		if !ok || current != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied. " + role + " role required."})
		}
		return c.Next()
	}
}
