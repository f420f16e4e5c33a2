package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mealbridge/mealbridge/internal/cache"
	"github.com/mealbridge/mealbridge/internal/config"
	"github.com/mealbridge/mealbridge/internal/middleware"
	"github.com/mealbridge/mealbridge/internal/services"
)

func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		HTTPOnly: true,
		SameSite: "Lax",
		Secure:   config.Getenv("APP_ENV", "") == "production",
		MaxAge:   int(services.TokenTTL.Seconds()),
	})
}

func clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		HTTPOnly: true,
		SameSite: "Lax",
		Secure:   config.Getenv("APP_ENV", "") == "production",
		Expires:  time.Now().Add(-time.Hour),
	})
}

func RegisterHandler(c *fiber.Ctx) error {
	var request struct {
		Name     string `json:"name" validate:"required,min=2"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
		Role     string `json:"role" validate:"required"`
		Address  string `json:"address"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !validateBody(c, &request) {
		return nil
	}

	user, err := services.RegisterUser(request.Name, request.Email, request.Password, request.Role, request.Address)
	if err != nil {
		return errorResponse(c, err)
	}

	token, err := services.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		return errorResponse(c, err)
	}
	setSessionCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"role":         user.Role,
		"tokenBalance": user.TokenBalance,
		"token":        token,
	})
}

func LoginHandler(c *fiber.Ctx) error {
	var request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !validateBody(c, &request) {
		return nil
	}

	user, token, err := services.LoginUser(request.Email, request.Password)
	if err != nil {
		return errorResponse(c, err)
	}
	setSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"id":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"role":         user.Role,
		"tokenBalance": user.TokenBalance,
		"token":        token,
	})
}

// MeHandler returns the authenticated user, fresh from the database so the
// token balance is current rather than whatever the token was minted with.
func MeHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	user, err := services.GetUserByID(userID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(user)
}

// LogoutHandler revokes the presented token for the rest of its lifetime and
// clears the session cookie.
func LogoutHandler(c *fiber.Ctx) error {
	if tokenString, ok := c.Locals("token").(string); ok && tokenString != "" {
		// Revocation TTL only needs to cover the token's remaining validity.
		ttl := services.TokenTTL
		token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
		if err == nil {
			if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
				ttl = time.Until(exp.Time)
			}
		}
		cache.RevokeToken(c.UserContext(), tokenString, ttl)
	}

	clearSessionCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}
