package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/mealbridge/mealbridge/internal/services"
)

var validate = validator.New()

// FieldError is one field-level validation failure in an error response.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// validateBody runs struct-tag validation and, on failure, writes the 422
// response itself. Returns true when the request may proceed.
func validateBody(c *fiber.Ctx, body interface{}) bool {
	err := validate.Struct(body)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Invalid request body"})
		return false
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":  "Validation failed",
		"fields": fields,
	})
	return false
}

// errorResponse maps a service error onto its HTTP status. Unknown errors are
// reported generically so internals never leak to the client.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidRole):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrEmailInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrMealNotFound), errors.Is(err, services.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrOrderNotPending):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrMealUnavailable),
		errors.Is(err, services.ErrInvalidBeneficiary),
		errors.Is(err, services.ErrInsufficientTokens):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
	}
}
