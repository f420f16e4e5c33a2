package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mealbridge/mealbridge/internal/models"
	"github.com/mealbridge/mealbridge/internal/services"
)

// PlaceOrderHandler spends one of the beneficiary's tokens on a meal.
func PlaceOrderHandler(c *fiber.Ctx) error {
	beneficiaryID := c.Locals("user_id").(string)

	var request struct {
		MealID string `json:"mealId" validate:"required"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !validateBody(c, &request) {
		return nil
	}

	order, err := services.PlaceOrder(beneficiaryID, request.MealID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// AcceptOrderHandler transitions one of the member's pending orders to accepted.
func AcceptOrderHandler(c *fiber.Ctx) error {
	memberID := c.Locals("user_id").(string)
	orderID := c.Params("id")

	order, err := services.AcceptOrder(memberID, orderID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(order)
}

// ListOrdersHandler returns the caller's order feed, scoped by the role query
// parameter: a member sees incoming orders, a beneficiary their own.
func ListOrdersHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	switch c.Query("role") {
	case models.RoleMember:
		orders, err := services.ListOrdersByMember(userID)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(orders)
	case models.RoleBeneficiary:
		orders, err := services.ListOrdersByBeneficiary(userID)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(orders)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "role query must be member|beneficiary"})
	}
}
