package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mealbridge/mealbridge/internal/services"
)

// ListMealsHandler serves the public meal catalog.
func ListMealsHandler(c *fiber.Ctx) error {
	meals, err := services.ListMeals()
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(meals)
}

// CreateMealHandler lists a new meal for the calling member.
func CreateMealHandler(c *fiber.Ctx) error {
	memberID := c.Locals("user_id").(string)

	var request struct {
		Title        string   `json:"title" validate:"required,min=2"`
		Description  string   `json:"description"`
		Dietary      []string `json:"dietary"`
		QtyAvailable int      `json:"qtyAvailable" validate:"min=0"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !validateBody(c, &request) {
		return nil
	}

	meal, err := services.CreateMeal(memberID, request.Title, request.Description, request.Dietary, request.QtyAvailable)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(meal)
}

// UpdateMealHandler applies a partial update to one of the member's meals.
func UpdateMealHandler(c *fiber.Ctx) error {
	memberID := c.Locals("user_id").(string)
	mealID := c.Params("id")

	var request services.MealUpdate
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !validateBody(c, &request) {
		return nil
	}

	meal, err := services.UpdateMeal(mealID, memberID, request)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(meal)
}

// AttachMealPhotoHandler uploads a photo for one of the member's meals.
func AttachMealPhotoHandler(c *fiber.Ctx) error {
	memberID := c.Locals("user_id").(string)
	mealID := c.Params("id")

	meal, err := services.AttachMealPhoto(c, mealID, memberID)
	if errors.Is(err, services.ErrMealNotFound) {
		return errorResponse(c, err)
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(meal)
}
