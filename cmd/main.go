package main

import (
	"log"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/mealbridge/mealbridge/internal/cache"
	"github.com/mealbridge/mealbridge/internal/config"
	"github.com/mealbridge/mealbridge/internal/db"
	"github.com/mealbridge/mealbridge/internal/handlers"
	"github.com/mealbridge/mealbridge/internal/metrics"
	"github.com/mealbridge/mealbridge/internal/middleware"
	"github.com/mealbridge/mealbridge/internal/models"
	"github.com/mealbridge/mealbridge/internal/storage"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, using environment variables")
	}

	// Initialize Fiber
	app := fiber.New()
	// Initialize MinIO (meal photos)
	storage.InitMinio()
	// Optional Redis (token revocation)
	cache.Connect(config.Getenv("REDIS_ADDR", ""))

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.Getenv("CLIENT_ORIGIN", "http://localhost:5173"),
		AllowCredentials: true,
	}))

	// Connect to MongoDB
	mongoURI := config.Getenv("MONGO_URI", "mongodb://localhost:27017/mealbridge")
	db.ConnectMongoDB(mongoURI, config.Getenv("MONGO_DB", "mealbridge"))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// Auth Routes
	auth := app.Group("/auth")
	auth.Post("/register", handlers.RegisterHandler)
	auth.Post("/login", handlers.LoginHandler)
	auth.Get("/me", middleware.AuthMiddleware, handlers.MeHandler)
	auth.Post("/logout", middleware.AuthMiddleware, handlers.LogoutHandler)

	// Meal Routes (listing is public, writes are member-only)
	meals := app.Group("/meals")
	meals.Get("/", handlers.ListMealsHandler)
	meals.Post("/", middleware.AuthMiddleware, middleware.RequireRole(models.RoleMember), handlers.CreateMealHandler)
	meals.Put("/:id", middleware.AuthMiddleware, middleware.RequireRole(models.RoleMember), handlers.UpdateMealHandler)
	meals.Post("/:id/photo", middleware.AuthMiddleware, middleware.RequireRole(models.RoleMember), handlers.AttachMealPhotoHandler)

	// Order Routes
	orders := app.Group("/orders", middleware.AuthMiddleware)
	orders.Get("/", handlers.ListOrdersHandler)
	orders.Post("/", middleware.RequireRole(models.RoleBeneficiary), handlers.PlaceOrderHandler)
	orders.Post("/:id/accept", middleware.RequireRole(models.RoleMember), handlers.AcceptOrderHandler)

	// Start server
	log.Fatal(app.Listen(":" + config.Getenv("PORT", "8080")))
}
