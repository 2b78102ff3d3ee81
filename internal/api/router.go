package api

import (
	"rag-mentor/internal/api/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	chatHandler *handlers.ChatHandler,
	storyHandler *handlers.StoryHandler,
	healthHandler *handlers.HealthHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(logger.New())

	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Health)
	app.Post("/chat", chatHandler.Chat)
	app.Post("/student_story", storyHandler.SubmitStory)

	appLogger.Info("Router configured",
		zap.Strings("routes", []string{"GET /", "GET /health", "POST /chat", "POST /student_story"}),
	)

	return app
}
