package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the API under /api/v1 plus the bare liveness probe.
func RegisterRoutes(app *fiber.App, screen *ScreenHandler, analysis *AnalysisHandler) {
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/screen", screen.HandleScreen)
	api.Post("/batch_screen", screen.HandleBatchScreen)
	api.Post("/recommend", analysis.HandleRecommend)

	module := api.Group("/module")
	module.Post("/red_flags", analysis.HandleRedFlags)
	module.Post("/salary_estimation", analysis.HandleSalaryEstimation)
	module.Post("/background_consistency", analysis.HandleBackgroundConsistency)
	module.Post("/candidate_fit", analysis.HandleCandidateFit)
}
