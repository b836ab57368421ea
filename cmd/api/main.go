package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/handlers"
	"alfredoptarigan/resume-screener/internal/metrics"
	"alfredoptarigan/resume-screener/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	config.InitLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Info("✅ Config loaded successfully")

	recorder := metrics.NewRecorder("api")

	// Initialize services
	extractor := services.NewDocumentExtractor(cfg.Upload.MaxTextChars)

	geminiService, err := services.NewGeminiService(context.Background(), cfg.Gemini, recorder)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.WithField("model", cfg.Gemini.Model).Info("✅ Gemini AI initialized successfully")

	screeningService := services.NewScreeningService(geminiService, extractor, recorder)
	log.Info("✅ Services initialized successfully")

	// Initialize Handlers
	screenHandler := handlers.NewScreenHandler(screeningService, cfg.Upload.MaxFileSize, cfg.Upload.MaxFiles)
	analysisHandler := handlers.NewAnalysisHandler(screeningService)
	log.Info("✅ Handlers initialized")

	// A batch makes one sequential model call per document.
	requestTimeout := cfg.Gemini.Timeout*time.Duration(cfg.Upload.MaxFiles) + 30*time.Second

	app := fiber.New(fiber.Config{
		AppName:      "AI Resume Screener API",
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: requestTimeout,
		BodyLimit:    cfg.BodyLimit(),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(recorder.Middleware())

	// Routes
	handlers.RegisterRoutes(app, screenHandler, analysisHandler)
	app.Get("/metrics", recorder.Handler())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Resume Screener API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/screen",
				"POST /api/v1/batch_screen",
				"POST /api/v1/recommend",
				"POST /api/v1/module/red_flags",
				"POST /api/v1/module/salary_estimation",
				"POST /api/v1/module/background_consistency",
				"POST /api/v1/module/candidate_fit",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Errorf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Infof("🚀 Server starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
