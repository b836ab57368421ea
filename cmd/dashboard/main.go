package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/dashboard"
	"alfredoptarigan/resume-screener/internal/metrics"
	"alfredoptarigan/resume-screener/internal/services"
)

func main() {
	cfg := config.Load()
	config.InitLogger(cfg.Log)
	log.WithField("api_url", cfg.Dashboard.APIURL).Info("✅ Config loaded successfully")

	recorder := metrics.NewRecorder("dashboard")

	client := dashboard.NewAPIClient(cfg.Dashboard.APIURL, cfg.Dashboard.APITimeout)
	store := dashboard.NewRunStore(cfg.Dashboard.RunTTL)
	handler := dashboard.NewHandler(client, store, services.NewReportExporter(), cfg.Upload.MaxFileSize, cfg.Upload.MaxFiles)

	app := fiber.New(fiber.Config{
		AppName:      "AI Resume Screener Dashboard",
		Views:        dashboard.NewViewEngine(),
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: cfg.Dashboard.APITimeout + 30*time.Second,
		BodyLimit:    cfg.BodyLimit(),
		ErrorHandler: errorPage,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(recorder.Middleware())

	handler.Register(app)
	app.Get("/metrics", recorder.Handler())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down dashboard...")
		if err := app.Shutdown(); err != nil {
			log.Errorf("❌ Dashboard forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.DashboardPort)
	log.Infof("🚀 Dashboard starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start dashboard: %v", err)
	}
}

func errorPage(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.WithError(err).WithField("path", c.Path()).Error("❌ Dashboard request failed")
	return c.Status(code).Render("error", fiber.Map{
		"Title":   "Something went wrong",
		"Message": err.Error(),
	}, "layout")
}
