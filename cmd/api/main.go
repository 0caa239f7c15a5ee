package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/bootstrap"
	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/credentials"
	"alfredoptarigan/resume-screener/internal/handlers"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/services"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Role profiles
	roles, err := bootstrap.Roles(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize role profiles", zap.Error(err))
	}
	log.Info("✅ Role profiles ready", zap.Bool("database", cfg.Database.Enabled))

	// Screening pipeline
	screener := bootstrap.Screener(cfg, roles, log)
	log.Info("✅ Screening pipeline initialized",
		zap.String("vision_model", cfg.Gemini.Model),
		zap.String("scoring_model", cfg.OpenAI.Model),
		zap.Bool("quality_review", cfg.Screening.QualityReview),
	)

	// Worker pool
	worker := services.NewWorker(cfg.Worker.Concurrency, cfg.Worker.QueueSize, log)
	worker.Start(ctx)

	// Handlers
	resolver := credentials.NewResolver(cfg.Gemini.APIKey, cfg.OpenAI.APIKey, nil)
	sessions := handlers.NewSessionHandler(
		session.New(session.Config{
			Expiration:     cfg.Server.SessionTimeout,
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
		}),
		resolver,
		log,
	)
	for _, p := range credentials.Providers {
		if !resolver.Configured(p) {
			log.Warn("⚠️  API key not configured; users must provide it per session", zap.String("provider", string(p)))
		}
	}

	app := handlers.NewApp(handlers.AppConfig{
		AccessToken:  cfg.Server.AccessToken,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    int(cfg.Screening.MaxFileSize) + 1<<20,
		AccessLog:    true,
	}, handlers.Handlers{
		Screen: handlers.NewScreenHandler(
			screener,
			worker,
			services.NewUploadReader(cfg.Screening.MaxFileSize),
			sessions,
			cfg.Server.WriteTimeout,
			log,
		),
		Roles:   handlers.NewRoleHandler(roles, log),
		Session: sessions,
	})
	log.Info("✅ Handlers initialized")

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("❌ Failed to start server", zap.Error(err))
	}

	worker.Stop()
	log.Info("✅ Server stopped")
}
