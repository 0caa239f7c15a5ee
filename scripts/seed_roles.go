package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/bootstrap"
	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/repositories"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	rolesFile := flag.String("roles", "roles.example.yaml", "YAML file with the role profiles to upsert")
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

	log.Info("🚀 Starting role profile seeding...", zap.String("file", *rolesFile))

	if !cfg.Database.Enabled {
		log.Fatal("❌ Database is disabled; set DATABASE_ENABLED=true to seed role profiles")
	}

	roles, err := repositories.LoadRoleProfiles(*rolesFile)
	if err != nil {
		log.Fatal("❌ Failed to load role profiles", zap.Error(err))
	}

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize database", zap.Error(err))
	}
	repo := repositories.NewRoleRepository(db)

	if err := bootstrap.SeedRoles(context.Background(), repo, roles); err != nil {
		log.Fatal("❌ Failed to seed role profiles", zap.Error(err))
	}

	for _, r := range roles {
		log.Info("✅ Role upserted", zap.String("slug", r.Slug), zap.String("title", r.Title), zap.Int("threshold", r.Threshold))
	}
	log.Info("🎉 Seeding completed", zap.Int("roles", len(roles)))
}
