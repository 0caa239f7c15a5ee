// Package bootstrap builds the screening pipeline from configuration. The
// HTTP server, the CLI and the seeding script share it.
package bootstrap

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/retry"
	"alfredoptarigan/resume-screener/internal/services"
)

func RetryPolicy(cfg *config.Config) retry.Policy {
	return retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		Multiplier:  cfg.Retry.Multiplier,
		MaxJitter:   cfg.Retry.MaxJitter,
	}
}

func VisionConfig(cfg *config.Config) services.VisionConfig {
	return services.VisionConfig{
		Model:           cfg.Gemini.Model,
		Temperature:     cfg.Gemini.Temperature,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		BaseURL:         cfg.Gemini.BaseURL,
		Timeout:         cfg.Gemini.Timeout,
		Retry:           RetryPolicy(cfg),
	}
}

func ScorerConfig(cfg *config.Config) services.ScorerConfig {
	return services.ScorerConfig{
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.Timeout,
	}
}

// Roles opens the role profile store: Postgres when the database is enabled,
// memory otherwise. The built-in rubric is added when missing and roles from
// the configured roles file are upserted.
func Roles(ctx context.Context, cfg *config.Config, log *zap.Logger) (repositories.RoleRepository, error) {
	log = logger.OrNop(log)

	var fileRoles []models.RoleProfile
	if cfg.Screening.RolesFile != "" {
		loaded, err := repositories.LoadRoleProfiles(cfg.Screening.RolesFile)
		if err != nil {
			return nil, errors.Wrap(err, "load roles file")
		}
		fileRoles = loaded
		log.Info("📋 Role profiles loaded", zap.String("file", cfg.Screening.RolesFile), zap.Int("roles", len(loaded)))
	}

	var repo repositories.RoleRepository
	if cfg.Database.Enabled {
		db, err := config.InitDatabase(cfg, log)
		if err != nil {
			return nil, err
		}
		repo = repositories.NewRoleRepository(db)
	} else {
		mem, err := repositories.NewMemoryRoleRepository()
		if err != nil {
			return nil, err
		}
		repo = mem
	}

	if err := SeedRoles(ctx, repo, fileRoles); err != nil {
		return nil, err
	}
	return repo, nil
}

// SeedRoles adds the built-in rubric unless a role with its slug exists,
// then upserts roles.
func SeedRoles(ctx context.Context, repo repositories.RoleRepository, roles []models.RoleProfile) error {
	if _, err := repo.FindBySlug(ctx, services.DefaultRoleSlug); err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return errors.Wrap(err, "look up default role")
		}
		def := services.DefaultRoleProfile()
		if err := repo.Upsert(ctx, &def); err != nil {
			return errors.Wrap(err, "seed default role")
		}
	}

	for i := range roles {
		if err := repo.Upsert(ctx, &roles[i]); err != nil {
			return errors.Wrapf(err, "seed role %q", roles[i].Slug)
		}
	}
	return nil
}

// Screener wires the full pipeline with the production rasterizer and model
// clients.
func Screener(cfg *config.Config, roles repositories.RoleRepository, log *zap.Logger) services.Screener {
	clients := &services.ModelClientFactory{
		Vision:  VisionConfig(cfg),
		Scoring: ScorerConfig(cfg),
		Log:     log,
	}
	return services.NewScreener(
		services.NewRasterizer(cfg.Screening.RenderDPI, log),
		clients,
		roles,
		services.ScreenerOptions{
			QualityReview: cfg.Screening.QualityReview,
			DefaultRole:   cfg.Screening.DefaultRole,
		},
		log,
	)
}
