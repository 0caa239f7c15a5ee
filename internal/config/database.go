package config

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/resume-screener/internal/models"
)

// InitDatabase connects to Postgres and migrates the role profile table.
// Only rubric configuration lives in the database.
func InitDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	log.Info("✅ Database connected", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.DBName))

	if err := db.AutoMigrate(&models.RoleProfile{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	log.Info("✅ Database migration completed")

	return db, nil
}
