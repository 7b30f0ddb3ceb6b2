package store

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tankops/bath-planner/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dia gorm.Dialector

	switch cfg.Database.Type {
	case "pgsql", "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s port=%s",
			cfg.Database.Hostname,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Port,
		)
		if cfg.Database.Name != "" {
			dsn = fmt.Sprintf("%s dbname=%s", dsn, cfg.Database.Name)
		}
		dia = postgres.Open(dsn)
	case "sqlite", "sqlite3":
		// cascading deletes need foreign keys, which sqlite disables per connection by default
		dia = sqlite.Open(fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", cfg.Database.Path))
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Database.Type)
	}

	newLogger := logger.New(
		logrus.New(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	newDB, err := gorm.Open(dia, &gorm.Config{Logger: newLogger, TranslateError: true})
	if err != nil {
		zap.S().Named("gorm").Errorf("failed to connect database: %v", err)
		return nil, err
	}

	sqlDB, err := newDB.DB()
	if err != nil {
		zap.S().Named("gorm").Errorf("failed to configure connections: %v", err)
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if newDB.Dialector.Name() != "postgres" {
		return newDB, nil
	}

	var version string
	if result := newDB.Raw("SELECT version()").Scan(&version); result.Error != nil {
		zap.S().Named("gorm").Infoln(result.Error.Error())
		return nil, result.Error
	}
	zap.S().Named("gorm").Infof("PostgreSQL information: '%s'", version)

	return newDB, nil
}
