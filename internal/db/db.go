package db

import (
	"fmt"  // DSN formatting
	"time" // Slow query threshold

	"github.com/sirupsen/logrus" // Logging
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // PostgreSQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger interface

	"ledger_service/internal/config" // Configuration
)

// DSN builds the driver-specific data source name
func DSN(cfg *config.Config) string {
	if cfg.DBDriver == "postgres" {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	}
	return cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
}

// Dialector picks the GORM dialector for the configured driver
func Dialector(cfg *config.Config) gorm.Dialector {
	if cfg.DBDriver == "postgres" {
		return postgres.Open(DSN(cfg))
	}
	return mysql.Open(DSN(cfg))
}

// GormConfig is shared by the server, the migration tool and the tests.
// TranslateError turns driver constraint errors into gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated; writes outside ledger.Processor are single statements
// and need no implicit transaction.
func GormConfig(log *logrus.Logger) *gorm.Config {
	cfg := &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
	}
	if log != nil {
		cfg.Logger = logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel(log.GetLevel()),
			IgnoreRecordNotFoundError: true,
		})
	}
	return cfg
}

func gormLevel(level logrus.Level) logger.LogLevel {
	switch {
	case level >= logrus.DebugLevel:
		return logger.Info
	case level >= logrus.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}

// Open connects to the configured database
func Open(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(Dialector(cfg), GormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
	}
	return db, nil
}
