package database

import (
	"fmt"
	"time"

	"github.com/sangkips/duka-pos/internal/config"
	"github.com/sangkips/duka-pos/internal/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the database selected by cfg.Driver. SQL statements are
// logged through the application logger.
func Open(cfg *config.DatabaseConfig, log *logging.Logger, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger: logger.New(log.Component("gorm"), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	switch cfg.Driver {
	case DriverPostgres:
		db, err := NewPostgresDB(cfg, gormCfg)
		if err != nil {
			return nil, err
		}
		log.Info("Successfully connected to PostgreSQL database")
		return db, nil
	case DriverSQLite, "":
		db, err := NewSQLiteDB(cfg, gormCfg)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.Path).Info("Successfully opened SQLite database")
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// BindDriverName maps the configured driver to the name sqlx uses to pick a
// bind variable style ("$1" for postgres, "?" for sqlite).
func BindDriverName(driver string) string {
	if driver == DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}
