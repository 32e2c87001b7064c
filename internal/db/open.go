package db

import (
	"fmt"

	"equb-app-go/internal/config"
	"equb-app-go/migrations"
	"equb-app-go/pkg/logger"
	"gorm.io/gorm"
)

// Open connects to the configured driver and brings the schema up to date.
func Open(cfg config.DBConfig, log logger.Logger) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath, log)
	case "postgres", "":
		gormDB, err := NewPostgres(cfg, log)
		if err != nil {
			return nil, err
		}
		if err := Migrate(gormDB, migrations.Files, log); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return gormDB, nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
	}
}
