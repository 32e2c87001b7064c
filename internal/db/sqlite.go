package db

import (
	"fmt"
	"os"
	"path/filepath"

	attendancedomain "equb-app-go/internal/domain/attendance"
	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	payoutdomain "equb-app-go/internal/domain/payout"
	"equb-app-go/pkg/logger"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// OpenSQLite opens a single-file database and brings its schema up to date
// from the gorm models. SQLite allows one writer, so the pool is capped at one
// connection and transactions queue behind each other.
func OpenSQLite(path string, log logger.Logger) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	gormDB, err := gorm.Open(sqlite.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(gormDB); err != nil {
		return nil, err
	}

	log.Info("db: connected", "driver", "sqlite", "path", path)
	return gormDB, nil
}

// AutoMigrate creates or updates every table from the domain models in
// dependency order.
func AutoMigrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&equbdomain.Equb{},
		&equbdomain.Period{},
		&memberdomain.Person{},
		&memberdomain.Member{},
		&attendancedomain.Attendance{},
		&payoutdomain.Payout{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
