// Package dbtest opens throwaway sqlite databases and seeds fixtures for
// repository tests.
package dbtest

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"equb-app-go/internal/db"
	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	"equb-app-go/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const AdminID = "00000000-0000-0000-0000-0000000000a1"

func Open(t testing.TB) *gorm.DB {
	t.Helper()
	gormDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "equb.db"), logger.New(io.Discard, slog.LevelError, "json"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gormDB
}

// SeedEqub inserts an active weekly equb starting on 2026-01-05 with count
// periods.
func SeedEqub(t testing.TB, gormDB *gorm.DB, adminID string, base int64, count int) (*equbdomain.Equb, []equbdomain.Period) {
	t.Helper()
	equb := equbdomain.Equb{
		ID:           uuid.NewString(),
		AdminID:      adminID,
		Name:         "Equb " + uuid.NewString()[:8],
		Cadence:      equbdomain.CadenceWeekly,
		BaseAmount:   decimal.NewFromInt(base),
		StartDate:    time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Status:       equbdomain.StatusActive,
		CurrentRound: 1,
	}
	if err := gormDB.Create(&equb).Error; err != nil {
		t.Fatalf("seed equb: %v", err)
	}

	periods := equbdomain.GeneratePeriods(equb.ID, equb.Cadence, equb.StartDate, count)
	if len(periods) > 0 {
		if err := gormDB.Omit("Equb").Create(&periods).Error; err != nil {
			t.Fatalf("seed periods: %v", err)
		}
	}
	return &equb, periods
}

func SeedPerson(t testing.TB, gormDB *gorm.DB, name string) *memberdomain.Person {
	t.Helper()
	person := memberdomain.Person{
		ID:    uuid.NewString(),
		Name:  name,
		Phone: "09" + uuid.NewString()[:8],
	}
	if err := gormDB.Create(&person).Error; err != nil {
		t.Fatalf("seed person: %v", err)
	}
	return &person
}

func SeedMember(t testing.TB, gormDB *gorm.DB, equbID, name string, share memberdomain.Share) *memberdomain.Member {
	t.Helper()
	person := SeedPerson(t, gormDB, name)
	member := memberdomain.Member{
		ID:       uuid.NewString(),
		EqubID:   equbID,
		PersonID: person.ID,
		Share:    share,
		IsActive: true,
	}
	if err := gormDB.Omit("Equb", "Person").Create(&member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	member.Person = *person
	return &member
}
