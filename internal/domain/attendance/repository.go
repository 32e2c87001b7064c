package attendance

import (
	"context"
	"time"

	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	GetMember(ctx context.Context, adminID, memberID string) (*memberdomain.Member, error)
	GetPeriod(ctx context.Context, periodID string) (*equbdomain.Period, error)

	FindByPair(ctx context.Context, memberID, periodID string) (*Attendance, error)
	Create(ctx context.Context, record *Attendance) error
	Update(ctx context.Context, record *Attendance) error
	Get(ctx context.Context, adminID, id string) (*Attendance, error)
	List(ctx context.Context, adminID string, filter ListFilter) ([]Attendance, int64, error)
	Delete(ctx context.Context, adminID, id string) (bool, error)

	// Sweep support. These are not admin scoped.
	ListDuePeriods(ctx context.Context, before time.Time) ([]equbdomain.Period, error)
	LockEqubByID(ctx context.Context, equbID string) (*equbdomain.Equb, error)
	ListActiveMembersWithout(ctx context.Context, equbID, periodID string) ([]memberdomain.Member, error)
	CompletePeriod(ctx context.Context, periodID string) (bool, error)
}

// SweepRecorder observes sweep outcomes. The metrics package implements it.
type SweepRecorder interface {
	ObserveSweep(result SweepResult, duration time.Duration)
}

type noopSweepRecorder struct{}

func (noopSweepRecorder) ObserveSweep(SweepResult, time.Duration) {}
