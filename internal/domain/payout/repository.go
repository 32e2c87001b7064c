package payout

import (
	"context"

	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	LockEqub(ctx context.Context, adminID, equbID string) (*equbdomain.Equb, error)
	UpdateEqubProgress(ctx context.Context, equb *equbdomain.Equb) error
	GetPeriod(ctx context.Context, periodID string) (*equbdomain.Period, error)

	GetMember(ctx context.Context, adminID, memberID string) (*memberdomain.Member, error)
	ListMembers(ctx context.Context, equbID string) ([]memberdomain.Member, error)
	ListEligible(ctx context.Context, equbID string) ([]memberdomain.Member, error)
	// MarkPaid flips has_received_payout only while it is still false.
	MarkPaid(ctx context.Context, memberID string) (bool, error)
	CountProgress(ctx context.Context, equbID string) (active int64, paid int64, err error)

	Create(ctx context.Context, payout *Payout) error
	Get(ctx context.Context, adminID, id string) (*Payout, error)
	List(ctx context.Context, adminID string, filter ListFilter) ([]Payout, int64, error)
}

// Recorder observes settlement outcomes. The metrics package implements it.
type Recorder interface {
	PayoutSettled(method Method, amount decimal.Decimal, completed bool)
	PayoutRejected(method Method, err error)
}

type noopRecorder struct{}

func (noopRecorder) PayoutSettled(Method, decimal.Decimal, bool) {}

func (noopRecorder) PayoutRejected(Method, error) {}
