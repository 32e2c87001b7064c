package reporting

import (
	"context"

	attendancedomain "equb-app-go/internal/domain/attendance"
	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	payoutdomain "equb-app-go/internal/domain/payout"
	"github.com/shopspring/decimal"
)

// Repository is read only. Every method is scoped to what the admin owns.
type Repository interface {
	ListEqubs(ctx context.Context, adminID string) ([]equbdomain.Equb, error)
	ListMembers(ctx context.Context, adminID string) ([]memberdomain.Member, error)
	// ListCurrentRoundPaid returns PAID rows in the period matching each equb's current round.
	ListCurrentRoundPaid(ctx context.Context, adminID string) ([]attendancedomain.Attendance, error)

	GetEqub(ctx context.Context, adminID, equbID string) (*equbdomain.Equb, error)
	ListEqubMembers(ctx context.Context, equbID string) ([]memberdomain.Member, error)
	CountPeriods(ctx context.Context, equbID string) (int64, error)
	CountAttendance(ctx context.Context, equbID string) ([]AttendanceCount, error)
	SumPayouts(ctx context.Context, equbID string) (decimal.Decimal, error)

	GetMember(ctx context.Context, adminID, memberID string) (*memberdomain.Member, error)
	CountMemberAttendance(ctx context.Context, memberID string) (paid int64, missed int64, err error)
	SumMemberPayouts(ctx context.Context, memberID string) (decimal.Decimal, error)
	CountMemberships(ctx context.Context, personID string) (int64, error)

	RecentCollections(ctx context.Context, adminID string, limit int) ([]attendancedomain.Attendance, error)
	RecentPayouts(ctx context.Context, adminID string, limit int) ([]payoutdomain.Payout, error)
}
