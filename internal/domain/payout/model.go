package payout

import (
	"time"

	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodRandom Method = "random"
	MethodManual Method = "manual"
)

type Payout struct {
	ID         string          `gorm:"type:uuid;primaryKey"`
	EqubID     string          `gorm:"type:uuid;not null;index"`
	MemberID   string          `gorm:"type:uuid;not null;index"`
	PeriodID   string          `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PayoutDate time.Time       `gorm:"not null;index"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`

	Equb   equbdomain.Equb     `gorm:"foreignKey:EqubID;references:ID;constraint:OnDelete:CASCADE"`
	Member memberdomain.Member `gorm:"foreignKey:MemberID;references:ID;constraint:OnDelete:CASCADE"`
	Period equbdomain.Period   `gorm:"foreignKey:PeriodID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Payout) TableName() string {
	return "payouts"
}

type ListFilter struct {
	MemberID  string
	EqubID    string
	PeriodID  string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Search    string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

type RandomInput struct {
	AdminID  string
	EqubID   string
	PeriodID string
}

type ManualInput struct {
	AdminID  string
	EqubID   string
	MemberID string
	PeriodID string
}

// PoolAmount is the payout for one round: the base contribution weighted by
// every member's share, whether or not they have paid this round.
func PoolAmount(base decimal.Decimal, members []memberdomain.Member) decimal.Decimal {
	total := decimal.Zero
	for _, member := range members {
		total = total.Add(member.Share.Amount(base))
	}
	return total
}
