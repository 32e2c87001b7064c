package equb

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cadence string

const (
	CadenceDaily   Cadence = "DAILY"
	CadenceWeekly  Cadence = "WEEKLY"
	CadenceMonthly Cadence = "MONTHLY"
)

func (c Cadence) Valid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusCompleted
}

type Equb struct {
	ID           string          `gorm:"type:uuid;primaryKey"`
	AdminID      string          `gorm:"type:uuid;not null;index"`
	Name         string          `gorm:"not null"`
	Cadence      Cadence         `gorm:"type:varchar(16);not null"`
	BaseAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	StartDate    time.Time       `gorm:"type:date;not null"`
	Status       Status          `gorm:"type:varchar(16);not null;index"`
	CurrentRound int             `gorm:"not null"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (Equb) TableName() string {
	return "equbs"
}

type Period struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	EqubID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_periods_equb_sequence"`
	Sequence    int       `gorm:"not null;uniqueIndex:idx_periods_equb_sequence"`
	StartDate   time.Time `gorm:"type:date;not null"`
	EndDate     time.Time `gorm:"type:date;not null;index"`
	IsCompleted bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	Equb Equb `gorm:"foreignKey:EqubID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Period) TableName() string {
	return "periods"
}

type Details struct {
	Equb
	Periods     []Period
	MemberCount int64
}

// CurrentPeriod returns the period whose sequence matches the current round.
func (d Details) CurrentPeriod() (Period, bool) {
	for _, period := range d.Periods {
		if period.Sequence == d.CurrentRound {
			return period, true
		}
	}
	return Period{}, false
}

type ListFilter struct {
	Search    string
	Cadence   Cadence
	Status    Status
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Limit     int
	Offset    int
}

type CreateEqubInput struct {
	AdminID             string
	Name                string
	Cadence             Cadence
	StartDate           time.Time
	BaseAmount          decimal.Decimal
	ExpectedMemberCount int
}

type UpdateEqubInput struct {
	AdminID    string
	EqubID     string
	Name       *string
	BaseAmount *decimal.Decimal
}
