package member

import (
	"time"

	equbdomain "equb-app-go/internal/domain/equb"
	"github.com/shopspring/decimal"
)

type Share string

const (
	ShareFull    Share = "FULL"
	ShareHalf    Share = "HALF"
	ShareQuarter Share = "QUARTER"
)

func (s Share) Valid() bool {
	switch s {
	case ShareFull, ShareHalf, ShareQuarter:
		return true
	default:
		return false
	}
}

var (
	multiplierHalf    = decimal.RequireFromString("0.5")
	multiplierQuarter = decimal.RequireFromString("0.25")
)

// Multiplier is the fraction of the base contribution the share owes.
// Unknown shares count as FULL.
func (s Share) Multiplier() decimal.Decimal {
	switch s {
	case ShareHalf:
		return multiplierHalf
	case ShareQuarter:
		return multiplierQuarter
	default:
		return decimal.NewFromInt(1)
	}
}

// Amount is base weighted by the share.
func (s Share) Amount(base decimal.Decimal) decimal.Decimal {
	return base.Mul(s.Multiplier())
}

// Person is the identity a member links to. It is owned by the identity store;
// only the fields the ledger searches on live here.
type Person struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Phone     string    `gorm:"size:32;not null;uniqueIndex"`
	Address   *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Person) TableName() string {
	return "people"
}

type Member struct {
	ID                string    `gorm:"type:uuid;primaryKey"`
	EqubID            string    `gorm:"type:uuid;not null;uniqueIndex:idx_members_equb_person"`
	PersonID          string    `gorm:"type:uuid;not null;uniqueIndex:idx_members_equb_person"`
	Share             Share     `gorm:"type:varchar(16);not null"`
	IsActive          bool      `gorm:"not null"`
	HasReceivedPayout bool      `gorm:"not null"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`

	Equb   equbdomain.Equb `gorm:"foreignKey:EqubID;references:ID;constraint:OnDelete:CASCADE"`
	Person Person          `gorm:"foreignKey:PersonID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Member) TableName() string {
	return "members"
}

// Eligible reports whether the member can still win in the current cycle.
func (m Member) Eligible() bool {
	return m.IsActive && !m.HasReceivedPayout
}

type ListFilter struct {
	EqubID            string
	IsActive          *bool
	HasReceivedPayout *bool
	Share             Share
	Search            string
	Limit             int
	Offset            int
}

type CreateMemberInput struct {
	AdminID  string
	EqubID   string
	PersonID string
	Share    Share
}

type UpdateMemberInput struct {
	AdminID  string
	MemberID string
	Share    *Share
	IsActive *bool
}

type CreatePersonInput struct {
	Name    string
	Phone   string
	Address *string
}

type ResetResult struct {
	EqubID  string
	Cleared int64
}
