package attendance

import (
	"time"

	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
)

type Status string

const (
	StatusPaid   Status = "PAID"
	StatusMissed Status = "MISSED"
)

func (s Status) Valid() bool {
	return s == StatusPaid || s == StatusMissed
}

// SweepNote is stored on rows inserted by the missed-attendance sweep.
const SweepNote = "Auto-marked by system"

type Attendance struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	MemberID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_member_period"`
	PeriodID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_member_period;index"`
	Status     Status    `gorm:"type:varchar(16);not null;index"`
	RecordedBy *string   `gorm:"type:uuid"`
	Note       *string   `gorm:"type:text"`
	RecordedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	Member memberdomain.Member `gorm:"foreignKey:MemberID;references:ID;constraint:OnDelete:CASCADE"`
	Period equbdomain.Period   `gorm:"foreignKey:PeriodID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Attendance) TableName() string {
	return "attendances"
}

type ListFilter struct {
	MemberID string
	EqubID   string
	PeriodID string
	Status   Status
	Search   string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

type RecordInput struct {
	AdminID  string
	MemberID string
	PeriodID string
	Status   Status
	Note     *string
}

// SweepResult summarises one missed-attendance sweep.
type SweepResult struct {
	Periods int
	Marked  int
	Failed  int
}
