package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalExpected  decimal.Decimal
	TotalCollected decimal.Decimal
	TotalEqubs     int
	ActiveEqubs    int
	TotalMembers   int
}

type EqubStats struct {
	EqubID               string
	TotalContributions   decimal.Decimal
	TotalPayouts         decimal.Decimal
	CompletionPercentage int
	AverageAttendance    int
	TotalMembers         int
	ActivePeriods        int
}

type MemberStats struct {
	MemberID           string
	TotalContributions decimal.Decimal
	TotalReceived      decimal.Decimal
	PaidPayments       int64
	MissedPayments     int64
	AttendanceRate     int
	TotalEqubs         int64
	HasReceivedPayout  bool
}

type TransactionType string

const (
	TransactionCollection TransactionType = "COLLECTION"
	TransactionPayout     TransactionType = "PAYOUT"
)

type Transaction struct {
	ID            string
	Type          TransactionType
	Amount        decimal.Decimal
	Date          time.Time
	EqubName      string
	MemberName    string
	PaymentMethod string
	Status        string
}

// AttendanceCount is one (member, status) bucket of attendance rows.
type AttendanceCount struct {
	MemberID string
	Status   string
	Count    int64
}

// RecentLimit caps each side of the transactions feed.
const RecentLimit = 50
