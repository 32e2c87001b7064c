package reporting

import (
	"context"
	"sort"
	"time"

	attendancedomain "equb-app-go/internal/domain/attendance"
	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	"github.com/shopspring/decimal"
)

type Service struct {
	repo     Repository
	cache    DashboardCache
	cacheTTL time.Duration
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cache: noopDashboardCache{}}
}

// WithCache caches dashboard stats per admin for ttl. A zero ttl disables it.
func (s *Service) WithCache(cache DashboardCache, ttl time.Duration) *Service {
	if cache == nil || ttl <= 0 {
		s.cache = noopDashboardCache{}
		s.cacheTTL = 0
		return s
	}
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

// Invalidate drops the cached dashboard of the admin after a ledger write.
func (s *Service) Invalidate(adminID string) {
	s.cache.DeleteDashboard(adminID)
}

// Dashboard reports the expected and collected amounts of the current round
// across the admin's active equbs.
func (s *Service) Dashboard(ctx context.Context, adminID string) (*DashboardStats, error) {
	if cached, ok := s.cache.GetDashboard(adminID); ok {
		return cached, nil
	}

	equbs, err := s.repo.ListEqubs(ctx, adminID)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, adminID)
	if err != nil {
		return nil, err
	}
	paid, err := s.repo.ListCurrentRoundPaid(ctx, adminID)
	if err != nil {
		return nil, err
	}

	stats := DashboardStats{
		TotalExpected:  decimal.Zero,
		TotalCollected: decimal.Zero,
		TotalEqubs:     len(equbs),
		TotalMembers:   len(members),
	}

	active := make(map[string]equbdomain.Equb, len(equbs))
	for _, equb := range equbs {
		if equb.Status != equbdomain.StatusActive {
			continue
		}
		active[equb.ID] = equb
		stats.ActiveEqubs++
	}

	byID := make(map[string]memberdomain.Member, len(members))
	for _, member := range members {
		byID[member.ID] = member
		if equb, ok := active[member.EqubID]; ok {
			stats.TotalExpected = stats.TotalExpected.Add(equb.BaseAmount)
		}
	}

	for _, record := range paid {
		member, ok := byID[record.MemberID]
		if !ok {
			continue
		}
		equb, ok := active[member.EqubID]
		if !ok {
			continue
		}
		stats.TotalCollected = stats.TotalCollected.Add(member.Share.Amount(equb.BaseAmount))
	}

	s.cache.SetDashboard(adminID, &stats, s.cacheTTL)
	return &stats, nil
}

func (s *Service) EqubStats(ctx context.Context, adminID, equbID string) (*EqubStats, error) {
	equb, err := s.repo.GetEqub(ctx, adminID, equbID)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListEqubMembers(ctx, equb.ID)
	if err != nil {
		return nil, err
	}
	periodCount, err := s.repo.CountPeriods(ctx, equb.ID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountAttendance(ctx, equb.ID)
	if err != nil {
		return nil, err
	}
	payouts, err := s.repo.SumPayouts(ctx, equb.ID)
	if err != nil {
		return nil, err
	}

	shares := make(map[string]memberdomain.Share, len(members))
	for _, member := range members {
		shares[member.ID] = member.Share
	}

	contributions := decimal.Zero
	var paid, missed int64
	for _, bucket := range counts {
		switch attendancedomain.Status(bucket.Status) {
		case attendancedomain.StatusPaid:
			paid += bucket.Count
			amount := shares[bucket.MemberID].Amount(equb.BaseAmount)
			contributions = contributions.Add(amount.Mul(decimal.NewFromInt(bucket.Count)))
		case attendancedomain.StatusMissed:
			missed += bucket.Count
		}
	}

	totalPeriods := int(periodCount)
	if totalPeriods == 0 {
		totalPeriods = len(members)
	}
	settled := SettledRounds(equb.Status, equb.CurrentRound, totalPeriods)

	return &EqubStats{
		EqubID:               equb.ID,
		TotalContributions:   contributions,
		TotalPayouts:         payouts,
		CompletionPercentage: Percent(int64(settled), int64(totalPeriods), 0),
		AverageAttendance:    Percent(paid, paid+missed, 100),
		TotalMembers:         len(members),
		ActivePeriods:        totalPeriods,
	}, nil
}

func (s *Service) MemberStats(ctx context.Context, adminID, memberID string) (*MemberStats, error) {
	member, err := s.repo.GetMember(ctx, adminID, memberID)
	if err != nil {
		return nil, err
	}
	paid, missed, err := s.repo.CountMemberAttendance(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	received, err := s.repo.SumMemberPayouts(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.repo.CountMemberships(ctx, member.PersonID)
	if err != nil {
		return nil, err
	}

	perRound := member.Share.Amount(member.Equb.BaseAmount)
	return &MemberStats{
		MemberID:           member.ID,
		TotalContributions: perRound.Mul(decimal.NewFromInt(paid)),
		TotalReceived:      received,
		PaidPayments:       paid,
		MissedPayments:     missed,
		AttendanceRate:     Percent(paid, paid+missed, 100),
		TotalEqubs:         memberships,
		HasReceivedPayout:  member.HasReceivedPayout,
	}, nil
}

// Transactions merges the most recent collections and payouts, newest first.
func (s *Service) Transactions(ctx context.Context, adminID string) ([]Transaction, error) {
	collections, err := s.repo.RecentCollections(ctx, adminID, RecentLimit)
	if err != nil {
		return nil, err
	}
	payouts, err := s.repo.RecentPayouts(ctx, adminID, RecentLimit)
	if err != nil {
		return nil, err
	}

	result := make([]Transaction, 0, len(collections)+len(payouts))
	for _, record := range collections {
		result = append(result, Transaction{
			ID:            record.ID,
			Type:          TransactionCollection,
			Amount:        record.Member.Share.Amount(record.Member.Equb.BaseAmount),
			Date:          record.RecordedAt,
			EqubName:      record.Member.Equb.Name,
			MemberName:    record.Member.Person.Name,
			PaymentMethod: "CASH",
			Status:        "COMPLETED",
		})
	}
	for _, payout := range payouts {
		result = append(result, Transaction{
			ID:            payout.ID,
			Type:          TransactionPayout,
			Amount:        payout.Amount,
			Date:          payout.PayoutDate,
			EqubName:      payout.Equb.Name,
			MemberName:    payout.Member.Person.Name,
			PaymentMethod: "TRANSFER",
			Status:        "COMPLETED",
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

// SettledRounds counts rounds already paid out. A completed equb has settled
// every period.
func SettledRounds(status equbdomain.Status, currentRound, totalPeriods int) int {
	if status == equbdomain.StatusCompleted {
		return totalPeriods
	}
	if currentRound <= 1 {
		return 0
	}
	return currentRound - 1
}

// Percent returns part/whole as a rounded percentage, or empty when whole is zero.
func Percent(part, whole int64, empty int) int {
	if whole <= 0 {
		return empty
	}
	value := decimal.NewFromInt(part).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(whole))
	return int(value.Round(0).IntPart())
}
