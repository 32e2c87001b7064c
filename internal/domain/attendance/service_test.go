package attendance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	"equb-app-go/pkg/logger"
)

type fakeAttendanceRepo struct {
	equbs     map[string]*equbdomain.Equb
	periods   map[string]*equbdomain.Period
	members   map[string]*memberdomain.Member
	records   map[string]*Attendance
	failEqubs map[string]bool
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{
		equbs:     make(map[string]*equbdomain.Equb),
		periods:   make(map[string]*equbdomain.Period),
		members:   make(map[string]*memberdomain.Member),
		records:   make(map[string]*Attendance),
		failEqubs: make(map[string]bool),
	}
}

func (r *fakeAttendanceRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	snapshot := make(map[string]Attendance, len(r.records))
	for id, record := range r.records {
		snapshot[id] = *record
	}
	completed := make(map[string]bool, len(r.periods))
	for id, period := range r.periods {
		completed[id] = period.IsCompleted
	}

	if err := fn(r); err != nil {
		r.records = make(map[string]*Attendance, len(snapshot))
		for id, record := range snapshot {
			copied := record
			r.records[id] = &copied
		}
		for id, period := range r.periods {
			period.IsCompleted = completed[id]
		}
		return err
	}
	return nil
}

func (r *fakeAttendanceRepo) GetMember(ctx context.Context, adminID, memberID string) (*memberdomain.Member, error) {
	member, ok := r.members[memberID]
	if !ok || r.equbs[member.EqubID].AdminID != adminID {
		return nil, memberdomain.ErrMemberNotFound
	}
	copied := *member
	return &copied, nil
}

func (r *fakeAttendanceRepo) GetPeriod(ctx context.Context, periodID string) (*equbdomain.Period, error) {
	period, ok := r.periods[periodID]
	if !ok {
		return nil, equbdomain.ErrPeriodNotFound
	}
	copied := *period
	return &copied, nil
}

func (r *fakeAttendanceRepo) FindByPair(ctx context.Context, memberID, periodID string) (*Attendance, error) {
	for _, record := range r.records {
		if record.MemberID == memberID && record.PeriodID == periodID {
			copied := *record
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, record *Attendance) error {
	if r.failEqubs[r.periods[record.PeriodID].EqubID] {
		return errors.New("insert failed")
	}
	if existing, _ := r.FindByPair(ctx, record.MemberID, record.PeriodID); existing != nil {
		return ErrDuplicateAttendance
	}
	copied := *record
	copied.RecordedAt = time.Now().UTC()
	r.records[record.ID] = &copied
	return nil
}

func (r *fakeAttendanceRepo) Update(ctx context.Context, record *Attendance) error {
	copied := *record
	r.records[record.ID] = &copied
	return nil
}

func (r *fakeAttendanceRepo) Get(ctx context.Context, adminID, id string) (*Attendance, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, ErrAttendanceNotFound
	}
	if _, err := r.GetMember(ctx, adminID, record.MemberID); err != nil {
		return nil, ErrAttendanceNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *fakeAttendanceRepo) List(ctx context.Context, adminID string, filter ListFilter) ([]Attendance, int64, error) {
	result := make([]Attendance, 0)
	for _, record := range r.records {
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		result = append(result, *record)
	}
	return result, int64(len(result)), nil
}

func (r *fakeAttendanceRepo) Delete(ctx context.Context, adminID, id string) (bool, error) {
	if _, err := r.Get(ctx, adminID, id); err != nil {
		return false, nil
	}
	delete(r.records, id)
	return true, nil
}

func (r *fakeAttendanceRepo) ListDuePeriods(ctx context.Context, before time.Time) ([]equbdomain.Period, error) {
	result := make([]equbdomain.Period, 0)
	for _, period := range r.periods {
		if !period.IsCompleted && period.EndDate.Before(before) {
			result = append(result, *period)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeAttendanceRepo) LockEqubByID(ctx context.Context, equbID string) (*equbdomain.Equb, error) {
	equb, ok := r.equbs[equbID]
	if !ok {
		return nil, equbdomain.ErrEqubNotFound
	}
	return equb, nil
}

func (r *fakeAttendanceRepo) ListActiveMembersWithout(ctx context.Context, equbID, periodID string) ([]memberdomain.Member, error) {
	result := make([]memberdomain.Member, 0)
	for _, member := range r.members {
		if member.EqubID != equbID || !member.IsActive {
			continue
		}
		if existing, _ := r.FindByPair(ctx, member.ID, periodID); existing != nil {
			continue
		}
		result = append(result, *member)
	}
	return result, nil
}

func (r *fakeAttendanceRepo) CompletePeriod(ctx context.Context, periodID string) (bool, error) {
	period, ok := r.periods[periodID]
	if !ok || period.IsCompleted {
		return false, nil
	}
	period.IsCompleted = true
	return true, nil
}

func (r *fakeAttendanceRepo) countPair(memberID, periodID string) int {
	count := 0
	for _, record := range r.records {
		if record.MemberID == memberID && record.PeriodID == periodID {
			count++
		}
	}
	return count
}

func seededAttendanceRepo() *fakeAttendanceRepo {
	repo := newFakeAttendanceRepo()
	repo.equbs["equb-1"] = &equbdomain.Equb{ID: "equb-1", AdminID: "admin-1"}
	repo.equbs["equb-2"] = &equbdomain.Equb{ID: "equb-2", AdminID: "admin-1"}
	repo.periods["p-1"] = &equbdomain.Period{ID: "p-1", EqubID: "equb-1", Sequence: 1, EndDate: date(2026, 1, 1)}
	repo.periods["p-2"] = &equbdomain.Period{ID: "p-2", EqubID: "equb-1", Sequence: 2, EndDate: date(2026, 1, 8)}
	repo.periods["p-3"] = &equbdomain.Period{ID: "p-3", EqubID: "equb-2", Sequence: 1, EndDate: date(2026, 1, 1)}
	repo.members["m-1"] = &memberdomain.Member{ID: "m-1", EqubID: "equb-1", IsActive: true}
	repo.members["m-2"] = &memberdomain.Member{ID: "m-2", EqubID: "equb-1", IsActive: true}
	repo.members["m-3"] = &memberdomain.Member{ID: "m-3", EqubID: "equb-1", IsActive: false}
	repo.members["m-4"] = &memberdomain.Member{ID: "m-4", EqubID: "equb-2", IsActive: true}
	return repo
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func discardLogger() logger.Logger {
	return logger.New(io.Discard, slog.LevelDebug, "json")
}

func TestRecordResubmissionUpdatesInPlace(t *testing.T) {
	repo := seededAttendanceRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.Record(ctx, RecordInput{AdminID: "admin-1", MemberID: "m-1", PeriodID: "p-1", Status: StatusPaid})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.Record(ctx, RecordInput{AdminID: "admin-1", MemberID: "m-1", PeriodID: "p-1", Status: StatusMissed})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected same record id, got %s and %s", first.ID, second.ID)
	}
	if got := repo.countPair("m-1", "p-1"); got != 1 {
		t.Fatalf("expected exactly one record, got %d", got)
	}
	if second.Status != StatusMissed {
		t.Fatalf("expected MISSED, got %s", second.Status)
	}
	if second.RecordedBy == nil || *second.RecordedBy != "admin-1" {
		t.Fatalf("expected recorder admin-1, got %v", second.RecordedBy)
	}
}

func TestRecordValidation(t *testing.T) {
	tests := []struct {
		name  string
		input RecordInput
		want  error
	}{
		{"invalid status", RecordInput{AdminID: "admin-1", MemberID: "m-1", PeriodID: "p-1", Status: "PENDING"}, ErrInvalidStatus},
		{"foreign admin", RecordInput{AdminID: "admin-2", MemberID: "m-1", PeriodID: "p-1", Status: StatusPaid}, memberdomain.ErrMemberNotFound},
		{"unknown period", RecordInput{AdminID: "admin-1", MemberID: "m-1", PeriodID: "missing", Status: StatusPaid}, equbdomain.ErrPeriodNotFound},
		{"period of another equb", RecordInput{AdminID: "admin-1", MemberID: "m-1", PeriodID: "p-3", Status: StatusPaid}, ErrPeriodMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := seededAttendanceRepo()
			_, err := NewService(repo).Record(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(repo.records) != 0 {
				t.Fatalf("expected no records, got %d", len(repo.records))
			}
		})
	}
}

func TestDeleteAttendanceNotFound(t *testing.T) {
	err := NewService(seededAttendanceRepo()).Delete(context.Background(), "admin-1", "missing")
	if !errors.Is(err, ErrAttendanceNotFound) {
		t.Fatalf("expected ErrAttendanceNotFound, got %v", err)
	}
}

func TestSweepMarksMissingActiveMembers(t *testing.T) {
	repo := seededAttendanceRepo()
	repo.records["a-1"] = &Attendance{ID: "a-1", MemberID: "m-1", PeriodID: "p-1", Status: StatusPaid}

	sweeper := NewSweeper(repo, discardLogger(), nil)
	result, err := sweeper.Run(context.Background(), time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Periods != 2 || result.Marked != 2 || result.Failed != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if repo.records["a-1"].Status != StatusPaid {
		t.Fatalf("expected PAID record untouched")
	}
	missed, _ := repo.FindByPair(context.Background(), "m-2", "p-1")
	if missed == nil || missed.Status != StatusMissed || missed.Note == nil || *missed.Note != SweepNote {
		t.Fatalf("expected system MISSED record for m-2, got %+v", missed)
	}
	if repo.countPair("m-3", "p-1") != 0 {
		t.Fatalf("expected inactive member to be skipped")
	}
	if repo.periods["p-2"].IsCompleted {
		t.Fatalf("expected future period to stay open")
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	repo := seededAttendanceRepo()
	sweeper := NewSweeper(repo, discardLogger(), nil)
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	if _, err := sweeper.Run(context.Background(), now); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	before := len(repo.records)

	result, err := sweeper.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Periods != 0 || result.Marked != 0 {
		t.Fatalf("expected empty second sweep, got %+v", result)
	}
	if len(repo.records) != before {
		t.Fatalf("expected %d records, got %d", before, len(repo.records))
	}
}

func TestSweepPeriodEndingTodayIsNotDue(t *testing.T) {
	repo := seededAttendanceRepo()
	result, err := NewSweeper(repo, discardLogger(), nil).Run(context.Background(), time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Periods != 0 {
		t.Fatalf("expected no periods, got %+v", result)
	}
}

type captureRecorder struct {
	results []SweepResult
}

func (c *captureRecorder) ObserveSweep(result SweepResult, _ time.Duration) {
	c.results = append(c.results, result)
}

func TestSweepContinuesAfterFailure(t *testing.T) {
	repo := seededAttendanceRepo()
	repo.failEqubs["equb-1"] = true
	recorder := &captureRecorder{}

	result, err := NewSweeper(repo, discardLogger(), recorder).Run(context.Background(), date(2026, 1, 5))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Failed != 1 || result.Periods != 1 || result.Marked != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if repo.periods["p-1"].IsCompleted {
		t.Fatalf("expected failed period to remain open")
	}
	if !repo.periods["p-3"].IsCompleted {
		t.Fatalf("expected other equb period completed")
	}
	if len(recorder.results) != 1 {
		t.Fatalf("expected one observation, got %d", len(recorder.results))
	}
}
