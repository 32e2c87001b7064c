package member

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	equbdomain "equb-app-go/internal/domain/equb"
	"equb-app-go/pkg/logger"
	"github.com/shopspring/decimal"
)

type fakeMemberRepo struct {
	equbs   map[string]*equbdomain.Equb
	people  map[string]*Person
	members map[string]*Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		equbs:   make(map[string]*equbdomain.Equb),
		people:  make(map[string]*Person),
		members: make(map[string]*Member),
	}
}

func (r *fakeMemberRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeMemberRepo) GetEqub(ctx context.Context, adminID, equbID string) (*equbdomain.Equb, error) {
	equb, ok := r.equbs[equbID]
	if !ok || equb.AdminID != adminID {
		return nil, equbdomain.ErrEqubNotFound
	}
	return equb, nil
}

func (r *fakeMemberRepo) LockEqub(ctx context.Context, adminID, equbID string) (*equbdomain.Equb, error) {
	return r.GetEqub(ctx, adminID, equbID)
}

func (r *fakeMemberRepo) ReopenEqub(ctx context.Context, equbID string) error {
	equb := r.equbs[equbID]
	equb.Status = equbdomain.StatusActive
	equb.CurrentRound = 1
	return nil
}

func (r *fakeMemberRepo) CreatePerson(ctx context.Context, person *Person) error {
	for _, existing := range r.people {
		if existing.Phone == person.Phone {
			return ErrPhoneTaken
		}
	}
	r.people[person.ID] = person
	return nil
}

func (r *fakeMemberRepo) GetPerson(ctx context.Context, personID string) (*Person, error) {
	person, ok := r.people[personID]
	if !ok {
		return nil, ErrPersonNotFound
	}
	return person, nil
}

func (r *fakeMemberRepo) ListPeople(ctx context.Context, search string, limit, offset int) ([]Person, int64, error) {
	result := make([]Person, 0, len(r.people))
	for _, person := range r.people {
		result = append(result, *person)
	}
	return result, int64(len(result)), nil
}

func (r *fakeMemberRepo) IsMember(ctx context.Context, equbID, personID string) (bool, error) {
	for _, member := range r.members {
		if member.EqubID == equbID && member.PersonID == personID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMemberRepo) CreateMember(ctx context.Context, member *Member) error {
	copied := *member
	r.members[member.ID] = &copied
	return nil
}

func (r *fakeMemberRepo) GetMember(ctx context.Context, adminID, memberID string) (*Member, error) {
	member, ok := r.members[memberID]
	if !ok {
		return nil, ErrMemberNotFound
	}
	equb, ok := r.equbs[member.EqubID]
	if !ok || equb.AdminID != adminID {
		return nil, ErrMemberNotFound
	}
	copied := *member
	return &copied, nil
}

func (r *fakeMemberRepo) ListMembers(ctx context.Context, adminID string, filter ListFilter) ([]Member, int64, error) {
	result := make([]Member, 0)
	for _, member := range r.members {
		if filter.EqubID != "" && member.EqubID != filter.EqubID {
			continue
		}
		result = append(result, *member)
	}
	return result, int64(len(result)), nil
}

func (r *fakeMemberRepo) UpdateMember(ctx context.Context, member *Member) error {
	copied := *member
	r.members[member.ID] = &copied
	return nil
}

func (r *fakeMemberRepo) DeleteMember(ctx context.Context, adminID, memberID string) (bool, error) {
	if _, err := r.GetMember(ctx, adminID, memberID); err != nil {
		return false, nil
	}
	delete(r.members, memberID)
	return true, nil
}

func (r *fakeMemberRepo) ListEligible(ctx context.Context, equbID string) ([]Member, error) {
	result := make([]Member, 0)
	for _, member := range r.members {
		if member.EqubID == equbID && member.Eligible() {
			result = append(result, *member)
		}
	}
	return result, nil
}

func (r *fakeMemberRepo) ResetPayouts(ctx context.Context, equbID string) (int64, error) {
	var cleared int64
	for _, member := range r.members {
		if member.EqubID == equbID && member.HasReceivedPayout {
			member.HasReceivedPayout = false
			cleared++
		}
	}
	return cleared, nil
}

type fakePeriodSyncer struct {
	calls []string
	err   error
}

func (f *fakePeriodSyncer) SyncPeriods(ctx context.Context, adminID, equbID string) error {
	f.calls = append(f.calls, equbID)
	return f.err
}

func seededRepo() *fakeMemberRepo {
	repo := newFakeMemberRepo()
	repo.equbs["equb-1"] = &equbdomain.Equb{ID: "equb-1", AdminID: "admin-1", Status: equbdomain.StatusActive, CurrentRound: 1}
	repo.people["person-1"] = &Person{ID: "person-1", Name: "Abebe", Phone: "0911"}
	repo.people["person-2"] = &Person{ID: "person-2", Name: "Sara", Phone: "0922"}
	return repo
}

func TestShareMultiplier(t *testing.T) {
	base := decimal.NewFromInt(100)
	tests := []struct {
		share Share
		want  string
	}{
		{ShareFull, "100"},
		{ShareHalf, "50"},
		{ShareQuarter, "25"},
		{Share("UNKNOWN"), "100"},
	}
	for _, tt := range tests {
		if got := tt.share.Amount(base); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Fatalf("share %s: expected %s, got %s", tt.share, tt.want, got)
		}
	}
}

func TestCreateMemberDefaultsAndSyncsPeriods(t *testing.T) {
	repo := seededRepo()
	syncer := &fakePeriodSyncer{}
	svc := NewService(repo, syncer)

	member, err := svc.CreateMember(context.Background(), CreateMemberInput{AdminID: "admin-1", EqubID: "equb-1", PersonID: "person-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if member.Share != ShareFull {
		t.Fatalf("expected FULL share, got %s", member.Share)
	}
	if !member.IsActive || member.HasReceivedPayout {
		t.Fatalf("expected active unpaid member, got %+v", member)
	}
	if len(syncer.calls) != 1 || syncer.calls[0] != "equb-1" {
		t.Fatalf("expected one period sync for equb-1, got %v", syncer.calls)
	}
}

func TestCreateMemberSurvivesPeriodSyncFailure(t *testing.T) {
	repo := seededRepo()
	syncer := &fakePeriodSyncer{err: errors.New("sync down")}
	svc := NewService(repo, syncer).WithLogger(logger.New(io.Discard, slog.LevelError, "json"))

	member, err := svc.CreateMember(context.Background(), CreateMemberInput{AdminID: "admin-1", EqubID: "equb-1", PersonID: "person-1"})
	if err != nil {
		t.Fatalf("expected committed member despite sync failure, got %v", err)
	}
	if member == nil || member.PersonID != "person-1" {
		t.Fatalf("expected created member, got %+v", member)
	}
	if len(syncer.calls) != 1 {
		t.Fatalf("expected one sync attempt, got %v", syncer.calls)
	}
}

func TestCreateMemberDuplicate(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, &fakePeriodSyncer{})

	input := CreateMemberInput{AdminID: "admin-1", EqubID: "equb-1", PersonID: "person-1", Share: ShareHalf}
	if _, err := svc.CreateMember(context.Background(), input); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, err := svc.CreateMember(context.Background(), input)
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
	if len(repo.members) != 1 {
		t.Fatalf("expected single member, got %d", len(repo.members))
	}
}

func TestCreateMemberForeignEqub(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, &fakePeriodSyncer{})

	_, err := svc.CreateMember(context.Background(), CreateMemberInput{AdminID: "admin-2", EqubID: "equb-1", PersonID: "person-1"})
	if !errors.Is(err, equbdomain.ErrEqubNotFound) {
		t.Fatalf("expected ErrEqubNotFound, got %v", err)
	}
}

func TestCreateMemberInvalidShare(t *testing.T) {
	svc := NewService(seededRepo(), nil)
	_, err := svc.CreateMember(context.Background(), CreateMemberInput{AdminID: "admin-1", EqubID: "equb-1", PersonID: "person-1", Share: "DOUBLE"})
	if !errors.Is(err, ErrInvalidShare) {
		t.Fatalf("expected ErrInvalidShare, got %v", err)
	}
}

func TestUpdateMemberPartial(t *testing.T) {
	repo := seededRepo()
	repo.members["m-1"] = &Member{ID: "m-1", EqubID: "equb-1", PersonID: "person-1", Share: ShareFull, IsActive: true}
	svc := NewService(repo, nil)

	inactive := false
	updated, err := svc.UpdateMember(context.Background(), UpdateMemberInput{AdminID: "admin-1", MemberID: "m-1", IsActive: &inactive})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.IsActive {
		t.Fatalf("expected inactive member")
	}
	if updated.Share != ShareFull {
		t.Fatalf("expected share unchanged, got %s", updated.Share)
	}
}

func TestEligibleWinnersExcludesPaidAndInactive(t *testing.T) {
	repo := seededRepo()
	repo.members["m-1"] = &Member{ID: "m-1", EqubID: "equb-1", IsActive: true}
	repo.members["m-2"] = &Member{ID: "m-2", EqubID: "equb-1", IsActive: true, HasReceivedPayout: true}
	repo.members["m-3"] = &Member{ID: "m-3", EqubID: "equb-1", IsActive: false}

	eligible, err := NewService(repo, nil).EligibleWinners(context.Background(), "admin-1", "equb-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != "m-1" {
		t.Fatalf("expected only m-1 eligible, got %+v", eligible)
	}
}

func TestResetPayoutsReopensEqub(t *testing.T) {
	repo := seededRepo()
	repo.equbs["equb-1"].Status = equbdomain.StatusCompleted
	repo.equbs["equb-1"].CurrentRound = 3
	repo.members["m-1"] = &Member{ID: "m-1", EqubID: "equb-1", IsActive: true, HasReceivedPayout: true}
	repo.members["m-2"] = &Member{ID: "m-2", EqubID: "equb-1", IsActive: true, HasReceivedPayout: true}

	result, err := NewService(repo, nil).ResetPayouts(context.Background(), "admin-1", "equb-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Cleared != 2 {
		t.Fatalf("expected 2 cleared, got %d", result.Cleared)
	}
	if repo.equbs["equb-1"].Status != equbdomain.StatusActive || repo.equbs["equb-1"].CurrentRound != 1 {
		t.Fatalf("expected equb reopened at round 1, got %+v", repo.equbs["equb-1"])
	}
	for _, member := range repo.members {
		if member.HasReceivedPayout {
			t.Fatalf("expected payout flag cleared for %s", member.ID)
		}
	}
}

func TestCreatePersonValidation(t *testing.T) {
	svc := NewService(newFakeMemberRepo(), nil)
	if _, err := svc.CreatePerson(context.Background(), CreatePersonInput{Name: " ", Phone: "0911"}); !errors.Is(err, ErrPersonNameRequired) {
		t.Fatalf("expected ErrPersonNameRequired, got %v", err)
	}
	if _, err := svc.CreatePerson(context.Background(), CreatePersonInput{Name: "Abebe"}); !errors.Is(err, ErrPhoneRequired) {
		t.Fatalf("expected ErrPhoneRequired, got %v", err)
	}

	blank := "  "
	person, err := svc.CreatePerson(context.Background(), CreatePersonInput{Name: "Abebe", Phone: " 0911 ", Address: &blank})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if person.Phone != "0911" || person.Address != nil {
		t.Fatalf("expected normalized person, got %+v", person)
	}
}
