package member

import (
	"context"
	"errors"
	"testing"

	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	"equb-app-go/internal/repository/postgres/dbtest"
	equbrepo "equb-app-go/internal/repository/postgres/equb"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newService(gormDB *gorm.DB) *memberdomain.Service {
	periods := equbdomain.NewService(equbrepo.NewPostgres(gormDB))
	return memberdomain.NewService(NewPostgres(gormDB), periods)
}

func TestCreatePersonRejectsTakenPhone(t *testing.T) {
	gormDB := dbtest.Open(t)
	service := newService(gormDB)

	ctx := context.Background()
	if _, err := service.CreatePerson(ctx, memberdomain.CreatePersonInput{Name: "Abebe", Phone: "0911000000"}); err != nil {
		t.Fatalf("create person: %v", err)
	}
	_, err := service.CreatePerson(ctx, memberdomain.CreatePersonInput{Name: "Almaz", Phone: "0911000000"})
	if !errors.Is(err, memberdomain.ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}
}

func TestCreateMemberAppendsPeriods(t *testing.T) {
	gormDB := dbtest.Open(t)
	equb, _ := dbtest.SeedEqub(t, gormDB, dbtest.AdminID, 100, 0)
	service := newService(gormDB)

	ctx := context.Background()
	for _, name := range []string{"Abebe", "Almaz"} {
		person := dbtest.SeedPerson(t, gormDB, name)
		member, err := service.CreateMember(ctx, memberdomain.CreateMemberInput{
			AdminID:  dbtest.AdminID,
			EqubID:   equb.ID,
			PersonID: person.ID,
		})
		if err != nil {
			t.Fatalf("create member: %v", err)
		}
		if member.Share != memberdomain.ShareFull || !member.IsActive || member.Person.Name != name {
			t.Fatalf("unexpected member: %+v", member)
		}
	}

	var periods []equbdomain.Period
	if err := gormDB.Where("equb_id = ?", equb.ID).Order("sequence").Find(&periods).Error; err != nil {
		t.Fatalf("load periods: %v", err)
	}
	if len(periods) != 2 || periods[0].Sequence != 1 || periods[1].Sequence != 2 {
		t.Fatalf("expected periods 1..2, got %+v", periods)
	}
}

func TestCreateMemberTwiceIsConflict(t *testing.T) {
	gormDB := dbtest.Open(t)
	equb, _ := dbtest.SeedEqub(t, gormDB, dbtest.AdminID, 100, 0)
	person := dbtest.SeedPerson(t, gormDB, "Abebe")
	service := newService(gormDB)

	ctx := context.Background()
	input := memberdomain.CreateMemberInput{AdminID: dbtest.AdminID, EqubID: equb.ID, PersonID: person.ID}
	if _, err := service.CreateMember(ctx, input); err != nil {
		t.Fatalf("create member: %v", err)
	}
	if _, err := service.CreateMember(ctx, input); !errors.Is(err, memberdomain.ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}

	repo := NewPostgres(gormDB)
	duplicate := memberdomain.Member{
		ID:       uuid.NewString(),
		EqubID:   equb.ID,
		PersonID: person.ID,
		Share:    memberdomain.ShareHalf,
		IsActive: true,
	}
	if err := repo.CreateMember(ctx, &duplicate); !errors.Is(err, memberdomain.ErrAlreadyMember) {
		t.Fatalf("expected unique index to map to ErrAlreadyMember, got %v", err)
	}
}

func TestListMembersSearchAndFlags(t *testing.T) {
	gormDB := dbtest.Open(t)
	equb, _ := dbtest.SeedEqub(t, gormDB, dbtest.AdminID, 100, 0)
	dbtest.SeedMember(t, gormDB, equb.ID, "Abebe Bikila", memberdomain.ShareFull)
	paid := dbtest.SeedMember(t, gormDB, equb.ID, "Almaz Ayana", memberdomain.ShareHalf)
	if err := gormDB.Model(&memberdomain.Member{}).Where("id = ?", paid.ID).Update("has_received_payout", true).Error; err != nil {
		t.Fatalf("flag member: %v", err)
	}

	service := newService(gormDB)
	ctx := context.Background()

	items, total, err := service.ListMembers(ctx, dbtest.AdminID, memberdomain.ListFilter{Search: "ayana"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || items[0].ID != paid.ID || items[0].Person.Name != "Almaz Ayana" {
		t.Fatalf("unexpected search result: %d %+v", total, items)
	}

	unpaid := false
	_, total, err = service.ListMembers(ctx, dbtest.AdminID, memberdomain.ListFilter{EqubID: equb.ID, HasReceivedPayout: &unpaid})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected one unpaid member, got %d", total)
	}

	eligible, err := service.EligibleWinners(ctx, dbtest.AdminID, equb.ID)
	if err != nil {
		t.Fatalf("eligible: %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID == paid.ID {
		t.Fatalf("expected only the unpaid member, got %+v", eligible)
	}
}

func TestResetPayoutsReopensEqub(t *testing.T) {
	gormDB := dbtest.Open(t)
	equb, _ := dbtest.SeedEqub(t, gormDB, dbtest.AdminID, 100, 2)
	first := dbtest.SeedMember(t, gormDB, equb.ID, "Abebe", memberdomain.ShareFull)
	second := dbtest.SeedMember(t, gormDB, equb.ID, "Almaz", memberdomain.ShareFull)
	gormDB.Model(&memberdomain.Member{}).Where("id IN ?", []string{first.ID, second.ID}).Update("has_received_payout", true)
	gormDB.Model(&equbdomain.Equb{}).Where("id = ?", equb.ID).Updates(map[string]interface{}{
		"status":        equbdomain.StatusCompleted,
		"current_round": 2,
	})

	result, err := newService(gormDB).ResetPayouts(context.Background(), dbtest.AdminID, equb.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if result.Cleared != 2 {
		t.Fatalf("expected 2 cleared, got %d", result.Cleared)
	}

	var reloaded equbdomain.Equb
	if err := gormDB.First(&reloaded, "id = ?", equb.ID).Error; err != nil {
		t.Fatalf("load equb: %v", err)
	}
	if reloaded.Status != equbdomain.StatusActive || reloaded.CurrentRound != 1 {
		t.Fatalf("expected reopened at round 1, got %s %d", reloaded.Status, reloaded.CurrentRound)
	}
}

func TestRemoveMemberScopedToAdmin(t *testing.T) {
	gormDB := dbtest.Open(t)
	equb, _ := dbtest.SeedEqub(t, gormDB, dbtest.AdminID, 100, 0)
	member := dbtest.SeedMember(t, gormDB, equb.ID, "Abebe", memberdomain.ShareFull)
	service := newService(gormDB)

	ctx := context.Background()
	if err := service.RemoveMember(ctx, "00000000-0000-0000-0000-0000000000b2", member.ID); !errors.Is(err, memberdomain.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
	if err := service.RemoveMember(ctx, dbtest.AdminID, member.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := service.GetMember(ctx, dbtest.AdminID, member.ID); !errors.Is(err, memberdomain.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound after removal, got %v", err)
	}
}
