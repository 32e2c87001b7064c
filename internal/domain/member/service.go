package member

import (
	"context"
	"strings"
	"time"

	"equb-app-go/pkg/logger"
	"github.com/google/uuid"
)

type Service struct {
	repo    Repository
	periods PeriodSyncer
	log     logger.Logger
}

func NewService(repo Repository, periods PeriodSyncer) *Service {
	return &Service{repo: repo, periods: periods}
}

func (s *Service) WithLogger(log logger.Logger) *Service {
	s.log = log
	return s
}

func (s *Service) CreatePerson(ctx context.Context, input CreatePersonInput) (*Person, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPersonNameRequired
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}

	person := Person{
		ID:      uuid.NewString(),
		Name:    name,
		Phone:   phone,
		Address: trimOptional(input.Address),
	}
	if err := s.repo.CreatePerson(ctx, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

func (s *Service) ListPeople(ctx context.Context, search string, limit, offset int) ([]Person, int64, error) {
	return s.repo.ListPeople(ctx, strings.TrimSpace(search), limit, offset)
}

func (s *Service) CreateMember(ctx context.Context, input CreateMemberInput) (*Member, error) {
	share := input.Share
	if share == "" {
		share = ShareFull
	}
	if !share.Valid() {
		return nil, ErrInvalidShare
	}

	member := Member{
		ID:                uuid.NewString(),
		EqubID:            input.EqubID,
		PersonID:          input.PersonID,
		Share:             share,
		IsActive:          true,
		HasReceivedPayout: false,
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetEqub(ctx, input.AdminID, input.EqubID); err != nil {
			return err
		}
		if _, err := tx.GetPerson(ctx, input.PersonID); err != nil {
			return err
		}

		exists, err := tx.IsMember(ctx, input.EqubID, input.PersonID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyMember
		}

		return tx.CreateMember(ctx, &member)
	})
	if err != nil {
		return nil, err
	}

	// The member is committed at this point. A failed sync is repaired by the
	// next equb read, so it must not turn into an error the caller retries.
	if s.periods != nil {
		if err := s.periods.SyncPeriods(ctx, input.AdminID, input.EqubID); err != nil && s.log != nil {
			s.log.InternalError("members.create: period sync failed", err, "equb_id", input.EqubID, "member_id", member.ID)
		}
	}

	return s.repo.GetMember(ctx, input.AdminID, member.ID)
}

func (s *Service) ListMembers(ctx context.Context, adminID string, filter ListFilter) ([]Member, int64, error) {
	if filter.Share != "" && !filter.Share.Valid() {
		return nil, 0, ErrInvalidShare
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.ListMembers(ctx, adminID, filter)
}

func (s *Service) GetMember(ctx context.Context, adminID, memberID string) (*Member, error) {
	return s.repo.GetMember(ctx, adminID, memberID)
}

func (s *Service) UpdateMember(ctx context.Context, input UpdateMemberInput) (*Member, error) {
	if input.Share != nil && !input.Share.Valid() {
		return nil, ErrInvalidShare
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.GetMember(ctx, input.AdminID, input.MemberID)
		if err != nil {
			return err
		}
		if input.Share != nil {
			member.Share = *input.Share
		}
		if input.IsActive != nil {
			member.IsActive = *input.IsActive
		}
		member.UpdatedAt = time.Now().UTC()
		return tx.UpdateMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetMember(ctx, input.AdminID, input.MemberID)
}

func (s *Service) RemoveMember(ctx context.Context, adminID, memberID string) error {
	deleted, err := s.repo.DeleteMember(ctx, adminID, memberID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMemberNotFound
	}
	return nil
}

// EligibleWinners lists active members not yet paid in the current cycle.
func (s *Service) EligibleWinners(ctx context.Context, adminID, equbID string) ([]Member, error) {
	if _, err := s.repo.GetEqub(ctx, adminID, equbID); err != nil {
		return nil, err
	}
	return s.repo.ListEligible(ctx, equbID)
}

// ResetPayouts starts a new cycle: every member's payout flag is cleared and
// the equb is reopened at round 1. It is never triggered automatically.
func (s *Service) ResetPayouts(ctx context.Context, adminID, equbID string) (*ResetResult, error) {
	result := ResetResult{EqubID: equbID}
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		equb, err := tx.LockEqub(ctx, adminID, equbID)
		if err != nil {
			return err
		}

		cleared, err := tx.ResetPayouts(ctx, equb.ID)
		if err != nil {
			return err
		}
		result.Cleared = cleared

		return tx.ReopenEqub(ctx, equb.ID)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
