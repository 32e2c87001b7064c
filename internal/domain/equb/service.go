package equb

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateEqub(ctx context.Context, input CreateEqubInput) (*Details, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !input.Cadence.Valid() {
		return nil, ErrInvalidCadence
	}
	if !input.BaseAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if input.StartDate.IsZero() {
		return nil, ErrInvalidStartDate
	}
	if input.ExpectedMemberCount < 0 {
		return nil, ErrInvalidCount
	}

	equb := Equb{
		ID:           uuid.NewString(),
		AdminID:      input.AdminID,
		Name:         name,
		Cadence:      input.Cadence,
		BaseAmount:   input.BaseAmount,
		StartDate:    truncateDate(input.StartDate),
		Status:       StatusActive,
		CurrentRound: 1,
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateEqub(ctx, &equb); err != nil {
			return err
		}
		if input.ExpectedMemberCount == 0 {
			return nil
		}
		return tx.CreatePeriods(ctx, GeneratePeriods(equb.ID, equb.Cadence, equb.StartDate, input.ExpectedMemberCount))
	})
	if err != nil {
		return nil, err
	}

	return s.loadDetails(ctx, s.repo, &equb)
}

// GetEqub returns the equb with its periods. Periods missing for the current
// member count are appended before returning.
func (s *Service) GetEqub(ctx context.Context, adminID, equbID string) (*Details, error) {
	equb, err := s.repo.GetEqub(ctx, adminID, equbID)
	if err != nil {
		return nil, err
	}

	details, err := s.loadDetails(ctx, s.repo, equb)
	if err != nil {
		return nil, err
	}
	if int64(maxSequence(details.Periods)) >= details.MemberCount {
		return details, nil
	}

	if err := s.SyncPeriods(ctx, adminID, equbID); err != nil {
		return nil, err
	}
	return s.loadDetails(ctx, s.repo, equb)
}

func (s *Service) ListEqubs(ctx context.Context, adminID string, filter ListFilter) ([]Equb, int64, error) {
	if filter.Cadence != "" && !filter.Cadence.Valid() {
		return nil, 0, ErrInvalidCadence
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.ListEqubs(ctx, adminID, filter)
}

func (s *Service) UpdateEqub(ctx context.Context, input UpdateEqubInput) (*Details, error) {
	var updated Equb
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		equb, err := tx.LockEqub(ctx, input.AdminID, input.EqubID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrNameRequired
			}
			equb.Name = name
		}
		if input.BaseAmount != nil {
			if !input.BaseAmount.IsPositive() {
				return ErrInvalidAmount
			}
			equb.BaseAmount = *input.BaseAmount
		}
		equb.UpdatedAt = time.Now().UTC()

		if err := tx.UpdateEqub(ctx, equb); err != nil {
			return err
		}
		updated = *equb
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadDetails(ctx, s.repo, &updated)
}

func (s *Service) DeleteEqub(ctx context.Context, adminID, equbID string) error {
	deleted, err := s.repo.DeleteEqub(ctx, adminID, equbID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEqubNotFound
	}
	return nil
}

// SyncPeriods appends the periods missing for the current member count.
// Existing periods are never removed or renumbered.
func (s *Service) SyncPeriods(ctx context.Context, adminID, equbID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		equb, err := tx.LockEqub(ctx, adminID, equbID)
		if err != nil {
			return err
		}

		members, err := tx.CountMembers(ctx, equb.ID)
		if err != nil {
			return err
		}
		periods, err := tx.ListPeriods(ctx, equb.ID)
		if err != nil {
			return err
		}

		last := maxSequence(periods)
		if int(members) <= last {
			return nil
		}
		return tx.CreatePeriods(ctx, BuildPeriods(equb.ID, equb.Cadence, equb.StartDate, last+1, int(members)))
	})
}

// RegeneratePeriods replaces every period of the equb with a fresh 1..N
// sequence where N is the member count. It refuses when any attendance or
// payout already points at a current period.
func (s *Service) RegeneratePeriods(ctx context.Context, adminID, equbID string) (*Details, error) {
	var equb *Equb
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		locked, err := tx.LockEqub(ctx, adminID, equbID)
		if err != nil {
			return err
		}
		equb = locked

		refs, err := tx.CountPeriodReferences(ctx, equb.ID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return ErrPeriodsInUse
		}

		members, err := tx.CountMembers(ctx, equb.ID)
		if err != nil {
			return err
		}

		if err := tx.DeletePeriods(ctx, equb.ID); err != nil {
			return err
		}
		if members == 0 {
			return nil
		}
		return tx.CreatePeriods(ctx, GeneratePeriods(equb.ID, equb.Cadence, equb.StartDate, int(members)))
	})
	if err != nil {
		return nil, err
	}

	return s.loadDetails(ctx, s.repo, equb)
}

func (s *Service) loadDetails(ctx context.Context, repo Repository, equb *Equb) (*Details, error) {
	periods, err := repo.ListPeriods(ctx, equb.ID)
	if err != nil {
		return nil, err
	}
	members, err := repo.CountMembers(ctx, equb.ID)
	if err != nil {
		return nil, err
	}
	return &Details{Equb: *equb, Periods: periods, MemberCount: members}, nil
}
