package payout

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"equb-app-go/internal/domain/apperr"
	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"

	"github.com/google/uuid"
)

// Picker returns an index in [0, n).
type Picker func(n int) int

type Service struct {
	repo     Repository
	recorder Recorder
	pick     Picker
	now      func() time.Time
}

func NewService(repo Repository, recorder Recorder) *Service {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Service{
		repo:     repo,
		recorder: recorder,
		pick:     rand.IntN,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithPicker replaces the random winner picker.
func (s *Service) WithPicker(pick Picker) *Service {
	s.pick = pick
	return s
}

// SelectRandomWinner settles the round with a uniformly chosen eligible member.
func (s *Service) SelectRandomWinner(ctx context.Context, input RandomInput) (*Payout, error) {
	var settled settlement
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		equb, err := s.lockOpenEqub(ctx, tx, input.AdminID, input.EqubID, input.PeriodID)
		if err != nil {
			return err
		}

		eligible, err := tx.ListEligible(ctx, equb.ID)
		if err != nil {
			return err
		}
		if len(eligible) == 0 {
			return ErrNoEligibleWinners
		}

		winner := eligible[s.pick(len(eligible))]
		settled, err = s.settle(ctx, tx, equb, &winner, input.PeriodID)
		return err
	})
	return s.finish(ctx, MethodRandom, input.AdminID, settled, err)
}

// RecordManualWinner settles the round with a caller-chosen member.
func (s *Service) RecordManualWinner(ctx context.Context, input ManualInput) (*Payout, error) {
	var settled settlement
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		equb, err := s.lockOpenEqub(ctx, tx, input.AdminID, input.EqubID, input.PeriodID)
		if err != nil {
			return err
		}

		member, err := tx.GetMember(ctx, input.AdminID, input.MemberID)
		if err != nil {
			return err
		}
		if member.EqubID != equb.ID {
			return ErrMemberNotInEqub
		}
		if !member.IsActive {
			return ErrMemberInactive
		}
		if member.HasReceivedPayout {
			return ErrAlreadyPaid
		}

		settled, err = s.settle(ctx, tx, equb, member, input.PeriodID)
		return err
	})
	return s.finish(ctx, MethodManual, input.AdminID, settled, err)
}

func (s *Service) ListPayouts(ctx context.Context, adminID string, filter ListFilter) ([]Payout, int64, error) {
	return s.repo.List(ctx, adminID, filter)
}

func (s *Service) GetPayout(ctx context.Context, adminID, id string) (*Payout, error) {
	return s.repo.Get(ctx, adminID, id)
}

func (s *Service) lockOpenEqub(ctx context.Context, tx Repository, adminID, equbID, periodID string) (*equbdomain.Equb, error) {
	equb, err := tx.LockEqub(ctx, adminID, equbID)
	if err != nil {
		return nil, err
	}
	if equb.Status == equbdomain.StatusCompleted {
		return nil, ErrEqubCompleted
	}

	period, err := tx.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.EqubID != equb.ID {
		return nil, ErrPeriodNotInEqub
	}
	return equb, nil
}

type settlement struct {
	payout    Payout
	completed bool
}

// settle runs inside the caller's transaction with the equb row locked.
func (s *Service) settle(ctx context.Context, tx Repository, equb *equbdomain.Equb, winner *memberdomain.Member, periodID string) (settlement, error) {
	members, err := tx.ListMembers(ctx, equb.ID)
	if err != nil {
		return settlement{}, err
	}

	payout := Payout{
		ID:         uuid.NewString(),
		EqubID:     equb.ID,
		MemberID:   winner.ID,
		PeriodID:   periodID,
		Amount:     PoolAmount(equb.BaseAmount, members),
		PayoutDate: s.now(),
	}
	if err := tx.Create(ctx, &payout); err != nil {
		return settlement{}, err
	}

	flipped, err := tx.MarkPaid(ctx, winner.ID)
	if err != nil {
		return settlement{}, err
	}
	if !flipped {
		return settlement{}, ErrAlreadyPaid
	}

	active, paid, err := tx.CountProgress(ctx, equb.ID)
	if err != nil {
		return settlement{}, err
	}
	if paid >= active {
		equb.Status = equbdomain.StatusCompleted
	} else {
		equb.CurrentRound++
	}
	if err := tx.UpdateEqubProgress(ctx, equb); err != nil {
		return settlement{}, err
	}

	return settlement{payout: payout, completed: equb.Status == equbdomain.StatusCompleted}, nil
}

// finish classifies a failed settlement. Domain errors pass through unchanged;
// anything else is reported as ErrPayoutFailed with the cause attached.
func (s *Service) finish(ctx context.Context, method Method, adminID string, settled settlement, err error) (*Payout, error) {
	if err != nil {
		s.recorder.PayoutRejected(method, err)
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrPayoutFailed, err)
	}

	s.recorder.PayoutSettled(method, settled.payout.Amount, settled.completed)
	return s.repo.Get(ctx, adminID, settled.payout.ID)
}
