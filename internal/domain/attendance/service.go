package attendance

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

// Record stores the status for a (member, period) pair. A second submission for
// the same pair updates the existing row in place.
func (s *Service) Record(ctx context.Context, input RecordInput) (*Attendance, error) {
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	var recordID string
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.GetMember(ctx, input.AdminID, input.MemberID)
		if err != nil {
			return err
		}
		period, err := tx.GetPeriod(ctx, input.PeriodID)
		if err != nil {
			return err
		}
		if period.EqubID != member.EqubID {
			return ErrPeriodMismatch
		}

		recorder := input.AdminID
		note := trimOptional(input.Note)

		existing, err := tx.FindByPair(ctx, member.ID, period.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Status = input.Status
			existing.RecordedBy = &recorder
			if note != nil {
				existing.Note = note
			}
			existing.UpdatedAt = time.Now().UTC()
			recordID = existing.ID
			return tx.Update(ctx, existing)
		}

		record := Attendance{
			ID:         uuid.NewString(),
			MemberID:   member.ID,
			PeriodID:   period.ID,
			Status:     input.Status,
			RecordedBy: &recorder,
			Note:       note,
		}
		recordID = record.ID
		return tx.Create(ctx, &record)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, input.AdminID, recordID)
}

func (s *Service) List(ctx context.Context, adminID string, filter ListFilter) ([]Attendance, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, adminID, filter)
}

func (s *Service) Get(ctx context.Context, adminID, id string) (*Attendance, error) {
	return s.repo.Get(ctx, adminID, id)
}

func (s *Service) Delete(ctx context.Context, adminID, id string) error {
	deleted, err := s.repo.Delete(ctx, adminID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAttendanceNotFound
	}
	return nil
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
