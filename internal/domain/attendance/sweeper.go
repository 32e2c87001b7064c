package attendance

import (
	"context"
	"time"

	equbdomain "equb-app-go/internal/domain/equb"
	"equb-app-go/pkg/logger"

	"github.com/google/uuid"
)

// Sweeper marks active members without an attendance row as MISSED once a
// period has ended, then flags the period completed.
type Sweeper struct {
	repo     Repository
	log      logger.Logger
	recorder SweepRecorder
}

func NewSweeper(repo Repository, log logger.Logger, recorder SweepRecorder) *Sweeper {
	if recorder == nil {
		recorder = noopSweepRecorder{}
	}
	return &Sweeper{repo: repo, log: log, recorder: recorder}
}

// Run sweeps every period that ended strictly before the day containing now.
// A failing period is logged and skipped; the next run picks it up again.
func (s *Sweeper) Run(ctx context.Context, now time.Time) (SweepResult, error) {
	started := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var result SweepResult
	periods, err := s.repo.ListDuePeriods(ctx, today)
	if err != nil {
		return result, err
	}
	if len(periods) == 0 {
		s.log.Info("attendance.sweep: no pending periods")
		s.recorder.ObserveSweep(result, time.Since(started))
		return result, nil
	}

	s.log.Info("attendance.sweep: started", "periods", len(periods))
	for _, period := range periods {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		marked, err := s.sweepPeriod(ctx, period)
		if err != nil {
			result.Failed++
			s.log.InternalError("attendance.sweep: period failed", err, "period_id", period.ID, "equb_id", period.EqubID)
			continue
		}
		result.Periods++
		result.Marked += marked
		s.log.Debug("attendance.sweep: period completed", "period_id", period.ID, "sequence", period.Sequence, "marked", marked)
	}

	s.log.Info("attendance.sweep: finished", "periods", result.Periods, "marked", result.Marked, "failed", result.Failed)
	s.recorder.ObserveSweep(result, time.Since(started))
	return result, nil
}

func (s *Sweeper) sweepPeriod(ctx context.Context, period equbdomain.Period) (int, error) {
	marked := 0
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		marked = 0
		if _, err := tx.LockEqubByID(ctx, period.EqubID); err != nil {
			return err
		}

		completed, err := tx.CompletePeriod(ctx, period.ID)
		if err != nil {
			return err
		}
		if !completed {
			// Another sweep got here first.
			return nil
		}

		members, err := tx.ListActiveMembersWithout(ctx, period.EqubID, period.ID)
		if err != nil {
			return err
		}

		note := SweepNote
		for _, member := range members {
			record := Attendance{
				ID:       uuid.NewString(),
				MemberID: member.ID,
				PeriodID: period.ID,
				Status:   StatusMissed,
				Note:     &note,
			}
			if err := tx.Create(ctx, &record); err != nil {
				return err
			}
			marked++
		}
		return nil
	})
	return marked, err
}
