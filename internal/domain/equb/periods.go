package equb

import (
	"time"

	"github.com/google/uuid"
)

// PeriodStart returns the start date of the given 1-based sequence. Offsets are
// always taken from base so month-end rollover never accumulates.
func PeriodStart(cadence Cadence, base time.Time, sequence int) time.Time {
	base = truncateDate(base)
	offset := sequence - 1
	switch cadence {
	case CadenceWeekly:
		return base.AddDate(0, 0, offset*7)
	case CadenceMonthly:
		return base.AddDate(0, offset, 0)
	default:
		return base.AddDate(0, 0, offset)
	}
}

// BuildPeriods produces periods for sequences from..to inclusive.
func BuildPeriods(equbID string, cadence Cadence, base time.Time, from, to int) []Period {
	if from < 1 {
		from = 1
	}
	if to < from {
		return []Period{}
	}

	periods := make([]Period, 0, to-from+1)
	for sequence := from; sequence <= to; sequence++ {
		date := PeriodStart(cadence, base, sequence)
		periods = append(periods, Period{
			ID:        uuid.NewString(),
			EqubID:    equbID,
			Sequence:  sequence,
			StartDate: date,
			EndDate:   date,
		})
	}
	return periods
}

// GeneratePeriods produces the full 1..count sequence.
func GeneratePeriods(equbID string, cadence Cadence, base time.Time, count int) []Period {
	return BuildPeriods(equbID, cadence, base, 1, count)
}

func maxSequence(periods []Period) int {
	max := 0
	for _, period := range periods {
		if period.Sequence > max {
			max = period.Sequence
		}
	}
	return max
}

func truncateDate(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
