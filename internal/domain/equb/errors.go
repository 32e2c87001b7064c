package equb

import "equb-app-go/internal/domain/apperr"

var (
	ErrEqubNotFound     = apperr.New(apperr.KindNotFound, "equb_not_found", "equb not found")
	ErrPeriodNotFound   = apperr.New(apperr.KindNotFound, "period_not_found", "period not found")
	ErrInvalidCadence   = apperr.New(apperr.KindInvalidInput, "invalid_cadence", "cadence must be DAILY, WEEKLY or MONTHLY")
	ErrInvalidAmount    = apperr.New(apperr.KindInvalidInput, "invalid_amount", "contribution amount must be positive")
	ErrNameRequired     = apperr.New(apperr.KindInvalidInput, "invalid_request", "name is required")
	ErrInvalidStartDate = apperr.New(apperr.KindInvalidInput, "invalid_start_date", "start date is required")
	ErrInvalidCount     = apperr.New(apperr.KindInvalidInput, "invalid_member_count", "expected member count cannot be negative")
	ErrPeriodsInUse     = apperr.New(apperr.KindConflict, "periods_in_use", "periods already have attendance or payouts recorded")
)
