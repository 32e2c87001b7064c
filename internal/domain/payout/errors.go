package payout

import "equb-app-go/internal/domain/apperr"

var (
	ErrPayoutNotFound    = apperr.New(apperr.KindNotFound, "payout_not_found", "payout record not found")
	ErrNoEligibleWinners = apperr.New(apperr.KindInvalidOperation, "no_eligible_winners", "no eligible winners left in this round, all members have received payouts")
	ErrEqubCompleted     = apperr.New(apperr.KindInvalidOperation, "equb_completed", "equb cycle is already completed")
	ErrMemberNotInEqub   = apperr.New(apperr.KindInvalidOperation, "member_not_in_equb", "member does not belong to this equb")
	ErrMemberInactive    = apperr.New(apperr.KindInvalidOperation, "member_inactive", "member is not active")
	ErrAlreadyPaid       = apperr.New(apperr.KindInvalidOperation, "already_paid", "member has already received a payout in this cycle")
	ErrPeriodNotInEqub   = apperr.New(apperr.KindInvalidInput, "period_not_in_equb", "period does not belong to this equb")
	ErrDuplicatePayout   = apperr.New(apperr.KindConflict, "duplicate_payout", "payout already exists")
	ErrPayoutFailed      = apperr.New(apperr.KindInternal, "payout_failed", "failed to process payout")
)
