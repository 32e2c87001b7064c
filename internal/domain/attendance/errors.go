package attendance

import "equb-app-go/internal/domain/apperr"

var (
	ErrAttendanceNotFound  = apperr.New(apperr.KindNotFound, "attendance_not_found", "attendance record not found")
	ErrDuplicateAttendance = apperr.New(apperr.KindConflict, "duplicate_attendance", "attendance already exists for this member and period")
	ErrInvalidStatus       = apperr.New(apperr.KindInvalidInput, "invalid_status", "status must be PAID or MISSED")
	ErrPeriodMismatch      = apperr.New(apperr.KindInvalidInput, "period_mismatch", "period does not belong to the member's equb")
)
