package member

import "equb-app-go/internal/domain/apperr"

var (
	ErrMemberNotFound     = apperr.New(apperr.KindNotFound, "member_not_found", "member not found")
	ErrPersonNotFound     = apperr.New(apperr.KindNotFound, "person_not_found", "person not found")
	ErrAlreadyMember      = apperr.New(apperr.KindConflict, "already_member", "person is already a member of this equb")
	ErrPhoneTaken         = apperr.New(apperr.KindConflict, "phone_taken", "a person with this phone already exists")
	ErrInvalidShare       = apperr.New(apperr.KindInvalidInput, "invalid_share", "share must be FULL, HALF or QUARTER")
	ErrPersonNameRequired = apperr.New(apperr.KindInvalidInput, "invalid_request", "name is required")
	ErrPhoneRequired      = apperr.New(apperr.KindInvalidInput, "invalid_request", "phone is required")
)
