package member

import (
	"context"

	equbdomain "equb-app-go/internal/domain/equb"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetEqub(ctx context.Context, adminID, equbID string) (*equbdomain.Equb, error)
	LockEqub(ctx context.Context, adminID, equbID string) (*equbdomain.Equb, error)
	ReopenEqub(ctx context.Context, equbID string) error

	CreatePerson(ctx context.Context, person *Person) error
	GetPerson(ctx context.Context, personID string) (*Person, error)
	ListPeople(ctx context.Context, search string, limit, offset int) ([]Person, int64, error)

	IsMember(ctx context.Context, equbID, personID string) (bool, error)
	CreateMember(ctx context.Context, member *Member) error
	GetMember(ctx context.Context, adminID, memberID string) (*Member, error)
	ListMembers(ctx context.Context, adminID string, filter ListFilter) ([]Member, int64, error)
	UpdateMember(ctx context.Context, member *Member) error
	DeleteMember(ctx context.Context, adminID, memberID string) (bool, error)
	ListEligible(ctx context.Context, equbID string) ([]Member, error)
	ResetPayouts(ctx context.Context, equbID string) (int64, error)
}

// PeriodSyncer keeps period count in step with membership.
type PeriodSyncer interface {
	SyncPeriods(ctx context.Context, adminID, equbID string) error
}
