package equb

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateEqub(ctx context.Context, equb *Equb) error
	GetEqub(ctx context.Context, adminID, equbID string) (*Equb, error)
	LockEqub(ctx context.Context, adminID, equbID string) (*Equb, error)
	ListEqubs(ctx context.Context, adminID string, filter ListFilter) ([]Equb, int64, error)
	UpdateEqub(ctx context.Context, equb *Equb) error
	DeleteEqub(ctx context.Context, adminID, equbID string) (bool, error)
	ListPeriods(ctx context.Context, equbID string) ([]Period, error)
	CreatePeriods(ctx context.Context, periods []Period) error
	DeletePeriods(ctx context.Context, equbID string) error
	CountPeriodReferences(ctx context.Context, equbID string) (int64, error)
	CountMembers(ctx context.Context, equbID string) (int64, error)
}
