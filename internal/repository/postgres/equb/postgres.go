package equb

import (
	"context"
	"errors"

	equbdomain "equb-app-go/internal/domain/equb"
	"equb-app-go/internal/repository/postgres/dbutil"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(equbdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateEqub(ctx context.Context, equb *equbdomain.Equb) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(equb).Error
}

func (r *PostgresRepository) GetEqub(ctx context.Context, adminID, equbID string) (*equbdomain.Equb, error) {
	return r.findEqub(r.db.WithContext(ctx), adminID, equbID)
}

func (r *PostgresRepository) LockEqub(ctx context.Context, adminID, equbID string) (*equbdomain.Equb, error) {
	return r.findEqub(dbutil.ForUpdate(r.db.WithContext(ctx)), adminID, equbID)
}

func (r *PostgresRepository) findEqub(db *gorm.DB, adminID, equbID string) (*equbdomain.Equb, error) {
	var equb equbdomain.Equb
	if err := db.Where("id = ? AND admin_id = ?", equbID, adminID).First(&equb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, equbdomain.ErrEqubNotFound
		}
		return nil, err
	}
	return &equb, nil
}

func (r *PostgresRepository) ListEqubs(ctx context.Context, adminID string, filter equbdomain.ListFilter) ([]equbdomain.Equb, int64, error) {
	query := r.db.WithContext(ctx).Model(&equbdomain.Equb{}).Where("admin_id = ?", adminID)
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", dbutil.Like(filter.Search))
	}
	if filter.Cadence != "" {
		query = query.Where("cadence = ?", filter.Cadence)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinAmount != nil {
		query = query.Where("base_amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("base_amount <= ?", *filter.MaxAmount)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at desc, id")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var items []equbdomain.Equb
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) UpdateEqub(ctx context.Context, equb *equbdomain.Equb) error {
	return r.db.WithContext(ctx).
		Model(&equbdomain.Equb{}).
		Where("id = ? AND admin_id = ?", equb.ID, equb.AdminID).
		Updates(map[string]interface{}{
			"name":        equb.Name,
			"base_amount": equb.BaseAmount,
			"updated_at":  equb.UpdatedAt,
		}).Error
}

func (r *PostgresRepository) DeleteEqub(ctx context.Context, adminID, equbID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&equbdomain.Equb{}, "id = ? AND admin_id = ?", equbID, adminID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) ListPeriods(ctx context.Context, equbID string) ([]equbdomain.Period, error) {
	var periods []equbdomain.Period
	if err := r.db.WithContext(ctx).
		Where("equb_id = ?", equbID).
		Order("sequence asc").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *PostgresRepository) CreatePeriods(ctx context.Context, periods []equbdomain.Period) error {
	if len(periods) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(&periods, 100).Error
	if dbutil.IsUniqueViolation(err) {
		return equbdomain.ErrPeriodsInUse
	}
	return err
}

func (r *PostgresRepository) DeletePeriods(ctx context.Context, equbID string) error {
	return r.db.WithContext(ctx).Where("equb_id = ?", equbID).Delete(&equbdomain.Period{}).Error
}

// CountPeriodReferences counts attendance and payout rows that point at any
// period of the equb.
func (r *PostgresRepository) CountPeriodReferences(ctx context.Context, equbID string) (int64, error) {
	var attendance int64
	if err := r.db.WithContext(ctx).
		Table("attendances").
		Joins("join periods on periods.id = attendances.period_id").
		Where("periods.equb_id = ?", equbID).
		Count(&attendance).Error; err != nil {
		return 0, err
	}

	var payouts int64
	if err := r.db.WithContext(ctx).
		Table("payouts").
		Joins("join periods on periods.id = payouts.period_id").
		Where("periods.equb_id = ?", equbID).
		Count(&payouts).Error; err != nil {
		return 0, err
	}
	return attendance + payouts, nil
}

func (r *PostgresRepository) CountMembers(ctx context.Context, equbID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("members").Where("equb_id = ?", equbID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
