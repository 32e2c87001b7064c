package payout

import (
	"context"
	"errors"
	"time"

	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	payoutdomain "equb-app-go/internal/domain/payout"
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

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(payoutdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) LockEqub(ctx context.Context, adminID, equbID string) (*equbdomain.Equb, error) {
	var equb equbdomain.Equb
	if err := dbutil.ForUpdate(r.db.WithContext(ctx)).
		Where("id = ? AND admin_id = ?", equbID, adminID).
		First(&equb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, equbdomain.ErrEqubNotFound
		}
		return nil, err
	}
	return &equb, nil
}

func (r *PostgresRepository) UpdateEqubProgress(ctx context.Context, equb *equbdomain.Equb) error {
	return r.db.WithContext(ctx).
		Model(&equbdomain.Equb{}).
		Where("id = ?", equb.ID).
		Updates(map[string]interface{}{
			"status":        equb.Status,
			"current_round": equb.CurrentRound,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *PostgresRepository) GetPeriod(ctx context.Context, periodID string) (*equbdomain.Period, error) {
	var period equbdomain.Period
	if err := r.db.WithContext(ctx).Where("id = ?", periodID).First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, equbdomain.ErrPeriodNotFound
		}
		return nil, err
	}
	return &period, nil
}

func (r *PostgresRepository) GetMember(ctx context.Context, adminID, memberID string) (*memberdomain.Member, error) {
	var member memberdomain.Member
	if err := r.db.WithContext(ctx).
		Joins("join equbs on equbs.id = members.equb_id").
		Where("members.id = ? AND equbs.admin_id = ?", memberID, adminID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, memberdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, equbID string) ([]memberdomain.Member, error) {
	var members []memberdomain.Member
	if err := r.db.WithContext(ctx).
		Where("equb_id = ?", equbID).
		Order("created_at asc, id").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) ListEligible(ctx context.Context, equbID string) ([]memberdomain.Member, error) {
	var members []memberdomain.Member
	if err := r.db.WithContext(ctx).
		Where("equb_id = ? AND is_active = ? AND has_received_payout = ?", equbID, true, false).
		Order("created_at asc, id").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) MarkPaid(ctx context.Context, memberID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&memberdomain.Member{}).
		Where("id = ? AND has_received_payout = ?", memberID, false).
		Updates(map[string]interface{}{
			"has_received_payout": true,
			"updated_at":          time.Now().UTC(),
		})
	return result.RowsAffected == 1, result.Error
}

func (r *PostgresRepository) CountProgress(ctx context.Context, equbID string) (int64, int64, error) {
	type progressRow struct {
		Active int64
		Paid   int64
	}

	var row progressRow
	if err := r.db.WithContext(ctx).
		Model(&memberdomain.Member{}).
		Select("COUNT(*) AS active, COALESCE(SUM(CASE WHEN has_received_payout THEN 1 ELSE 0 END), 0) AS paid").
		Where("equb_id = ? AND is_active = ?", equbID, true).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Active, row.Paid, nil
}

func (r *PostgresRepository) Create(ctx context.Context, payout *payoutdomain.Payout) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(payout).Error
	if dbutil.IsUniqueViolation(err) {
		return payoutdomain.ErrDuplicatePayout
	}
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, adminID, id string) (*payoutdomain.Payout, error) {
	var payout payoutdomain.Payout
	if err := r.scoped(ctx, adminID).
		Preload("Equb").
		Preload("Member.Person").
		Preload("Period").
		Where("payouts.id = ?", id).
		First(&payout).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payoutdomain.ErrPayoutNotFound
		}
		return nil, err
	}
	return &payout, nil
}

func (r *PostgresRepository) List(ctx context.Context, adminID string, filter payoutdomain.ListFilter) ([]payoutdomain.Payout, int64, error) {
	query := r.scoped(ctx, adminID)
	if filter.MemberID != "" {
		query = query.Where("payouts.member_id = ?", filter.MemberID)
	}
	if filter.EqubID != "" {
		query = query.Where("payouts.equb_id = ?", filter.EqubID)
	}
	if filter.PeriodID != "" {
		query = query.Where("payouts.period_id = ?", filter.PeriodID)
	}
	if filter.MinAmount != nil {
		query = query.Where("payouts.amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("payouts.amount <= ?", *filter.MaxAmount)
	}
	if filter.From != nil {
		query = query.Where("payouts.payout_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("payouts.payout_date <= ?", *filter.To)
	}
	if filter.Search != "" {
		like := dbutil.Like(filter.Search)
		query = query.
			Joins("join members on members.id = payouts.member_id").
			Joins("join people on people.id = members.person_id").
			Where("LOWER(people.name) LIKE ? OR people.phone LIKE ?", like, like)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.
		Preload("Equb").
		Preload("Member.Person").
		Preload("Period").
		Order("payouts.payout_date desc, payouts.id")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var payouts []payoutdomain.Payout
	if err := query.Find(&payouts).Error; err != nil {
		return nil, 0, err
	}
	return payouts, total, nil
}

func (r *PostgresRepository) scoped(ctx context.Context, adminID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&payoutdomain.Payout{}).
		Joins("join equbs on equbs.id = payouts.equb_id").
		Where("equbs.admin_id = ?", adminID)
}
