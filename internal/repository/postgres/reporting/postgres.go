package reporting

import (
	"context"
	"errors"

	attendancedomain "equb-app-go/internal/domain/attendance"
	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
	payoutdomain "equb-app-go/internal/domain/payout"
	reportingdomain "equb-app-go/internal/domain/reporting"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListEqubs(ctx context.Context, adminID string) ([]equbdomain.Equb, error) {
	var equbs []equbdomain.Equb
	if err := r.db.WithContext(ctx).Where("admin_id = ?", adminID).Find(&equbs).Error; err != nil {
		return nil, err
	}
	return equbs, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, adminID string) ([]memberdomain.Member, error) {
	var members []memberdomain.Member
	if err := r.db.WithContext(ctx).
		Joins("join equbs on equbs.id = members.equb_id").
		Where("equbs.admin_id = ?", adminID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) ListCurrentRoundPaid(ctx context.Context, adminID string) ([]attendancedomain.Attendance, error) {
	var records []attendancedomain.Attendance
	if err := r.db.WithContext(ctx).
		Joins("join periods on periods.id = attendances.period_id").
		Joins("join equbs on equbs.id = periods.equb_id").
		Where("equbs.admin_id = ? AND periods.sequence = equbs.current_round AND attendances.status = ?", adminID, attendancedomain.StatusPaid).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PostgresRepository) GetEqub(ctx context.Context, adminID, equbID string) (*equbdomain.Equb, error) {
	var equb equbdomain.Equb
	if err := r.db.WithContext(ctx).Where("id = ? AND admin_id = ?", equbID, adminID).First(&equb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, equbdomain.ErrEqubNotFound
		}
		return nil, err
	}
	return &equb, nil
}

func (r *PostgresRepository) ListEqubMembers(ctx context.Context, equbID string) ([]memberdomain.Member, error) {
	var members []memberdomain.Member
	if err := r.db.WithContext(ctx).Where("equb_id = ?", equbID).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) CountPeriods(ctx context.Context, equbID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&equbdomain.Period{}).Where("equb_id = ?", equbID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) CountAttendance(ctx context.Context, equbID string) ([]reportingdomain.AttendanceCount, error) {
	var rows []reportingdomain.AttendanceCount
	if err := r.db.WithContext(ctx).
		Table("attendances").
		Select("attendances.member_id AS member_id, attendances.status AS status, COUNT(*) AS count").
		Joins("join members on members.id = attendances.member_id").
		Where("members.equb_id = ?", equbID).
		Group("attendances.member_id, attendances.status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) SumPayouts(ctx context.Context, equbID string) (decimal.Decimal, error) {
	return r.sumPayouts(ctx, "equb_id = ?", equbID)
}

func (r *PostgresRepository) GetMember(ctx context.Context, adminID, memberID string) (*memberdomain.Member, error) {
	var member memberdomain.Member
	if err := r.db.WithContext(ctx).
		Preload("Equb").
		Preload("Person").
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

func (r *PostgresRepository) CountMemberAttendance(ctx context.Context, memberID string) (int64, int64, error) {
	type countRow struct {
		Paid   int64
		Missed int64
	}

	var row countRow
	if err := r.db.WithContext(ctx).
		Model(&attendancedomain.Attendance{}).
		Select(
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS paid, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS missed",
			attendancedomain.StatusPaid, attendancedomain.StatusMissed,
		).
		Where("member_id = ?", memberID).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Paid, row.Missed, nil
}

func (r *PostgresRepository) SumMemberPayouts(ctx context.Context, memberID string) (decimal.Decimal, error) {
	return r.sumPayouts(ctx, "member_id = ?", memberID)
}

func (r *PostgresRepository) CountMemberships(ctx context.Context, personID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&memberdomain.Member{}).Where("person_id = ?", personID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) RecentCollections(ctx context.Context, adminID string, limit int) ([]attendancedomain.Attendance, error) {
	var records []attendancedomain.Attendance
	if err := r.db.WithContext(ctx).
		Preload("Member.Equb").
		Preload("Member.Person").
		Joins("join members on members.id = attendances.member_id").
		Joins("join equbs on equbs.id = members.equb_id").
		Where("equbs.admin_id = ? AND attendances.status = ?", adminID, attendancedomain.StatusPaid).
		Order("attendances.recorded_at desc, attendances.id").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PostgresRepository) RecentPayouts(ctx context.Context, adminID string, limit int) ([]payoutdomain.Payout, error) {
	var payouts []payoutdomain.Payout
	if err := r.db.WithContext(ctx).
		Preload("Equb").
		Preload("Member.Person").
		Joins("join equbs on equbs.id = payouts.equb_id").
		Where("equbs.admin_id = ?", adminID).
		Order("payouts.payout_date desc, payouts.id").
		Limit(limit).
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *PostgresRepository) sumPayouts(ctx context.Context, where string, arg string) (decimal.Decimal, error) {
	type sumRow struct {
		Total decimal.NullDecimal
	}

	var row sumRow
	if err := r.db.WithContext(ctx).
		Model(&payoutdomain.Payout{}).
		Select("SUM(amount) AS total").
		Where(where, arg).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal, nil
}
