package attendance

import (
	"context"
	"errors"
	"time"

	attendancedomain "equb-app-go/internal/domain/attendance"
	equbdomain "equb-app-go/internal/domain/equb"
	memberdomain "equb-app-go/internal/domain/member"
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

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(attendancedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
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

// FindByPair returns nil without error when the pair has no row yet.
func (r *PostgresRepository) FindByPair(ctx context.Context, memberID, periodID string) (*attendancedomain.Attendance, error) {
	var record attendancedomain.Attendance
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND period_id = ?", memberID, periodID).
		Limit(1).
		Find(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == "" {
		return nil, nil
	}
	return &record, nil
}

func (r *PostgresRepository) Create(ctx context.Context, record *attendancedomain.Attendance) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error
	if dbutil.IsUniqueViolation(err) {
		return attendancedomain.ErrDuplicateAttendance
	}
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, record *attendancedomain.Attendance) error {
	return r.db.WithContext(ctx).
		Model(&attendancedomain.Attendance{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"status":      record.Status,
			"recorded_by": record.RecordedBy,
			"note":        record.Note,
			"updated_at":  record.UpdatedAt,
		}).Error
}

func (r *PostgresRepository) Get(ctx context.Context, adminID, id string) (*attendancedomain.Attendance, error) {
	var record attendancedomain.Attendance
	if err := r.scoped(ctx, adminID).
		Preload("Member.Person").
		Preload("Period").
		Where("attendances.id = ?", id).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendancedomain.ErrAttendanceNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *PostgresRepository) List(ctx context.Context, adminID string, filter attendancedomain.ListFilter) ([]attendancedomain.Attendance, int64, error) {
	query := r.scoped(ctx, adminID)
	if filter.MemberID != "" {
		query = query.Where("attendances.member_id = ?", filter.MemberID)
	}
	if filter.EqubID != "" {
		query = query.Where("members.equb_id = ?", filter.EqubID)
	}
	if filter.PeriodID != "" {
		query = query.Where("attendances.period_id = ?", filter.PeriodID)
	}
	if filter.Status != "" {
		query = query.Where("attendances.status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := dbutil.Like(filter.Search)
		query = query.
			Joins("join people on people.id = members.person_id").
			Where("LOWER(people.name) LIKE ? OR people.phone LIKE ?", like, like)
	}
	if filter.From != nil || filter.To != nil {
		query = query.Joins("join periods on periods.id = attendances.period_id")
		if filter.From != nil {
			query = query.Where("periods.start_date >= ?", *filter.From)
		}
		if filter.To != nil {
			query = query.Where("periods.end_date <= ?", *filter.To)
		}
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.
		Preload("Member.Person").
		Preload("Period").
		Order("attendances.recorded_at desc, attendances.id")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var records []attendancedomain.Attendance
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, adminID, id string) (bool, error) {
	owned := r.db.
		Table("members").
		Select("members.id").
		Joins("join equbs on equbs.id = members.equb_id").
		Where("equbs.admin_id = ?", adminID)
	result := r.db.WithContext(ctx).
		Where("id = ? AND member_id IN (?)", id, owned).
		Delete(&attendancedomain.Attendance{})
	return result.RowsAffected > 0, result.Error
}

// dueDateLayout keeps the cutoff a DATE literal so postgres never shifts it
// through the session time zone.
const dueDateLayout = "2006-01-02"

func (r *PostgresRepository) ListDuePeriods(ctx context.Context, before time.Time) ([]equbdomain.Period, error) {
	var periods []equbdomain.Period
	if err := r.db.WithContext(ctx).
		Where("end_date < ? AND is_completed = ?", before.Format(dueDateLayout), false).
		Order("end_date asc, sequence asc").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *PostgresRepository) LockEqubByID(ctx context.Context, equbID string) (*equbdomain.Equb, error) {
	var equb equbdomain.Equb
	if err := dbutil.ForUpdate(r.db.WithContext(ctx)).Where("id = ?", equbID).First(&equb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, equbdomain.ErrEqubNotFound
		}
		return nil, err
	}
	return &equb, nil
}

func (r *PostgresRepository) ListActiveMembersWithout(ctx context.Context, equbID, periodID string) ([]memberdomain.Member, error) {
	recorded := r.db.Model(&attendancedomain.Attendance{}).Select("member_id").Where("period_id = ?", periodID)

	var members []memberdomain.Member
	if err := r.db.WithContext(ctx).
		Where("equb_id = ? AND is_active = ?", equbID, true).
		Where("id NOT IN (?)", recorded).
		Order("created_at asc, id").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) CompletePeriod(ctx context.Context, periodID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&equbdomain.Period{}).
		Where("id = ? AND is_completed = ?", periodID, false).
		Updates(map[string]interface{}{
			"is_completed": true,
			"updated_at":   time.Now().UTC(),
		})
	return result.RowsAffected == 1, result.Error
}

func (r *PostgresRepository) scoped(ctx context.Context, adminID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&attendancedomain.Attendance{}).
		Joins("join members on members.id = attendances.member_id").
		Joins("join equbs on equbs.id = members.equb_id").
		Where("equbs.admin_id = ?", adminID)
}
