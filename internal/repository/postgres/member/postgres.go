package member

import (
	"context"
	"errors"

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

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(memberdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetEqub(ctx context.Context, adminID, equbID string) (*equbdomain.Equb, error) {
	return findEqub(r.db.WithContext(ctx), adminID, equbID)
}

func (r *PostgresRepository) LockEqub(ctx context.Context, adminID, equbID string) (*equbdomain.Equb, error) {
	return findEqub(dbutil.ForUpdate(r.db.WithContext(ctx)), adminID, equbID)
}

func findEqub(db *gorm.DB, adminID, equbID string) (*equbdomain.Equb, error) {
	var equb equbdomain.Equb
	if err := db.Where("id = ? AND admin_id = ?", equbID, adminID).First(&equb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, equbdomain.ErrEqubNotFound
		}
		return nil, err
	}
	return &equb, nil
}

func (r *PostgresRepository) ReopenEqub(ctx context.Context, equbID string) error {
	return r.db.WithContext(ctx).
		Model(&equbdomain.Equb{}).
		Where("id = ?", equbID).
		Updates(map[string]interface{}{
			"status":        equbdomain.StatusActive,
			"current_round": 1,
		}).Error
}

func (r *PostgresRepository) CreatePerson(ctx context.Context, person *memberdomain.Person) error {
	err := r.db.WithContext(ctx).Create(person).Error
	if dbutil.IsUniqueViolation(err) {
		return memberdomain.ErrPhoneTaken
	}
	return err
}

func (r *PostgresRepository) GetPerson(ctx context.Context, personID string) (*memberdomain.Person, error) {
	var person memberdomain.Person
	if err := r.db.WithContext(ctx).Where("id = ?", personID).First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, memberdomain.ErrPersonNotFound
		}
		return nil, err
	}
	return &person, nil
}

func (r *PostgresRepository) ListPeople(ctx context.Context, search string, limit, offset int) ([]memberdomain.Person, int64, error) {
	query := r.db.WithContext(ctx).Model(&memberdomain.Person{})
	if search != "" {
		like := dbutil.Like(search)
		query = query.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, like)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("name asc, id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var people []memberdomain.Person
	if err := query.Find(&people).Error; err != nil {
		return nil, 0, err
	}
	return people, total, nil
}

func (r *PostgresRepository) IsMember(ctx context.Context, equbID, personID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&memberdomain.Member{}).
		Where("equb_id = ? AND person_id = ?", equbID, personID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreateMember(ctx context.Context, member *memberdomain.Member) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error
	if dbutil.IsUniqueViolation(err) {
		return memberdomain.ErrAlreadyMember
	}
	return err
}

func (r *PostgresRepository) GetMember(ctx context.Context, adminID, memberID string) (*memberdomain.Member, error) {
	var member memberdomain.Member
	if err := r.db.WithContext(ctx).
		Preload("Person").
		Preload("Equb").
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

func (r *PostgresRepository) ListMembers(ctx context.Context, adminID string, filter memberdomain.ListFilter) ([]memberdomain.Member, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&memberdomain.Member{}).
		Joins("join equbs on equbs.id = members.equb_id").
		Joins("join people on people.id = members.person_id").
		Where("equbs.admin_id = ?", adminID)
	if filter.EqubID != "" {
		query = query.Where("members.equb_id = ?", filter.EqubID)
	}
	if filter.IsActive != nil {
		query = query.Where("members.is_active = ?", *filter.IsActive)
	}
	if filter.HasReceivedPayout != nil {
		query = query.Where("members.has_received_payout = ?", *filter.HasReceivedPayout)
	}
	if filter.Share != "" {
		query = query.Where("members.share = ?", filter.Share)
	}
	if filter.Search != "" {
		like := dbutil.Like(filter.Search)
		query = query.Where("LOWER(people.name) LIKE ? OR people.phone LIKE ?", like, like)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Person").Order("members.created_at asc, members.id")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var members []memberdomain.Member
	if err := query.Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (r *PostgresRepository) UpdateMember(ctx context.Context, member *memberdomain.Member) error {
	return r.db.WithContext(ctx).
		Model(&memberdomain.Member{}).
		Where("id = ?", member.ID).
		Updates(map[string]interface{}{
			"share":      member.Share,
			"is_active":  member.IsActive,
			"updated_at": member.UpdatedAt,
		}).Error
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, adminID, memberID string) (bool, error) {
	owned := r.db.Model(&equbdomain.Equb{}).Select("id").Where("admin_id = ?", adminID)
	result := r.db.WithContext(ctx).
		Where("id = ? AND equb_id IN (?)", memberID, owned).
		Delete(&memberdomain.Member{})
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) ListEligible(ctx context.Context, equbID string) ([]memberdomain.Member, error) {
	var members []memberdomain.Member
	if err := r.db.WithContext(ctx).
		Preload("Person").
		Where("equb_id = ? AND is_active = ? AND has_received_payout = ?", equbID, true, false).
		Order("created_at asc, id").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) ResetPayouts(ctx context.Context, equbID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&memberdomain.Member{}).
		Where("equb_id = ? AND has_received_payout = ?", equbID, true).
		Update("has_received_payout", false)
	return result.RowsAffected, result.Error
}
