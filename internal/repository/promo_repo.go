package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/promptpal/promptpal-server/internal/model"
)

type PromoRepository struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

func (r *PromoRepository) Create(promo *model.Promocode) error {
	return r.db.Create(promo).Error
}

func (r *PromoRepository) GetByCode(code string) (*model.Promocode, error) {
	var promo model.Promocode
	err := r.db.Where("code = ?", code).First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *PromoRepository) List(page, pageSize int) ([]model.Promocode, int64, error) {
	var promos []model.Promocode
	var total int64

	if err := r.db.Model(&model.Promocode{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&promos).Error
	if err != nil {
		return nil, 0, err
	}

	return promos, total, nil
}

// WithCodeLock runs fn inside a transaction holding an exclusive row lock on
// the promocode, then persists any mutation fn made. Concurrent redemptions
// of the same code serialize on this lock.
func (r *PromoRepository) WithCodeLock(code string, fn func(tx *gorm.DB, promo *model.Promocode) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var promo model.Promocode
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", code).First(&promo).Error; err != nil {
			return err
		}
		if err := fn(tx, &promo); err != nil {
			return err
		}
		return tx.Save(&promo).Error
	})
}

// InsertRedemption records one redemption. The unique index on
// (user_id, promocode_id) makes a replay surface as gorm.ErrDuplicatedKey;
// the constraint, not an application check, enforces once-per-user.
func (r *PromoRepository) InsertRedemption(tx *gorm.DB, userID, promoID int64, now time.Time) error {
	redemption := &model.Redemption{
		UserID:      userID,
		PromocodeID: promoID,
		UsedAt:      now,
	}
	return tx.Create(redemption).Error
}

// DeactivateExpired flips is_active off for codes past their expiry.
func (r *PromoRepository) DeactivateExpired(now time.Time) (int64, error) {
	res := r.db.Model(&model.Promocode{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
