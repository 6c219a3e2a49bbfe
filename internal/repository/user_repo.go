package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/promptpal/promptpal-server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByProvider(provider, providerID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("provider = ? AND provider_id = ?", provider, providerID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// WithLock runs fn inside a transaction holding an exclusive row lock on the
// user, then persists any mutation fn made. Every read-modify-write of
// entitlement state (admission, reconciliation) goes through here so that
// concurrent requests for the same account serialize instead of racing.
func (r *UserRepository) WithLock(id int64, fn func(tx *gorm.DB, user *model.User) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}
		if err := fn(tx, &user); err != nil {
			return err
		}
		return tx.Save(&user).Error
	})
}

// WithLockByCustomerRef is WithLock keyed by the billing provider's customer
// reference. Returns gorm.ErrRecordNotFound when no account maps to the ref.
func (r *UserRepository) WithLockByCustomerRef(ref string, fn func(tx *gorm.DB, user *model.User) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("billing_customer_id = ?", ref).First(&user).Error; err != nil {
			return err
		}
		if err := fn(tx, &user); err != nil {
			return err
		}
		return tx.Save(&user).Error
	})
}

// ResetExpiredCounters zeroes the counter for every account whose anchor
// falls before the start of the current month. Optional sweep; admission
// resets lazily regardless, so a missed sweep never affects correctness.
func (r *UserRepository) ResetExpiredCounters(now time.Time) (int64, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	res := r.db.Model(&model.User{}).
		Where("last_reset_at < ?", monthStart).
		Updates(map[string]interface{}{
			"prompts_used":  0,
			"last_reset_at": now.UTC(),
		})
	return res.RowsAffected, res.Error
}
