package repository

import (
	"gorm.io/gorm"

	"github.com/promptpal/promptpal-server/internal/model"
)

type PromptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

func (r *PromptRepository) Create(prompt *model.Prompt) error {
	return r.db.Create(prompt).Error
}

func (r *PromptRepository) GetByID(id int64) (*model.Prompt, error) {
	var prompt model.Prompt
	err := r.db.Where("id = ?", id).First(&prompt).Error
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

// ListByUser returns the user's prompts, newest first.
func (r *PromptRepository) ListByUser(userID int64, page, pageSize int) ([]model.Prompt, int64, error) {
	var prompts []model.Prompt
	var total int64

	query := r.db.Model(&model.Prompt{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&prompts).Error
	if err != nil {
		return nil, 0, err
	}

	return prompts, total, nil
}

func (r *PromptRepository) Delete(id int64) error {
	return r.db.Delete(&model.Prompt{}, id).Error
}

func (r *PromptRepository) CountByUser(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Prompt{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
