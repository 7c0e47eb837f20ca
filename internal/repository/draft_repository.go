package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"scholarforge/internal/model"
)

type DraftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) Create(draft *model.Draft) error {
	if err := r.db.Create(draft).Error; err != nil {
		return fmt.Errorf("create draft failed: %w", err)
	}
	return nil
}

func (r *DraftRepository) Save(draft *model.Draft) error {
	if err := r.db.Save(draft).Error; err != nil {
		return fmt.Errorf("save draft failed: %w", err)
	}
	return nil
}

// ListByUserID lists drafts newest first; an empty kind lists every kind.
func (r *DraftRepository) ListByUserID(userID uint, kind model.DraftKind) ([]model.Draft, error) {
	q := r.db.Where("user_id = ?", userID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var drafts []model.Draft
	if err := q.Order("updated_at DESC").Find(&drafts).Error; err != nil {
		return nil, fmt.Errorf("list drafts failed: %w", err)
	}
	return drafts, nil
}

func (r *DraftRepository) GetByIDAndUserID(id, userID uint) (*model.Draft, error) {
	var draft model.Draft
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&draft).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get draft failed: %w", err)
	}
	return &draft, nil
}

func (r *DraftRepository) DeleteByIDAndUserID(id, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Draft{}).Error; err != nil {
		return fmt.Errorf("delete draft failed: %w", err)
	}
	return nil
}

func (r *DraftRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.Draft{}).Error; err != nil {
		return fmt.Errorf("delete user drafts failed: %w", err)
	}
	return nil
}
