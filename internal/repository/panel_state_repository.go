package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scholarforge/internal/model"
)

type PanelStateRepository struct {
	db *gorm.DB
}

func NewPanelStateRepository(db *gorm.DB) *PanelStateRepository {
	return &PanelStateRepository{db: db}
}

func (r *PanelStateRepository) Get(userID uint, panel string) (*model.PanelState, error) {
	var state model.PanelState
	if err := r.db.Where("user_id = ? AND panel = ?", userID, panel).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get panel state failed: %w", err)
	}
	return &state, nil
}

func (r *PanelStateRepository) Upsert(state *model.PanelState) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "panel"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(state).Error
	if err != nil {
		return fmt.Errorf("upsert panel state failed: %w", err)
	}
	return nil
}

func (r *PanelStateRepository) Delete(userID uint, panel string) error {
	if err := r.db.Where("user_id = ? AND panel = ?", userID, panel).Delete(&model.PanelState{}).Error; err != nil {
		return fmt.Errorf("delete panel state failed: %w", err)
	}
	return nil
}

func (r *PanelStateRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.PanelState{}).Error; err != nil {
		return fmt.Errorf("delete user panel states failed: %w", err)
	}
	return nil
}
