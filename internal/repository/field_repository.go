package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"scholarforge/internal/model"
)

type FieldTableRepository struct {
	db *gorm.DB
}

func NewFieldTableRepository(db *gorm.DB) *FieldTableRepository {
	return &FieldTableRepository{db: db}
}

func (r *FieldTableRepository) Create(table *model.FieldTable) error {
	if err := r.db.Create(table).Error; err != nil {
		return fmt.Errorf("create field table failed: %w", err)
	}
	return nil
}

func (r *FieldTableRepository) Save(table *model.FieldTable) error {
	if err := r.db.Save(table).Error; err != nil {
		return fmt.Errorf("save field table failed: %w", err)
	}
	return nil
}

func (r *FieldTableRepository) ListByUserID(userID uint) ([]model.FieldTable, error) {
	var tables []model.FieldTable
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list field tables failed: %w", err)
	}
	return tables, nil
}

func (r *FieldTableRepository) GetByIDAndUserID(id, userID uint) (*model.FieldTable, error) {
	var table model.FieldTable
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get field table failed: %w", err)
	}
	return &table, nil
}

func (r *FieldTableRepository) DeleteByIDAndUserID(id, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.FieldTable{}).Error; err != nil {
		return fmt.Errorf("delete field table failed: %w", err)
	}
	return nil
}

type ObservationRepository struct {
	db *gorm.DB
}

func NewObservationRepository(db *gorm.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

func (r *ObservationRepository) Create(obs *model.FieldObservation) error {
	if err := r.db.Create(obs).Error; err != nil {
		return fmt.Errorf("create observation failed: %w", err)
	}
	return nil
}

// ListByUserID lists observations oldest first; an empty trip lists all trips.
func (r *ObservationRepository) ListByUserID(userID uint, trip string) ([]model.FieldObservation, error) {
	q := r.db.Where("user_id = ?", userID)
	if trip != "" {
		q = q.Where("trip = ?", trip)
	}
	var list []model.FieldObservation
	if err := q.Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list observations failed: %w", err)
	}
	return list, nil
}

func (r *FieldTableRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.FieldTable{}).Error; err != nil {
		return fmt.Errorf("delete user field tables failed: %w", err)
	}
	return nil
}

func (r *ObservationRepository) GetByIDAndUserID(id, userID uint) (*model.FieldObservation, error) {
	var obs model.FieldObservation
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&obs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get observation failed: %w", err)
	}
	return &obs, nil
}

func (r *ObservationRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.FieldObservation{}).Error; err != nil {
		return fmt.Errorf("delete user observations failed: %w", err)
	}
	return nil
}
