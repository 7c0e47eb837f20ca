package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"scholarforge/internal/model"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(file *model.CompressedFile) error {
	if err := r.db.Create(file).Error; err != nil {
		return fmt.Errorf("create file record failed: %w", err)
	}
	return nil
}

func (r *FileRepository) Save(file *model.CompressedFile) error {
	if err := r.db.Save(file).Error; err != nil {
		return fmt.Errorf("save file record failed: %w", err)
	}
	return nil
}

func (r *FileRepository) GetByID(id uint) (*model.CompressedFile, error) {
	var file model.CompressedFile
	if err := r.db.First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file record failed: %w", err)
	}
	return &file, nil
}

func (r *FileRepository) GetByIDAndUserID(id, userID uint) (*model.CompressedFile, error) {
	var file model.CompressedFile
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file record failed: %w", err)
	}
	return &file, nil
}

func (r *FileRepository) ListByUserID(userID uint, limit int) ([]model.CompressedFile, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var files []model.CompressedFile
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list file records failed: %w", err)
	}
	return files, nil
}

func (r *FileRepository) DeleteByIDAndUserID(id, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.CompressedFile{}).Error; err != nil {
		return fmt.Errorf("delete file record failed: %w", err)
	}
	return nil
}

// ListAllByUserID returns every record without a limit, for account purges.
func (r *FileRepository) ListAllByUserID(userID uint) ([]model.CompressedFile, error) {
	var files []model.CompressedFile
	if err := r.db.Where("user_id = ?", userID).Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list all file records failed: %w", err)
	}
	return files, nil
}

func (r *FileRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.CompressedFile{}).Error; err != nil {
		return fmt.Errorf("delete user file records failed: %w", err)
	}
	return nil
}
