package app

import (
	"context"

	"scholarforge/internal/model"
)

// The store interfaces below are satisfied by the gorm repositories.

type UserStore interface {
	Create(user *model.User) error
	Update(user *model.User) error
	Delete(id uint) error
	GetByUsername(username string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	GetByID(id uint) (*model.User, error)
}

type DraftStore interface {
	Create(draft *model.Draft) error
	Save(draft *model.Draft) error
	ListByUserID(userID uint, kind model.DraftKind) ([]model.Draft, error)
	GetByIDAndUserID(id, userID uint) (*model.Draft, error)
	DeleteByIDAndUserID(id, userID uint) error
	DeleteByUserID(userID uint) error
}

type PanelStore interface {
	Get(userID uint, panel string) (*model.PanelState, error)
	Upsert(state *model.PanelState) error
	Delete(userID uint, panel string) error
	DeleteByUserID(userID uint) error
}

type PanelCache interface {
	Get(ctx context.Context, userID uint, panel string) (string, bool, error)
	Set(ctx context.Context, userID uint, panel, payload string) error
	Delete(ctx context.Context, userID uint, panel string) error
}

type FieldTableStore interface {
	Create(table *model.FieldTable) error
	Save(table *model.FieldTable) error
	ListByUserID(userID uint) ([]model.FieldTable, error)
	GetByIDAndUserID(id, userID uint) (*model.FieldTable, error)
	DeleteByIDAndUserID(id, userID uint) error
	DeleteByUserID(userID uint) error
}

type ObservationStore interface {
	Create(obs *model.FieldObservation) error
	ListByUserID(userID uint, trip string) ([]model.FieldObservation, error)
	GetByIDAndUserID(id, userID uint) (*model.FieldObservation, error)
	DeleteByUserID(userID uint) error
}

type FileStore interface {
	Create(file *model.CompressedFile) error
	Save(file *model.CompressedFile) error
	GetByID(id uint) (*model.CompressedFile, error)
	GetByIDAndUserID(id, userID uint) (*model.CompressedFile, error)
	ListByUserID(userID uint, limit int) ([]model.CompressedFile, error)
	ListAllByUserID(userID uint) ([]model.CompressedFile, error)
	DeleteByIDAndUserID(id, userID uint) error
	DeleteByUserID(userID uint) error
}

type CompressJobPublisher interface {
	PublishCompressJob(ctx context.Context, job model.CompressJob) error
}

// UserDataPurger removes everything a service owns for one user.
type UserDataPurger interface {
	PurgeUser(ctx context.Context, userID uint) error
}
