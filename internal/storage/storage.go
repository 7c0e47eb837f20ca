package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"scholarforge/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// Storage keeps binary objects (uploads, compressed results, photos).
type Storage interface {
	Put(ctx context.Context, key, contentType string, data io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg.LocalPath)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewKey builds a unique object key under prefix, e.g.
// "originals/7/3f/3f2a...-holiday.png".
func NewKey(prefix string, userID uint, filename string) string {
	id := uuid.NewString()
	name := sanitize(filename)
	if name == "" {
		name = "file"
	}
	return path.Join(prefix, fmt.Sprintf("%d", userID), id[:2], id+"-"+name)
}

func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}
