package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"hoaxify/config"
)

// BlobStorage keeps attachment bytes under opaque names
type BlobStorage interface {
	Save(ctx context.Context, name string, reader io.Reader, mimeType string) (int64, error)
	// Delete removes the blob; a blob that is already gone is not an error
	Delete(ctx context.Context, name string) error
}

// SpaceReporter is implemented by backends with a finite local capacity
type SpaceReporter interface {
	FreeSpace() (uint64, error)
}

// New picks the backend configured by STORAGE_TYPE
func New(cfg *config.Config, log zerolog.Logger) (BlobStorage, error) {
	log = log.With().Str("component", "storage").Str("type", cfg.StorageType).Logger()
	switch cfg.StorageType {
	case config.StorageTypeDisk:
		return NewDiskStorage(cfg.FullAttachmentsPath(), log)
	case config.StorageTypeS3:
		return NewS3Storage(cfg, log)
	}
	return nil, fmt.Errorf("storage type unavailable: %q", cfg.StorageType)
}
