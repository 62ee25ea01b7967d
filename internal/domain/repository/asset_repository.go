package repository

import (
	"context"
	"io"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
)

// AssetRepository persists asset metadata rows.
type AssetRepository interface {
	Create(ctx context.Context, a *entity.Asset) error
	GetByID(ctx context.Context, id string) (*entity.Asset, error)
	Delete(ctx context.Context, id string) error
}

// UploadOptions name the remote object: ID is a fresh random identifier,
// Folder a logical prefix.
type UploadOptions struct {
	ID          string
	Folder      string
	ContentType string
}

// RemoteAssetStore is the external object store holding image bytes.
// It cannot take part in database transactions and Delete is not assumed
// to be idempotent.
type RemoteAssetStore interface {
	Upload(ctx context.Context, r io.Reader, opts UploadOptions) (*entity.UploadResult, error)
	Delete(ctx context.Context, remoteID string) error
}
