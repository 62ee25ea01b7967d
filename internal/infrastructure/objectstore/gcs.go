package objectstore

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/helpers"
)

// GCS stores assets in a Google Cloud Storage bucket. The remote id is the object name.
type GCS struct {
	client *storage.Client
	bucket string
}

func NewGCS(client *storage.Client, bucket string) (*GCS, error) {
	if client == nil || bucket == "" {
		return nil, errors.New("gcs not configured")
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Upload(ctx context.Context, r io.Reader, opts repository.UploadOptions) (*entity.UploadResult, error) {
	format := FormatFor(opts.ContentType)
	objectPath := ObjectKey(opts.Folder, opts.ID, format)

	wc := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = opts.ContentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return nil, err
	}
	if err := wc.Close(); err != nil {
		return nil, err
	}

	created := time.Now().UTC()
	provider := map[string]string{"bucket": g.bucket}
	if attrs := wc.Attrs(); attrs != nil {
		created = attrs.Created
		provider["generation"] = strconv.FormatInt(attrs.Generation, 10)
		provider["etag"] = attrs.Etag
	}
	return &entity.UploadResult{
		RemoteID:     objectPath,
		URL:          helpers.PublicURL(g.bucket, objectPath),
		Format:       format,
		ResourceType: ResourceTypeFor(opts.ContentType),
		CreatedAt:    created,
		Provider:     provider,
	}, nil
}

func (g *GCS) Delete(ctx context.Context, remoteID string) error {
	return g.client.Bucket(g.bucket).Object(remoteID).Delete(ctx)
}

var _ repository.RemoteAssetStore = (*GCS)(nil)
