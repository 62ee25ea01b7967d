package objectstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
)

func (s *S3) Upload(ctx context.Context, r io.Reader, opts repository.UploadOptions) (*entity.UploadResult, error) {
	format := FormatFor(opts.ContentType)
	key := ObjectKey(opts.Folder, opts.ID, format)

	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(opts.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s to bucket %s: %w", key, s.bucket, err)
	}

	provider := map[string]string{"bucket": s.bucket, "location": out.Location}
	if out.ETag != nil {
		provider["etag"] = *out.ETag
	}
	if out.VersionID != nil {
		provider["version_id"] = *out.VersionID
	}
	return &entity.UploadResult{
		RemoteID:     key,
		URL:          s.publicURL + "/" + key,
		Format:       format,
		ResourceType: ResourceTypeFor(opts.ContentType),
		CreatedAt:    time.Now().UTC(),
		Provider:     provider,
	}, nil
}

func (s *S3) Delete(ctx context.Context, remoteID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(remoteID),
	})
	if err != nil {
		return fmt.Errorf("delete %s from bucket %s: %w", remoteID, s.bucket, err)
	}
	return nil
}

var _ repository.RemoteAssetStore = (*S3)(nil)
