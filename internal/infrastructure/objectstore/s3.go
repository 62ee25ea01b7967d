package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

// S3Config configures an S3 compatible bucket (AWS or MinIO).
type S3Config struct {
	Endpoint        string // full URL; empty for AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string // base used to build object URLs
}

// S3 stores assets in an S3 bucket. The remote id is the object key.
type S3 struct {
	client    *s3.Client
	uploader  *manager.Uploader
	bucket    string
	publicURL string
}

func NewS3(ctx context.Context, cfg S3Config, logger *logrus.Logger) (*S3, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("s3 credentials (S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY, S3_BUCKET) must be set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	st := &S3{
		client:    client,
		uploader:  manager.NewUploader(client),
		bucket:    cfg.Bucket,
		publicURL: publicBase(cfg),
	}
	if err := st.ensureBucket(ctx, cfg.Region, logger); err != nil {
		return nil, err
	}
	return st, nil
}

func publicBase(cfg S3Config) string {
	base := cfg.PublicURL
	if base == "" && cfg.Endpoint != "" {
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return strings.TrimRight(base, "/")
}

func (s *S3) ensureBucket(ctx context.Context, region string, logger *logrus.Logger) error {
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := s.client.HeadBucket(c, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err == nil {
		return nil
	}
	if logger != nil {
		logger.WithField("bucket", s.bucket).Info("bucket not found, creating")
	}
	in := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if region != "" && region != "us-east-1" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, in); err != nil {
		return fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}
	waiter := s3.NewBucketExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}, 30*time.Second); err != nil {
		return fmt.Errorf("wait for bucket %q: %w", s.bucket, err)
	}
	return nil
}
