package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/lllypuk/styx/internal/application/media"
)

// S3Config - параметры S3 или совместимого хранилища
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // empty for AWS
	ForcePathStyle  bool
	AccessKeyID     string // empty: default credential chain
	SecretAccessKey string
	PublicBaseURL   string // empty: the URL S3 reports
	ACL             string
}

// S3Store uploads media to a bucket
type S3Store struct {
	uploader *s3manager.Uploader
	cfg      S3Config
	logger   *slog.Logger
}

// NewS3Store builds the AWS session and uploader
func NewS3Store(cfg S3Config, logger *slog.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}

	return &S3Store{
		uploader: s3manager.NewUploader(sess),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Put uploads the object; an existing key is overwritten
func (s *S3Store) Put(ctx context.Context, obj media.Object) (string, error) {
	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(obj.Key),
		Body:        obj.Body,
		ContentType: aws.String(obj.ContentType),
	}
	if s.cfg.ACL != "" {
		input.ACL = aws.String(s.cfg.ACL)
	}

	out, err := s.uploader.UploadWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("s3 upload %q: %w", obj.Key, err)
	}

	s.logger.DebugContext(ctx, "media stored",
		slog.String("key", obj.Key),
		slog.String("bucket", s.cfg.Bucket),
	)

	if s.cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + EscapeKey(obj.Key), nil
	}
	return out.Location, nil
}

var _ media.ObjectStore = (*S3Store)(nil)
