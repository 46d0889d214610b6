package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"imdb-catalog/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

const maxPersistedQuerySize = 64 << 10

var (
	ErrInvalidQueryID       = errors.New("invalid persisted query id")
	ErrPersistedQueryAbsent = errors.New("persisted query not found")

	queryIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
)

// PersistedQueryKey maps a query id to its object key, rejecting ids that
// could escape the prefix.
func PersistedQueryKey(prefix, id string) (string, error) {
	if !queryIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidQueryID, id)
	}
	return path.Join(strings.Trim(prefix, "/"), id+".json"), nil
}

// PersistedQueryStore keeps stored query documents in a MinIO/S3 bucket.
type PersistedQueryStore struct {
	client *minio.Client
	bucket string
	prefix string
	logger *logrus.Logger
}

func NewPersistedQueryStore(cfg *config.MinIOConfig, logger *logrus.Logger) (*PersistedQueryStore, error) {
	endpoint := cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"bucket":   cfg.BucketName,
		"prefix":   cfg.Prefix,
		"useSSL":   cfg.UseSSL,
	}).Info("Persisted query store initialized")

	store := &PersistedQueryStore{
		client: minioClient,
		bucket: cfg.BucketName,
		prefix: cfg.Prefix,
		logger: logger,
	}

	if err := store.ensureBucket(context.Background(), cfg.Region); err != nil {
		logger.WithError(err).Warn("Failed to configure persisted query bucket, but continuing...")
	}

	return store, nil
}

func (s *PersistedQueryStore) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		s.logger.WithField("bucket", s.bucket).Info("Bucket created successfully")
	}
	return nil
}

// Fetch returns the raw JSON document stored under id.
func (s *PersistedQueryStore) Fetch(ctx context.Context, id string) ([]byte, error) {
	key, err := PersistedQueryKey(s.prefix, id)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch persisted query %s: %w", id, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(io.LimitReader(obj, maxPersistedQuerySize+1))
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrPersistedQueryAbsent, id)
		}
		return nil, fmt.Errorf("failed to read persisted query %s: %w", id, err)
	}
	if len(body) > maxPersistedQuerySize {
		return nil, fmt.Errorf("persisted query %s exceeds %d bytes", id, maxPersistedQuerySize)
	}
	return body, nil
}

// Store uploads a query document under id, replacing any previous version.
func (s *PersistedQueryStore) Store(ctx context.Context, id string, document []byte) error {
	key, err := PersistedQueryKey(s.prefix, id)
	if err != nil {
		return err
	}
	if len(document) > maxPersistedQuerySize {
		return fmt.Errorf("persisted query %s exceeds %d bytes", id, maxPersistedQuerySize)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(document), int64(len(document)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("Failed to store persisted query")
		return fmt.Errorf("failed to store persisted query %s: %w", id, err)
	}

	s.logger.WithField("key", key).Info("Persisted query stored")
	return nil
}

// PresignedUpload is a browser-style POST upload: send FormData fields plus
// a "file" part to URL.
type PresignedUpload struct {
	URL      string            `json:"url"`
	FormData map[string]string `json:"form_data"`
}

// PresignUpload returns a POST policy for uploading a query document under
// id. The policy pins the key and content type and caps the body at the same
// size Store accepts.
func (s *PersistedQueryStore) PresignUpload(ctx context.Context, id string, expiry time.Duration) (*PresignedUpload, error) {
	key, err := PersistedQueryKey(s.prefix, id)
	if err != nil {
		return nil, err
	}

	policy := minio.NewPostPolicy()
	if err := errors.Join(
		policy.SetBucket(s.bucket),
		policy.SetKey(key),
		policy.SetExpires(time.Now().UTC().Add(expiry)),
		policy.SetContentType("application/json"),
		policy.SetContentLengthRange(1, maxPersistedQuerySize),
	); err != nil {
		return nil, fmt.Errorf("failed to build upload policy: %w", err)
	}

	presignedURL, formData, err := s.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate presigned URL")
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return &PresignedUpload{URL: presignedURL.String(), FormData: formData}, nil
}
