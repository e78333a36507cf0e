package minio

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/tabular"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// Object key prefixes.
const (
	UploadPrefix = "uploads/"
	ExportPrefix = "exports/"
)

// ReportStore reads uploaded tables and writes exported results.
type ReportStore struct {
	api           ObjectAPI
	bucket        string
	presignExpiry time.Duration
	logger        logging.Logger
	now           func() time.Time
	// open reads an object; replaced in tests because *minio.Object cannot
	// be constructed without a server.
	open func(ctx context.Context, key string) (io.ReadCloser, error)
}

func NewReportStore(api ObjectAPI, bucket string, presignExpiry time.Duration, log logging.Logger) *ReportStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &ReportStore{
		api:           api,
		bucket:        bucket,
		presignExpiry: presignExpiry,
		logger:        log.Named("report_store"),
		now:           time.Now,
	}
	s.open = func(ctx context.Context, key string) (io.ReadCloser, error) {
		return s.api.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	}
	return s
}

// SaveUpload stores an input table and returns its object key.
func (s *ReportStore) SaveUpload(ctx context.Context, fileName string, data []byte) (string, error) {
	key := UploadPrefix + s.now().UTC().Format("2006/01/02") + "/" + uuid.NewString() + "/" + cleanName(fileName)
	contentType := "application/octet-stream"
	if f, err := tabular.FormatFromName(fileName); err == nil {
		contentType = f.ContentType()
	}
	if err := s.put(ctx, key, data, contentType, map[string]string{"file-name": fileName}); err != nil {
		return "", err
	}
	return key, nil
}

// SaveExport stores the augmented table of a run and returns its object key.
func (s *ReportStore) SaveExport(ctx context.Context, runID string, format tabular.Format, data []byte) (string, error) {
	key := ExportPrefix + runID + "/" + format.ExportName()
	if err := s.put(ctx, key, data, format.ContentType(), map[string]string{"run-id": runID}); err != nil {
		return "", err
	}
	return key, nil
}

func (s *ReportStore) put(ctx context.Context, key string, data []byte, contentType string, meta map[string]string) error {
	info, err := s.api.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: meta,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageFailed, "failed to upload object").WithDetail("key=" + key)
	}
	s.logger.Debug("Stored object",
		logging.String("key", key),
		logging.Int64("size", info.Size),
		logging.String("etag", info.ETag),
	)
	return nil
}

// Fetch reads an object. Objects larger than maxSize bytes are rejected when
// maxSize is positive.
func (s *ReportStore) Fetch(ctx context.Context, key string, maxSize int64) ([]byte, error) {
	info, err := s.api.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, s.mapError(err, key)
	}
	if maxSize > 0 && info.Size > maxSize {
		return nil, errors.Newf(errors.ErrCodePayloadTooLarge, "object %s is %d bytes, limit is %d", key, info.Size, maxSize)
	}

	rc, err := s.open(ctx, key)
	if err != nil {
		return nil, s.mapError(err, key)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, s.mapError(err, key)
	}
	return data, nil
}

// PresignedURL returns a time-limited download link for key.
func (s *ReportStore) PresignedURL(ctx context.Context, key string) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", `attachment; filename="`+path.Base(key)+`"`)
	u, err := s.api.PresignedGetObject(ctx, s.bucket, key, s.presignExpiry, params)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageFailed, "failed to presign object").WithDetail("key=" + key)
	}
	return u.String(), nil
}

// HealthCheck verifies the bucket is reachable.
func (s *ReportStore) HealthCheck(ctx context.Context) error {
	ok, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageFailed, "object storage health check failed")
	}
	if !ok {
		return errors.Newf(errors.ErrCodeStorageFailed, "bucket %s does not exist", s.bucket)
	}
	return nil
}

func (s *ReportStore) mapError(err error, key string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return errors.Newf(errors.ErrCodeObjectNotFound, "object %s not found", key)
	}
	return errors.Wrap(err, errors.ErrCodeStorageFailed, "object storage request failed").WithDetail("key=" + key)
}

// cleanName keeps only the base name so user input cannot escape the key
// prefix.
func cleanName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

//Personal.AI order the ending
