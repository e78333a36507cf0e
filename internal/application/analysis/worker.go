package analysis

import (
	"context"
	"path"
	"time"

	"github.com/turtacn/lipinski-analyzer/internal/domain/compound"
	"github.com/turtacn/lipinski-analyzer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lipinski-analyzer/pkg/errors"
)

// UploadFetcher reads an uploaded table from object storage.
type UploadFetcher interface {
	Fetch(ctx context.Context, key string, maxSize int64) ([]byte, error)
}

// Lock is a held distributed lock.
type Lock interface {
	Unlock(ctx context.Context) error
}

// Locker acquires named locks. ok is false when another holder has the lock.
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (lock Lock, ok bool, err error)
}

// RequestHandler processes AnalysisRequested events.
type RequestHandler struct {
	service Service
	uploads UploadFetcher
	locker  Locker
	lockTTL time.Duration
	maxSize int64
	logger  logging.Logger
}

// NewRequestHandler builds a handler. locker may be nil, in which case
// redelivered requests are analyzed again.
func NewRequestHandler(svc Service, uploads UploadFetcher, locker Locker, maxSize int64, lockTTL time.Duration, logger logging.Logger) *RequestHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &RequestHandler{
		service: svc,
		uploads: uploads,
		locker:  locker,
		lockTTL: lockTTL,
		maxSize: maxSize,
		logger:  logger.Named("worker"),
	}
}

// Handle fetches the upload named by req and analyzes it with export.
// Input errors are logged and swallowed because redelivery cannot fix them;
// infrastructure errors are returned so the consumer retries.
func (h *RequestHandler) Handle(ctx context.Context, req compound.AnalysisRequested) error {
	if h.locker != nil {
		lock, ok, err := h.locker.TryLock(ctx, "analysis:"+req.ObjectKey, h.lockTTL)
		if err != nil {
			return err
		}
		if !ok {
			h.logger.Info("Analysis already in progress", logging.String("object_key", req.ObjectKey))
			return nil
		}
		defer func() {
			if err := lock.Unlock(context.Background()); err != nil {
				h.logger.Warn("Failed to release lock", logging.String("object_key", req.ObjectKey), logging.Err(err))
			}
		}()
	}

	data, err := h.uploads.Fetch(ctx, req.ObjectKey, h.maxSize)
	if err != nil {
		if permanent(err) {
			h.logger.Warn("Dropping analysis request", logging.String("object_key", req.ObjectKey), logging.Err(err))
			return nil
		}
		return err
	}

	name := req.FileName
	if name == "" {
		name = path.Base(req.ObjectKey)
	}
	res, err := h.service.Analyze(ctx, &AnalyzeInput{
		FileName:       name,
		Content:        data,
		ColumnOverride: req.Column,
		Export:         true,
		Source:         SourceWorker,
	})
	if err != nil {
		if permanent(err) {
			h.logger.Warn("Dropping analysis request", logging.String("object_key", req.ObjectKey), logging.Err(err))
			return nil
		}
		return err
	}

	h.logger.Info("Processed analysis request",
		logging.String("object_key", req.ObjectKey),
		logging.String("run_id", res.Run.ID),
		logging.Strings("warnings", res.Warnings))
	return nil
}

// permanent reports errors caused by the request itself.
func permanent(err error) bool {
	code := errors.GetCode(err)
	return code != errors.ErrCodeTimeout && errors.IsClientError(code)
}

//Personal.AI order the ending
