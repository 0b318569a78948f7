package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen --build_flags=--mod=mod -source=./recorder.go -destination=./test/mock_recorder.go -package test Recorder

type Recorder interface {
	// Record persists an audit entry, failing the operation on error.
	Record(ctx context.Context, entry *Entry) error

	// TryRecord persists an audit entry on a best-effort basis. Failures
	// are logged and swallowed so the audited operation is not rolled
	// back.
	TryRecord(ctx context.Context, entry *Entry)
}

func NewRecorder(repo Repository, logger *zap.SugaredLogger) (Recorder, error) {
	return &recorder{
		repo:   repo,
		logger: logger,
	}, nil
}

type recorder struct {
	repo   Repository
	logger *zap.SugaredLogger
}

func (r *recorder) Record(ctx context.Context, entry *Entry) error {
	r.prepare(entry)
	return r.repo.Insert(ctx, entry)
}

func (r *recorder) TryRecord(ctx context.Context, entry *Entry) {
	r.prepare(entry)
	if err := r.repo.Insert(ctx, entry); err != nil {
		r.logger.Errorw("unable to record audit entry",
			"action", entry.Action,
			"resourceType", entry.ResourceType,
			"resourceId", entry.ResourceId,
			zap.Error(err),
		)
	}
}

func (r *recorder) prepare(entry *Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.LogId == "" {
		entry.LogId = NewLogId(entry.Timestamp)
	}
}
