package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/quartershq/quarters/internal/jobs"
)

// ReconStaleJob flags draft reconciliations untouched past the threshold.
// It only logs; nothing is auto-completed on the caller's behalf.
type ReconStaleJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReconStaleJob initialises the stale reconciliation scan handler.
func NewReconStaleJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReconStaleJob {
	return &ReconStaleJob{Pool: pool, Logger: logger, Metrics: metrics}
}

// Handle executes the stale scan.
func (j *ReconStaleJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("recon stale: handler not configured")
	}
	var payload ReconStalePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.StaleAfterHours <= 0 {
		payload.StaleAfterHours = 720
	}

	tracker := j.metrics().Track(TaskReconStaleScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if j.Pool == nil {
		resultErr = errors.New("recon stale: pool not configured")
		return resultErr
	}

	cutoff := time.Now().Add(-time.Duration(payload.StaleAfterHours) * time.Hour)
	logger := j.logger().With(slog.Time("cutoff", cutoff))
	logger.Info("starting stale reconciliation scan")

	rows, err := j.Pool.Query(ctx, `SELECT id, org_id::text, bank_account_id, statement_date, updated_at
FROM reconciliations WHERE status='DRAFT' AND updated_at < $1 ORDER BY updated_at ASC`, cutoff)
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}
	defer rows.Close()

	stale := 0
	for rows.Next() {
		var id, accountID int64
		var org string
		var statementDate, updatedAt time.Time
		if err := rows.Scan(&id, &org, &accountID, &statementDate, &updatedAt); err != nil {
			resultErr = err
			return resultErr
		}
		stale++
		logger.Warn("stale draft reconciliation",
			slog.Int64("reconciliation_id", id),
			slog.String("org_id", org),
			slog.Int64("bank_account_id", accountID),
			slog.Time("statement_date", statementDate),
			slog.Time("last_touched", updatedAt),
		)
	}
	if err := rows.Err(); err != nil {
		resultErr = err
		return resultErr
	}

	logger.Info("completed stale reconciliation scan", slog.Int("stale", stale))
	return resultErr
}

func (j *ReconStaleJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReconStaleScan))
	}
	return slog.Default().With(slog.String("job", TaskReconStaleScan))
}

func (j *ReconStaleJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
