package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/quartershq/quarters/internal/jobs"
)

// balanceTolerance mirrors the creation-time check on journals. Posted
// journals whose stored lines drift past it are flagged, not mutated.
const balanceTolerance = 0.01

// LedgerIntegrityJob re-sums the lines of posted journals per organization
// and reports any that no longer balance. Lines have no mutation endpoint,
// so a hit here means out-of-band writes.
type LedgerIntegrityJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLedgerIntegrityJob initialises the integrity scan handler.
func NewLedgerIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{Pool: pool, Logger: logger, Metrics: metrics}
}

// Handle executes the integrity scan.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("ledger integrity: handler not configured")
	}
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskLedgerIntegrityScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	logger := j.logger()
	logger.Info("starting ledger integrity scan")

	orgs, err := j.orgScopes(ctx, payload.OrgID)
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	imbalanced := make([]int, len(orgs))
	for i, org := range orgs {
		g.Go(func() error {
			count, err := j.scanOrg(gctx, org)
			if err != nil {
				return err
			}
			imbalanced[i] = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}

	total := 0
	for i, org := range orgs {
		if imbalanced[i] == 0 {
			continue
		}
		total += imbalanced[i]
		logger.Warn("posted journals out of balance",
			slog.String("org_id", org),
			slog.Int("journals", imbalanced[i]),
		)
		j.metrics().AddImbalances(org, imbalanced[i])
	}

	logger.Info("completed ledger integrity scan",
		slog.Int("orgs", len(orgs)),
		slog.Int("imbalanced", total),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *LedgerIntegrityJob) orgScopes(ctx context.Context, orgID string) ([]string, error) {
	if j.Pool == nil {
		return nil, errors.New("ledger integrity: pool not configured")
	}
	if orgID != "" {
		return []string{orgID}, nil
	}
	rows, err := j.Pool.Query(ctx, `SELECT DISTINCT org_id::text FROM journals WHERE status='POSTED'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orgs []string
	for rows.Next() {
		var org string
		if err := rows.Scan(&org); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (j *LedgerIntegrityJob) scanOrg(ctx context.Context, orgID string) (int, error) {
	rows, err := j.Pool.Query(ctx, `SELECT j.id, COALESCE(SUM(l.debit),0)::double precision, COALESCE(SUM(l.credit),0)::double precision
FROM journals j JOIN journal_lines l ON l.journal_id = j.id
WHERE j.org_id=$1::uuid AND j.status='POSTED'
GROUP BY j.id`, orgID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	count := 0
	for rows.Next() {
		var id int64
		var debit, credit float64
		if err := rows.Scan(&id, &debit, &credit); err != nil {
			return 0, err
		}
		if math.Abs(debit-credit) > balanceTolerance {
			count++
		}
	}
	return count, rows.Err()
}

func (j *LedgerIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLedgerIntegrityScan))
	}
	return slog.Default().With(slog.String("job", TaskLedgerIntegrityScan))
}

func (j *LedgerIntegrityJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
