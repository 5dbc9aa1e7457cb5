package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/quartershq/quarters/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrityScan re-checks posted journals against the balance
	// invariant.
	TaskLedgerIntegrityScan = "ledger:integrity_scan"
	// TaskReconStaleScan flags draft reconciliations that have sat idle past
	// the configured threshold.
	TaskReconStaleScan = "recon:stale_scan"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// LedgerIntegrityPayload scopes the integrity scan. An empty OrgID scans
// every organization.
type LedgerIntegrityPayload struct {
	OrgID string `json:"org_id,omitempty"`
}

// NewLedgerIntegrityTask constructs an Asynq task.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrityScan, data), nil
}

// ReconStalePayload configures the stale reconciliation scan. StaleAfterHours
// falls back to 720 (thirty days) when zero.
type ReconStalePayload struct {
	StaleAfterHours int `json:"stale_after_hours,omitempty"`
}

// NewReconStaleTask constructs an Asynq task.
func NewReconStaleTask(payload ReconStalePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconStaleScan, data), nil
}
