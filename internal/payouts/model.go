package payouts

import (
	"time"

	"github.com/google/uuid"
)

// StatementStatus enumerates owner statement lifecycle values. Only draft
// exists in the current scope.
type StatementStatus string

const StatementStatusDraft StatementStatus = "DRAFT"

// BatchStatus enumerates payout batch lifecycle values.
type BatchStatus string

const BatchStatusDraft BatchStatus = "DRAFT"

// OwnerStatement records caller-supplied period totals for a property owner.
// NetAmount is taken as given, not derived from income minus expenses.
type OwnerStatement struct {
	ID            int64           `json:"id"`
	OrgID         uuid.UUID       `json:"org_id"`
	ContactID     int64           `json:"contact_id"`
	PropertyID    *int64          `json:"property_id,omitempty"`
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	TotalIncome   float64         `json:"total_income"`
	TotalExpenses float64         `json:"total_expenses"`
	NetAmount     float64         `json:"net_amount"`
	Status        StatementStatus `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PayoutBatch groups owner statements into one payout. TotalAmount is the
// sum of the member statements' net amounts at creation time and is not
// recomputed if a statement changes afterwards. A statement may belong to
// more than one batch.
type PayoutBatch struct {
	ID          int64            `json:"id"`
	OrgID       uuid.UUID        `json:"org_id"`
	Name        string           `json:"name"`
	TotalAmount float64          `json:"total_amount"`
	Status      BatchStatus      `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	Statements  []OwnerStatement `json:"statements"`
}
