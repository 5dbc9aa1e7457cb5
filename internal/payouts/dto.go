package payouts

import (
	"time"

	"github.com/quartershq/quarters/internal/shared"
)

// CreateStatementRequest records caller-supplied totals for an owner period.
type CreateStatementRequest struct {
	ContactID     int64     `json:"contact_id" validate:"required"`
	PropertyID    *int64    `json:"property_id,omitempty"`
	PeriodStart   time.Time `json:"period_start" validate:"required"`
	PeriodEnd     time.Time `json:"period_end" validate:"required"`
	TotalIncome   float64   `json:"total_income"`
	TotalExpenses float64   `json:"total_expenses"`
	NetAmount     float64   `json:"net_amount"`
}

// CreateBatchRequest groups statements into one payout.
type CreateBatchRequest struct {
	Name         string  `json:"name" validate:"required,max=128"`
	StatementIDs []int64 `json:"statement_ids" validate:"required,min=1"`
}

// ListStatementsResponse wraps a paginated listing.
type ListStatementsResponse struct {
	Statements []OwnerStatement  `json:"statements"`
	Total      int               `json:"total"`
	Pagination shared.Pagination `json:"pagination"`
}

// ListBatchesResponse wraps a paginated listing.
type ListBatchesResponse struct {
	Batches    []PayoutBatch     `json:"batches"`
	Total      int               `json:"total"`
	Pagination shared.Pagination `json:"pagination"`
}
