package reconciliation

import (
	"time"

	"github.com/quartershq/quarters/internal/shared"
)

// CreateReconciliationRequest starts a draft reconciliation for a statement.
type CreateReconciliationRequest struct {
	BankAccountID    int64     `json:"bank_account_id" validate:"required"`
	StatementDate    time.Time `json:"statement_date" validate:"required"`
	StatementBalance float64   `json:"statement_balance"`
}

// AddLineRequest appends one matched pair. Both references are optional and
// accepted as given.
type AddLineRequest struct {
	BankTransactionID *int64  `json:"bank_transaction_id,omitempty"`
	JournalLineID     *int64  `json:"journal_line_id,omitempty"`
	Amount            float64 `json:"amount"`
	Description       string  `json:"description,omitempty" validate:"max=256"`
}

// ListReconciliationsResponse wraps a paginated listing.
type ListReconciliationsResponse struct {
	Reconciliations []Reconciliation  `json:"reconciliations"`
	Total           int               `json:"total"`
	Pagination      shared.Pagination `json:"pagination"`
}
