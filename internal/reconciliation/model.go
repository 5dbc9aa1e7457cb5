package reconciliation

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates reconciliation lifecycle values. Completed is terminal;
// there is no reopen transition.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusCompleted Status = "COMPLETED"
)

// Reconciliation pairs a bank statement against matched transaction and
// journal line references.
type Reconciliation struct {
	ID               int64      `json:"id"`
	OrgID            uuid.UUID  `json:"org_id"`
	BankAccountID    int64      `json:"bank_account_id"`
	StatementDate    time.Time  `json:"statement_date"`
	StatementBalance float64    `json:"statement_balance"`
	Status           Status     `json:"status"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Lines            []Line     `json:"lines"`
}

// Line is one matched pair. A line may reference a bank transaction, a
// journal line, both, or neither; the references are not cross-checked
// against the reconciliation's bank account.
type Line struct {
	ID                int64     `json:"id"`
	ReconciliationID  int64     `json:"reconciliation_id"`
	BankTransactionID *int64    `json:"bank_transaction_id,omitempty"`
	JournalLineID     *int64    `json:"journal_line_id,omitempty"`
	Amount            float64   `json:"amount"`
	Description       string    `json:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Summary reports the matched arithmetic at completion time. The difference
// is informational only; completion never fails on it.
type Summary struct {
	Reconciliation
	MatchedTotal float64 `json:"matched_total"`
	Difference   float64 `json:"difference"`
}
