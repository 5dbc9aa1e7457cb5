package banking

import (
	"time"

	"github.com/google/uuid"

	"github.com/quartershq/quarters/internal/shared"
)

// CreateBankAccountRequest groups fields required to register a bank account.
type CreateBankAccountRequest struct {
	Name          string  `json:"name" validate:"required,max=128"`
	AccountNumber string  `json:"account_number" validate:"required,max=34"`
	RoutingNumber *string `json:"routing_number,omitempty" validate:"omitempty,max=16"`
	Type          string  `json:"type" validate:"required"`
}

// TransactionImportRow is one statement row of an import request.
type TransactionImportRow struct {
	Date        time.Time `json:"date" validate:"required"`
	Description string    `json:"description" validate:"required,max=256"`
	Amount      float64   `json:"amount"`
	Balance     *float64  `json:"balance,omitempty"`
	Reference   *string   `json:"reference,omitempty"`
}

// ImportTransactionsRequest is a batch of statement rows to append.
type ImportTransactionsRequest struct {
	Transactions []TransactionImportRow `json:"transactions" validate:"required,min=1,dive"`
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	ImportBatchID uuid.UUID `json:"import_batch_id"`
	Imported      int       `json:"imported"`
}

// ListBankAccountsResponse wraps a paginated listing.
type ListBankAccountsResponse struct {
	Accounts   []BankAccount     `json:"accounts"`
	Total      int               `json:"total"`
	Pagination shared.Pagination `json:"pagination"`
}
