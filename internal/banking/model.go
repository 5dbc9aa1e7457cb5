package banking

import (
	"time"

	"github.com/google/uuid"
)

// BankAccountType enumerates supported account kinds.
type BankAccountType string

const (
	AccountTypeChecking BankAccountType = "checking"
	AccountTypeSavings  BankAccountType = "savings"
	AccountTypeTrust    BankAccountType = "trust"
)

// Valid reports whether t is a known bank account type.
func (t BankAccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeTrust:
		return true
	}
	return false
}

// BankAccount holds metadata for an operating or trust account.
type BankAccount struct {
	ID            int64           `json:"id"`
	OrgID         uuid.UUID       `json:"org_id"`
	Name          string          `json:"name"`
	AccountNumber string          `json:"account_number"`
	RoutingNumber *string         `json:"routing_number,omitempty"`
	Type          BankAccountType `json:"type"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BankTransaction is one imported statement row. Transactions are append-only;
// re-importing the same rows creates duplicates unless the caller supplies an
// idempotency key.
type BankTransaction struct {
	ID            int64     `json:"id"`
	BankAccountID int64     `json:"bank_account_id"`
	ImportBatchID uuid.UUID `json:"import_batch_id"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	Amount        float64   `json:"amount"`
	Balance       *float64  `json:"balance,omitempty"`
	Reference     *string   `json:"reference,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// BankAccountDetail is a bank account with its recent transactions attached.
type BankAccountDetail struct {
	BankAccount
	Transactions []BankTransaction `json:"transactions"`
}
