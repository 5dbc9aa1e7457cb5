package accounts

import (
	"time"

	"github.com/google/uuid"
)

// AccountType enumerates chart-of-account classifications.
type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeIncome    AccountType = "income"
	TypeExpense   AccountType = "expense"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense:
		return true
	}
	return false
}

// Account is a node in an organization's chart of accounts. The parent
// reference forms a tree; cycles are not actively validated.
type Account struct {
	ID        int64       `json:"id"`
	OrgID     uuid.UUID   `json:"org_id"`
	ParentID  *int64      `json:"parent_id,omitempty"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
