package journals

import (
	"time"

	"github.com/google/uuid"

	"github.com/quartershq/quarters/internal/accounting/accounts"
)

// JournalStatus enumerates journal lifecycle values.
type JournalStatus string

const (
	JournalStatusDraft  JournalStatus = "DRAFT"
	JournalStatusPosted JournalStatus = "POSTED"
)

// Journal is a double-entry bookkeeping unit. The draft to posted transition
// is one-way; no reversal operation exists.
type Journal struct {
	ID          int64         `json:"id"`
	OrgID       uuid.UUID     `json:"org_id"`
	Number      string        `json:"number"`
	Date        time.Time     `json:"date"`
	Description string        `json:"description,omitempty"`
	Status      JournalStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Lines       []JournalLine `json:"lines"`
}

// JournalLine stores a debit or credit amount against an account.
type JournalLine struct {
	ID          int64             `json:"id"`
	JournalID   int64             `json:"journal_id"`
	AccountID   int64             `json:"account_id"`
	Debit       float64           `json:"debit"`
	Credit      float64           `json:"credit"`
	Description string            `json:"description,omitempty"`
	Account     *accounts.Account `json:"account,omitempty"`
}
