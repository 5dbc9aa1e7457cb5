package journals

import (
	"fmt"
	"math"
	"time"

	"github.com/quartershq/quarters/internal/accounting/shared"
	"github.com/quartershq/quarters/internal/platform/httpx"
	internalShared "github.com/quartershq/quarters/internal/shared"
)

// JournalLineRequest describes one line of a journal creation request.
type JournalLineRequest struct {
	AccountID   int64   `json:"account_id" validate:"required"`
	Debit       float64 `json:"debit" validate:"gte=0"`
	Credit      float64 `json:"credit" validate:"gte=0"`
	Description string  `json:"description,omitempty"`
}

// CreateJournalRequest groups fields required to create a draft journal.
type CreateJournalRequest struct {
	Number      string               `json:"number" validate:"required,max=64"`
	Date        time.Time            `json:"date" validate:"required"`
	Description string               `json:"description,omitempty"`
	Lines       []JournalLineRequest `json:"lines" validate:"required"`
}

// Validate enforces the balance invariant. Debits and credits must agree
// within shared.BalanceTolerance; this is the sole enforcement point for
// journal balance in the create path.
func (in CreateJournalRequest) Validate() error {
	if len(in.Lines) == 0 {
		return shared.ErrTooFewLines
	}
	var debit, credit float64
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("%w: line %d missing account", httpx.ErrValidation, idx)
		}
		if line.Debit < 0 || line.Credit < 0 {
			return fmt.Errorf("%w: line %d negative amount", httpx.ErrValidation, idx)
		}
		debit += line.Debit
		credit += line.Credit
	}
	if math.Abs(debit-credit) > shared.BalanceTolerance {
		return shared.ErrUnbalanced
	}
	return nil
}

// ListJournalsResponse wraps a paginated listing.
type ListJournalsResponse struct {
	Journals   []Journal                 `json:"journals"`
	Total      int                       `json:"total"`
	Pagination internalShared.Pagination `json:"pagination"`
}
