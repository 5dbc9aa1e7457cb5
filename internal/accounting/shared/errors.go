// Package shared holds sentinel errors and constants common to the
// accounting modules.
package shared

import (
	"fmt"

	"github.com/quartershq/quarters/internal/platform/httpx"
)

// BalanceTolerance is the maximum accepted difference between total debits
// and total credits on a journal.
const BalanceTolerance = 0.01

var (
	ErrUnbalanced           = fmt.Errorf("%w: journal debits and credits do not balance", httpx.ErrInvalidState)
	ErrTooFewLines          = fmt.Errorf("%w: journal requires at least one line", httpx.ErrValidation)
	ErrJournalNotFound      = fmt.Errorf("%w: journal", httpx.ErrNotFound)
	ErrJournalAlreadyPosted = fmt.Errorf("%w: journal already posted", httpx.ErrInvalidState)
	ErrAccountNotFound      = fmt.Errorf("%w: account", httpx.ErrNotFound)
	ErrDuplicateAccountCode = fmt.Errorf("%w: account code already in use", httpx.ErrDuplicate)
	ErrInvalidAccountType   = fmt.Errorf("%w: unknown account type", httpx.ErrValidation)
	ErrBillNotFound         = fmt.Errorf("%w: bill", httpx.ErrNotFound)
	ErrInvalidBillStatus    = fmt.Errorf("%w: unknown bill status", httpx.ErrValidation)
)
