package payouts

import (
	"fmt"

	"github.com/quartershq/quarters/internal/platform/httpx"
)

var (
	ErrStatementNotFound   = fmt.Errorf("%w: owner statement", httpx.ErrNotFound)
	ErrBatchNotFound       = fmt.Errorf("%w: payout batch", httpx.ErrNotFound)
	ErrUnresolvedStatement = fmt.Errorf("%w: one or more statement ids did not resolve", httpx.ErrValidation)
)
