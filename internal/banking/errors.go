package banking

import (
	"fmt"

	"github.com/quartershq/quarters/internal/platform/httpx"
)

var (
	ErrBankAccountNotFound = fmt.Errorf("%w: bank account", httpx.ErrNotFound)
	ErrInvalidAccountType  = fmt.Errorf("%w: unknown bank account type", httpx.ErrValidation)
	ErrDuplicateImport     = fmt.Errorf("%w: import batch already processed", httpx.ErrDuplicate)
)
