package reconciliation

import (
	"fmt"

	"github.com/quartershq/quarters/internal/platform/httpx"
)

var (
	ErrNotFound         = fmt.Errorf("%w: reconciliation", httpx.ErrNotFound)
	ErrAlreadyCompleted = fmt.Errorf("%w: reconciliation already completed", httpx.ErrInvalidState)
)
