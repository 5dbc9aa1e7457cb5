package accounts

import "github.com/quartershq/quarters/internal/shared"

// CreateAccountRequest carries fields for a new account.
type CreateAccountRequest struct {
	Code     string `json:"code" validate:"required,max=32"`
	Name     string `json:"name" validate:"required,max=255"`
	Type     string `json:"type" validate:"required"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// UpdateAccountRequest carries the in-place updatable fields. Account code is
// immutable once created.
type UpdateAccountRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
	ParentID *int64  `json:"parent_id,omitempty"`
}

// ListAccountsResponse wraps a paginated listing.
type ListAccountsResponse struct {
	Accounts   []Account         `json:"accounts"`
	Total      int               `json:"total"`
	Pagination shared.Pagination `json:"pagination"`
}
