package bills

import (
	"time"

	"github.com/quartershq/quarters/internal/shared"
)

// CreateBillRequest groups fields required to record a vendor invoice.
type CreateBillRequest struct {
	VendorID      *int64    `json:"vendor_id,omitempty"`
	InvoiceNumber string    `json:"invoice_number" validate:"required,max=64"`
	Amount        float64   `json:"amount" validate:"gte=0"`
	DueDate       time.Time `json:"due_date" validate:"required"`
}

// UpdateBillRequest carries the mutable bill fields. Nil pointers leave the
// stored value unchanged.
type UpdateBillRequest struct {
	VendorID   *int64     `json:"vendor_id,omitempty"`
	Amount     *float64   `json:"amount,omitempty" validate:"omitempty,gte=0"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	Status     *string    `json:"status,omitempty"`
	ApprovedBy *int64     `json:"approved_by,omitempty"`
}

// ListBillsResponse wraps a paginated listing.
type ListBillsResponse struct {
	Bills      []Bill            `json:"bills"`
	Total      int               `json:"total"`
	Pagination shared.Pagination `json:"pagination"`
}
