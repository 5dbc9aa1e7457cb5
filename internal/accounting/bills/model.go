package bills

import (
	"time"

	"github.com/google/uuid"
)

// BillStatus enumerates AP bill lifecycle values.
type BillStatus string

const (
	BillStatusPending  BillStatus = "PENDING"
	BillStatusApproved BillStatus = "APPROVED"
)

// Valid reports whether s is a known bill status.
func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusPending, BillStatusApproved:
		return true
	}
	return false
}

// Bill is a vendor invoice tracked through the approval lifecycle. Once
// ApprovedAt is stamped it is never cleared, even if the status later moves
// away from approved.
type Bill struct {
	ID            int64      `json:"id"`
	OrgID         uuid.UUID  `json:"org_id"`
	VendorID      *int64     `json:"vendor_id,omitempty"`
	InvoiceNumber string     `json:"invoice_number"`
	Amount        float64    `json:"amount"`
	DueDate       time.Time  `json:"due_date"`
	Status        BillStatus `json:"status"`
	ApprovedBy    *int64     `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
