package shared

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/quartershq/quarters/internal/platform/httpx"
)

// OrgHeader carries the caller's organization ID on every request.
// The ledger trusts this value; authorization happens upstream.
const OrgHeader = "X-Org-ID"

// ErrOrgRequired indicates a missing or malformed organization header.
var ErrOrgRequired = fmt.Errorf("%w: organization id required", httpx.ErrValidation)

type orgContextKey struct{}

// ContextWithOrg stores the organization ID in context.
func ContextWithOrg(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, orgContextKey{}, orgID)
}

// OrgFromContext extracts the organization ID from context.
func OrgFromContext(ctx context.Context) (uuid.UUID, bool) {
	orgID, ok := ctx.Value(orgContextKey{}).(uuid.UUID)
	return orgID, ok
}

// OrgFromRequest parses the organization header from the request.
func OrgFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(OrgHeader)
	if raw == "" {
		return uuid.Nil, ErrOrgRequired
	}
	orgID, err := uuid.Parse(raw)
	if err != nil || orgID == uuid.Nil {
		return uuid.Nil, ErrOrgRequired
	}
	return orgID, nil
}
