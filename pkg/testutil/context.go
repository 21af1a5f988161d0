package testutil

import (
	"net/http"
	"time"

	id "storeops/pkg/domain"
	"storeops/pkg/requestcontext"
)

// WithTenant attaches a tenant to the request context, as the bearer-token
// middleware does for authenticated requests.
func WithTenant(req *http.Request, tenantID id.TenantID) *http.Request {
	return req.WithContext(requestcontext.WithTenantID(req.Context(), tenantID))
}

// WithTenantAt attaches a tenant and pins the request time.
func WithTenantAt(req *http.Request, tenantID id.TenantID, at time.Time) *http.Request {
	ctx := requestcontext.WithTenantID(req.Context(), tenantID)
	ctx = requestcontext.WithTime(ctx, at)
	return req.WithContext(ctx)
}
