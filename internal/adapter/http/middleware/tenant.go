package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	tenantKey contextKey = "tenant_id"
	actorKey  contextKey = "actor"
)

// Request headers carrying caller identity. Authentication happens upstream;
// the kernel trusts these headers and scopes every query by tenant.
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderActor    = "X-Actor"
)

// Tenant extracts the tenant from the X-Tenant-ID header and stores it on the
// request context. Requests without a tenant are rejected.
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(HeaderTenantID)
		if tenantID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"missing X-Tenant-ID header"}`))
			return
		}

		ctx := context.WithValue(r.Context(), tenantKey, tenantID)
		if actor := r.Header.Get(HeaderActor); actor != "" {
			ctx = context.WithValue(ctx, actorKey, actor)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantFromContext returns the tenant set by the Tenant middleware.
func TenantFromContext(ctx context.Context) string {
	v, _ := ctx.Value(tenantKey).(string)
	return v
}

// ActorFromContext returns the caller identity, defaulting to "api".
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey).(string); ok && v != "" {
		return v
	}
	return "api"
}
