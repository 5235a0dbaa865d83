package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTenantMiddlewareSetsContext(t *testing.T) {
	var gotTenant, gotActor string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = TenantFromContext(r.Context())
		gotActor = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set(HeaderTenantID, "tenant-1")
	req.Header.Set(HeaderActor, "alice")
	rr := httptest.NewRecorder()

	Tenant(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotTenant != "tenant-1" {
		t.Fatalf("expected tenant-1 in context, got %q", gotTenant)
	}
	if gotActor != "alice" {
		t.Fatalf("expected actor alice, got %q", gotActor)
	}
}

func TestTenantMiddlewareRejectsMissingHeader(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	rr := httptest.NewRecorder()

	Tenant(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if called {
		t.Fatal("handler should not run without a tenant")
	}
}

func TestActorFromContextDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if actor := ActorFromContext(req.Context()); actor != "api" {
		t.Fatalf("expected default actor api, got %q", actor)
	}
}
