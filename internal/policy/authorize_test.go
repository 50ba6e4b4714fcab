package policy

import (
	"context"
	"testing"
	"time"

	"github.com/lumen-cms/toolgate/internal/principal"
	"go.uber.org/zap"
)

func TestAuthorize_CLIBypass(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	// A limiter that would deny everything; cli must never consult it.
	limiter := NewRateLimiter(NewMemoryCounter(), 0, time.Minute, logger)
	a := NewAuthorizer(limiter, logger)

	for _, domain := range []string{"entries", "collections", "users", "caches"} {
		d := a.Authorize(context.Background(), Request{
			Tool:    domain + "-delete",
			Action:  "delete",
			Domain:  domain,
			Context: CallerContext{Mode: ModeCLI},
		})
		if !d.Allowed || d.State != StateAuthorized {
			t.Fatalf("%s: cli context must always be authorized, got %+v", domain, d)
		}
	}
}

func TestAuthorize_RemoteWithoutPrincipal(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	a := NewAuthorizer(nil, logger)

	d := a.Authorize(context.Background(), Request{
		Tool:    "entries-create",
		Action:  "create",
		Domain:  "entries",
		Context: CallerContext{Mode: ModeRemote},
	})
	if d.Allowed {
		t.Fatal("remote context without principal must be denied")
	}
	if d.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", d.State)
	}
}

func TestAuthorize_CapabilityRequired(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	a := NewAuthorizer(nil, logger)

	p := &principal.Principal{ID: "u1", Capabilities: []string{"view entries"}}
	ctx := CallerContext{Mode: ModeRemote, Principal: p}

	allowed := a.Authorize(context.Background(), Request{
		Tool: "entries-list", Action: "view", Domain: "entries", Context: ctx,
	})
	if !allowed.Allowed {
		t.Fatalf("expected view to be allowed: %+v", allowed)
	}

	denied := a.Authorize(context.Background(), Request{
		Tool: "entries-delete", Action: "delete", Domain: "entries", Context: ctx,
	})
	if denied.Allowed || denied.State != StateUnauthorized {
		t.Fatalf("expected unauthorized, got %+v", denied)
	}
	// The denial reason names only action and resource, not the capability.
	if denied.Reason != "permission denied: cannot delete entries" {
		t.Fatalf("unexpected reason: %s", denied.Reason)
	}
}

func TestAuthorize_RateLimited(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	limiter := NewRateLimiter(NewMemoryCounter(), 2, time.Minute, logger)
	a := NewAuthorizer(limiter, logger)

	ctx := CallerContext{Mode: ModeRemote, Principal: &principal.Principal{ID: "u1", Super: true}}
	req := Request{Tool: "entries-list", Action: "view", Domain: "entries", Context: ctx}

	for i := 0; i < 2; i++ {
		if d := a.Authorize(context.Background(), req); !d.Allowed {
			t.Fatalf("attempt %d should be allowed: %+v", i+1, d)
		}
	}
	d := a.Authorize(context.Background(), req)
	if d.Allowed || d.State != StateRateLimited {
		t.Fatalf("third attempt should be rate limited, got %+v", d)
	}
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	limiter := NewRateLimiter(NewMemoryCounter(), 1, 10*time.Millisecond, logger)

	key := RateKey("entries-list", "view", ModeRemote, "u1")
	if !limiter.Allow(context.Background(), key) {
		t.Fatal("first attempt should pass")
	}
	if limiter.Allow(context.Background(), key) {
		t.Fatal("second attempt inside window should fail")
	}
	time.Sleep(15 * time.Millisecond)
	if !limiter.Allow(context.Background(), key) {
		t.Fatal("attempt after window expiry should pass")
	}
}

// failingCounter simulates a broken limiter backend.
type failingCounter struct{}

func (failingCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, context.DeadlineExceeded
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	limiter := NewRateLimiter(failingCounter{}, 1, time.Minute, logger)
	if !limiter.Allow(context.Background(), "any") {
		t.Fatal("limiter must fail open when the counter store errors")
	}
}

func TestCapabilityFor_TableAndFallback(t *testing.T) {
	// Table mappings that differ from the generic "<action> <domain>"
	// string prove the table is consulted, not the fallback.
	tableCases := map[[2]string]string{
		{"create", "collections"}: "configure collections",
		{"delete", "collections"}: "configure collections",
		{"delete", "globals"}:     "configure globals",
		{"delete", "sites"}:       "configure sites",
		{"clear", "caches"}:       "manage caches",
		{"edit", "entries"}:       "edit entries",
		{"manage", "users"}:       "manage users",
	}
	for pair, want := range tableCases {
		if got := CapabilityFor(pair[0], pair[1]); got != want {
			t.Errorf("CapabilityFor(%s, %s) = %s, want %s", pair[0], pair[1], got, want)
		}
	}
	if got := CapabilityFor("lint", "templates"); got != "lint templates" {
		t.Fatalf("fallback should be \"<action> <domain>\", got %s", got)
	}
}
