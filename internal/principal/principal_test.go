package principal

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer ctk_abcdef1234")
	if err != nil {
		t.Fatal(err)
	}
	if token != "ctk_abcdef1234" {
		t.Fatalf("unexpected token: %s", token)
	}

	if _, err := ExtractBearerToken(""); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated for empty header, got %v", err)
	}
	if _, err := ExtractBearerToken("Bearer sk_wrong_prefix"); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated for wrong prefix, got %v", err)
	}
}

func TestPrincipal_Can(t *testing.T) {
	p := &Principal{ID: "u1", Capabilities: []string{"edit entries", "view collections"}}
	if !p.Can("edit entries") {
		t.Fatal("expected capability to be granted")
	}
	if p.Can("delete entries") {
		t.Fatal("expected missing capability to be denied")
	}

	super := &Principal{ID: "admin", Super: true}
	if !super.Can("anything at all") {
		t.Fatal("super principal should hold every capability")
	}

	var nilP *Principal
	if nilP.Can("edit entries") {
		t.Fatal("nil principal should hold nothing")
	}
}

func TestStaticResolver(t *testing.T) {
	r := NewStaticResolver()
	p, err := r.Resolve(context.Background(), "ctk_devkey123")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Super {
		t.Fatal("static resolver should grant super")
	}
	if _, err := r.Resolve(context.Background(), "ctk"); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated for short token, got %v", err)
	}
}

// countingKeyStore counts lookups so cache behavior is observable.
type countingKeyStore struct {
	row       *keyRow
	err       error
	callCount *int
}

func (s *countingKeyStore) LookupByPrefix(_ context.Context, _ string) (*keyRow, error) {
	*s.callCount++
	if s.err != nil {
		return nil, s.err
	}
	return s.row, nil
}

func TestPostgresResolver_ResolveAndCache(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	token := "ctk_live_0123456789"
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	callCount := 0
	store := &countingKeyStore{
		row: &keyRow{
			PrincipalID:  "user-1",
			APIKeyHash:   string(hash),
			Capabilities: `["edit entries"]`,
		},
		callCount: &callCount,
	}
	r := NewPostgresResolverWithStore(store, 30*time.Second, logger)

	p, err := r.Resolve(context.Background(), token)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "user-1" || !p.Can("edit entries") {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if callCount != 1 {
		t.Fatalf("expected 1 DB call, got %d", callCount)
	}

	// Second resolve — cache hit
	if _, err := r.Resolve(context.Background(), token); err != nil {
		t.Fatal(err)
	}
	if callCount != 1 {
		t.Fatalf("expected still 1 DB call (cache hit), got %d", callCount)
	}
}

func TestPostgresResolver_BadKey(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	hash, _ := bcrypt.GenerateFromPassword([]byte("ctk_live_rightkey"), bcrypt.MinCost)

	callCount := 0
	store := &countingKeyStore{
		row:       &keyRow{PrincipalID: "user-1", APIKeyHash: string(hash)},
		callCount: &callCount,
	}
	r := NewPostgresResolverWithStore(store, 30*time.Second, logger)

	if _, err := r.Resolve(context.Background(), "ctk_live_wrongkey"); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPostgresResolver_UnknownPrefix(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	callCount := 0
	store := &countingKeyStore{err: sql.ErrNoRows, callCount: &callCount}
	r := NewPostgresResolverWithStore(store, 30*time.Second, logger)

	if _, err := r.Resolve(context.Background(), "ctk_nobody_here"); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCache_StaleEntrySignalsRefreshOnce(t *testing.T) {
	c := NewCache(-time.Second) // everything is immediately stale
	c.Set("key", &Principal{ID: "u1"})

	first := c.Get("key")
	if !first.Hit || !first.NeedsRefresh {
		t.Fatalf("expected stale hit needing refresh, got %+v", first)
	}
	second := c.Get("key")
	if !second.Hit || second.NeedsRefresh {
		t.Fatalf("only one caller should win the refresh CAS, got %+v", second)
	}
}
