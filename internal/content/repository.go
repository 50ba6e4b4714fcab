package content

import (
	"context"
	"errors"
	"time"
)

// Entity is one content resource instance: a collection, entry, global
// set, user, role, group, site or form, keyed by (domain, handle).
type Entity struct {
	Domain    string
	Handle    string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows a List call.
type Filter struct {
	Limit        int
	HandlePrefix string
}

// Sentinel conditions repositories report as values, not storage faults.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Repository is the persistence surface the tool handlers consume.
// Find returns (nil, nil) when the handle is absent: "not found" is an
// ordinary value on reads, an error only on mutations that require the
// target to exist.
type Repository interface {
	Find(ctx context.Context, domain, handle string) (*Entity, error)
	List(ctx context.Context, domain string, filter Filter) ([]*Entity, error)
	Create(ctx context.Context, domain, handle string, data map[string]any) (*Entity, error)
	Update(ctx context.Context, domain, handle string, patch map[string]any) (*Entity, error)
	Delete(ctx context.Context, domain, handle string) error
}
