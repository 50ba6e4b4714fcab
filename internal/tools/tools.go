// Package tools defines the CMS tool catalog: per-resource CRUD tools,
// cache clearing and template linting. Each resource gets its own file
// with its own schemas and handlers; the shapes are similar on purpose,
// a shared CRUD abstraction would force every resource through the most
// general schema and hide the per-resource differences that matter
// (publish state on entries, email on users, locale on sites).
package tools

import (
	"time"

	"github.com/lumen-cms/toolgate/internal/caches"
	"github.com/lumen-cms/toolgate/internal/content"
	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/schema"
)

// Deps carries the domain collaborators the handlers close over.
type Deps struct {
	Repo        content.Repository
	Invalidator caches.Invalidator
}

// RegisterAll registers the full tool catalog.
func RegisterAll(reg *dispatch.Registry, deps Deps) error {
	for _, register := range []func(*dispatch.Registry, Deps) error{
		registerCollectionTools,
		registerEntryTools,
		registerGlobalTools,
		registerUserTools,
		registerRoleTools,
		registerGroupTools,
		registerSiteTools,
		registerFormTools,
		registerCacheTools,
		registerTemplateTools,
	} {
		if err := register(reg, deps); err != nil {
			return err
		}
	}
	return nil
}

// entityPayload is the wire shape of one stored resource.
func entityPayload(e *content.Entity) map[string]any {
	return map[string]any{
		"handle":     e.Handle,
		"data":       e.Data,
		"created_at": e.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// listPayload is the wire shape of a List result.
func listPayload(key string, entities []*content.Entity) map[string]any {
	items := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		items = append(items, entityPayload(e))
	}
	return map[string]any{key: items, "count": len(items)}
}

func listFilter(args schema.Args) content.Filter {
	return content.Filter{
		Limit:        args.Int("limit"),
		HandlePrefix: args.String("prefix"),
	}
}

func notFoundPayload(key string) map[string]any {
	return map[string]any{"found": false, key: nil}
}
