package tools

import (
	"context"
	"fmt"

	"github.com/lumen-cms/toolgate/internal/caches"
	"github.com/lumen-cms/toolgate/internal/content"
	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/schema"
)

const domainEntries = "entries"

// Entry handles are namespaced by collection so two collections can both
// have an "about" entry.
func entryHandle(collection, slug string) string {
	return collection + "/" + slug
}

func registerEntryTools(reg *dispatch.Registry, deps Deps) error {
	tools := []*dispatch.Tool{
		{
			Name:        "entries-create",
			Description: "Create an entry in a collection",
			Domain:      domainEntries,
			Action:      "create",
			Category:    caches.CategoryContent,
			Schema: schema.New().
				RequiredString("collection", "Collection the entry belongs to").
				RequiredString("slug", "URL slug, unique within the collection").
				RequiredString("title", "Entry title").
				EnumDefault("status", "Publish state of the entry", "draft",
					"draft", "published", "scheduled").
				OpenObject("fields", "Blueprint field values for the entry").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				collection := inv.Args.String("collection")
				parent, err := deps.Repo.Find(ctx, domainCollections, collection)
				if err != nil {
					return nil, err
				}
				if parent == nil {
					return nil, fmt.Errorf("collection %q: %w", collection, content.ErrNotFound)
				}
				data := map[string]any{
					"collection": collection,
					"title":      inv.Args.String("title"),
					"status":     inv.Args.String("status"),
				}
				for k, v := range inv.Args.Map("fields") {
					data[k] = v
				}
				entity, err := deps.Repo.Create(ctx, domainEntries,
					entryHandle(collection, inv.Args.String("slug")), data)
				if err != nil {
					return nil, err
				}
				return map[string]any{"entry": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "entries-get",
			Description: "Fetch one entry by collection and slug",
			Domain:      domainEntries,
			Action:      "view",
			Schema: schema.New().
				RequiredString("collection", "Collection the entry belongs to").
				RequiredString("slug", "Entry slug to look up").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Find(ctx, domainEntries,
					entryHandle(inv.Args.String("collection"), inv.Args.String("slug")))
				if err != nil {
					return nil, err
				}
				if entity == nil {
					return notFoundPayload("entry"), nil
				}
				return map[string]any{"found": true, "entry": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "entries-list",
			Description: "List entries, optionally scoped to one collection",
			Domain:      domainEntries,
			Action:      "view",
			Schema: schema.New().
				String("collection", "Return only entries in this collection").
				IntegerDefault("limit", "Maximum number of entries to return", 50).
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				filter := content.Filter{Limit: inv.Args.Int("limit")}
				if collection := inv.Args.String("collection"); collection != "" {
					filter.HandlePrefix = collection + "/"
				}
				entities, err := deps.Repo.List(ctx, domainEntries, filter)
				if err != nil {
					return nil, err
				}
				return listPayload("entries", entities), nil
			},
		},
		{
			Name:        "entries-update",
			Description: "Update an entry's fields",
			Domain:      domainEntries,
			Action:      "edit",
			Category:    caches.CategoryContent,
			Schema: schema.New().
				RequiredString("collection", "Collection the entry belongs to").
				RequiredString("slug", "Entry slug to update").
				OpenObject("fields", "Field values to merge into the entry").
				Require("fields").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Update(ctx, domainEntries,
					entryHandle(inv.Args.String("collection"), inv.Args.String("slug")),
					inv.Args.Map("fields"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"entry": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "entries-delete",
			Description: "Delete an entry by collection and slug",
			Domain:      domainEntries,
			Action:      "delete",
			Category:    caches.CategoryContent,
			Schema: schema.New().
				RequiredString("collection", "Collection the entry belongs to").
				RequiredString("slug", "Entry slug to delete").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				handle := entryHandle(inv.Args.String("collection"), inv.Args.String("slug"))
				if err := deps.Repo.Delete(ctx, domainEntries, handle); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": true, "handle": handle}, nil
			},
		},
	}
	for _, t := range tools {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}
