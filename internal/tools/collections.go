package tools

import (
	"context"

	"github.com/lumen-cms/toolgate/internal/caches"
	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/schema"
)

const domainCollections = "collections"

// Collections are structural: creating or reshaping one changes what the
// index and compiled views contain, so every mutation invalidates the
// structural cache set.
func registerCollectionTools(reg *dispatch.Registry, deps Deps) error {
	tools := []*dispatch.Tool{
		{
			Name:        "collections-create",
			Description: "Create a new collection with the given handle",
			Domain:      domainCollections,
			Action:      "create",
			Category:    caches.CategoryStructural,
			Schema: schema.New().
				RequiredString("handle", "Unique collection handle, e.g. blog").
				RequiredString("title", "Display title for the collection").
				Enum("route", "URL route pattern for entries in this collection",
					"/{slug}", "/{collection}/{slug}", "/{parent_uri}/{slug}").
				BoolDefault("dated", "Whether entries carry a publish date", false).
				StringArray("taxonomies", "Taxonomy handles attached to this collection").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				data := map[string]any{"title": inv.Args.String("title")}
				if inv.Args.Has("route") {
					data["route"] = inv.Args.String("route")
				}
				data["dated"] = inv.Args.Bool("dated")
				if taxonomies := inv.Args.StringSlice("taxonomies"); len(taxonomies) > 0 {
					data["taxonomies"] = taxonomies
				}
				entity, err := deps.Repo.Create(ctx, domainCollections, inv.Args.String("handle"), data)
				if err != nil {
					return nil, err
				}
				return map[string]any{"collection": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "collections-get",
			Description: "Fetch one collection by handle",
			Domain:      domainCollections,
			Action:      "view",
			Schema: schema.New().
				RequiredString("handle", "Collection handle to look up").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Find(ctx, domainCollections, inv.Args.String("handle"))
				if err != nil {
					return nil, err
				}
				if entity == nil {
					return notFoundPayload("collection"), nil
				}
				return map[string]any{"found": true, "collection": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "collections-list",
			Description: "List collections, optionally filtered by handle prefix",
			Domain:      domainCollections,
			Action:      "view",
			Schema: schema.New().
				IntegerDefault("limit", "Maximum number of collections to return", 50).
				String("prefix", "Return only handles starting with this prefix").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entities, err := deps.Repo.List(ctx, domainCollections, listFilter(inv.Args))
				if err != nil {
					return nil, err
				}
				return listPayload("collections", entities), nil
			},
		},
		{
			Name:        "collections-update",
			Description: "Update a collection's configuration",
			Domain:      domainCollections,
			Action:      "configure",
			Category:    caches.CategoryStructural,
			Schema: schema.New().
				RequiredString("handle", "Collection handle to update").
				OpenObject("changes", "Configuration keys to merge into the collection").
				Require("changes").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Update(ctx, domainCollections, inv.Args.String("handle"), inv.Args.Map("changes"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"collection": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "collections-delete",
			Description: "Delete a collection by handle",
			Domain:      domainCollections,
			Action:      "delete",
			Category:    caches.CategoryStructural,
			Schema: schema.New().
				RequiredString("handle", "Collection handle to delete").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				handle := inv.Args.String("handle")
				if err := deps.Repo.Delete(ctx, domainCollections, handle); err != nil {
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
