package tools

import (
	"context"

	"github.com/lumen-cms/toolgate/internal/caches"
	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/schema"
)

const domainGlobals = "globals"

func registerGlobalTools(reg *dispatch.Registry, deps Deps) error {
	tools := []*dispatch.Tool{
		{
			Name:        "globals-create",
			Description: "Create a global value set",
			Domain:      domainGlobals,
			Action:      "configure",
			Category:    caches.CategoryContent,
			Schema: schema.New().
				RequiredString("handle", "Unique global set handle, e.g. footer").
				RequiredString("title", "Display title for the set").
				OpenObject("values", "Initial key/value pairs").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				data := map[string]any{"title": inv.Args.String("title")}
				for k, v := range inv.Args.Map("values") {
					data[k] = v
				}
				entity, err := deps.Repo.Create(ctx, domainGlobals, inv.Args.String("handle"), data)
				if err != nil {
					return nil, err
				}
				return map[string]any{"global": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "globals-get",
			Description: "Fetch one global value set by handle",
			Domain:      domainGlobals,
			Action:      "view",
			Schema: schema.New().
				RequiredString("handle", "Global set handle to look up").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Find(ctx, domainGlobals, inv.Args.String("handle"))
				if err != nil {
					return nil, err
				}
				if entity == nil {
					return notFoundPayload("global"), nil
				}
				return map[string]any{"found": true, "global": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "globals-list",
			Description: "List global value sets",
			Domain:      domainGlobals,
			Action:      "view",
			Schema: schema.New().
				IntegerDefault("limit", "Maximum number of sets to return", 50).
				String("prefix", "Return only handles starting with this prefix").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entities, err := deps.Repo.List(ctx, domainGlobals, listFilter(inv.Args))
				if err != nil {
					return nil, err
				}
				return listPayload("globals", entities), nil
			},
		},
		{
			Name:        "globals-update",
			Description: "Update values in a global set",
			Domain:      domainGlobals,
			Action:      "configure",
			Category:    caches.CategoryContent,
			Schema: schema.New().
				RequiredString("handle", "Global set handle to update").
				OpenObject("values", "Key/value pairs to merge into the set").
				Require("values").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Update(ctx, domainGlobals, inv.Args.String("handle"), inv.Args.Map("values"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"global": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "globals-delete",
			Description: "Delete a global value set by handle",
			Domain:      domainGlobals,
			Action:      "delete",
			Category:    caches.CategoryContent,
			Schema: schema.New().
				RequiredString("handle", "Global set handle to delete").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				handle := inv.Args.String("handle")
				if err := deps.Repo.Delete(ctx, domainGlobals, handle); err != nil {
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
