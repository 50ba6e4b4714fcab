package tools

import (
	"context"

	"github.com/lumen-cms/toolgate/internal/caches"
	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/schema"
)

const domainSites = "sites"

// Sites are structural: adding a locale changes the URL space every
// other cache is keyed on.
func registerSiteTools(reg *dispatch.Registry, deps Deps) error {
	tools := []*dispatch.Tool{
		{
			Name:        "sites-create",
			Description: "Create a site (locale) definition",
			Domain:      domainSites,
			Action:      "configure",
			Category:    caches.CategoryStructural,
			Schema: schema.New().
				RequiredString("handle", "Unique site handle, e.g. default or fr").
				RequiredString("name", "Display name for the site").
				RequiredString("url", "Base URL the site is served from").
				String("locale", "BCP 47 locale tag, e.g. en_US").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				data := map[string]any{
					"name": inv.Args.String("name"),
					"url":  inv.Args.String("url"),
				}
				if locale := inv.Args.String("locale"); locale != "" {
					data["locale"] = locale
				}
				entity, err := deps.Repo.Create(ctx, domainSites, inv.Args.String("handle"), data)
				if err != nil {
					return nil, err
				}
				return map[string]any{"site": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "sites-get",
			Description: "Fetch one site by handle",
			Domain:      domainSites,
			Action:      "view",
			Schema: schema.New().
				RequiredString("handle", "Site handle to look up").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Find(ctx, domainSites, inv.Args.String("handle"))
				if err != nil {
					return nil, err
				}
				if entity == nil {
					return notFoundPayload("site"), nil
				}
				return map[string]any{"found": true, "site": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "sites-list",
			Description: "List site definitions",
			Domain:      domainSites,
			Action:      "view",
			Schema: schema.New().
				IntegerDefault("limit", "Maximum number of sites to return", 50).
				String("prefix", "Return only handles starting with this prefix").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entities, err := deps.Repo.List(ctx, domainSites, listFilter(inv.Args))
				if err != nil {
					return nil, err
				}
				return listPayload("sites", entities), nil
			},
		},
		{
			Name:        "sites-update",
			Description: "Update a site's configuration",
			Domain:      domainSites,
			Action:      "configure",
			Category:    caches.CategoryStructural,
			Schema: schema.New().
				RequiredString("handle", "Site handle to update").
				OpenObject("changes", "Configuration keys to merge into the site").
				Require("changes").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Update(ctx, domainSites, inv.Args.String("handle"), inv.Args.Map("changes"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"site": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "sites-delete",
			Description: "Delete a site definition by handle",
			Domain:      domainSites,
			Action:      "delete",
			Category:    caches.CategoryStructural,
			Schema: schema.New().
				RequiredString("handle", "Site handle to delete").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				handle := inv.Args.String("handle")
				if err := deps.Repo.Delete(ctx, domainSites, handle); err != nil {
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
