package tools

import (
	"context"

	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/schema"
)

const domainGroups = "groups"

func registerGroupTools(reg *dispatch.Registry, deps Deps) error {
	tools := []*dispatch.Tool{
		{
			Name:        "groups-create",
			Description: "Create a user group",
			Domain:      domainGroups,
			Action:      "manage",
			Schema: schema.New().
				RequiredString("handle", "Unique group handle, e.g. marketing").
				RequiredString("title", "Display title for the group").
				StringArray("roles", "Role handles every member inherits").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				data := map[string]any{"title": inv.Args.String("title")}
				if roles := inv.Args.StringSlice("roles"); len(roles) > 0 {
					data["roles"] = roles
				}
				entity, err := deps.Repo.Create(ctx, domainGroups, inv.Args.String("handle"), data)
				if err != nil {
					return nil, err
				}
				return map[string]any{"group": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "groups-get",
			Description: "Fetch one user group by handle",
			Domain:      domainGroups,
			Action:      "view",
			Schema: schema.New().
				RequiredString("handle", "Group handle to look up").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Find(ctx, domainGroups, inv.Args.String("handle"))
				if err != nil {
					return nil, err
				}
				if entity == nil {
					return notFoundPayload("group"), nil
				}
				return map[string]any{"found": true, "group": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "groups-list",
			Description: "List user groups",
			Domain:      domainGroups,
			Action:      "view",
			Schema: schema.New().
				IntegerDefault("limit", "Maximum number of groups to return", 50).
				String("prefix", "Return only handles starting with this prefix").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entities, err := deps.Repo.List(ctx, domainGroups, listFilter(inv.Args))
				if err != nil {
					return nil, err
				}
				return listPayload("groups", entities), nil
			},
		},
		{
			Name:        "groups-update",
			Description: "Update a group's title or role assignments",
			Domain:      domainGroups,
			Action:      "manage",
			Schema: schema.New().
				RequiredString("handle", "Group handle to update").
				OpenObject("changes", "Fields to merge into the group").
				Require("changes").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Update(ctx, domainGroups, inv.Args.String("handle"), inv.Args.Map("changes"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"group": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "groups-delete",
			Description: "Delete a user group by handle",
			Domain:      domainGroups,
			Action:      "manage",
			Schema: schema.New().
				RequiredString("handle", "Group handle to delete").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				handle := inv.Args.String("handle")
				if err := deps.Repo.Delete(ctx, domainGroups, handle); err != nil {
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
