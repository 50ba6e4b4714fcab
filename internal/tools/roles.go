package tools

import (
	"context"

	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/schema"
)

const domainRoles = "roles"

func registerRoleTools(reg *dispatch.Registry, deps Deps) error {
	tools := []*dispatch.Tool{
		{
			Name:        "roles-create",
			Description: "Create a permission role",
			Domain:      domainRoles,
			Action:      "manage",
			Schema: schema.New().
				RequiredString("handle", "Unique role handle, e.g. editor").
				RequiredString("title", "Display title for the role").
				StringArray("permissions", "Capability strings granted by the role").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				data := map[string]any{"title": inv.Args.String("title")}
				if perms := inv.Args.StringSlice("permissions"); len(perms) > 0 {
					data["permissions"] = perms
				}
				entity, err := deps.Repo.Create(ctx, domainRoles, inv.Args.String("handle"), data)
				if err != nil {
					return nil, err
				}
				return map[string]any{"role": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "roles-get",
			Description: "Fetch one role by handle",
			Domain:      domainRoles,
			Action:      "view",
			Schema: schema.New().
				RequiredString("handle", "Role handle to look up").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Find(ctx, domainRoles, inv.Args.String("handle"))
				if err != nil {
					return nil, err
				}
				if entity == nil {
					return notFoundPayload("role"), nil
				}
				return map[string]any{"found": true, "role": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "roles-list",
			Description: "List permission roles",
			Domain:      domainRoles,
			Action:      "view",
			Schema: schema.New().
				IntegerDefault("limit", "Maximum number of roles to return", 50).
				String("prefix", "Return only handles starting with this prefix").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entities, err := deps.Repo.List(ctx, domainRoles, listFilter(inv.Args))
				if err != nil {
					return nil, err
				}
				return listPayload("roles", entities), nil
			},
		},
		{
			Name:        "roles-update",
			Description: "Update a role's title or permissions",
			Domain:      domainRoles,
			Action:      "manage",
			Schema: schema.New().
				RequiredString("handle", "Role handle to update").
				OpenObject("changes", "Fields to merge into the role").
				Require("changes").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Update(ctx, domainRoles, inv.Args.String("handle"), inv.Args.Map("changes"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"role": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "roles-delete",
			Description: "Delete a role by handle",
			Domain:      domainRoles,
			Action:      "manage",
			Schema: schema.New().
				RequiredString("handle", "Role handle to delete").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				handle := inv.Args.String("handle")
				if err := deps.Repo.Delete(ctx, domainRoles, handle); err != nil {
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
