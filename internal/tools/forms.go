package tools

import (
	"context"

	"github.com/lumen-cms/toolgate/internal/caches"
	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/schema"
)

const domainForms = "forms"

func registerFormTools(reg *dispatch.Registry, deps Deps) error {
	tools := []*dispatch.Tool{
		{
			Name:        "forms-create",
			Description: "Create a form definition",
			Domain:      domainForms,
			Action:      "configure",
			Category:    caches.CategoryStructural,
			Schema: schema.New().
				RequiredString("handle", "Unique form handle, e.g. contact").
				RequiredString("title", "Display title for the form").
				String("email", "Address submissions are forwarded to").
				Array("fields", "Form field definitions", &schema.ParameterSpec{
					Kind:        schema.KindObject,
					Description: "One form field",
					Properties: map[string]*schema.ParameterSpec{
						"handle": {Kind: schema.KindString, Description: "Field handle"},
						"type":   {Kind: schema.KindString, Description: "Input type, e.g. text or textarea"},
						"required": {
							Kind:        schema.KindBoolean,
							Description: "Whether a submission must fill this field",
						},
					},
				}).
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				data := map[string]any{"title": inv.Args.String("title")}
				if email := inv.Args.String("email"); email != "" {
					data["email"] = email
				}
				if fields, ok := inv.Args["fields"]; ok {
					data["fields"] = fields
				}
				entity, err := deps.Repo.Create(ctx, domainForms, inv.Args.String("handle"), data)
				if err != nil {
					return nil, err
				}
				return map[string]any{"form": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "forms-get",
			Description: "Fetch one form by handle",
			Domain:      domainForms,
			Action:      "view",
			Schema: schema.New().
				RequiredString("handle", "Form handle to look up").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Find(ctx, domainForms, inv.Args.String("handle"))
				if err != nil {
					return nil, err
				}
				if entity == nil {
					return notFoundPayload("form"), nil
				}
				return map[string]any{"found": true, "form": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "forms-list",
			Description: "List form definitions",
			Domain:      domainForms,
			Action:      "view",
			Schema: schema.New().
				IntegerDefault("limit", "Maximum number of forms to return", 50).
				String("prefix", "Return only handles starting with this prefix").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entities, err := deps.Repo.List(ctx, domainForms, listFilter(inv.Args))
				if err != nil {
					return nil, err
				}
				return listPayload("forms", entities), nil
			},
		},
		{
			Name:        "forms-update",
			Description: "Update a form's configuration",
			Domain:      domainForms,
			Action:      "configure",
			Category:    caches.CategoryStructural,
			Schema: schema.New().
				RequiredString("handle", "Form handle to update").
				OpenObject("changes", "Configuration keys to merge into the form").
				Require("changes").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Update(ctx, domainForms, inv.Args.String("handle"), inv.Args.Map("changes"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"form": entityPayload(entity)}, nil
			},
		},
		{
			Name:        "forms-delete",
			Description: "Delete a form definition by handle",
			Domain:      domainForms,
			Action:      "delete",
			Category:    caches.CategoryStructural,
			Schema: schema.New().
				RequiredString("handle", "Form handle to delete").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				handle := inv.Args.String("handle")
				if err := deps.Repo.Delete(ctx, domainForms, handle); err != nil {
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
