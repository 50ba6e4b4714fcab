package tools

import (
	"context"

	"github.com/lumen-cms/toolgate/internal/antlers"
	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/schema"
)

const domainTemplates = "templates"

// templates-lint is read-only: findings in the template are lint data,
// never an invocation failure.
func registerTemplateTools(reg *dispatch.Registry, _ Deps) error {
	tool := &dispatch.Tool{
		Name:        "templates-lint",
		Description: "Lint a template against a blueprint's field schema",
		Domain:      domainTemplates,
		Action:      "lint",
		Schema: schema.New().
			RequiredString("template", "Template source to lint").
			OpenObject("fields", "Blueprint fields available to the template; values are a type string or {type, required}").
			EnumDefault("context", "Rendering context the template runs in", "general",
				"entry", "collection", "taxonomy", "general").
			BoolDefault("strict", "Enable strict checks: unknown modifiers, required fields, document hygiene", false).
			MustBuild(),
		Handler: func(_ context.Context, inv *dispatch.Invocation) (map[string]any, error) {
			result := antlers.Validate(
				inv.Args.String("template"),
				blueprintFields(inv.Args.Map("fields")),
				antlers.ParseContext(inv.Args.String("context")),
				inv.Args.Bool("strict"),
			)
			return map[string]any{
				"ok":          result.OK,
				"errors":      result.Errors,
				"warnings":    result.Warnings,
				"suggestions": result.Suggestions,
				"stats":       result.Stats,
			}, nil
		},
	}
	return reg.Register(tool)
}

// blueprintFields accepts both wire spellings: "title": "text" and
// "title": {"type": "text", "required": true}. Unparseable values lint
// as untyped fields rather than failing the call.
func blueprintFields(raw map[string]any) map[string]antlers.FieldSpec {
	if len(raw) == 0 {
		return nil
	}
	fields := make(map[string]antlers.FieldSpec, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case string:
			fields[name] = antlers.FieldSpec{Type: v}
		case map[string]any:
			spec := antlers.FieldSpec{}
			if t, ok := v["type"].(string); ok {
				spec.Type = t
			}
			if req, ok := v["required"].(bool); ok {
				spec.Required = req
			}
			fields[name] = spec
		default:
			fields[name] = antlers.FieldSpec{}
		}
	}
	return fields
}
