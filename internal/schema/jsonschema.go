package schema

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// JSONSchema compiles the tool schema into a JSON Schema document, the
// shape tool-calling clients consume from the discovery endpoint.
func (s *ToolSchema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.order))
	for _, name := range s.order {
		props[name] = specToJSON(s.props[name])
	}
	doc := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if req := s.RequiredNames(); len(req) > 0 {
		members := make([]any, len(req))
		for i, r := range req {
			members[i] = r
		}
		doc["required"] = members
	}
	return doc
}

func specToJSON(spec *ParameterSpec) map[string]any {
	out := map[string]any{
		"type":        string(spec.Kind),
		"description": spec.Description,
	}
	if len(spec.Enum) > 0 {
		out["enum"] = spec.Enum
	}
	if spec.Default != nil {
		out["default"] = spec.Default
	}
	switch spec.Kind {
	case KindArray:
		if spec.Items != nil {
			out["items"] = specToJSON(spec.Items)
		}
	case KindObject:
		if spec.Open {
			out["additionalProperties"] = true
		} else if len(spec.Properties) > 0 {
			sub := make(map[string]any, len(spec.Properties))
			for name, ss := range spec.Properties {
				sub[name] = specToJSON(ss)
			}
			out["properties"] = sub
			out["additionalProperties"] = false
		}
	}
	return out
}

// CompileCheck round-trips the compiled JSON Schema through the schema
// compiler. A schema the compiler rejects would be unusable by callers,
// so registration fails instead.
func (s *ToolSchema) CompileCheck() error {
	raw, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return fmt.Errorf("CompileCheck: marshal: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("CompileCheck: unmarshal: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return fmt.Errorf("CompileCheck: add resource: %w", err)
	}
	if _, err := c.Compile("schema.json"); err != nil {
		return fmt.Errorf("CompileCheck: compile: %w", err)
	}
	return nil
}
