package schema

import (
	"fmt"
	"strings"
)

// Args is a normalized argument map with typed accessors for handlers.
type Args map[string]any

// ValidationError aggregates every violated parameter so the caller gets
// the complete picture in one round-trip.
type ValidationError struct {
	Missing []string
	Invalid []string // "name: reason" entries
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "Missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "Invalid arguments: "+strings.Join(e.Invalid, "; "))
	}
	if len(parts) == 0 {
		return "invalid arguments"
	}
	return strings.Join(parts, ". ")
}

// Violations returns every violated parameter name.
func (e *ValidationError) Violations() []string {
	out := append([]string{}, e.Missing...)
	for _, inv := range e.Invalid {
		name, _, _ := strings.Cut(inv, ":")
		out = append(out, name)
	}
	return out
}

// Validate checks raw arguments against the schema and returns the
// normalized map. Missing required fields accumulate rather than
// short-circuit. Optional absent parameters receive their defaults.
// Unknown parameters are ignored: transports may attach envelope
// metadata the schema never declared.
func (s *ToolSchema) Validate(raw map[string]any) (Args, error) {
	verr := &ValidationError{}
	normalized := make(Args, len(s.order))

	for _, name := range s.order {
		spec := s.props[name]
		value, present := raw[name]
		if !present || value == nil {
			if s.required[name] {
				verr.Missing = append(verr.Missing, name)
				continue
			}
			if spec.Default != nil {
				normalized[name] = spec.Default
			}
			continue
		}
		coerced, reason := coerce(spec, value)
		if reason != "" {
			verr.Invalid = append(verr.Invalid, name+": "+reason)
			continue
		}
		normalized[name] = coerced
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return nil, verr
	}
	return normalized, nil
}

// coerce checks one value against a spec. JSON decoding yields float64
// for all numbers, so integral floats are accepted for integer kinds.
func coerce(spec *ParameterSpec, value any) (any, string) {
	switch spec.Kind {
	case KindString:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Sprintf("expected string, got %T", value)
		}
		if len(spec.Enum) > 0 && !enumMember(spec.Enum, str) {
			return nil, fmt.Sprintf("%q is not one of the permitted values", str)
		}
		return str, ""
	case KindInteger:
		switch n := value.(type) {
		case int:
			return n, ""
		case int64:
			return int(n), ""
		case float64:
			if n != float64(int64(n)) {
				return nil, fmt.Sprintf("expected integer, got %v", n)
			}
			return int(n), ""
		default:
			return nil, fmt.Sprintf("expected integer, got %T", value)
		}
	case KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Sprintf("expected boolean, got %T", value)
		}
		return b, ""
	case KindArray:
		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Sprintf("expected array, got %T", value)
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			coerced, reason := coerce(spec.Items, item)
			if reason != "" {
				return nil, fmt.Sprintf("element %d: %s", i, reason)
			}
			out = append(out, coerced)
		}
		return out, ""
	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Sprintf("expected object, got %T", value)
		}
		if spec.Open || len(spec.Properties) == 0 {
			return obj, ""
		}
		out := make(map[string]any, len(obj))
		for key, sub := range obj {
			ss, declared := spec.Properties[key]
			if !declared {
				return nil, fmt.Sprintf("unknown key %q", key)
			}
			coerced, reason := coerce(ss, sub)
			if reason != "" {
				return nil, fmt.Sprintf("%s: %s", key, reason)
			}
			out[key] = coerced
		}
		return out, ""
	}
	return nil, fmt.Sprintf("unknown kind %q", spec.Kind)
}

func enumMember(enum []any, value string) bool {
	for _, member := range enum {
		if s, ok := member.(string); ok && s == value {
			return true
		}
	}
	return false
}

// String returns the named argument as a string, or "".
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Int returns the named argument as an int, or 0.
func (a Args) Int(key string) int {
	switch n := a[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Bool returns the named argument as a bool, or false.
func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// StringSlice returns the named array argument as []string, skipping
// non-string elements.
func (a Args) StringSlice(key string) []string {
	items, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Map returns the named object argument, or nil.
func (a Args) Map(key string) map[string]any {
	m, _ := a[key].(map[string]any)
	return m
}

// Has reports whether the argument is present after normalization.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}
