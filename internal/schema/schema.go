package schema

import (
	"fmt"
	"sort"
)

// Kind is the declared type of a tool parameter.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// ParameterSpec is one parameter's contract. Specs are built once at tool
// registration time and never mutated afterwards.
type ParameterSpec struct {
	Kind        Kind
	Description string
	Enum        []any // scalar members only; non-empty when present
	Items       *ParameterSpec
	Properties  map[string]*ParameterSpec
	// Open marks an object parameter as accepting arbitrary keys
	// (additionalProperties in the compiled schema).
	Open    bool
	Default any
}

// ToolSchema is the declared shape of a tool's accepted input.
type ToolSchema struct {
	order    []string
	props    map[string]*ParameterSpec
	required map[string]bool
}

// Property pairs a parameter name with its spec, in declaration order.
type Property struct {
	Name string
	Spec *ParameterSpec
}

// Properties returns all parameters in declaration order.
func (s *ToolSchema) Properties() []Property {
	out := make([]Property, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Property{Name: name, Spec: s.props[name]})
	}
	return out
}

// Required reports whether the named parameter must be present.
func (s *ToolSchema) Required(name string) bool {
	return s.required[name]
}

// RequiredNames returns the required parameter names, sorted.
func (s *ToolSchema) RequiredNames() []string {
	out := make([]string, 0, len(s.required))
	for name := range s.required {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Builder assembles a ToolSchema. Construction errors are deferred to
// Build so call sites stay fluent; an array parameter without an item
// spec or an empty description is a build-time defect, not a runtime one.
type Builder struct {
	s    *ToolSchema
	errs []error
}

// New starts an empty schema.
func New() *Builder {
	return &Builder{s: &ToolSchema{
		props:    make(map[string]*ParameterSpec),
		required: make(map[string]bool),
	}}
}

// Param adds a parameter with an explicit spec.
func (b *Builder) Param(name string, spec *ParameterSpec) *Builder {
	if _, dup := b.s.props[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("duplicate parameter %q", name))
		return b
	}
	b.s.order = append(b.s.order, name)
	b.s.props[name] = spec
	return b
}

// String adds an optional string parameter.
func (b *Builder) String(name, description string) *Builder {
	return b.Param(name, &ParameterSpec{Kind: KindString, Description: description})
}

// RequiredString adds a required string parameter.
func (b *Builder) RequiredString(name, description string) *Builder {
	b.String(name, description)
	b.s.required[name] = true
	return b
}

// Enum adds an optional string parameter constrained to the given values.
func (b *Builder) Enum(name, description string, values ...string) *Builder {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return b.Param(name, &ParameterSpec{Kind: KindString, Description: description, Enum: enum})
}

// EnumDefault adds an enum-constrained string parameter with a default.
func (b *Builder) EnumDefault(name, description, def string, values ...string) *Builder {
	b.Enum(name, description, values...)
	b.s.props[name].Default = def
	return b
}

// Integer adds an optional integer parameter.
func (b *Builder) Integer(name, description string) *Builder {
	return b.Param(name, &ParameterSpec{Kind: KindInteger, Description: description})
}

// IntegerDefault adds an integer parameter substituted with def when absent.
func (b *Builder) IntegerDefault(name, description string, def int) *Builder {
	return b.Param(name, &ParameterSpec{Kind: KindInteger, Description: description, Default: def})
}

// Bool adds an optional boolean parameter.
func (b *Builder) Bool(name, description string) *Builder {
	return b.Param(name, &ParameterSpec{Kind: KindBoolean, Description: description})
}

// BoolDefault adds a boolean parameter substituted with def when absent.
func (b *Builder) BoolDefault(name, description string, def bool) *Builder {
	return b.Param(name, &ParameterSpec{Kind: KindBoolean, Description: description, Default: def})
}

// StringArray adds an optional array-of-strings parameter.
func (b *Builder) StringArray(name, description string) *Builder {
	return b.Param(name, &ParameterSpec{
		Kind:        KindArray,
		Description: description,
		Items:       &ParameterSpec{Kind: KindString, Description: "element"},
	})
}

// Array adds an array parameter with an explicit element spec.
func (b *Builder) Array(name, description string, items *ParameterSpec) *Builder {
	return b.Param(name, &ParameterSpec{Kind: KindArray, Description: description, Items: items})
}

// Object adds an object parameter with explicit sub-properties.
func (b *Builder) Object(name, description string, props map[string]*ParameterSpec) *Builder {
	return b.Param(name, &ParameterSpec{Kind: KindObject, Description: description, Properties: props})
}

// OpenObject adds an object parameter that accepts arbitrary keys.
func (b *Builder) OpenObject(name, description string) *Builder {
	return b.Param(name, &ParameterSpec{Kind: KindObject, Description: description, Open: true})
}

// Require marks already-declared parameters as required.
func (b *Builder) Require(names ...string) *Builder {
	for _, name := range names {
		b.s.required[name] = true
	}
	return b
}

// Build finalizes the schema, rejecting structural defects.
func (b *Builder) Build() (*ToolSchema, error) {
	for _, err := range b.errs {
		return nil, err
	}
	for name := range b.s.required {
		if _, ok := b.s.props[name]; !ok {
			return nil, fmt.Errorf("required parameter %q is not declared", name)
		}
	}
	for _, name := range b.s.order {
		if err := checkSpec(name, b.s.props[name]); err != nil {
			return nil, err
		}
	}
	return b.s, nil
}

// MustBuild is Build for compiled-in schemas, where a defect is a
// programming error caught by the registry sweep tests.
func (b *Builder) MustBuild() *ToolSchema {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	return s
}

func checkSpec(name string, spec *ParameterSpec) error {
	if spec == nil {
		return fmt.Errorf("parameter %q has no spec", name)
	}
	if spec.Description == "" {
		return fmt.Errorf("parameter %q has an empty description", name)
	}
	switch spec.Kind {
	case KindString, KindInteger, KindBoolean:
	case KindArray:
		if spec.Items == nil {
			return fmt.Errorf("array parameter %q has no item spec", name)
		}
		if err := checkSpec(name+"[]", spec.Items); err != nil {
			return err
		}
	case KindObject:
		for sub, ss := range spec.Properties {
			if err := checkSpec(name+"."+sub, ss); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("parameter %q has unknown kind %q", name, spec.Kind)
	}
	if spec.Enum != nil && len(spec.Enum) == 0 {
		return fmt.Errorf("parameter %q declares an empty enum", name)
	}
	for _, v := range spec.Enum {
		switch v.(type) {
		case string, bool, int, int64, float64:
		default:
			return fmt.Errorf("parameter %q has a non-scalar enum member %v", name, v)
		}
	}
	return nil
}
