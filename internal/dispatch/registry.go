package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/lumen-cms/toolgate/internal/caches"
	"github.com/lumen-cms/toolgate/internal/policy"
	"github.com/lumen-cms/toolgate/internal/schema"
)

// HandlerFunc executes one tool invocation against the domain layer.
type HandlerFunc func(ctx context.Context, inv *Invocation) (map[string]any, error)

// Invocation is the validated request a handler receives.
type Invocation struct {
	Action  string
	Args    schema.Args
	Context policy.CallerContext
}

// Tool is one registered, externally invocable operation.
//
// Exactly one of Handler and Actions is set. Actions makes the tool a
// router: the validated "action" argument selects the handler from the
// table, and an unlisted action is rejected rather than falling through.
type Tool struct {
	Name        string
	Description string
	Domain      string
	Action      string // implied action for single-handler tools
	Schema      *schema.ToolSchema
	Category    caches.Category // empty = no cache invalidation
	Handler     HandlerFunc
	Actions     map[string]HandlerFunc
}

// nameRE is the protocol constraint on tool names.
var nameRE = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Registry holds the registered tool set. Registration happens once at
// startup; lookups afterwards are read-only.
type Registry struct {
	tools map[string]*Tool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register validates and adds a tool. Schema defects, bad names and
// duplicates are registration-time errors: a tool that would misbehave
// at invocation time never enters the registry.
func (r *Registry) Register(t *Tool) error {
	if t == nil {
		return fmt.Errorf("register: nil tool")
	}
	if !nameRE.MatchString(t.Name) {
		return fmt.Errorf("register %q: name must match %s", t.Name, nameRE.String())
	}
	if _, dup := r.tools[t.Name]; dup {
		return fmt.Errorf("register %q: duplicate tool name", t.Name)
	}
	if t.Description == "" {
		return fmt.Errorf("register %q: empty description", t.Name)
	}
	if t.Domain == "" {
		return fmt.Errorf("register %q: empty resource domain", t.Name)
	}
	if t.Schema == nil {
		return fmt.Errorf("register %q: nil schema", t.Name)
	}
	if err := t.Schema.CompileCheck(); err != nil {
		return fmt.Errorf("register %q: %w", t.Name, err)
	}

	switch {
	case t.Handler != nil && t.Actions != nil:
		return fmt.Errorf("register %q: both handler and action table set", t.Name)
	case t.Handler == nil && len(t.Actions) == 0:
		return fmt.Errorf("register %q: no handler", t.Name)
	case t.Handler != nil && t.Action == "":
		return fmt.Errorf("register %q: single-handler tool needs an action name", t.Name)
	case t.Actions != nil && t.Action != "":
		return fmt.Errorf("register %q: router tool must take its action from arguments", t.Name)
	}

	r.tools[t.Name] = t
	return nil
}

// Get returns the named tool, or nil.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// List returns every registered tool sorted by name.
func (r *Registry) List() []*Tool {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Tool, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}
	return out
}
