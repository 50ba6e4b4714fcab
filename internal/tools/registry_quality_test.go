package tools

import (
	"regexp"
	"testing"

	"github.com/lumen-cms/toolgate/internal/caches"
	"github.com/lumen-cms/toolgate/internal/content"
	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/schema"
	"go.uber.org/zap"
)

// Catalog-wide sweeps. Every tool the catalog registers has to hold the
// protocol's structural guarantees, so these walk the whole registry
// instead of testing tools one by one.

func fullRegistry(t *testing.T) *dispatch.Registry {
	t.Helper()
	reg := dispatch.NewRegistry()
	deps := Deps{
		Repo:        content.NewMemoryRepository(),
		Invalidator: caches.NewLogInvalidator(zap.NewNop()),
	}
	if err := RegisterAll(reg, deps); err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestCatalog_NamesMatchProtocol(t *testing.T) {
	nameRE := regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	seen := map[string]bool{}
	for _, tool := range fullRegistry(t).List() {
		if !nameRE.MatchString(tool.Name) {
			t.Errorf("%s: name violates protocol constraint", tool.Name)
		}
		if seen[tool.Name] {
			t.Errorf("%s: duplicate tool name", tool.Name)
		}
		seen[tool.Name] = true
	}
}

func TestCatalog_ExpectedToolCount(t *testing.T) {
	// 8 resources x 5 CRUD tools + caches-clear + templates-lint
	tools := fullRegistry(t).List()
	if len(tools) != 42 {
		t.Fatalf("expected 42 tools, got %d", len(tools))
	}
}

func TestCatalog_EveryArrayParamHasItemSpec(t *testing.T) {
	var walk func(toolName, paramName string, spec *schema.ParameterSpec)
	walk = func(toolName, paramName string, spec *schema.ParameterSpec) {
		if spec == nil {
			t.Errorf("%s: parameter %s has no spec", toolName, paramName)
			return
		}
		if spec.Description == "" {
			t.Errorf("%s: parameter %s has no description", toolName, paramName)
		}
		if spec.Kind == schema.KindArray {
			if spec.Items == nil {
				t.Errorf("%s: array parameter %s has no item spec", toolName, paramName)
			} else {
				walk(toolName, paramName+"[]", spec.Items)
			}
		}
		for sub, ss := range spec.Properties {
			walk(toolName, paramName+"."+sub, ss)
		}
	}
	for _, tool := range fullRegistry(t).List() {
		for _, prop := range tool.Schema.Properties() {
			walk(tool.Name, prop.Name, prop.Spec)
		}
	}
}

func TestCatalog_SchemasCompile(t *testing.T) {
	for _, tool := range fullRegistry(t).List() {
		if err := tool.Schema.CompileCheck(); err != nil {
			t.Errorf("%s: schema does not compile: %v", tool.Name, err)
		}
	}
}

func TestCatalog_DescriptionsAndDomains(t *testing.T) {
	for _, tool := range fullRegistry(t).List() {
		if tool.Description == "" {
			t.Errorf("%s: empty description", tool.Name)
		}
		if tool.Domain == "" {
			t.Errorf("%s: empty domain", tool.Name)
		}
		if tool.Handler == nil && len(tool.Actions) == 0 {
			t.Errorf("%s: no handler", tool.Name)
		}
	}
}

func TestCatalog_ActionsMatchCapabilityTable(t *testing.T) {
	// Action names are the capability table's keys; a tool registering
	// an action the table does not know silently lands on the generic
	// fallback capability.
	known := map[string]bool{
		"create": true, "view": true, "edit": true, "configure": true,
		"delete": true, "manage": true, "clear": true, "lint": true,
	}
	for _, tool := range fullRegistry(t).List() {
		if tool.Action != "" && !known[tool.Action] {
			t.Errorf("%s: action %q has no capability mapping", tool.Name, tool.Action)
		}
	}
}

func TestCatalog_MutationsDeclareCacheCategories(t *testing.T) {
	// Structural resources invalidate on mutation; account-shaped
	// resources never touch rendered output.
	wantCategory := map[string]caches.Category{
		"collections-create": caches.CategoryStructural,
		"collections-update": caches.CategoryStructural,
		"collections-delete": caches.CategoryStructural,
		"sites-create":       caches.CategoryStructural,
		"forms-delete":       caches.CategoryStructural,
		"entries-create":     caches.CategoryContent,
		"entries-update":     caches.CategoryContent,
		"entries-delete":     caches.CategoryContent,
		"globals-update":     caches.CategoryContent,
		"users-create":       "",
		"roles-update":       "",
		"groups-delete":      "",
		"caches-clear":       "",
		"templates-lint":     "",
	}
	reg := fullRegistry(t)
	for name, want := range wantCategory {
		tool := reg.Get(name)
		if tool == nil {
			t.Fatalf("%s: not registered", name)
		}
		if tool.Category != want {
			t.Errorf("%s: category %q, want %q", name, tool.Category, want)
		}
	}
	for _, tool := range reg.List() {
		if tool.Action == "view" && tool.Category != "" {
			t.Errorf("%s: read tool must not invalidate caches", tool.Name)
		}
	}
}
