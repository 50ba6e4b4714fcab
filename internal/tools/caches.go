package tools

import (
	"context"
	"fmt"

	"github.com/lumen-cms/toolgate/internal/caches"
	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/schema"
)

const domainCaches = "caches"

// caches-clear talks to the invalidator directly instead of declaring a
// Category: the caller picks the kinds, the dispatcher's category table
// is for mutations that imply them.
func registerCacheTools(reg *dispatch.Registry, deps Deps) error {
	kindEnum := make([]any, 0, len(caches.Kinds()))
	for _, k := range caches.Kinds() {
		kindEnum = append(kindEnum, string(k))
	}

	tool := &dispatch.Tool{
		Name:        "caches-clear",
		Description: "Clear platform caches by kind, by change category, or all of them",
		Domain:      domainCaches,
		Action:      "clear",
		Schema: schema.New().
			Array("kinds", "Cache kinds to clear; omit to clear everything", &schema.ParameterSpec{
				Kind:        schema.KindString,
				Description: "One cache kind",
				Enum:        kindEnum,
			}).
			Enum("category", "Clear the kinds a change category would invalidate",
				string(caches.CategoryStructural), string(caches.CategoryContent),
				string(caches.CategoryTemplate), string(caches.CategoryAsset)).
			MustBuild(),
		Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
			var kinds []caches.Kind
			switch {
			case inv.Args.Has("kinds"):
				for _, raw := range inv.Args.StringSlice("kinds") {
					kind, ok := caches.ParseKind(raw)
					if !ok {
						return nil, fmt.Errorf("unknown cache kind %q", raw)
					}
					kinds = append(kinds, kind)
				}
				if len(kinds) == 0 {
					return nil, fmt.Errorf("kinds must name at least one cache")
				}
			case inv.Args.Has("category"):
				kinds = caches.KindsFor(caches.Category(inv.Args.String("category")))
			default:
				kinds = caches.Kinds()
			}

			outcomes := deps.Invalidator.Invalidate(ctx, kinds)
			cleared, types := caches.Summarize(kinds, outcomes)

			requested := make([]string, 0, len(kinds))
			for _, k := range kinds {
				requested = append(requested, string(k))
			}
			failures := map[string]string{}
			for kind, out := range outcomes {
				if !out.Succeeded {
					failures[string(kind)] = out.Reason
				}
			}
			payload := map[string]any{
				"cache_cleared": cleared,
				"requested":     requested,
			}
			if len(types) > 0 {
				payload["cleared_types"] = types
			}
			if len(failures) > 0 {
				payload["failures"] = failures
			}
			return payload, nil
		},
	}
	return reg.Register(tool)
}
