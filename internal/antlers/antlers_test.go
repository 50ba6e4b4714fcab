package antlers

import (
	"strings"
	"testing"
)

func blogFields() map[string]FieldSpec {
	return map[string]FieldSpec{
		"title":           {Type: "text", Required: true},
		"content":         {Type: "markdown"},
		"hero_image":      {Type: "assets"},
		"publish_date":    {Type: "date"},
		"related_entries": {Type: "entries"},
		"body_blocks":     {Type: "replicator"},
	}
}

func findByCode(findings []Finding, code string) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Code == code {
			out = append(out, f)
		}
	}
	return out
}

func TestValidate_CleanTemplate(t *testing.T) {
	template := `<h1>{{ title }}</h1>
{{ content | markdown }}
{{ related_entries }}{{ title }}{{ /related_entries }}`

	result := Validate(template, blogFields(), ContextEntry, false)
	if !result.OK {
		t.Fatalf("expected clean lint, got errors: %+v", result.Errors)
	}
	if result.Stats.TotalTags != 5 {
		t.Fatalf("expected 5 tags, got %d", result.Stats.TotalTags)
	}
}

func TestValidate_UnknownField(t *testing.T) {
	result := Validate("{{ nope }}", map[string]FieldSpec{
		"title":   {Type: "text"},
		"content": {Type: "markdown"},
	}, ContextGeneral, false)

	if result.OK {
		t.Fatal("expected unknown field error")
	}
	errs := findByCode(result.Errors, "unknown_field")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one unknown_field error, got %+v", result.Errors)
	}
}

func TestValidate_UnknownFieldSuggestion(t *testing.T) {
	result := Validate("{{ttle}}", map[string]FieldSpec{
		"title":   {Type: "text"},
		"content": {Type: "markdown"},
	}, ContextGeneral, false)

	errs := findByCode(result.Errors, "unknown_field")
	if len(errs) != 1 {
		t.Fatalf("expected one unknown_field error, got %+v", result.Errors)
	}
	if !strings.Contains(errs[0].Message, "title") {
		t.Fatalf("expected suggestion naming title, got: %s", errs[0].Message)
	}
}

func TestValidate_RelationshipRequiresClose(t *testing.T) {
	fields := blogFields()

	open := Validate("{{ related_entries }}", fields, ContextEntry, false)
	errs := findByCode(open.Errors, "missing_closing_tag")
	if len(errs) != 1 {
		t.Fatalf("expected missing_closing_tag, got %+v", open.Errors)
	}

	closed := Validate("{{ related_entries }}{{ title }}{{ /related_entries }}", fields, ContextEntry, false)
	if len(findByCode(closed.Errors, "missing_closing_tag")) != 0 {
		t.Fatalf("closed relationship should not error: %+v", closed.Errors)
	}
}

func TestValidate_EmptyConditional(t *testing.T) {
	result := Validate("{{ if }}{{ /if }}", nil, ContextGeneral, false)
	errs := findByCode(result.Errors, "empty_conditional")
	if len(errs) != 1 {
		t.Fatalf("expected empty_conditional, got %+v", result.Errors)
	}
	if len(findByCode(result.Errors, "missing_closing_tag")) != 0 {
		t.Fatalf("the conditional was closed: %+v", result.Errors)
	}
}

func TestValidate_ConditionalStack(t *testing.T) {
	unterminated := Validate("{{ if title }}hello", blogFields(), ContextEntry, false)
	if len(findByCode(unterminated.Errors, "missing_closing_tag")) != 1 {
		t.Fatalf("unterminated if should error: %+v", unterminated.Errors)
	}

	endif := Validate("{{ if title }}hello{{ endif }}", blogFields(), ContextEntry, false)
	if !endif.OK {
		t.Fatalf("endif should close the conditional: %+v", endif.Errors)
	}

	elseBranch := Validate("{{ if title }}a{{ else }}b{{ /if }}", blogFields(), ContextEntry, false)
	if !elseBranch.OK {
		t.Fatalf("else must not affect the stack: %+v", elseBranch.Errors)
	}
}

func TestValidate_BareConditionUnknownField(t *testing.T) {
	result := Validate("{{ if featured }}x{{ /if }}", blogFields(), ContextEntry, false)
	warns := findByCode(result.Warnings, "unknown_condition_field")
	if len(warns) != 1 {
		t.Fatalf("expected unknown_condition_field warning, got %+v", result.Warnings)
	}

	// Operator expressions are kept unparsed beyond existence.
	expr := Validate(`{{ if featured == "yes" }}x{{ /if }}`, blogFields(), ContextEntry, false)
	if len(findByCode(expr.Warnings, "unknown_condition_field")) != 0 {
		t.Fatalf("expressions should not be checked: %+v", expr.Warnings)
	}
}

func TestValidate_EmptyLoop(t *testing.T) {
	result := Validate("{{ foreach }}{{ /foreach }}", nil, ContextGeneral, false)
	if len(findByCode(result.Errors, "empty_loop")) != 1 {
		t.Fatalf("expected empty_loop, got %+v", result.Errors)
	}

	ok := Validate(`{{ foreach array="links" }}{{ /foreach }}`, nil, ContextGeneral, false)
	if len(findByCode(ok.Errors, "empty_loop")) != 0 {
		t.Fatalf("foreach with params should pass: %+v", ok.Errors)
	}
}

func TestValidate_Namespaces(t *testing.T) {
	bad := Validate("{{ bogus:thing }}", nil, ContextGeneral, false)
	if len(findByCode(bad.Errors, "unknown_namespace")) != 1 {
		t.Fatalf("expected unknown_namespace, got %+v", bad.Errors)
	}

	partial := Validate("{{ partial:header }}", nil, ContextGeneral, false)
	if !partial.OK {
		t.Fatalf("partial is self-contained: %+v", partial.Errors)
	}

	unclosed := Validate(`{{ collection:blog limit="10" }}`, nil, ContextGeneral, false)
	if len(findByCode(unclosed.Errors, "missing_closing_tag")) != 1 {
		t.Fatalf("collection pair must close: %+v", unclosed.Errors)
	}

	closed := Validate(`{{ collection:blog limit="10" }}{{ title }}{{ /collection:blog }}`, nil, ContextGeneral, false)
	if len(findByCode(closed.Errors, "missing_closing_tag")) != 0 {
		t.Fatalf("closed collection should pass: %+v", closed.Errors)
	}
}

func TestValidate_CollectionWithoutParamsWarns(t *testing.T) {
	result := Validate("{{ collection:blog }}{{ /collection:blog }}", nil, ContextGeneral, false)
	if len(findByCode(result.Warnings, "collection_missing_params")) != 1 {
		t.Fatalf("expected collection_missing_params, got %+v", result.Warnings)
	}
}

func TestValidate_GlideStrict(t *testing.T) {
	strict := Validate("{{ glide:hero_image }}", nil, ContextGeneral, true)
	if len(findByCode(strict.Warnings, "glide_missing_params")) != 1 {
		t.Fatalf("expected glide_missing_params in strict mode, got %+v", strict.Warnings)
	}

	lax := Validate("{{ glide:hero_image }}", nil, ContextGeneral, false)
	if len(findByCode(lax.Warnings, "glide_missing_params")) != 0 {
		t.Fatalf("glide check is strict-only: %+v", lax.Warnings)
	}

	sized := Validate(`{{ glide:hero_image width="800" }}`, nil, ContextGeneral, true)
	if len(findByCode(sized.Warnings, "glide_missing_params")) != 0 {
		t.Fatalf("sized glide should pass: %+v", sized.Warnings)
	}
}

func TestValidate_StrictFieldRules(t *testing.T) {
	fields := blogFields()

	required := Validate("{{ title }}", fields, ContextEntry, true)
	if len(findByCode(required.Warnings, "required_field")) != 1 {
		t.Fatalf("expected required_field warning, got %+v", required.Warnings)
	}

	date := Validate("{{ publish_date }}", fields, ContextEntry, true)
	if len(findByCode(date.Warnings, "date_missing_format")) != 1 {
		t.Fatalf("expected date_missing_format, got %+v", date.Warnings)
	}
	formatted := Validate(`{{ publish_date format="F j, Y" }}`, fields, ContextEntry, true)
	if len(findByCode(formatted.Warnings, "date_missing_format")) != 0 {
		t.Fatalf("formatted date should pass: %+v", formatted.Warnings)
	}

	asset := Validate("{{ hero_image | markdown }}", fields, ContextEntry, true)
	if len(findByCode(asset.Warnings, "asset_modifier")) != 1 {
		t.Fatalf("expected asset_modifier warning, got %+v", asset.Warnings)
	}
	assetOK := Validate("{{ hero_image | url }}", fields, ContextEntry, true)
	if len(findByCode(assetOK.Warnings, "asset_modifier")) != 0 {
		t.Fatalf("url modifier is allowed on assets: %+v", assetOK.Warnings)
	}
}

func TestValidate_UnknownModifierStrictOnly(t *testing.T) {
	strict := Validate("{{ title | sparkle }}", blogFields(), ContextEntry, true)
	if len(findByCode(strict.Warnings, "unknown_modifier")) != 1 {
		t.Fatalf("expected unknown_modifier, got %+v", strict.Warnings)
	}
	lax := Validate("{{ title | sparkle }}", blogFields(), ContextEntry, false)
	if len(findByCode(lax.Warnings, "unknown_modifier")) != 0 {
		t.Fatalf("modifier check is strict-only: %+v", lax.Warnings)
	}
}

func TestValidate_UnclosedBraces(t *testing.T) {
	result := Validate("{{ title }} and then {{ content", blogFields(), ContextEntry, false)
	errs := findByCode(result.Errors, "unclosed_tag")
	if len(errs) != 1 {
		t.Fatalf("expected unclosed_tag, got %+v", result.Errors)
	}
	if errs[0].Line != 1 || errs[0].Column != 22 {
		t.Fatalf("unexpected position: line %d col %d", errs[0].Line, errs[0].Column)
	}
}

func TestValidate_Positions(t *testing.T) {
	template := "first line\n  {{ nope }}"
	result := Validate(template, blogFields(), ContextEntry, false)
	errs := findByCode(result.Errors, "unknown_field")
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %+v", result.Errors)
	}
	if errs[0].Line != 2 || errs[0].Column != 3 {
		t.Fatalf("expected line 2 col 3, got line %d col %d", errs[0].Line, errs[0].Column)
	}
}

func TestValidate_DocumentChecksStrict(t *testing.T) {
	template := `<img src="/pic.jpg">
<a href="https://example.com/page">link</a>`

	strict := Validate(template, nil, ContextGeneral, true)
	if len(findByCode(strict.Warnings, "img_missing_alt")) != 1 {
		t.Fatalf("expected img_missing_alt, got %+v", strict.Warnings)
	}
	if len(findByCode(strict.Warnings, "hardcoded_url")) != 1 {
		t.Fatalf("expected hardcoded_url, got %+v", strict.Warnings)
	}

	lax := Validate(template, nil, ContextGeneral, false)
	if len(lax.Warnings) != 0 {
		t.Fatalf("document checks are strict-only: %+v", lax.Warnings)
	}

	withAlt := Validate(`<img src="/pic.jpg" alt="A picture">`, nil, ContextGeneral, true)
	if len(findByCode(withAlt.Warnings, "img_missing_alt")) != 0 {
		t.Fatalf("img with alt should pass: %+v", withAlt.Warnings)
	}
}

func TestValidate_ContextVariables(t *testing.T) {
	entry := Validate("{{ permalink }}", nil, ContextEntry, false)
	if !entry.OK {
		t.Fatalf("permalink is an entry context variable: %+v", entry.Errors)
	}

	general := Validate("{{ permalink }}", nil, ContextGeneral, false)
	if general.OK {
		t.Fatal("permalink is not a general context variable")
	}

	global := Validate("{{ csrf_token }}", nil, ContextGeneral, false)
	if !global.OK {
		t.Fatalf("csrf_token is a builtin global: %+v", global.Errors)
	}
}

func TestValidate_StatsAndSuggestions(t *testing.T) {
	result := Validate("{{ title }}{{ nope }}", blogFields(), ContextEntry, true)
	if result.Stats.TotalTags != 2 {
		t.Fatalf("expected 2 tags, got %d", result.Stats.TotalTags)
	}
	if result.Stats.ErrorCount != len(result.Errors) {
		t.Fatal("error count must match errors")
	}
	if len(result.Suggestions.AvailableFields) != len(blogFields()) {
		t.Fatalf("available fields should list the blueprint: %v", result.Suggestions.AvailableFields)
	}
	if len(result.Suggestions.CommonPatterns) == 0 {
		t.Fatal("common patterns table should be populated")
	}
}

func TestValidate_Deterministic(t *testing.T) {
	template := "{{ title }}{{ nope }}{{ if }}{{ /if }}"
	first := Validate(template, blogFields(), ContextEntry, true)
	for i := 0; i < 5; i++ {
		again := Validate(template, blogFields(), ContextEntry, true)
		if len(again.Errors) != len(first.Errors) || len(again.Warnings) != len(first.Warnings) {
			t.Fatalf("run %d differed: %+v vs %+v", i, again, first)
		}
	}
}

func TestParseParams(t *testing.T) {
	params := parseParams(`limit="10" sort=date paginate title="Hello World"`)
	if params["limit"] != "10" {
		t.Fatalf("quoted value: %v", params)
	}
	if params["sort"] != "date" {
		t.Fatalf("bare value: %v", params)
	}
	if params["paginate"] != "true" {
		t.Fatalf("flag: %v", params)
	}
	if params["title"] != "Hello World" {
		t.Fatalf("quoted value with spaces: %v", params)
	}
}

func TestParseParams_QuotedWinsOverBare(t *testing.T) {
	params := parseParams(`limit=5 limit="10"`)
	if params["limit"] != "10" {
		t.Fatalf("quoted value should take precedence, got %v", params)
	}
}

func TestParseTag_ModifierPipeline(t *testing.T) {
	tag := parseTag("title | upper | truncate:20", 1, 1)
	if tag.Name != "title" {
		t.Fatalf("unexpected name: %s", tag.Name)
	}
	if len(tag.Modifiers) != 2 || tag.Modifiers[0] != "upper" || tag.Modifiers[1] != "truncate:20" {
		t.Fatalf("unexpected modifiers: %v", tag.Modifiers)
	}
}

func TestParseTag_ConditionWithPipes(t *testing.T) {
	tag := parseTag("if featured || pinned", 1, 1)
	if tag.Type != TagConditional {
		t.Fatalf("unexpected type: %s", tag.Type)
	}
	if tag.Condition != "featured || pinned" {
		t.Fatalf("|| must not be treated as a modifier pipe: %q", tag.Condition)
	}
}

func TestParseTag_Namespaced(t *testing.T) {
	tag := parseTag(`collection:blog limit="10"`, 1, 1)
	if tag.Type != TagNamespaced || tag.Namespace != "collection" || tag.Name != "blog" {
		t.Fatalf("unexpected tag: %+v", tag)
	}
	if tag.Params["limit"] != "10" {
		t.Fatalf("params not parsed: %v", tag.Params)
	}
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"ttle", "title", 1},
		{"title", "title", 0},
		{"nope", "title", 5},
		{"contnt", "content", 1},
	}
	for _, tc := range cases {
		if got := editDistance(tc.a, tc.b); got != tc.want {
			t.Fatalf("editDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
