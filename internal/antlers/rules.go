package antlers

import (
	"fmt"
	"strings"
)

// builtinGlobals are always available regardless of context.
var builtinGlobals = map[string]bool{
	"now": true, "today": true, "current_date": true,
	"site": true, "sites": true, "homepage": true,
	"environment": true, "locale": true, "config": true,
	"csrf_token": true, "csrf_field": true,
	"current_user": true, "logged_in": true,
	"template": true, "layout": true,
}

// contextVariables are the ambient variables each lint context provides.
var contextVariables = map[Context]map[string]bool{
	ContextEntry: {
		"title": true, "slug": true, "url": true, "uri": true,
		"permalink": true, "id": true, "published": true, "status": true,
		"date": true, "author": true, "content": true, "collection": true,
		"last_modified": true, "edit_url": true,
	},
	ContextCollection: {
		"entries": true, "title": true, "handle": true, "url": true,
		"no_results": true, "total_results": true,
		"first": true, "last": true, "count": true, "index": true,
	},
	ContextTaxonomy: {
		"terms": true, "title": true, "handle": true, "url": true,
		"slug": true, "entries_count": true,
	},
	ContextGeneral: {
		"title": true, "url": true,
	},
}

// allowedNamespaces is the fixed allow-list of namespaced tags.
var allowedNamespaces = map[string]bool{
	"collection": true, "taxonomy": true, "nav": true, "form": true,
	"glide": true, "partial": true, "section": true, "yield": true,
	"site": true, "config": true, "env": true,
}

// closingNamespaces are namespaced tags that open a scope and need an
// explicit closing tag.
var closingNamespaces = map[string]bool{
	"collection": true, "taxonomy": true, "nav": true, "form": true,
}

// relationshipFieldTypes reference other content and render as a scope,
// so they must be closed.
var relationshipFieldTypes = map[string]bool{
	"entries": true, "terms": true, "users": true,
}

// complexFieldTypes hold structured sub-values and must be closed.
var complexFieldTypes = map[string]bool{
	"replicator": true, "bard": true, "grid": true,
}

// knownModifiers is the fixed modifier allow-list.
var knownModifiers = map[string]bool{
	"upper": true, "lower": true, "title": true, "ucfirst": true,
	"slugify": true, "markdown": true, "smartypants": true,
	"striptags": true, "sanitize": true, "nl2br": true, "widont": true,
	"truncate": true, "limit": true, "offset": true, "excerpt": true,
	"format": true, "format_localized": true, "iso_format": true,
	"relative": true, "trim": true, "reverse": true, "shuffle": true,
	"sort": true, "unique": true, "length": true, "count": true,
	"join": true, "pluck": true, "where": true, "wrap": true,
	"url": true, "full_urls": true, "raw": true, "read_time": true,
	"ensure_left": true, "ensure_right": true,
	"width": true, "height": true, "background_position": true,
}

// allowedAssetModifiers is the subset asset-typed fields may use.
var allowedAssetModifiers = map[string]bool{
	"url": true, "width": true, "height": true, "background_position": true,
}

func (l *linter) errorf(line, column int, code, format string, args ...any) {
	l.errors = append(l.errors, Finding{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   column,
	})
}

func (l *linter) warnf(line, column int, code, format string, args ...any) {
	l.warnings = append(l.warnings, Finding{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   column,
	})
}

// checkTag validates one parsed tag and maintains the open-tag stack.
func (l *linter) checkTag(tag *Tag) {
	// Bare words get their final classification here, where the schema
	// and context tables are available.
	if tag.Type == "" {
		tag.Type = l.classifyBareWord(tag.Name)
	}

	switch tag.Type {
	case TagConditional:
		l.checkConditional(tag)
	case TagLoop:
		l.checkLoop(tag)
	case TagNamespaced:
		l.checkNamespaced(tag)
	case TagBlueprintField:
		l.checkBlueprintField(tag)
	case TagParameterized:
		l.checkParameterized(tag)
	case TagUnknown:
		if tag.IsClosing {
			l.pop(tag, tag.QualifiedName())
			break
		}
		l.checkUnknown(tag)
	case TagGlobalVariable, TagContextVariable:
		// Always valid.
	}

	l.checkModifiers(tag)
}

func (l *linter) classifyBareWord(name string) TagType {
	if builtinGlobals[name] {
		return TagGlobalVariable
	}
	if _, ok := l.fields[name]; ok {
		return TagBlueprintField
	}
	if contextVariables[l.context][name] {
		return TagContextVariable
	}
	return TagUnknown
}

func (l *linter) checkConditional(tag *Tag) {
	switch tag.Name {
	case "if", "unless":
		if tag.IsClosing {
			l.pop(tag, tag.Name)
			return
		}
		if tag.Condition == "" {
			l.errorf(tag.Line, tag.Column, "empty_conditional",
				"'%s' has no condition to evaluate", tag.Name)
		} else {
			l.checkBareCondition(tag)
		}
		l.push(tag.Name, "conditional", tag.Line, tag.Column)
	case "endif":
		l.pop(tag, "if")
	case "endunless":
		l.pop(tag, "unless")
	case "elseif", "else":
		// Branches inside an open conditional; no stack effect.
	}
}

// checkBareCondition warns on a bare field-existence check naming a
// field that exists nowhere.
func (l *linter) checkBareCondition(tag *Tag) {
	if l.fields == nil {
		return // no blueprint to check against
	}
	cond := strings.TrimPrefix(tag.Condition, "!")
	if strings.ContainsAny(cond, " <>=!&|(") {
		return // expressions are kept unparsed beyond existence
	}
	if _, ok := l.fields[cond]; ok {
		return
	}
	if builtinGlobals[cond] || contextVariables[l.context][cond] {
		return
	}
	l.warnf(tag.Line, tag.Column, "unknown_condition_field",
		"condition references '%s', which is not a blueprint field or known variable", cond)
}

func (l *linter) checkLoop(tag *Tag) {
	switch tag.Name {
	case "foreach":
		if tag.IsClosing {
			l.pop(tag, "foreach")
			return
		}
		if len(tag.Params) == 0 {
			l.errorf(tag.Line, tag.Column, "empty_loop", "'foreach' has nothing to iterate")
		}
		l.push("foreach", "loop", tag.Line, tag.Column)
	case "endforeach":
		l.pop(tag, "foreach")
	}
}

func (l *linter) checkNamespaced(tag *Tag) {
	if tag.IsClosing {
		if closingNamespaces[tag.Namespace] {
			l.pop(tag, tag.QualifiedName())
		}
		return
	}

	if !allowedNamespaces[tag.Namespace] {
		l.errorf(tag.Line, tag.Column, "unknown_namespace",
			"unknown tag namespace '%s'", tag.Namespace)
		return
	}

	if tag.Namespace == "collection" && len(tag.Params) == 0 {
		l.warnf(tag.Line, tag.Column, "collection_missing_params",
			"collection tag without parameters; consider limit or sort")
	}
	if l.strict && tag.Namespace == "glide" {
		if !hasAnyParam(tag, "width", "height", "quality", "fit") {
			l.warnf(tag.Line, tag.Column, "glide_missing_params",
				"glide tag without width, height, quality or fit")
		}
	}

	if closingNamespaces[tag.Namespace] {
		l.push(tag.QualifiedName(), "tag pair", tag.Line, tag.Column)
	}
}

func (l *linter) checkBlueprintField(tag *Tag) {
	spec := l.fields[tag.Name]

	if tag.IsClosing {
		if relationshipFieldTypes[spec.Type] || complexFieldTypes[spec.Type] {
			l.pop(tag, tag.Name)
		}
		return
	}

	if l.strict && spec.Required {
		l.warnf(tag.Line, tag.Column, "required_field",
			"field '%s' is required by the blueprint; verify it always has a value", tag.Name)
	}

	switch {
	case relationshipFieldTypes[spec.Type]:
		l.push(tag.Name, "relationship field", tag.Line, tag.Column)
	case complexFieldTypes[spec.Type]:
		l.push(tag.Name, "structured field", tag.Line, tag.Column)
	case spec.Type == "date":
		if l.strict && tag.Params["format"] == "" {
			l.warnf(tag.Line, tag.Column, "date_missing_format",
				"date field '%s' should specify a format parameter", tag.Name)
		}
	case spec.Type == "assets":
		if l.strict {
			for _, mod := range tag.Modifiers {
				name := modifierName(mod)
				if !allowedAssetModifiers[name] {
					l.warnf(tag.Line, tag.Column, "asset_modifier",
						"modifier '%s' is not supported on asset field '%s'", name, tag.Name)
				}
			}
		}
	}
}

// checkParameterized resolves a "name key=value" tag through the same
// lookup order as a bare word.
func (l *linter) checkParameterized(tag *Tag) {
	if tag.IsClosing {
		l.pop(tag, tag.Name)
		return
	}
	switch l.classifyBareWord(tag.Name) {
	case TagBlueprintField:
		tag.Type = TagBlueprintField
		l.checkBlueprintField(tag)
	case TagUnknown:
		l.checkUnknown(tag)
	default:
		// Globals and context variables accept parameters (e.g. format).
	}
}

func (l *linter) checkUnknown(tag *Tag) {
	msg := fmt.Sprintf("unknown field '%s'", tag.Name)
	if suggestions := suggestFields(tag.Name, l.fields, 3); len(suggestions) > 0 {
		msg += ". Did you mean: " + strings.Join(suggestions, ", ") + "?"
	}
	l.errorf(tag.Line, tag.Column, "unknown_field", "%s", msg)
}

func (l *linter) checkModifiers(tag *Tag) {
	if !l.strict {
		return
	}
	for _, mod := range tag.Modifiers {
		name := modifierName(mod)
		if !knownModifiers[name] {
			l.warnf(tag.Line, tag.Column, "unknown_modifier", "unknown modifier '%s'", name)
		}
	}
}

// modifierName strips a modifier's arguments: "truncate:10" → "truncate".
func modifierName(mod string) string {
	name, _, _ := strings.Cut(mod, ":")
	name, _, _ = strings.Cut(name, " ")
	return name
}

func hasAnyParam(tag *Tag, keys ...string) bool {
	for _, key := range keys {
		if _, ok := tag.Params[key]; ok {
			return true
		}
	}
	return false
}
