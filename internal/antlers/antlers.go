// Package antlers lints {{ tag }} templates against a blueprint field
// schema. The linter is a pure function: one pass over the template,
// line-oriented, with an explicit stack for tags that require a close.
// Findings are data, never errors — linting a broken template is a
// successful lint.
package antlers

import (
	"regexp"
	"sort"
	"strings"
)

// Context selects the table of ambient variables available to the template.
type Context string

const (
	ContextEntry      Context = "entry"
	ContextCollection Context = "collection"
	ContextTaxonomy   Context = "taxonomy"
	ContextGeneral    Context = "general"
)

// ParseContext maps a wire value to a Context, defaulting to general.
func ParseContext(s string) Context {
	switch Context(s) {
	case ContextEntry, ContextCollection, ContextTaxonomy:
		return Context(s)
	default:
		return ContextGeneral
	}
}

// FieldSpec describes one blueprint field the template may reference.
type FieldSpec struct {
	Type     string
	Required bool
}

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one linter result with its position in the template.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
}

// Stats summarizes a lint run.
type Stats struct {
	TotalTags    int `json:"total_tags"`
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
}

// Suggestions carries usage hints back to the caller.
type Suggestions struct {
	AvailableFields []string          `json:"available_fields,omitempty"`
	CommonPatterns  map[string]string `json:"common_patterns"`
}

// Result is the outcome of one Validate call.
type Result struct {
	OK          bool        `json:"ok"`
	Errors      []Finding   `json:"errors"`
	Warnings    []Finding   `json:"warnings"`
	Suggestions Suggestions `json:"suggestions"`
	Stats       Stats       `json:"stats"`
}

var (
	tagRE = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)
	urlRE = regexp.MustCompile(`https?://[^\s"'<>]+`)
	imgRE = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	altRE = regexp.MustCompile(`(?i)\balt\s*=`)
)

// openTag is one entry on the must-close stack.
type openTag struct {
	name   string
	reason string
	line   int
	column int
}

type linter struct {
	fields   map[string]FieldSpec
	context  Context
	strict   bool
	errors   []Finding
	warnings []Finding
	stack    []openTag
	total    int
}

// Validate lints a template against the supplied blueprint fields.
// fields may be nil when no blueprint is known.
func Validate(template string, fields map[string]FieldSpec, context Context, strict bool) *Result {
	l := &linter{fields: fields, context: context, strict: strict}

	lines := strings.Split(template, "\n")
	for i, line := range lines {
		l.lintLine(i+1, line)
	}

	// Anything still open at end-of-document never got its closing tag.
	for _, open := range l.stack {
		l.errorf(open.line, open.column, "missing_closing_tag",
			"%s '%s' is never closed; expected {{ /%s }}", open.reason, open.name, open.name)
	}

	result := &Result{
		OK:       len(l.errors) == 0,
		Errors:   l.errors,
		Warnings: l.warnings,
		Suggestions: Suggestions{
			AvailableFields: fieldNames(fields),
			CommonPatterns:  commonPatterns(),
		},
		Stats: Stats{
			TotalTags:    l.total,
			ErrorCount:   len(l.errors),
			WarningCount: len(l.warnings),
		},
	}
	if result.Errors == nil {
		result.Errors = []Finding{}
	}
	if result.Warnings == nil {
		result.Warnings = []Finding{}
	}
	return result
}

func (l *linter) lintLine(lineNo int, line string) {
	matches := tagRE.FindAllStringSubmatchIndex(line, -1)
	for _, m := range matches {
		inner := line[m[2]:m[3]]
		column := m[0] + 1
		tag := parseTag(inner, lineNo, column)
		l.total++
		l.checkTag(tag)
	}

	l.checkUnclosedBraces(lineNo, line, matches)
	l.checkDocumentLine(lineNo, line)
}

// checkUnclosedBraces reports a {{ with no matching }} on the same line.
func (l *linter) checkUnclosedBraces(lineNo int, line string, matches [][]int) {
	masked := []byte(line)
	for _, m := range matches {
		for i := m[0]; i < m[1]; i++ {
			masked[i] = ' '
		}
	}
	if idx := strings.Index(string(masked), "{{"); idx >= 0 {
		l.errorf(lineNo, idx+1, "unclosed_tag", "malformed tag: '{{' without a matching '}}'")
	}
}

// checkDocumentLine runs the strict-mode document checks that look at
// raw markup rather than tags.
func (l *linter) checkDocumentLine(lineNo int, line string) {
	if !l.strict {
		return
	}
	for _, m := range imgRE.FindAllStringIndex(line, -1) {
		img := line[m[0]:m[1]]
		if !altRE.MatchString(img) {
			l.warnf(lineNo, m[0]+1, "img_missing_alt", "<img> element has no alt attribute")
		}
	}
	if m := urlRE.FindStringIndex(line); m != nil {
		l.warnf(lineNo, m[0]+1, "hardcoded_url", "hardcoded absolute URL; prefer a site or config variable")
	}
}

func (l *linter) push(name, reason string, line, column int) {
	l.stack = append(l.stack, openTag{name: name, reason: reason, line: line, column: column})
}

// pop removes the topmost open tag with the given name. A close with no
// matching open is itself a structural error.
func (l *linter) pop(tag *Tag, name string) {
	for i := len(l.stack) - 1; i >= 0; i-- {
		if l.stack[i].name == name {
			l.stack = append(l.stack[:i], l.stack[i+1:]...)
			return
		}
	}
	l.errorf(tag.Line, tag.Column, "unmatched_closing_tag",
		"closing tag '%s' has no matching opening tag", name)
}

func fieldNames(fields map[string]FieldSpec) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, 0, len(fields))
	for name := range fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func commonPatterns() map[string]string {
	return map[string]string{
		"collection loop": `{{ collection:blog limit="10" }} ... {{ /collection:blog }}`,
		"conditional":     `{{ if featured }} ... {{ /if }}`,
		"foreach loop":    `{{ foreach array="social_links" }} ... {{ /foreach }}`,
		"glide image":     `{{ glide:hero_image width="800" fit="crop" }}`,
		"partial include": `{{ partial:header }}`,
		"date formatting": `{{ publish_date format="F j, Y" }}`,
	}
}
