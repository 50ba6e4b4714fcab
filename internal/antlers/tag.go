package antlers

import (
	"regexp"
	"strings"
)

// TagType classifies a parsed tag.
type TagType string

const (
	TagBlueprintField  TagType = "blueprint_field"
	TagGlobalVariable  TagType = "global_variable"
	TagContextVariable TagType = "context_variable"
	TagNamespaced      TagType = "namespaced_tag"
	TagConditional     TagType = "conditional"
	TagLoop            TagType = "loop"
	TagParameterized   TagType = "parameterized_tag"
	TagUnknown         TagType = "unknown"
)

// Tag is one parsed {{ ... }} occurrence.
type Tag struct {
	Type      TagType
	Name      string
	Namespace string
	Params    map[string]string
	Modifiers []string
	IsClosing bool
	Condition string
	Line      int
	Column    int
	Raw       string
}

// QualifiedName is the name used for open/close matching.
func (t *Tag) QualifiedName() string {
	if t.Namespace != "" {
		return t.Namespace + ":" + t.Name
	}
	return t.Name
}

var conditionalKeywords = map[string]bool{
	"if": true, "unless": true, "elseif": true,
	"else": true, "endif": true, "endunless": true,
}

// parseTag classifies the inner content of one {{ ... }} occurrence.
// Type-specific lookups (blueprint vs. context vs. unknown) happen later
// in checkTag; parsing itself never consults the schema.
func parseTag(inner string, line, column int) *Tag {
	tag := &Tag{Line: line, Column: column, Raw: inner, Params: map[string]string{}}

	body := strings.TrimSpace(inner)
	if strings.HasPrefix(body, "/") {
		tag.IsClosing = true
		body = strings.TrimSpace(strings.TrimPrefix(body, "/"))
	}
	if body == "" {
		tag.Type = TagUnknown
		return tag
	}

	firstWord, rest := cutFirstSpace(body)

	// Control-flow keywords win before any pipe splitting: conditions
	// legitimately contain the || operator.
	if conditionalKeywords[firstWord] {
		tag.Type = TagConditional
		tag.Name = firstWord
		tag.Condition = rest
		return tag
	}
	if firstWord == "foreach" || firstWord == "endforeach" {
		tag.Type = TagLoop
		tag.Name = firstWord
		tag.Params = parseParams(rest)
		return tag
	}

	// Modifier pipeline: everything after the first | applies left-to-right.
	segments := strings.Split(body, "|")
	body = strings.TrimSpace(segments[0])
	for _, seg := range segments[1:] {
		if mod := strings.TrimSpace(seg); mod != "" {
			tag.Modifiers = append(tag.Modifiers, mod)
		}
	}

	// namespace:name, with optional trailing parameters.
	if idx := strings.Index(body, ":"); idx >= 0 && (strings.Index(body, " ") == -1 || idx < strings.Index(body, " ")) {
		tag.Type = TagNamespaced
		tag.Namespace = body[:idx]
		remainder := body[idx+1:]
		tag.Name, remainder = cutFirstSpace(remainder)
		tag.Params = parseParams(remainder)
		return tag
	}

	if name, rest := cutFirstSpace(body); rest != "" {
		tag.Type = TagParameterized
		tag.Name = name
		tag.Params = parseParams(rest)
		return tag
	}

	// Bare word: final classification against the schema happens in checkTag.
	tag.Name = body
	return tag
}

func cutFirstSpace(s string) (first, rest string) {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		return s[:idx], strings.TrimSpace(s[idx+1:])
	}
	return s, ""
}

var quotedParamRE = regexp.MustCompile(`([\w.:-]+)="([^"]*)"`)

// parseParams handles key="quoted value" pairs, bare key=value tokens,
// and standalone words treated as boolean flags. Quoted values take
// precedence over an unquoted token with the same key.
func parseParams(s string) map[string]string {
	params := map[string]string{}
	if s == "" {
		return params
	}

	quoted := quotedParamRE.FindAllStringSubmatchIndex(s, -1)
	masked := []byte(s)
	for _, m := range quoted {
		for i := m[0]; i < m[1]; i++ {
			masked[i] = ' '
		}
	}

	for _, token := range strings.Fields(string(masked)) {
		if key, value, ok := strings.Cut(token, "="); ok {
			params[key] = strings.Trim(value, `"'`)
		} else {
			params[token] = "true"
		}
	}
	for _, m := range quoted {
		key := s[m[2]:m[3]]
		params[key] = s[m[4]:m[5]]
	}
	return params
}
