package audit

import (
	"encoding/json"
	"strings"
)

// RedactionMarker replaces sensitive argument values before logging.
const RedactionMarker = "[redacted]"

var sensitiveFragments = []string{"password", "secret", "token", "key"}

func sensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range sensitiveFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Redact deep-copies an argument map, replacing the value of any key
// whose name contains password, secret, token, or key (case-insensitive).
// Raw arguments may carry credentials; redaction is a hard requirement
// before anything reaches the audit stream.
func Redact(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		if sensitiveKey(k) {
			out[k] = RedactionMarker
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return Redact(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}

// MarshalRedacted serializes arguments for an audit event, redacting
// sensitive keys. Marshal failures degrade to an empty object rather
// than failing the invocation.
func MarshalRedacted(args map[string]any) string {
	raw, err := json.Marshal(Redact(args))
	if err != nil {
		return "{}"
	}
	return string(raw)
}
