package dispatch

// Envelope is the uniform JSON response shape. Exactly one of the two
// forms is present: domain payload fields plus a meta block on success,
// or an error message (with optional structured details) on failure.
type Envelope map[string]any

// ErrorEnvelope builds a failure envelope.
func ErrorEnvelope(message string, details map[string]any) Envelope {
	env := Envelope{"error": message}
	if len(details) > 0 {
		env["details"] = details
	}
	return env
}

// IsError reports whether the envelope carries a failure.
func (e Envelope) IsError() bool {
	_, ok := e["error"]
	return ok
}

// ErrorMessage returns the failure message, or "".
func (e Envelope) ErrorMessage() string {
	msg, _ := e["error"].(string)
	return msg
}
