package policy

import (
	"github.com/lumen-cms/toolgate/internal/principal"
)

// Mode is the trust level of an invocation's origin.
type Mode string

const (
	// ModeCLI marks a locally-invoked process. It already passed
	// OS-level trust, so authorization and rate limiting short-circuit.
	ModeCLI Mode = "cli"
	// ModeRemote marks a network caller that must present a principal.
	ModeRemote Mode = "remote"
)

// CallerContext is the resolved identity and trust level for one invocation.
type CallerContext struct {
	Mode      Mode
	Principal *principal.Principal // nil unless Mode is remote and resolved
}

// PrincipalID returns the principal's identifier, or "anonymous".
func (c CallerContext) PrincipalID() string {
	if c.Principal == nil {
		return "anonymous"
	}
	return c.Principal.ID
}
