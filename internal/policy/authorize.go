package policy

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// State is the terminal state of the authorization check.
type State string

const (
	StateAuthorized      State = "authorized"
	StateUnauthenticated State = "unauthenticated"
	StateUnauthorized    State = "unauthorized"
	StateRateLimited     State = "rate_limited"
)

// Decision is the outcome of authorizing one invocation. Denials carry a
// generic reason naming only the action and resource, never which
// internal capability check failed.
type Decision struct {
	Allowed    bool
	State      State
	Capability string
	Reason     string
}

// Request describes the invocation being authorized.
type Request struct {
	Tool    string
	Action  string
	Domain  string
	Context CallerContext
}

// Authorizer applies the context policy: CLI callers bypass everything,
// remote callers need a principal holding the mapped capability and are
// subject to rate limiting.
type Authorizer struct {
	limiter *RateLimiter // nil disables rate limiting
	logger  *zap.Logger
}

// NewAuthorizer creates an Authorizer.
func NewAuthorizer(limiter *RateLimiter, logger *zap.Logger) *Authorizer {
	return &Authorizer{limiter: limiter, logger: logger}
}

// Authorize runs the per-invocation state machine.
func (a *Authorizer) Authorize(ctx context.Context, req Request) Decision {
	if req.Context.Mode == ModeCLI {
		return Decision{Allowed: true, State: StateAuthorized}
	}

	p := req.Context.Principal
	if p == nil {
		return Decision{
			State:  StateUnauthenticated,
			Reason: "authentication required",
		}
	}

	capability := CapabilityFor(req.Action, req.Domain)
	if !p.Can(capability) {
		a.logger.Info("capability denied",
			zap.String("tool", req.Tool),
			zap.String("principal", p.ID),
			zap.String("capability", capability),
		)
		return Decision{
			State:      StateUnauthorized,
			Capability: capability,
			Reason:     fmt.Sprintf("permission denied: cannot %s %s", req.Action, req.Domain),
		}
	}

	if a.limiter != nil {
		key := RateKey(req.Tool, req.Action, req.Context.Mode, p.ID)
		if !a.limiter.Allow(ctx, key) {
			return Decision{
				State:      StateRateLimited,
				Capability: capability,
				Reason:     "rate limit exceeded, try again later",
			}
		}
	}

	return Decision{Allowed: true, State: StateAuthorized, Capability: capability}
}
