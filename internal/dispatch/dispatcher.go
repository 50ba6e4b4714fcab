package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lumen-cms/toolgate/internal/audit"
	"github.com/lumen-cms/toolgate/internal/caches"
	"github.com/lumen-cms/toolgate/internal/policy"
	"github.com/lumen-cms/toolgate/internal/schema"
	"go.uber.org/zap"
)

// Dispatcher orchestrates one invocation:
// validate → authorize → rate-check → execute → invalidate caches →
// envelope, emitting audit events at receipt and completion. Every
// collaborator fault is converted into an error envelope; nothing
// propagates to the transport.
type Dispatcher struct {
	registry    *Registry
	authorizer  *policy.Authorizer
	invalidator caches.Invalidator
	writer      audit.Writer
	logger      *zap.Logger
	versions    map[string]string
}

// Config wires the Dispatcher's collaborators. Handlers never reach for
// ambient state; everything they touch arrives through here or through
// their own constructors.
type Config struct {
	Registry    *Registry
	Authorizer  *policy.Authorizer
	Invalidator caches.Invalidator
	Audit       audit.Writer
	Logger      *zap.Logger
	Versions    map[string]string // host platform version strings for meta
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	versions := make(map[string]string, len(cfg.Versions)+1)
	for name, version := range cfg.Versions {
		versions[name] = version
	}
	if versions["toolgate"] == "" {
		versions["toolgate"] = "unknown"
	}
	return &Dispatcher{
		registry:    cfg.Registry,
		authorizer:  cfg.Authorizer,
		invalidator: cfg.Invalidator,
		writer:      cfg.Audit,
		logger:      cfg.Logger,
		versions:    versions,
	}
}

// Registry exposes the tool set for discovery surfaces.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs one invocation end to end and always returns a
// well-formed envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, toolName string, rawArgs map[string]any, cc policy.CallerContext) Envelope {
	start := time.Now()
	invocationID := uuid.New().String()

	tool := d.registry.Get(toolName)
	if tool == nil {
		message := fmt.Sprintf("unknown tool: %s", toolName)
		d.writeEvent(&audit.InvocationEvent{
			InvocationID:  invocationID,
			Timestamp:     start,
			Stage:         audit.StageFailed,
			Tool:          toolName,
			Mode:          string(cc.Mode),
			PrincipalID:   cc.PrincipalID(),
			Outcome:       "unknown_tool",
			Error:         message,
			ArgumentsJSON: audit.MarshalRedacted(rawArgs),
			DurationMs:    millisSince(start),
		})
		return ErrorEnvelope(message, nil)
	}

	argsJSON := audit.MarshalRedacted(rawArgs)
	d.writeEvent(&audit.InvocationEvent{
		InvocationID:  invocationID,
		Timestamp:     start,
		Stage:         audit.StageReceived,
		Tool:          tool.Name,
		Action:        tool.Action,
		Domain:        tool.Domain,
		Mode:          string(cc.Mode),
		PrincipalID:   cc.PrincipalID(),
		ArgumentsJSON: argsJSON,
	})

	fail := func(outcome, message string, details map[string]any) Envelope {
		d.writeEvent(&audit.InvocationEvent{
			InvocationID:  invocationID,
			Timestamp:     time.Now(),
			Stage:         audit.StageFailed,
			Tool:          tool.Name,
			Action:        tool.Action,
			Domain:        tool.Domain,
			Mode:          string(cc.Mode),
			PrincipalID:   cc.PrincipalID(),
			Outcome:       outcome,
			Error:         message,
			ArgumentsJSON: argsJSON,
			DurationMs:    millisSince(start),
		})
		return ErrorEnvelope(message, details)
	}

	args, err := tool.Schema.Validate(rawArgs)
	if err != nil {
		return fail("validation_error", err.Error(), validationDetails(err))
	}

	action := tool.Action
	handler := tool.Handler
	if tool.Actions != nil {
		action = args.String("action")
		h, ok := tool.Actions[action]
		if !ok {
			return fail("validation_error", fmt.Sprintf("unsupported action: %q", action), nil)
		}
		handler = h
	}

	decision := d.authorizer.Authorize(ctx, policy.Request{
		Tool:    tool.Name,
		Action:  action,
		Domain:  tool.Domain,
		Context: cc,
	})
	if !decision.Allowed {
		return fail(string(decision.State), decision.Reason, nil)
	}

	payload, err := d.execute(ctx, handler, &Invocation{Action: action, Args: args, Context: cc})
	if err != nil {
		return fail("handler_error", fmt.Sprintf("%s failed: %v", action, err), nil)
	}
	if payload == nil {
		payload = map[string]any{}
	}

	// Cache invalidation is best-effort: the mutation already succeeded,
	// per-kind failures are diagnostics, never an invocation failure.
	if tool.Category != "" && d.invalidator != nil {
		kinds := caches.KindsFor(tool.Category)
		outcomes := d.invalidator.Invalidate(ctx, kinds)
		cleared, types := caches.Summarize(kinds, outcomes)
		payload["cache_cleared"] = cleared
		if len(types) > 0 {
			payload["cleared_types"] = types
		}
		for kind, out := range outcomes {
			if !out.Succeeded {
				d.logger.Warn("cache invalidation failed",
					zap.String("tool", tool.Name),
					zap.String("kind", string(kind)),
					zap.String("reason", out.Reason),
				)
			}
		}
	}

	env := Envelope{}
	for k, v := range payload {
		if k == "error" {
			continue // envelope exclusivity: success never carries an error key
		}
		env[k] = v
	}
	env["meta"] = d.meta(tool.Name)

	d.writeEvent(&audit.InvocationEvent{
		InvocationID:  invocationID,
		Timestamp:     time.Now(),
		Stage:         audit.StageCompleted,
		Tool:          tool.Name,
		Action:        action,
		Domain:        tool.Domain,
		Mode:          string(cc.Mode),
		PrincipalID:   cc.PrincipalID(),
		Outcome:       "success",
		ArgumentsJSON: argsJSON,
		DurationMs:    millisSince(start),
	})
	return env
}

// execute wraps the handler in a failure boundary: panics become
// ordinary errors, never transport faults.
func (d *Dispatcher) execute(ctx context.Context, handler HandlerFunc, inv *Invocation) (payload map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic recovered",
				zap.String("action", inv.Action),
				zap.Any("panic", r),
			)
			err = fmt.Errorf("%v", r)
		}
	}()
	return handler(ctx, inv)
}

func (d *Dispatcher) meta(toolName string) map[string]any {
	meta := map[string]any{
		"tool":      toolName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for name, version := range d.versions {
		meta[name] = version
	}
	return meta
}

func (d *Dispatcher) writeEvent(event *audit.InvocationEvent) {
	if d.writer != nil {
		d.writer.Write(event)
	}
}

func validationDetails(err error) map[string]any {
	verr, ok := err.(*schema.ValidationError)
	if !ok {
		return nil
	}
	details := map[string]any{}
	if len(verr.Missing) > 0 {
		details["missing"] = verr.Missing
	}
	if len(verr.Invalid) > 0 {
		details["invalid"] = verr.Invalid
	}
	return details
}

func millisSince(start time.Time) float32 {
	return float32(float64(time.Since(start)) / float64(time.Millisecond))
}
