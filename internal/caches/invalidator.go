package caches

import (
	"context"

	"go.uber.org/zap"
)

// Outcome records one cache kind's invalidation result.
type Outcome struct {
	Succeeded bool
	Reason    string
}

// Invalidator clears named caches. Implementations are best-effort: a
// failing kind must not prevent attempting the others, and Invalidate
// never returns an error — failures are per-kind outcomes.
type Invalidator interface {
	Invalidate(ctx context.Context, kinds []Kind) map[Kind]Outcome
}

// Summarize reduces per-kind outcomes for the response envelope. The
// operation counts as cleared when the first (primary) requested kind
// succeeded; the rest is diagnostics.
func Summarize(kinds []Kind, outcomes map[Kind]Outcome) (cleared bool, clearedTypes []string) {
	if len(kinds) == 0 {
		return false, nil
	}
	if out, ok := outcomes[kinds[0]]; ok && out.Succeeded {
		cleared = true
	}
	for _, k := range kinds {
		if out, ok := outcomes[k]; ok && out.Succeeded {
			clearedTypes = append(clearedTypes, string(k))
		}
	}
	return cleared, clearedTypes
}

// LogInvalidator is the development fallback: it records the request
// and reports success for every kind.
type LogInvalidator struct {
	logger *zap.Logger
}

// NewLogInvalidator creates a LogInvalidator.
func NewLogInvalidator(logger *zap.Logger) *LogInvalidator {
	return &LogInvalidator{logger: logger}
}

func (l *LogInvalidator) Invalidate(_ context.Context, kinds []Kind) map[Kind]Outcome {
	outcomes := make(map[Kind]Outcome, len(kinds))
	for _, k := range kinds {
		outcomes[k] = Outcome{Succeeded: true}
		l.logger.Info("cache invalidated", zap.String("kind", string(k)))
	}
	return outcomes
}
