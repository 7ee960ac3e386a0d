package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/ladon/pkg/automator"
)

// LogHooks returns automation hooks that log every lifecycle event to logger.
func LogHooks(logger *slog.Logger) automator.Hooks {
	return automator.Hooks{
		OnPhaseStart: func(ctx context.Context, e *automator.PhaseEvent) {
			logger.DebugContext(ctx, "phase_start",
				"run_id", e.AutomationID,
				"script", e.Script,
				"phase", e.Phase,
			)
		},
		OnPhaseEnd: func(ctx context.Context, e *automator.PhaseEvent) {
			attrs := []any{
				"run_id", e.AutomationID,
				"script", e.Script,
				"phase", e.Phase,
				"duration", e.Duration,
				"status", e.Status,
			}
			if e.Err != nil {
				logger.WarnContext(ctx, "phase_end", append(attrs, "error", e.Err)...)
				return
			}
			logger.DebugContext(ctx, "phase_end", attrs...)
		},
		OnPhaseSkipped: func(ctx context.Context, e *automator.PhaseEvent) {
			logger.DebugContext(ctx, "phase_skipped",
				"run_id", e.AutomationID,
				"script", e.Script,
				"phase", e.Phase,
				"reason", e.Reason,
			)
		},
		OnRunEnd: func(ctx context.Context, e *automator.RunEvent) {
			logger.InfoContext(ctx, "run_end",
				"run_id", e.AutomationID,
				"script", e.Script,
				"status", e.Status,
				"duration", e.Duration,
			)
		},
	}
}
