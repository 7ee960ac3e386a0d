package automator

import (
	"context"
	"time"

	"github.com/aretw0/ladon/pkg/domain"
)

// EventType defines the category of an automation event.
type EventType string

const (
	EventPhaseStart   EventType = "phase_start"
	EventPhaseEnd     EventType = "phase_end"
	EventPhaseSkipped EventType = "phase_skipped"
	EventRunEnd       EventType = "run_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	AutomationID string    `json:"automation_id"`
	Script       string    `json:"script"`
}

// PhaseEvent describes a phase boundary.
type PhaseEvent struct {
	EventBase
	Phase    string        `json:"phase"`
	Required bool          `json:"required"`
	Duration time.Duration `json:"duration,omitempty"`
	Status   domain.Status `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Err      error         `json:"-"`
}

// RunEvent describes a finished run.
type RunEvent struct {
	EventBase
	Status   domain.Status `json:"status"`
	Duration time.Duration `json:"duration"`
	Result   *domain.Result
}

// Hooks defines callbacks for automation observability.
type Hooks struct {
	OnPhaseStart   func(context.Context, *PhaseEvent)
	OnPhaseEnd     func(context.Context, *PhaseEvent)
	OnPhaseSkipped func(context.Context, *PhaseEvent)
	OnRunEnd       func(context.Context, *RunEvent)
}

// ComposeHooks calls each non-nil callback of hs in order.
func ComposeHooks(hs ...Hooks) Hooks {
	return Hooks{
		OnPhaseStart: func(ctx context.Context, e *PhaseEvent) {
			for _, h := range hs {
				if h.OnPhaseStart != nil {
					h.OnPhaseStart(ctx, e)
				}
			}
		},
		OnPhaseEnd: func(ctx context.Context, e *PhaseEvent) {
			for _, h := range hs {
				if h.OnPhaseEnd != nil {
					h.OnPhaseEnd(ctx, e)
				}
			}
		},
		OnPhaseSkipped: func(ctx context.Context, e *PhaseEvent) {
			for _, h := range hs {
				if h.OnPhaseSkipped != nil {
					h.OnPhaseSkipped(ctx, e)
				}
			}
		},
		OnRunEnd: func(ctx context.Context, e *RunEvent) {
			for _, h := range hs {
				if h.OnRunEnd != nil {
					h.OnRunEnd(ctx, e)
				}
			}
		},
	}
}
