package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/rapidhire/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured line per event.
// Transitions and rejects are logged at DEBUG, submissions at INFO.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition",
				"session_id", e.SessionID,
				"from", e.From,
				"to", e.To,
				"trigger", e.Trigger,
			)
		},
		OnReject: func(ctx context.Context, e *domain.RejectEvent) {
			logger.DebugContext(ctx, "input_rejected",
				"session_id", e.SessionID,
				"stage", e.Stage,
				"reason", e.Reason,
			)
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			logger.InfoContext(ctx, "submission",
				"session_id", e.SessionID,
				"ok", e.OK,
				"duration", e.Duration,
			)
		},
	}
}
