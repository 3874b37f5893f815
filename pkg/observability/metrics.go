package observability

import (
	"context"

	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission results used as the "result" label.
const (
	ResultStored = "stored"
	ResultFailed = "failed"
)

// Metrics holds the bot's Prometheus collectors.
type Metrics struct {
	SessionsStarted    prometheus.Counter
	Transitions        *prometheus.CounterVec
	Submissions        *prometheus.CounterVec
	RejectedInputs     *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rapidhire_sessions_started_total",
			Help: "Total number of dialogues started with /start",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rapidhire_transitions_total",
			Help: "Total number of stage transitions",
		}, []string{"from", "to"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rapidhire_submissions_total",
			Help: "Total number of confirmed applications by store result",
		}, []string{"result"}),
		RejectedInputs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rapidhire_rejected_inputs_total",
			Help: "Total number of inputs refused without a stage change",
		}, []string{"stage", "reason"}),
		SubmissionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rapidhire_submission_duration_seconds",
			Help:    "Duration of record store appends",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			if e.Trigger == domain.EventStart {
				m.SessionsStarted.Inc()
			}
			m.Transitions.WithLabelValues(label(string(e.From)), string(e.To)).Inc()
		},
		OnReject: func(_ context.Context, e *domain.RejectEvent) {
			m.RejectedInputs.WithLabelValues(label(string(e.Stage)), e.Reason).Inc()
		},
		OnSubmit: func(_ context.Context, e *domain.SubmitEvent) {
			result := ResultStored
			if !e.OK {
				result = ResultFailed
			}
			m.Submissions.WithLabelValues(result).Inc()
			m.SubmissionDuration.Observe(e.Duration.Seconds())
		},
	}
}

// label substitutes "none" for an empty stage (no session yet).
func label(stage string) string {
	if stage == "" {
		return "none"
	}
	return stage
}
