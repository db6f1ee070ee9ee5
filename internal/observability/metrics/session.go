// Package metrics records session lifecycle metrics with Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	obserrors "github.com/pentopublic/pentopublic-client/internal/observability/errors"
)

// Result constants for metric labels.
const (
	ResultSuccess   = "success"
	ResultError     = "error"
	ResultDiscarded = "discarded"
	ResultRejected  = "rejected"
	ResultNoop      = "noop"
)

const namespace = "pentopublic"

// AttemptMetric captures one login, register, logout or startup outcome.
type AttemptMetric struct {
	Operation string
	Result    string
	Duration  time.Duration
	Err       error
}

// SessionRecorder owns the session collectors. A nil recorder drops everything.
type SessionRecorder struct {
	attempts    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	transitions *prometheus.CounterVec
}

// NewSessionRecorder creates the collectors and registers them with reg.
func NewSessionRecorder(reg prometheus.Registerer) (*SessionRecorder, error) {
	r := &SessionRecorder{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "attempts_total",
			Help:      "Session operations by outcome.",
		}, []string{"operation", "result", "error_class"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "attempt_duration_seconds",
			Help:      "Time spent waiting on the backend per operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Applied state machine transitions.",
		}, []string{"event", "from", "to"}),
	}
	if reg == nil {
		return r, nil
	}
	var err error
	if r.attempts, err = register(reg, r.attempts); err != nil {
		return nil, err
	}
	if r.duration, err = register(reg, r.duration); err != nil {
		return nil, err
	}
	if r.transitions, err = register(reg, r.transitions); err != nil {
		return nil, err
	}
	return r, nil
}

// register returns the already registered collector when an identical one exists.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// EmitAttempt records the outcome of one operation.
func (r *SessionRecorder) EmitAttempt(in AttemptMetric) {
	if r == nil {
		return
	}
	class := ""
	if in.Err != nil && in.Result == ResultError {
		class = obserrors.Classify(in.Err)
	}
	r.attempts.WithLabelValues(in.Operation, in.Result, class).Inc()
	if in.Duration > 0 {
		r.duration.WithLabelValues(in.Operation, in.Result).Observe(in.Duration.Seconds())
	}
}

// EmitTransition records an applied state machine transition.
func (r *SessionRecorder) EmitTransition(event, from, to string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(event, from, to).Inc()
}
