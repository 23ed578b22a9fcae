// Package metrics exports workflow controller state as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foreman"

// Recorder collects controller metrics on a private registry. It satisfies
// workflow.Recorder.
type Recorder struct {
	registry *prometheus.Registry

	trackedJobs       prometheus.Gauge
	pendingRecovery   prometheus.Gauge
	recoveries        prometheus.Counter
	forgotten         *prometheus.CounterVec
	transitions       *prometheus.CounterVec
	constraintMeasure *prometheus.GaugeVec
	constraintInUse   *prometheus.GaugeVec
	meltable          prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		trackedJobs: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_jobs",
			Help:      "Repeat jobs under protection, live or pending recovery.",
		}),
		pendingRecovery: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_recovery",
			Help:      "Lost jobs waiting to be rebuilt.",
		}),
		recoveries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recoveries_total",
			Help:      "Lost jobs rebuilt into their holder.",
		}),
		forgotten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forgotten_total",
			Help:      "Jobs dropped from protection, by reason.",
		}, []string{"reason"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_transitions_total",
			Help:      "Resume and suspend decisions applied to jobs.",
		}, []string{"direction"}),
		constraintMeasure: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "constraint_available",
			Help:      "Available goods per constraint, in the constraint's goal unit.",
		}, []string{"constraint"}),
		constraintInUse: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "constraint_in_use",
			Help:      "Matching stacks that are claimed or otherwise unavailable.",
		}, []string{"constraint"}),
		meltable: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "meltable_items",
			Help:      "Items designated for melting and free to be melted.",
		}),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) ObserveRegistry(tracked, pending int) {
	r.trackedJobs.Set(float64(tracked))
	r.pendingRecovery.Set(float64(pending))
}

func (r *Recorder) JobRecovered() { r.recoveries.Inc() }

func (r *Recorder) JobForgotten(reason string) { r.forgotten.WithLabelValues(reason).Inc() }

func (r *Recorder) JobTransition(resumed bool) {
	direction := "suspend"
	if resumed {
		direction = "resume"
	}
	r.transitions.WithLabelValues(direction).Inc()
}

func (r *Recorder) ObserveConstraint(spec string, available, inUse int) {
	r.constraintMeasure.WithLabelValues(spec).Set(float64(available))
	r.constraintInUse.WithLabelValues(spec).Set(float64(inUse))
}

func (r *Recorder) ForgetConstraint(spec string) {
	r.constraintMeasure.DeleteLabelValues(spec)
	r.constraintInUse.DeleteLabelValues(spec)
}

func (r *Recorder) ObserveMeltable(n int) { r.meltable.Set(float64(n)) }
