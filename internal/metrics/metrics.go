// Package metrics exposes Prometheus counters for catalog drift, save
// decisions and repairs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"projectadmin/internal/amenities"
	"projectadmin/internal/reconcile"
)

const namespace = "projectadmin"

// Repair outcomes.
const (
	RepairChanged   = "changed"
	RepairUnchanged = "unchanged"
	RepairFailed    = "failed"
)

// Recorder holds the application's collectors. It implements
// amenities.DriftReporter.
type Recorder struct {
	gatherer  prometheus.Gatherer
	drift     prometheus.Counter
	decisions *prometheus.CounterVec
	repairs   *prometheus.CounterVec
}

var _ amenities.DriftReporter = (*Recorder)(nil)

// New registers the collectors on a fresh registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		gatherer: reg,
		drift: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "amenity_catalog_drift_total",
			Help:      "Selected amenity ids dropped at encode time because the catalog no longer has them.",
		}),
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_decisions_total",
			Help:      "Field groups saved, by source of the saved value.",
		}, []string{"group", "decision"}),
		repairs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "amenity_repairs_total",
			Help:      "Amenity repair attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// ReportDrift counts dropped ids.
func (r *Recorder) ReportDrift(ids []amenities.SelectionID) {
	r.drift.Add(float64(len(ids)))
}

// ObserveSave counts one decision per group in report.
func (r *Recorder) ObserveSave(report reconcile.Report) {
	for group, decision := range report {
		r.decisions.WithLabelValues(string(group), string(decision)).Inc()
	}
}

// ObserveRepair counts one repair attempt.
func (r *Recorder) ObserveRepair(outcome string) {
	r.repairs.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
