package observability

import (
	"context"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for tour activity.
type Metrics struct {
	Started   *prometheus.CounterVec
	Stopped   *prometheus.CounterVec
	Completed *prometheus.CounterVec
	Replaced  *prometheus.CounterVec
	StepViews *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guidepost_tours_started_total",
			Help: "Total number of tours started",
		}, []string{"tag"}),
		Stopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guidepost_tours_stopped_total",
			Help: "Total number of tours stopped, completed or not",
		}, []string{"tag"}),
		Completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guidepost_tours_completed_total",
			Help: "Total number of tours walked to the last step",
		}, []string{"tag"}),
		Replaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guidepost_tours_replaced_total",
			Help: "Total number of active tours discarded by a new start",
		}, []string{"tag"}),
		StepViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guidepost_step_views_total",
			Help: "Total number of step changes",
		}, []string{"tag"}),
	}
	if reg != nil {
		reg.MustRegister(m.Started, m.Stopped, m.Completed, m.Replaced, m.StepViews)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTourStart: func(_ context.Context, e *domain.TourEvent) {
			m.Started.WithLabelValues(e.Tag).Inc()
			if e.Replaced != "" {
				m.Replaced.WithLabelValues(e.Replaced).Inc()
			}
		},
		OnTourStop: func(_ context.Context, e *domain.TourEvent) {
			m.Stopped.WithLabelValues(e.Tag).Inc()
			if e.Completed {
				m.Completed.WithLabelValues(e.Tag).Inc()
			}
		},
		OnStepChange: func(_ context.Context, e *domain.StepEvent) {
			m.StepViews.WithLabelValues(e.Tag).Inc()
		},
	}
}
