// Package metrics exposes Prometheus collectors for HTTP traffic and recipe activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelAction = "action"
	LabelResult = "result"
	LabelStage  = "stage"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefbook_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chefbook_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chefbook_http_requests_in_flight",
			Help: "Requests currently being served.",
		},
	)
)

// Business Metrics
var (
	RecipesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chefbook_recipes_created_total",
			Help: "Recipes created directly or through the wizard.",
		},
	)

	RecipesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chefbook_recipes_deleted_total",
			Help: "Recipes deleted.",
		},
	)

	FavoriteToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefbook_favorite_toggles_total",
			Help: "Favorite toggles by resulting action (added, removed).",
		},
		[]string{LabelAction},
	)

	WizardSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefbook_wizard_submissions_total",
			Help: "Wizard stage submissions by stage and result.",
		},
		[]string{LabelStage, LabelResult},
	)
)
