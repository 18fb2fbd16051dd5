// Package metrics exposes the storefront's operational counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the registered collectors. One instance lives for the
// process; handlers and services share it.
type Metrics struct {
	GenerationsStarted  prometheus.Counter
	GenerationsFailed   prometheus.Counter
	MockupsRendered     prometheus.Counter
	MockupsFailed       prometheus.Counter
	CheckoutsStarted    prometheus.Counter
	OrdersSubmitted     prometheus.Counter
	OrderSubmitFailures prometheus.Counter
	UpscaleFallbacks    prometheus.Counter

	GenerationDuration prometheus.Histogram
	MockupDuration     prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GenerationsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_generations_started_total",
			Help: "Image generation jobs accepted.",
		}),
		GenerationsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_generations_failed_total",
			Help: "Image generation jobs that ended in failure.",
		}),
		MockupsRendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_mockups_rendered_total",
			Help: "Mockup render tasks that completed.",
		}),
		MockupsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_mockups_failed_total",
			Help: "Mockup render tasks that failed or timed out.",
		}),
		CheckoutsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_checkouts_started_total",
			Help: "Hosted checkout sessions created.",
		}),
		OrdersSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_submitted_total",
			Help: "Fulfillment orders accepted by the print provider.",
		}),
		OrderSubmitFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_order_submit_failures_total",
			Help: "Paid sessions whose fulfillment order submission failed and needs manual reconciliation.",
		}),
		UpscaleFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_upscale_fallbacks_total",
			Help: "Orders submitted with the original image because upscaling failed.",
		}),
		GenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_generation_duration_seconds",
			Help:    "Wall time from job start to terminal state.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		MockupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_mockup_duration_seconds",
			Help:    "Wall time from render task creation to terminal state.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
	}
}

// NewDefault registers against the default registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
