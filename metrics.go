package orrery

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	framesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orrery_frames_total",
			Help: "Total number of simulation frames driven.",
		},
	)

	rebasesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orrery_origin_rebases_total",
			Help: "Total number of virtual-origin rebase events.",
		},
	)

	trailRecomputesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orrery_trail_recomputes_total",
			Help: "Total number of trail position-buffer recomputations.",
		},
	)

	trailReallocsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orrery_trail_reallocs_total",
			Help: "Total number of trail buffer reallocations.",
		},
	)
)

func init() {
	prometheus.MustRegister(framesTotal)
	prometheus.MustRegister(rebasesTotal)
	prometheus.MustRegister(trailRecomputesTotal)
	prometheus.MustRegister(trailReallocsTotal)
}

// MetricsHandler returns the Prometheus metrics HTTP handler for embedding;
// the core itself serves nothing.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
