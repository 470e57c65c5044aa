package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rigpool/rigpool/pkg/promutil"
)

const metricComponent = "allocator"

// allocatorMetrics carries the counters and gauges the allocator
// updates under its mutex.
type allocatorMetrics struct {
	grantCounter   prometheus.Counter
	denialCounter  *prometheus.CounterVec
	reclaimCounter *prometheus.CounterVec

	queuedGauge   prometheus.Gauge
	leaseGauge    prometheus.Gauge
	sessionGauge  prometheus.Gauge
	resourceGauge *prometheus.GaugeVec
}

func newAllocatorMetrics(f promutil.Factory) *allocatorMetrics {
	return &allocatorMetrics{
		grantCounter: f.NewCounter(prometheus.CounterOpts{
			Namespace: promutil.MetricNamespace,
			Subsystem: metricComponent,
			Name:      "grant_total",
			Help:      "Total number of granted requests.",
		}),
		denialCounter: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: promutil.MetricNamespace,
			Subsystem: metricComponent,
			Name:      "denial_total",
			Help:      "Total number of denied requests by reason.",
		}, []string{"reason"}),
		reclaimCounter: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: promutil.MetricNamespace,
			Subsystem: metricComponent,
			Name:      "reclaim_total",
			Help:      "Total number of force-released leases by reason.",
		}, []string{"reason"}),
		queuedGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: promutil.MetricNamespace,
			Subsystem: metricComponent,
			Name:      "queued_requests",
			Help:      "Number of requests waiting in the queue.",
		}),
		leaseGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: promutil.MetricNamespace,
			Subsystem: metricComponent,
			Name:      "active_leases",
			Help:      "Number of live leases.",
		}),
		sessionGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: promutil.MetricNamespace,
			Subsystem: metricComponent,
			Name:      "active_sessions",
			Help:      "Number of connected sessions.",
		}),
		resourceGauge: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: promutil.MetricNamespace,
			Subsystem: metricComponent,
			Name:      "resources",
			Help:      "Number of resources by occupancy state.",
		}, []string{"state"}),
	}
}
