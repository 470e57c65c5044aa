package promutil

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// systemComponent owns the process and Go runtime collectors.
	systemComponent = "system"

	// constLabelComponentKey marks which server component produced a
	// metric.
	constLabelComponentKey = "component"
)

// MetricNamespace prefixes every metric of this server.
const MetricNamespace = "rigpool"

// HTTPHandlerForMetric returns the http.Handler serving the process
// metrics, mounted on /metrics by the server.
func HTTPHandlerForMetric() http.Handler {
	return promhttp.HandlerFor(
		globalMetricGatherer,
		promhttp.HandlerOpts{},
	)
}

// With returns a Factory whose metrics carry the component const label
// and are registered under the component's name.
func With(component string) Factory {
	return WithRegistry(globalMetricRegistry, component)
}

// WithRegistry works like With but targets the given registry. Tests
// use it to keep their collectors out of the process registry.
func WithRegistry(r *Registry, component string) Factory {
	return &wrappingFactory{
		r:  r,
		id: component,
		constLabels: prometheus.Labels{
			constLabelComponentKey: component,
		},
	}
}

// UnregisterComponent drops every collector the component registered.
func UnregisterComponent(component string) {
	globalMetricRegistry.Unregister(component)
}
