package promutil

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// The process keeps its own registry instead of prometheus.DefaultRegistry,
// so a collector registered outside a Factory cannot bypass the const
// labels added by With.
var (
	globalMetricRegistry                     = NewRegistry()
	globalMetricGatherer prometheus.Gatherer = globalMetricRegistry
)

func init() {
	globalMetricRegistry.MustRegister(systemComponent, collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	globalMetricRegistry.MustRegister(systemComponent, collectors.NewGoCollector())
}

// Registry tracks which component registered which collectors, so a
// component can be unregistered as a whole.
type Registry struct {
	sync.Mutex
	*prometheus.Registry

	collectorByComponent map[string][]prometheus.Collector
}

// NewRegistry creates a Registry.
func NewRegistry() *Registry {
	return &Registry{
		Registry:             prometheus.NewRegistry(),
		collectorByComponent: make(map[string][]prometheus.Collector),
	}
}

// MustRegister registers the provided Collector under the component.
func (r *Registry) MustRegister(component string, c prometheus.Collector) {
	if c == nil {
		return
	}
	r.Lock()
	defer r.Unlock()

	r.Registry.MustRegister(c)
	r.collectorByComponent[component] = append(r.collectorByComponent[component], c)
}

// Unregister unregisters all Collectors of the component.
func (r *Registry) Unregister(component string) {
	r.Lock()
	defer r.Unlock()

	cls, exists := r.collectorByComponent[component]
	if exists {
		for _, collector := range cls {
			r.Registry.Unregister(collector)
		}
		delete(r.collectorByComponent, component)
	}
}
