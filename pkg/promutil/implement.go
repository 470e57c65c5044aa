package promutil

import (
	"github.com/prometheus/client_golang/prometheus"
)

type wrappingFactory struct {
	r *Registry
	// id identifies the component the factory belongs to. It is used
	// to unregister all of the component's collectors at once.
	id string
	// constLabels is stamped on every metric the factory produces.
	constLabels prometheus.Labels
}

// NewCounter works like the function of the same name in the prometheus
// package, but it automatically registers the Counter with the Factory's
// Registerer. Panic if it can't register successfully. Thread-safe.
func (f *wrappingFactory) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(*wrapCounterOpts(f.constLabels, &opts))
	f.r.MustRegister(f.id, c)
	return c
}

// NewCounterVec works like the function of the same name in the
// prometheus package, but it automatically registers the CounterVec with
// the Factory's Registerer. Panic if it can't register successfully. Thread-safe.
func (f *wrappingFactory) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(*wrapCounterOpts(f.constLabels, &opts), labelNames)
	f.r.MustRegister(f.id, c)
	return c
}

// NewGauge works like the function of the same name in the prometheus
// package, but it automatically registers the Gauge with the Factory's
// Registerer. Panic if it can't register successfully. Thread-safe.
func (f *wrappingFactory) NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	c := prometheus.NewGauge(*wrapGaugeOpts(f.constLabels, &opts))
	f.r.MustRegister(f.id, c)
	return c
}

// NewGaugeVec works like the function of the same name in the prometheus
// package, but it automatically registers the GaugeVec with the Factory's
// Registerer. Panic if it can't register successfully. Thread-safe.
func (f *wrappingFactory) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	c := prometheus.NewGaugeVec(*wrapGaugeOpts(f.constLabels, &opts), labelNames)
	f.r.MustRegister(f.id, c)
	return c
}

// NewHistogram works like the function of the same name in the prometheus
// package, but it automatically registers the Histogram with the Factory's
// Registerer. Panic if it can't register successfully. Thread-safe.
func (f *wrappingFactory) NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	c := prometheus.NewHistogram(*wrapHistogramOpts(f.constLabels, &opts))
	f.r.MustRegister(f.id, c)
	return c
}

// NewHistogramVec works like the function of the same name in the
// prometheus package, but it automatically registers the HistogramVec
// with the Factory's Registerer. Panic if it can't register successfully. Thread-safe.
func (f *wrappingFactory) NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	c := prometheus.NewHistogramVec(*wrapHistogramOpts(f.constLabels, &opts), labelNames)
	f.r.MustRegister(f.id, c)
	return c
}

func wrapCounterOpts(constLabels prometheus.Labels, opts *prometheus.CounterOpts) *prometheus.CounterOpts {
	if opts.ConstLabels == nil {
		opts.ConstLabels = make(prometheus.Labels)
	}
	mergeLabels(constLabels, opts.ConstLabels)
	return opts
}

func wrapGaugeOpts(constLabels prometheus.Labels, opts *prometheus.GaugeOpts) *prometheus.GaugeOpts {
	if opts.ConstLabels == nil {
		opts.ConstLabels = make(prometheus.Labels)
	}
	mergeLabels(constLabels, opts.ConstLabels)
	return opts
}

func wrapHistogramOpts(constLabels prometheus.Labels, opts *prometheus.HistogramOpts) *prometheus.HistogramOpts {
	if opts.ConstLabels == nil {
		opts.ConstLabels = make(prometheus.Labels)
	}
	mergeLabels(constLabels, opts.ConstLabels)
	return opts
}

func mergeLabels(from prometheus.Labels, into prometheus.Labels) {
	for name, value := range from {
		if _, exists := into[name]; exists {
			panic("duplicate label name " + name)
		}
		into[name] = value
	}
}
