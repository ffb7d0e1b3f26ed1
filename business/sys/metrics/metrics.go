// Package metrics constructs the metrics the application will track.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This holds the single instance of the metrics value needed for
// collecting metrics. The default registry is served by the debug mux.
var m = struct {
	goroutines prometheus.Gauge
	requests   prometheus.Counter
	errors     prometheus.Counter
	panics     prometheus.Counter
}{
	goroutines: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "minichain",
		Subsystem: "web",
		Name:      "goroutines",
		Help:      "Number of goroutines seen on the last sampled request.",
	}),
	requests: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Subsystem: "web",
		Name:      "requests_total",
		Help:      "Number of requests handled.",
	}),
	errors: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Subsystem: "web",
		Name:      "errors_total",
		Help:      "Number of requests that returned an error.",
	}),
	panics: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Subsystem: "web",
		Name:      "panics_total",
		Help:      "Number of panics recovered.",
	}),
}

// AddGoroutines refreshes the goroutine metric.
func AddGoroutines() {
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// AddRequests increments the request metric by 1.
func AddRequests() {
	m.requests.Inc()
}

// AddErrors increments the errors metric by 1.
func AddErrors() {
	m.errors.Inc()
}

// AddPanics increments the panics metric by 1.
func AddPanics() {
	m.panics.Inc()
}

// Requests returns the collector for the request metric.
func Requests() prometheus.Counter {
	return m.requests
}
