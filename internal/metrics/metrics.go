package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels shared by the scan and kill counters.
const (
	ResultSuccess = "success"
)

var (
	registry = prometheus.NewRegistry()

	scansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sockscope",
		Name:      "scans_total",
		Help:      "Total number of scans by result (success or error kind).",
	}, []string{"result"})

	scanDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sockscope",
		Name:      "scan_duration_seconds",
		Help:      "Wall-clock duration of scans in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"result"})

	scansInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sockscope",
		Name:      "scans_in_flight",
		Help:      "Number of scans currently running.",
	})

	killsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sockscope",
		Name:      "kills_total",
		Help:      "Total number of termination requests by result.",
	}, []string{"result"})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sockscope",
		Name:      "build_info",
		Help:      "Build metadata for the running sockscope binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(scansTotal, scanDuration, scansInFlight, killsTotal, buildInfo)
}

// Registry returns the Prometheus registry containing all sockscope metrics.
func Registry() *prometheus.Registry {
	return registry
}

// ScanStarted marks a scan as running and returns a func that records its
// completion with the given result label.
func ScanStarted() func(result string) {
	start := time.Now()
	scansInFlight.Inc()
	return func(result string) {
		scansInFlight.Dec()
		if result == "" {
			result = ResultSuccess
		}
		scansTotal.WithLabelValues(result).Inc()
		scanDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}
}

// ObserveKill records the result of a termination request.
func ObserveKill(result string) {
	if result == "" {
		result = ResultSuccess
	}
	killsTotal.WithLabelValues(result).Inc()
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
