package metrics

import (
	"net/http"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	workerRunning = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tether",
		Name:      "worker_running",
		Help:      "Whether a worker started through the launcher is currently running (1=running, 0=exited).",
	}, []string{"worker"})

	workerExits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tether",
		Name:      "worker_exits_total",
		Help:      "Total worker exits observed, partitioned by outcome.",
	}, []string{"worker", "outcome"})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tether",
		Name:      "build_info",
		Help:      "Build metadata for the running tether binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(workerRunning, workerExits, buildInfo)
}

// Registry returns the Prometheus registry containing all tether metrics.
func Registry() *prometheus.Registry {
	return registry
}

// Handler serves the tether metrics over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// WorkerStarted marks a worker as running.
func WorkerStarted(worker string) {
	if worker == "" {
		return
	}
	workerRunning.WithLabelValues(worker).Set(1)
}

// WorkerExited marks a worker as stopped and counts the exit outcome.
func WorkerExited(worker string, exitErr error) {
	if worker == "" {
		return
	}
	workerRunning.WithLabelValues(worker).Set(0)
	outcome := "ok"
	if exitErr != nil {
		outcome = "error"
	}
	workerExits.WithLabelValues(worker, outcome).Inc()
}

// ResetWorker clears the series recorded for a worker.
func ResetWorker(worker string) {
	if worker == "" {
		return
	}
	workerRunning.DeleteLabelValues(worker)
	workerExits.DeletePartialMatch(prometheus.Labels{"worker": worker})
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
