package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a conversion run.
type Metrics struct {
	FilesFound           *prometheus.CounterVec // labels: source, level
	FilesConverted       prometheus.Counter
	FileErrors           *prometheus.CounterVec // labels: stage={read,extract,annotate,write}
	RowsWritten          prometheus.Counter
	OutputsWritten       prometheus.Counter
	NoFilesFound         prometheus.Counter
	ReferenceParseErrors prometheus.Counter

	ReferenceEntries   prometheus.Gauge
	ConversionDuration prometheus.Histogram

	ExtractCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all converter metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FilesFound,
		m.FilesConverted,
		m.FileErrors,
		m.RowsWritten,
		m.OutputsWritten,
		m.NoFilesFound,
		m.ReferenceParseErrors,
		m.ReferenceEntries,
		m.ConversionDuration,
		m.ExtractCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clim2parquet",
			Name:      "files_found_total",
			Help:      "Climate CSV files matched per data source and admin level.",
		}, []string{"source", "level"}),
		FilesConverted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clim2parquet",
			Name:      "files_converted_total",
			Help:      "CSV files read, annotated and included in an output.",
		}),
		FileErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clim2parquet",
			Name:      "file_errors_total",
			Help:      "Per-file failures by stage.",
		}, []string{"stage"}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clim2parquet",
			Name:      "rows_written_total",
			Help:      "Rows written to Parquet outputs.",
		}),
		OutputsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clim2parquet",
			Name:      "outputs_written_total",
			Help:      "Parquet files written.",
		}),
		NoFilesFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clim2parquet",
			Name:      "no_files_found_total",
			Help:      "Data source and admin level pairs skipped because no files matched.",
		}),
		ReferenceParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clim2parquet",
			Name:      "reference_parse_errors_total",
			Help:      "Files excluded from the reference table because their name did not parse.",
		}),
		ReferenceEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clim2parquet",
			Name:      "reference_entries",
			Help:      "Rows in the reference table used by the last run.",
		}),
		ConversionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clim2parquet",
			Name:      "conversion_duration_seconds",
			Help:      "Duration of a complete conversion run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
		ExtractCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clim2parquet",
			Name:      "extract_cache_total",
			Help:      "Admin code extraction cache lookups by result.",
		}, []string{"result"}),
	}
}
