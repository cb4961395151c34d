// Package metrics provides Prometheus observability metrics for call-block imports.
// It covers parsing, segmentation and the in-memory dataset store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// PARSER
// =============================================================================

// ParserErrorsTotal tracks parse errors by error type.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by error type",
}, []string{"error_type"})

// ParserRecordsTotal tracks total call records successfully parsed.
var ParserRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total call records successfully parsed",
})

// ParserDurationSeconds tracks time to read CSV input.
var ParserDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "parser",
	Name:      "duration_seconds",
	Help:      "Time taken to read CSV input",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})

// =============================================================================
// SEGMENTER
// =============================================================================

// SegmenterBlocksTotal counts blocks produced per SDR.
var SegmenterBlocksTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "segmenter",
	Name:      "blocks_total",
	Help:      "Total call blocks produced by segmentation",
}, []string{"sdr"})

// SegmenterDurationSeconds tracks time to segment a record set.
var SegmenterDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "segmenter",
	Name:      "duration_seconds",
	Help:      "Time taken to segment call records into blocks",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// =============================================================================
// STORE
// =============================================================================

// StoreImportsTotal counts dataset imports by outcome.
var StoreImportsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "store",
	Name:      "imports_total",
	Help:      "Dataset imports by SDR and result",
}, []string{"sdr", "result"})

// StoreDeletesTotal counts dataset deletions.
var StoreDeletesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "store",
	Name:      "deletes_total",
	Help:      "Dataset deletions by SDR",
}, []string{"sdr"})

// StoreBlocks is the number of blocks currently held per SDR.
var StoreBlocks = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "store",
	Name:      "blocks",
	Help:      "Call blocks currently held per SDR",
}, []string{"sdr"})

// =============================================================================
// Helper Functions
// =============================================================================

// Result labels for StoreImportsTotal.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// RecordImport updates the store collectors after an import attempt.
func RecordImport(sdr string, blocks int, err error) {
	if err != nil {
		StoreImportsTotal.WithLabelValues(sdr, ResultError).Inc()
		return
	}
	StoreImportsTotal.WithLabelValues(sdr, ResultOK).Inc()
	StoreBlocks.WithLabelValues(sdr).Set(float64(blocks))
}

// RecordDelete updates the store collectors after a dataset is removed.
func RecordDelete(sdr string) {
	StoreDeletesTotal.WithLabelValues(sdr).Inc()
	StoreBlocks.DeleteLabelValues(sdr)
}
