// Package metrics holds the Prometheus instrumentation for list file
// writers and readers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds every Prometheus collector the CLI registers.
type Metrics struct {
	recordsWritten     *prometheus.CounterVec
	bytesWritten       prometheus.Counter
	recordSize         prometheus.Histogram
	compressionSavings prometheus.Counter

	recordsRead       *prometheus.CounterVec
	corruptionEvents  *prometheus.CounterVec
	bytesLost         prometheus.Counter
}

// NewMetrics creates and registers every collector against the default
// registry.
func NewMetrics() *Metrics {
	return &Metrics{
		recordsWritten: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listfile_records_written_total",
				Help: "Total number of records appended, by outcome.",
			},
			[]string{"status"},
		),
		bytesWritten: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "listfile_bytes_written_total",
				Help: "Total bytes written to the sink, including frame headers and padding.",
			},
		),
		recordSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "listfile_record_size_bytes",
				Help:    "Size distribution of records passed to AddRecord.",
				Buckets: prometheus.ExponentialBuckets(64, 4, 10),
			},
		),
		compressionSavings: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "listfile_compression_savings_bytes_total",
				Help: "Bytes saved by writing a frame's compressed form instead of its raw payload.",
			},
		),
		recordsRead: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listfile_records_read_total",
				Help: "Total number of records returned by ReadRecord, by outcome.",
			},
			[]string{"status"},
		),
		corruptionEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listfile_corruption_events_total",
				Help: "Total number of recoverable corruption events reported by the reader, by reason.",
			},
			[]string{"reason"},
		),
		bytesLost: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "listfile_corruption_bytes_lost_total",
				Help: "Total bytes discarded while recovering from corruption.",
			},
		),
	}
}

// RecordWrite records the outcome of one AddRecord call.
func (m *Metrics) RecordWrite(size int, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.recordsWritten.WithLabelValues(status).Inc()
	if err == nil {
		m.recordSize.Observe(float64(size))
	}
}

// AddBytesWritten accumulates the bytes written to the sink.
func (m *Metrics) AddBytesWritten(n int64) {
	m.bytesWritten.Add(float64(n))
}

// AddCompressionSavings accumulates bytes saved by compression.
func (m *Metrics) AddCompressionSavings(n int64) {
	m.compressionSavings.Add(float64(n))
}

// RecordRead records the outcome of one ReadRecord call. err should be
// io.EOF, a non-nil corruption-unrelated error, or nil.
func (m *Metrics) RecordRead(err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.recordsRead.WithLabelValues(status).Inc()
}

// Reporter adapts Metrics to listfile.CorruptionReporter.
func (m *Metrics) Reporter(bytesLost int, reason string) {
	m.corruptionEvents.WithLabelValues(reason).Inc()
	m.bytesLost.Add(float64(bytesLost))
}
