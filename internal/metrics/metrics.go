// Package metrics holds the Prometheus collectors of the receive loop and
// the flush workers, and the optional HTTP endpoint that exposes them.
//
// A nil *Metrics is valid: every method is a no-op, so components take the
// metrics as an optional dependency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "seismograph"

// Metrics holds the collectors.
type Metrics struct {
	recordsReceived  prometheus.Counter
	bytesReceived    prometheus.Counter
	receiveErrors    prometheus.Counter
	acksSent         prometheus.Counter
	ackErrors        prometheus.Counter
	batchesFlushed   *prometheus.CounterVec
	flushFailures    *prometheus.CounterVec
	flushDuration    *prometheus.HistogramVec
	flushesInFlight  prometheus.Gauge
	batchRecords     prometheus.Histogram
	lastRecordUnixTS prometheus.Gauge
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New creates and registers the collectors. A nil registerer returns nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		recordsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "records_received_total",
			Help:      "Records read from the source",
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "bytes_received_total",
			Help:      "Payload bytes read from the source",
		}),
		receiveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "receive_errors_total",
			Help:      "Receive errors that did not stop the loop",
		}),
		acksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "acks_sent_total",
			Help:      "Acknowledgements issued",
		}),
		ackErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "ack_errors_total",
			Help:      "Acknowledgements that failed to send",
		}),
		batchesFlushed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "batches_flushed_total",
			Help:      "Batches written successfully",
		}, []string{"sink"}),
		flushFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "flush_failures_total",
			Help:      "Batches lost to a failed flush",
		}, []string{"sink"}),
		flushDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "flush_duration_seconds",
			Help:      "Time spent in a single flush",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		}, []string{"sink"}),
		flushesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "flushes_in_flight",
			Help:      "Flush workers currently running",
		}),
		batchRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "batch_records",
			Help:      "Records per dispatched batch",
			Buckets:   []float64{1, 10, 50, 100, 101, 200, 500, 1000},
		}),
		lastRecordUnixTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "last_record_timestamp_seconds",
			Help:      "Unix time of the last received record",
		}),
	}

	reg.MustRegister(
		m.recordsReceived,
		m.bytesReceived,
		m.receiveErrors,
		m.acksSent,
		m.ackErrors,
		m.batchesFlushed,
		m.flushFailures,
		m.flushDuration,
		m.flushesInFlight,
		m.batchRecords,
		m.lastRecordUnixTS,
	)
	return m
}

// RecordReceived counts one record of n bytes.
func (m *Metrics) RecordReceived(n int) {
	if m == nil {
		return
	}
	m.recordsReceived.Inc()
	m.bytesReceived.Add(float64(n))
	m.lastRecordUnixTS.SetToCurrentTime()
}

// ReceiveError counts a receive error.
func (m *Metrics) ReceiveError() {
	if m == nil {
		return
	}
	m.receiveErrors.Inc()
}

// Ack counts an acknowledgement attempt.
func (m *Metrics) Ack(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ackErrors.Inc()
		return
	}
	m.acksSent.Inc()
}

// FlushStarted marks a worker as running a batch of n records.
func (m *Metrics) FlushStarted(n int) {
	if m == nil {
		return
	}
	m.flushesInFlight.Inc()
	m.batchRecords.Observe(float64(n))
}

// FlushFinished records the outcome of a flush.
func (m *Metrics) FlushFinished(sink string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.flushesInFlight.Dec()
	m.flushDuration.WithLabelValues(sink).Observe(d.Seconds())
	if err != nil {
		m.flushFailures.WithLabelValues(sink).Inc()
		return
	}
	m.batchesFlushed.WithLabelValues(sink).Inc()
}
