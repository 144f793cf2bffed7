package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boltwire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "boltwire",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	messagesEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boltwire",
			Subsystem: "codec",
			Name:      "messages_encoded_total",
			Help:      "Bolt messages encoded and handed to the transport.",
		},
		[]string{"message"},
	)
	bytesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boltwire",
			Subsystem: "codec",
			Name:      "bytes_written_total",
			Help:      "Chunked bytes written, by message.",
		},
		[]string{"message"},
	)
	encodeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boltwire",
			Subsystem: "codec",
			Name:      "encode_failures_total",
			Help:      "Failed encode or write attempts.",
		},
		[]string{"message", "reason"},
	)
	classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boltwire",
			Subsystem: "types",
			Name:      "classifications_total",
			Help:      "Values classified, by coarse type.",
		},
		[]string{"type"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, messagesEncoded, bytesWritten, encodeFailures, classifications)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordMessageEncoded(message string, n int) {
	RegisterMetrics()
	messagesEncoded.WithLabelValues(message).Inc()
	bytesWritten.WithLabelValues(message).Add(float64(n))
}

func RecordEncodeFailure(message, reason string) {
	RegisterMetrics()
	encodeFailures.WithLabelValues(message, reason).Inc()
}

func RecordClassification(typeName string) {
	RegisterMetrics()
	classifications.WithLabelValues(typeName).Inc()
}
