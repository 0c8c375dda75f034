package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOpLatency records remote store call latency by operation and table.
	StoreOpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ricordi_store_op_latency_seconds",
		Help:    "Remote store call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// StoreOpErrors counts remote store errors by operation and table.
	StoreOpErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ricordi_store_op_errors_total",
		Help: "Total number of remote store errors by operation and table",
	}, []string{"operation", "table"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ricordi_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// UploadBytes counts bytes uploaded to the storage bucket by file type.
	UploadBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ricordi_upload_bytes_total",
		Help: "Total bytes uploaded to the storage bucket",
	}, []string{"file_type"})

	// CarouselRotations counts rotation ticks by carousel name.
	CarouselRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ricordi_carousel_rotations_total",
		Help: "Total number of carousel rotation ticks",
	}, []string{"carousel"})
)

// ObserveStoreOp records latency and, if err is non-nil, an error for a store call.
func ObserveStoreOp(operation, table string, start time.Time, err error) {
	StoreOpLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreOpErrors.WithLabelValues(operation, table).Inc()
	}
}
