package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency distribution",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})
	RequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "method", "status"})
	Inflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "In-flight HTTP requests",
	})
	DBUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_up",
		Help: "Database connectivity (1=up,0=down)",
	})
	RedisUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "redis_up",
		Help: "Redis connectivity (1=up,0=down)",
	})
	KafkaUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kafka_up",
		Help: "Kafka connectivity (1=up,0=down)",
	})
	EtcdUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "etcd_up",
		Help: "Etcd connectivity (1=up,0=down)",
	})
	DependencyCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dependency_check_duration_seconds",
		Help:    "Latency of dependency health checks",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1},
	}, []string{"dep"})

	// Admin resources
	ResourceMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_resource_mutations_total",
		Help: "Create/update/delete calls per admin resource",
	}, []string{"resource", "op", "result"})
	ResourceListCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_resource_list_cache_total",
		Help: "List cache lookups per admin resource",
	}, []string{"resource", "result"})

	// Realtime push channel
	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_connections",
		Help: "Open websocket connections",
	})
	RealtimeFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_frames_total",
		Help: "Frames handled by the realtime hub",
	}, []string{"event", "result"})

	// Kafka access log async sender
	HTTPAccessKafkaEnqueue = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_access_kafka_enqueue_total",
		Help: "Access log enqueue attempts",
	}, []string{"result"})
	HTTPAccessKafkaQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_access_kafka_queue_depth",
		Help: "Access log messages waiting in queue",
	})
	HTTPAccessKafkaErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_access_kafka_errors_total",
		Help: "Access log messages that failed in a batch write",
	})
	HTTPAccessKafkaBatchFlushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_access_kafka_batch_flush_total",
		Help: "Batch flushes by trigger",
	}, []string{"reason"})
	HTTPAccessKafkaBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "http_access_kafka_batch_size",
		Help:    "Messages per flushed batch",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 200},
	})
	HTTPAccessKafkaFlushDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_access_kafka_flush_duration_seconds",
		Help:    "Batch flush latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"reason"})
	HTTPAccessKafkaQueueDelay = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "http_access_kafka_queue_delay_seconds",
		Help:    "Time a message waited in queue before flush",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1},
	})
)
