package http

import (
	"context"
	"sync"
	"time"

	"go-studioadmin/internal/discovery/etcd"
	"go-studioadmin/internal/metrics"
	"go-studioadmin/internal/mq/kafka"
	redisrepo "go-studioadmin/internal/repository/redis"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// HealthChecker serves liveness and readiness. Readiness checks every
// configured dependency in parallel and caches the verdict for cacheTTL.
type HealthChecker struct {
	deps []dependency

	cacheMu     sync.Mutex
	cacheResult map[string]interface{}
	cacheCode   int
	cacheExpiry time.Time
	cacheTTL    time.Duration
}

type dependency struct {
	name     string
	required bool
	timeout  time.Duration
	gauge    prometheus.Gauge
	// check is nil when the dependency is not configured.
	check func(ctx context.Context) error
}

type depResult struct {
	name     string
	required bool
	state    string
	err      string
	dur      time.Duration
}

func NewHealthChecker(db *gorm.DB, r *redisrepo.Client, p *kafka.Producer, e *etcd.Client) *HealthChecker {
	h := &HealthChecker{cacheTTL: 2 * time.Second}
	h.deps = append(h.deps, dependency{name: "db", required: true, timeout: 300 * time.Millisecond, gauge: metrics.DBUp})
	if db != nil {
		h.deps[0].check = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	redisDep := dependency{name: "redis", timeout: 250 * time.Millisecond, gauge: metrics.RedisUp}
	if r != nil {
		redisDep.check = r.Ping
	}
	kafkaDep := dependency{name: "kafka", timeout: 250 * time.Millisecond, gauge: metrics.KafkaUp}
	if p != nil {
		kafkaDep.check = func(ctx context.Context) error { return p.WriteMessages(ctx) }
	}
	etcdDep := dependency{name: "etcd", timeout: 250 * time.Millisecond, gauge: metrics.EtcdUp}
	if e != nil {
		etcdDep.check = func(ctx context.Context) error {
			_, err := e.Get(ctx, "health")
			return err
		}
	}
	h.deps = append(h.deps, redisDep, kafkaDep, etcdDep)
	return h
}

func (h *HealthChecker) Liveness() map[string]interface{} {
	return map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
}

// Invalidate drops the cached readiness verdict.
func (h *HealthChecker) Invalidate() {
	h.cacheMu.Lock()
	h.cacheExpiry = time.Time{}
	h.cacheMu.Unlock()
}

// Readiness returns 503 when a required dependency is down or an optional
// one is configured but unreachable. Unconfigured optional ones report "disabled".
func (h *HealthChecker) Readiness(ctx context.Context) (map[string]interface{}, int) {
	h.cacheMu.Lock()
	if time.Now().Before(h.cacheExpiry) && h.cacheResult != nil {
		res, code := h.cacheResult, h.cacheCode
		h.cacheMu.Unlock()
		return res, code
	}
	h.cacheMu.Unlock()

	results := make([]depResult, len(h.deps))
	var wg sync.WaitGroup
	for i, p := range h.deps {
		wg.Add(1)
		go func(i int, p dependency) {
			defer wg.Done()
			results[i] = run(ctx, p)
		}(i, p)
	}
	wg.Wait()

	res := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	detail := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		ms := float64(r.dur.Microseconds()) / 1000.0
		if r.state == "down" {
			res[r.name] = r.err
			res["status"] = "degraded"
		} else {
			res[r.name] = r.state
		}
		res[r.name+"_duration_ms"] = ms
		detail = append(detail, map[string]interface{}{"dep": r.name, "state": r.state, "required": r.required, "error": r.err, "duration_ms": ms})
	}
	res["detail"] = detail

	code := 200
	if res["status"] != "ok" {
		code = 503
	}
	h.cacheMu.Lock()
	h.cacheResult, h.cacheCode = res, code
	h.cacheExpiry = time.Now().Add(h.cacheTTL)
	h.cacheMu.Unlock()
	return res, code
}

func run(ctx context.Context, p dependency) depResult {
	out := depResult{name: p.name, required: p.required}
	if p.check == nil {
		if p.required {
			out.state, out.err = "down", "not configured"
		} else {
			out.state = "disabled"
		}
		p.gauge.Set(0)
		return out
	}
	start := time.Now()
	ctx2, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.check(ctx2)
	cancel()
	out.dur = time.Since(start)
	metrics.DependencyCheckDuration.WithLabelValues(p.name).Observe(out.dur.Seconds())
	if err != nil {
		out.state, out.err = "down", err.Error()
		p.gauge.Set(0)
		return out
	}
	out.state = "up"
	p.gauge.Set(1)
	return out
}
