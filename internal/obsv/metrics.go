// Package obsv wires the broker's Prometheus metrics and, optionally,
// publishes an aggregate hub-depth gauge to Redis for multi-instance
// dashboards — never as a source of truth for job state.
package obsv

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

var (
	HubDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "engine_broker",
		Name:      "hub_depth",
		Help:      "Total number of jobs currently queued across every selector shard.",
	})
	OngoingCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "engine_broker",
		Name:      "ongoing_count",
		Help:      "Total number of jobs currently acquired but not yet completed.",
	})
	AnalyseLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "engine_broker",
		Name:      "analyse_wait_seconds",
		Help:      "Time an analyse request waited before a provider acquired its job.",
		Buckets:   prometheus.DefBuckets,
	})
	GCSweeps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engine_broker",
		Name:      "gc_sweeps_total",
		Help:      "Number of garbage-collection sweeps performed, by container.",
	}, []string{"container"})
)

func init() {
	prometheus.MustRegister(HubDepth, OngoingCount, AnalyseLatency, GCSweeps)
}

// Sampler is the minimal view of the broker this package needs in order to
// poll gauges periodically; internal/broker.Broker satisfies it.
type Sampler interface {
	HubDepth() int
	OngoingCount() int
}

// RedisPublisher optionally mirrors the hub-depth gauge to a shared Redis key
// so an external dashboard can see the fleet-wide queue depth without each
// instance scraping every other instance's /metrics.
type RedisPublisher struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisPublisher(addr string, log *slog.Logger) *RedisPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &RedisPublisher{client: redis.NewClient(&redis.Options{Addr: addr}), log: log}
}

// Run samples s every interval, updates the local gauges, and (when rp is
// non-nil) publishes the aggregate depth to Redis, until ctx is done.
func Run(ctx context.Context, s Sampler, rp *RedisPublisher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			depth := s.HubDepth()
			HubDepth.Set(float64(depth))
			OngoingCount.Set(float64(s.OngoingCount()))
			if rp != nil {
				if err := rp.client.Set(ctx, "engine_broker:hub_depth", depth, 0).Err(); err != nil {
					rp.log.Warn("redis publish failed", "error", err)
				}
			}
		}
	}
}
