package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"kycgate/internal/platform/config"
)

// Client is a pinged go-redis client.
type Client struct {
	*redis.Client
}

// New connects to cfg.URL and pings it. It returns a nil client when Redis
// is not configured. A non-nil reg receives the pool collector.
func New(ctx context.Context, cfg config.RedisConfig, reg prometheus.Registerer) (*Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	c := &Client{Client: rdb}
	if reg != nil {
		if err := reg.Register(newPoolCollector(rdb)); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("register redis pool metrics: %w", err)
		}
	}
	return c, nil
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

type statser interface {
	PoolStats() *redis.PoolStats
}

// poolCollector reads pool statistics at scrape time.
type poolCollector struct {
	src      statser
	hits     *prometheus.Desc
	misses   *prometheus.Desc
	timeouts *prometheus.Desc
	stale    *prometheus.Desc
	total    *prometheus.Desc
	idle     *prometheus.Desc
}

func newPoolCollector(src statser) *poolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("kyc_redis_pool_"+name, help, nil, nil)
	}
	return &poolCollector{
		src:      src,
		hits:     desc("hits_total", "Connections served from the pool"),
		misses:   desc("misses_total", "Connection requests that had to dial"),
		timeouts: desc("timeouts_total", "Connection requests that timed out waiting"),
		stale:    desc("stale_conns_total", "Stale connections removed from the pool"),
		total:    desc("total_conns", "Open connections"),
		idle:     desc("idle_conns", "Idle connections"),
	}
}

func (p *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{p.hits, p.misses, p.timeouts, p.stale, p.total, p.idle} {
		ch <- d
	}
}

func (p *poolCollector) Collect(ch chan<- prometheus.Metric) {
	st := p.src.PoolStats()
	ch <- prometheus.MustNewConstMetric(p.hits, prometheus.CounterValue, float64(st.Hits))
	ch <- prometheus.MustNewConstMetric(p.misses, prometheus.CounterValue, float64(st.Misses))
	ch <- prometheus.MustNewConstMetric(p.timeouts, prometheus.CounterValue, float64(st.Timeouts))
	ch <- prometheus.MustNewConstMetric(p.stale, prometheus.CounterValue, float64(st.StaleConns))
	ch <- prometheus.MustNewConstMetric(p.total, prometheus.GaugeValue, float64(st.TotalConns))
	ch <- prometheus.MustNewConstMetric(p.idle, prometheus.GaugeValue, float64(st.IdleConns))
}
