package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FanoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "newsfeed_fanout_duration_seconds",
		Help:    "Latency of one synchronous fan-out (follower lookup + bulk insert)",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})
	FanoutRecipients = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "newsfeed_fanout_recipients",
		Help:    "Number of feed entries built per fan-out",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
	FanoutFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsfeed_fanout_failures_total",
		Help: "Fan-outs that left feed delivery incomplete",
	}, []string{"stage"})
	FanoutRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsfeed_fanout_retries_total",
		Help: "Processed fan-out repair jobs",
	}, []string{"result"})
	FollowerCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "follower_cache_lookups_total",
		Help: "Follower index cache lookups",
	}, []string{"result"})
	RelationOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relation_operations_total",
		Help: "Follow and unfollow calls by outcome",
	}, []string{"op", "outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
