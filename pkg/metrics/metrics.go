// Package metrics 提供 Prometheus 指标采集功能
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "orchestrai"
)

var (
	// HTTP 请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
		},
		[]string{"method", "path"},
	)

	// 租户解析指标，result: present/absent
	TenantResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tenant",
			Name:      "resolutions_total",
			Help:      "Total number of tenant resolutions from request cookies",
		},
		[]string{"source", "result"},
	)

	// 租户切换指标，result: changed/noop/rejected/rate_limited
	TenantSwitchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tenant",
			Name:      "switches_total",
			Help:      "Total number of tenant switch requests",
		},
		[]string{"result"},
	)

	TenantPersistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tenant",
			Name:      "persist_failures_total",
			Help:      "Total number of tenant cookie writes that could not be persisted",
		},
	)

	// 租户目录查询指标，result: hit/miss/error
	TenantDirectoryLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tenant",
			Name:      "directory_lookups_total",
			Help:      "Total number of tenant directory lookups",
		},
		[]string{"result"},
	)

	// 租户事件发布指标
	TenantEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tenant",
			Name:      "events_published_total",
			Help:      "Total number of tenant events published to the stream",
		},
		[]string{"type", "status"},
	)
)

// ResolutionResult 将解析出的租户 ID 转换为指标标签
func ResolutionResult(tenantID string) string {
	if tenantID == "" {
		return "absent"
	}
	return "present"
}
