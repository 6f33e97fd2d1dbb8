// Package metrics 提供 Prometheus 指标集合与暴露 handler
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "swe"

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 表单提交计数，result: accepted, rejected
	SubmissionsTotal *prometheus.CounterVec
	// 投递计数，sink: ninox, email；outcome: delivered, failed, skipped
	DeliveriesTotal *prometheus.CounterVec
	// 投递耗时
	DeliveryDuration *prometheus.HistogramVec
	// 告警计数，channel: email, sms；outcome: sent, failed, suppressed
	AlertsTotal *prometheus.CounterVec
}

// subsystemReplacer 指标名只允许字母、数字和下划线
var subsystemReplacer = strings.NewReplacer("-", "_", ".", "_", " ", "_")

// New 创建指标实例，使用独立的 registry
func New(serviceName string) *Metrics {
	serviceName = subsystemReplacer.Replace(serviceName)
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "submissions_total",
			Help:      "Contact form submissions by validation result",
		}, []string{"result"}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "deliveries_total",
			Help:      "Submission deliveries by sink and outcome",
		}, []string{"sink", "outcome"}),
		DeliveryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "delivery_duration_seconds",
			Help:      "Submission delivery duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"sink"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "alerts_total",
			Help:      "Operational alerts by channel and outcome",
		}, []string{"channel", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SubmissionsTotal,
		m.DeliveriesTotal,
		m.DeliveryDuration,
		m.AlertsTotal,
	)
	return m
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 Prometheus 暴露 handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordSubmission 记录一次表单提交
func (m *Metrics) RecordSubmission(result string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(result).Inc()
}

// RecordDelivery 记录一次投递结果
func (m *Metrics) RecordDelivery(sink, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.DeliveriesTotal.WithLabelValues(sink, outcome).Inc()
	m.DeliveryDuration.WithLabelValues(sink).Observe(seconds)
}

// RecordAlert 记录一次告警发送
func (m *Metrics) RecordAlert(channel, outcome string) {
	if m == nil {
		return
	}
	m.AlertsTotal.WithLabelValues(channel, outcome).Inc()
}
