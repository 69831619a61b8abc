// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はメトリクス収集のインターフェース。サービス層から利用する。
type Recorder interface {
	// RecordOperation はリポジトリ操作の成功を記録する。
	// entityは"note"または"tag"、opは"save"・"update"等の操作名。
	RecordOperation(entity, op string)
	// RecordFailure はリポジトリ操作の失敗をエラー分類付きで記録する。
	RecordFailure(entity, op, kind string)
	// RecordLatency はリポジトリ操作のレイテンシを記録する。
	RecordLatency(entity, op string, d time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteapp_store_operations_total",
			Help: "永続化操作の成功数（エンティティ・操作別）",
		}, []string{"entity", "op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteapp_store_failures_total",
			Help: "永続化操作の失敗数（エンティティ・操作・エラー分類別）",
		}, []string{"entity", "op", "kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "noteapp_store_latency_seconds",
			Help:    "永続化操作のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"entity", "op"}),
	}

	reg.MustRegister(c.operations, c.failures, c.latency)
	return c
}

// RecordOperation は操作の成功を記録する。
func (c *Collector) RecordOperation(entity, op string) {
	c.operations.WithLabelValues(entity, op).Inc()
}

// RecordFailure は操作の失敗を記録する。
func (c *Collector) RecordFailure(entity, op, kind string) {
	c.failures.WithLabelValues(entity, op, kind).Inc()
}

// RecordLatency は操作のレイテンシを記録する。
func (c *Collector) RecordLatency(entity, op string, d time.Duration) {
	c.latency.WithLabelValues(entity, op).Observe(d.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ Recorder = (*Collector)(nil)
