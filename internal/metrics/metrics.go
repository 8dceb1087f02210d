// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordUpstreamSuccess(resource string)
	RecordUpstreamFailure(resource string)
	RecordUpstreamLatency(resource string, duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordListingResults(view string, count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	upstreamSuccess *prometheus.CounterVec
	upstreamFail    *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	httpStatus      *prometheus.CounterVec
	listingResults  *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carblog_upstream_fetch_success_total",
			Help: "上流API取得成功の合計数",
		}, []string{"resource"}),
		upstreamFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carblog_upstream_fetch_fail_total",
			Help: "上流API取得失敗の合計数",
		}, []string{"resource"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carblog_upstream_fetch_latency_seconds",
			Help:    "上流API取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carblog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		listingResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carblog_listing_results",
			Help:    "絞り込み後の一覧件数",
			Buckets: []float64{0, 1, 3, 6, 10, 20, 30},
		}, []string{"view"}),
	}

	reg.MustRegister(
		c.upstreamSuccess,
		c.upstreamFail,
		c.upstreamLatency,
		c.httpStatus,
		c.listingResults,
	)

	return c
}

// RecordUpstreamSuccess は上流API取得の成功を記録する。
func (c *Collector) RecordUpstreamSuccess(resource string) {
	c.upstreamSuccess.WithLabelValues(resource).Inc()
}

// RecordUpstreamFailure は上流API取得の失敗を記録する。
func (c *Collector) RecordUpstreamFailure(resource string) {
	c.upstreamFail.WithLabelValues(resource).Inc()
}

// RecordUpstreamLatency は上流API取得のレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(resource string, duration time.Duration) {
	c.upstreamLatency.WithLabelValues(resource).Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordListingResults は一覧の絞り込み後件数を記録する。
func (c *Collector) RecordListingResults(view string, count int) {
	c.listingResults.WithLabelValues(view).Observe(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordUpstreamSuccess(string)                {}
func (Nop) RecordUpstreamFailure(string)                {}
func (Nop) RecordUpstreamLatency(string, time.Duration) {}
func (Nop) RecordHTTPStatus(int)                        {}
func (Nop) RecordListingResults(string, int)            {}
