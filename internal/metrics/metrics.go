// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 結果ラベルの値
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordAuthOutcome(operation, outcome string)
	RecordNoteOperation(operation, outcome string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	authOutcomes   *prometheus.CounterVec
	noteOperations *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kcnotes_auth_operations_total",
			Help: "認証操作（signup, signin, update_password, delete_user, resolve_identity）の結果別件数",
		}, []string{"operation", "outcome"}),
		noteOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kcnotes_note_operations_total",
			Help: "ノート操作の結果別件数",
		}, []string{"operation", "outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kcnotes_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kcnotes_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.authOutcomes,
		c.noteOperations,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordAuthOutcome は認証操作の結果を記録する。
func (c *Collector) RecordAuthOutcome(operation, outcome string) {
	c.authOutcomes.WithLabelValues(operation, outcome).Inc()
}

// RecordNoteOperation はノート操作の結果を記録する。
func (c *Collector) RecordNoteOperation(operation, outcome string) {
	c.noteOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Outcome はerrの有無を結果ラベルに変換する。
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// NopCollector は何も記録しないMetricsCollector。
// メトリクスを使わないテストや構成で利用する。
type NopCollector struct{}

func (NopCollector) RecordAuthOutcome(string, string)   {}
func (NopCollector) RecordNoteOperation(string, string) {}
func (NopCollector) RecordHTTPStatus(int)               {}
func (NopCollector) RecordRequestLatency(time.Duration) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
