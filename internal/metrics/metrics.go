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
// ワーカーやサービス層から利用する。
type MetricsCollector interface {
	RecordReminderSent(channel string)
	RecordReminderSkipped(reason string)
	RecordClaimConflict()
	RecordDeliveryFailure(channel string)
	RecordCycleLatency(duration time.Duration)
	RecordSummaryLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordEntriesCreated(count int)
	RecordLedgerPurged(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	reminderSent     *prometheus.CounterVec
	reminderSkipped  *prometheus.CounterVec
	claimConflict    prometheus.Counter
	deliveryFail     *prometheus.CounterVec
	cycleLatency     prometheus.Histogram
	summaryLatency   prometheus.Histogram
	httpStatus       *prometheus.CounterVec
	entriesCreated   prometheus.Counter
	ledgerPurged     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		reminderSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "liftlog_reminder_sent_total",
			Help: "送信チャネル別のリマインダー送信成功数",
		}, []string{"channel"}),
		reminderSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "liftlog_reminder_skipped_total",
			Help: "理由別のリマインダースキップ数",
		}, []string{"reason"}),
		claimConflict: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "liftlog_reminder_claim_conflict_total",
			Help: "台帳クレーム競合（既送信）の合計数",
		}),
		deliveryFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "liftlog_reminder_delivery_fail_total",
			Help: "送信チャネル別のリマインダー送信失敗数",
		}, []string{"channel"}),
		cycleLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "liftlog_reminder_cycle_latency_seconds",
			Help:    "リマインダーサイクルのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		summaryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "liftlog_summary_latency_seconds",
			Help:    "集計クエリのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "liftlog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		entriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "liftlog_entries_created_total",
			Help: "作成されたトレーニング記録の合計数",
		}),
		ledgerPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "liftlog_ledger_purged_total",
			Help: "保持ポリシーにより削除された台帳レコードの合計数",
		}),
	}

	reg.MustRegister(
		c.reminderSent,
		c.reminderSkipped,
		c.claimConflict,
		c.deliveryFail,
		c.cycleLatency,
		c.summaryLatency,
		c.httpStatus,
		c.entriesCreated,
		c.ledgerPurged,
	)

	return c
}

// RecordReminderSent はリマインダー送信成功を記録する。
func (c *Collector) RecordReminderSent(channel string) {
	c.reminderSent.WithLabelValues(channel).Inc()
}

// RecordReminderSkipped はリマインダースキップを理由付きで記録する。
func (c *Collector) RecordReminderSkipped(reason string) {
	c.reminderSkipped.WithLabelValues(reason).Inc()
}

// RecordClaimConflict は台帳クレーム競合を記録する。
func (c *Collector) RecordClaimConflict() {
	c.claimConflict.Inc()
}

// RecordDeliveryFailure はリマインダー送信失敗を記録する。
func (c *Collector) RecordDeliveryFailure(channel string) {
	c.deliveryFail.WithLabelValues(channel).Inc()
}

// RecordCycleLatency はリマインダーサイクルのレイテンシを記録する。
func (c *Collector) RecordCycleLatency(duration time.Duration) {
	c.cycleLatency.Observe(duration.Seconds())
}

// RecordSummaryLatency は集計クエリのレイテンシを記録する。
func (c *Collector) RecordSummaryLatency(duration time.Duration) {
	c.summaryLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordEntriesCreated は作成されたトレーニング記録数を記録する。
func (c *Collector) RecordEntriesCreated(count int) {
	c.entriesCreated.Add(float64(count))
}

// RecordLedgerPurged は削除された台帳レコード数を記録する。
func (c *Collector) RecordLedgerPurged(count int64) {
	c.ledgerPurged.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// ルーターの/metricsパスにマウントして使用する。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
