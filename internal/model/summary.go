// Package model はドメインモデルを定義する。
package model

import "time"

// ReportWindow は集計対象のUTC半開区間 [Start, End) を表す。
// 不変条件: Start < End。導出値であり永続化しない。
type ReportWindow struct {
	Start time.Time
	End   time.Time
}

// Contains は指定時刻が区間内（Start <= t < End）かどうかを返す。
func (w ReportWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowKind は集計区間の種別を表す。
type WindowKind string

const (
	// WindowToday は基準時刻を含むローカル暦日。
	WindowToday WindowKind = "today"
	// WindowWeek は基準時刻を含むISO週（月曜〜日曜）。
	WindowWeek WindowKind = "week"
	// WindowMonth は指定月または基準時刻を含む暦月。
	WindowMonth WindowKind = "month"
	// WindowPeriod は明示的な開始日・終了日による任意区間。
	WindowPeriod WindowKind = "period"
)

// Summary はReportWindow内のトレーニング記録の集計結果を表す。
// 不変条件（加法性）: 区間を任意の部分区間に分割して集計した結果の合計は、
// 親区間の集計結果と一致する。
type Summary struct {
	UserID string
	Window ReportWindow
	// Totals は種目名ごとの数量合計。単位換算は行わず、そのまま合算する。
	Totals map[string]float64
	// EntryCount は区間内のエントリ件数。
	EntryCount int
}
