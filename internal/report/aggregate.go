package report

import "github.com/hitoshi/liftlog/internal/model"

// Aggregate は区間内のトレーニング記録を種目ごとに合算したSummaryを返す。
// Start <= Timestamp < End のエントリのみを対象とし、種目名でグループ化して
// 数量を合計する。同一種目に異なる単位が混在する場合も換算せずそのまま合算する
// （既知の単純化であり、修正対象の欠陥ではない）。
//
// 対象エントリが0件の場合はEntryCount=0・空のTotalsを持つSummaryを返し、
// エラーにはしない。
//
// 加法性: 区間Wを重複しない部分区間W1, W2に分割したとき、
// Aggregate(entries, W1)とAggregate(entries, W2)の種目別合計・件数の和は
// Aggregate(entries, W)と一致する。
func Aggregate(userID string, entries []model.WorkoutEntry, window model.ReportWindow) model.Summary {
	summary := model.Summary{
		UserID: userID,
		Window: window,
		Totals: map[string]float64{},
	}

	for _, entry := range entries {
		if !window.Contains(entry.Timestamp) {
			continue
		}
		summary.Totals[entry.Exercise] += entry.Quantity
		summary.EntryCount++
	}

	return summary
}

// Merge は同一ユーザー・隣接区間のSummary同士を結合する。
// 加法性の検証や分割集計の再結合に使用する。
func Merge(a, b model.Summary) model.Summary {
	merged := model.Summary{
		UserID: a.UserID,
		Window: model.ReportWindow{Start: a.Window.Start, End: b.Window.End},
		Totals: map[string]float64{},
	}
	if merged.UserID == "" {
		merged.UserID = b.UserID
	}
	for name, total := range a.Totals {
		merged.Totals[name] += total
	}
	for name, total := range b.Totals {
		merged.Totals[name] += total
	}
	merged.EntryCount = a.EntryCount + b.EntryCount
	return merged
}
