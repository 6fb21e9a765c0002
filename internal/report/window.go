// Package report は集計区間の解決とトレーニング記録の集計を提供する。
// いずれも副作用を持たない純粋関数であり、同一入力に対して決定的に動作する。
package report

import (
	"fmt"
	"time"

	"github.com/hitoshi/liftlog/internal/model"
)

// WindowParams はResolveに渡す明示的な区間指定。
// kindに応じて必要なフィールドのみ参照される。
type WindowParams struct {
	// Month は"2006-01"形式の対象月。WindowMonthで省略時は基準時刻の月。
	Month string
	// Start / End は"2006-01-02"形式の開始日・終了日。WindowPeriodで必須。
	Start string
	End   string
}

// Resolve は区間種別・基準時刻・タイムゾーンからUTC半開区間を計算する。
//   - today:  基準時刻を含むlocの暦日
//   - week:   基準時刻を含むISO週（月曜0時〜翌月曜0時）
//   - month:  params.Monthの暦月。省略時は基準時刻の月
//   - period: start-of-day(Start) 〜 end-of-day(End) を含む区間
//
// ローカル時刻の境界をtime.Dateで構築してからUTCへ変換するため、
// DST切替日でも「ローカル暦日」の意味論が保たれる（UTC幅は24時間でない場合がある）。
func Resolve(kind model.WindowKind, ref time.Time, loc *time.Location, params WindowParams) (model.ReportWindow, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := ref.In(loc)

	switch kind {
	case model.WindowToday:
		start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		end := start.AddDate(0, 0, 1)
		return model.ReportWindow{Start: start.UTC(), End: end.UTC()}, nil

	case model.WindowWeek:
		// ISO週: 月曜始まり。time.WeekdayはSunday=0のため変換する。
		offset := (int(local.Weekday()) + 6) % 7
		monday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -offset)
		return model.ReportWindow{Start: monday.UTC(), End: monday.AddDate(0, 0, 7).UTC()}, nil

	case model.WindowMonth:
		year, month := local.Year(), local.Month()
		if params.Month != "" {
			parsed, err := time.ParseInLocation("2006-01", params.Month, loc)
			if err != nil {
				return model.ReportWindow{}, model.NewInvalidRangeError(fmt.Sprintf("月の書式が不正です: %q", params.Month))
			}
			year, month = parsed.Year(), parsed.Month()
		}
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return model.ReportWindow{Start: start.UTC(), End: start.AddDate(0, 1, 0).UTC()}, nil

	case model.WindowPeriod:
		startDay, err := time.ParseInLocation("2006-01-02", params.Start, loc)
		if err != nil {
			return model.ReportWindow{}, model.NewInvalidRangeError(fmt.Sprintf("開始日の書式が不正です: %q", params.Start))
		}
		endDay, err := time.ParseInLocation("2006-01-02", params.End, loc)
		if err != nil {
			return model.ReportWindow{}, model.NewInvalidRangeError(fmt.Sprintf("終了日の書式が不正です: %q", params.End))
		}
		if startDay.After(endDay) {
			return model.ReportWindow{}, model.NewInvalidRangeError(fmt.Sprintf("開始日が終了日より後です: %s > %s", params.Start, params.End))
		}
		// 終了日を含む区間にするため、翌日0時を排他的上限とする。
		end := endDay.AddDate(0, 0, 1)
		return model.ReportWindow{Start: startDay.UTC(), End: end.UTC()}, nil

	default:
		return model.ReportWindow{}, model.NewInvalidRangeError(fmt.Sprintf("未知の区間種別です: %q", kind))
	}
}
