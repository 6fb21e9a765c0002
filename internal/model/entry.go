// Package model はドメインモデルを定義する。
package model

import "time"

// WorkoutEntry は1件のトレーニング記録を表す。
// ボットフロントエンドが作成し、作成後は更新されない（イミュータブル）。
// 修正は新規エントリの追加または明示的な削除で行う。
type WorkoutEntry struct {
	ID     string
	UserID string
	// Timestamp は実施時刻。常にUTCで保持する。
	Timestamp time.Time
	Exercise  string
	Quantity  float64
	// Unit は数量の単位（例: "kg", "reps", "km"）。
	// 集計時の単位換算は行わない。
	Unit      string
	Notes     string
	CreatedAt time.Time
}
