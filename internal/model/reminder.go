// Package model はドメインモデルを定義する。
package model

import "time"

// ReminderRecord は「このユーザーにこの日付のリマインダーを送信済み」という
// 恒久的な台帳レコードを表す。
// 不変条件: (UserID, ReminderDate) の組につき最大1件。この一意キーが
// プロセス再起動・複数インスタンス同時実行時の冪等性を保証する。
type ReminderRecord struct {
	UserID string
	// ReminderDate はリマインダー設定タイムゾーンにおける暦日（"2006-01-02"形式）。
	ReminderDate string
	// SentAt は台帳への記録時刻（UTC）。
	SentAt time.Time
}

// ReminderDateOf は指定タイムゾーンにおけるtの暦日を台帳キー形式で返す。
func ReminderDateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
