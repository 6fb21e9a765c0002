// Package model はドメインモデルを定義する。
package model

import "time"

// User はトレーニング記録サービスの利用ユーザーを表す。
// ボットフロントエンドが登録し、クエリAPIとリマインダーワーカーが参照する。
type User struct {
	ID          string
	ChatID      int64
	DisplayName string
	// Timezone はIANAタイムゾーン名（例: "Asia/Tokyo"）。
	// 空の場合はサービス設定のデフォルトタイムゾーンを使用する。
	Timezone string
	// WebhookURL はリマインダー通知先のWebhook URL。
	// 空の場合はTelegram経由で通知する。
	WebhookURL string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
