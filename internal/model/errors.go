// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, report, reminder, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRange       = "INVALID_RANGE"
	ErrCodeInvalidTimezone    = "INVALID_TIMEZONE"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeInvalidExercise    = "INVALID_EXERCISE"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeEntryNotFound      = "ENTRY_NOT_FOUND"
	ErrCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	ErrCodeDeliveryFailed     = "DELIVERY_FAILED"
	ErrCodeWebhookBlocked     = "WEBHOOK_BLOCKED"
)

// NewInvalidRangeError は不正な日付範囲エラーを生成する。
// 開始日が終了日より後、または日付・月の書式が不正な場合に使用する。
func NewInvalidRangeError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRange,
		Message:  fmt.Sprintf("不正な日付範囲です: %s", reason),
		Category: "validation",
		Action:   "日付はYYYY-MM-DD、月はYYYY-MM形式で、開始日が終了日以前になるよう指定してください。",
	}
}

// NewInvalidTimezoneError は不正なタイムゾーン指定エラーを生成する。
func NewInvalidTimezoneError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTimezone,
		Message:  fmt.Sprintf("不正なタイムゾーンです: %s", name),
		Category: "validation",
		Action:   "IANAタイムゾーン名（例: Asia/Tokyo, UTC）を指定してください。",
	}
}

// NewInvalidQuantityError は不正な数量エラーを生成する。
func NewInvalidQuantityError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidQuantity,
		Message:  fmt.Sprintf("不正な数量です: %s", reason),
		Category: "validation",
		Action:   "数量は0より大きい数値を指定してください。",
	}
}

// NewInvalidExerciseError は不正な種目名エラーを生成する。
func NewInvalidExerciseError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidExercise,
		Message:  fmt.Sprintf("不正な種目名です: %s", reason),
		Category: "validation",
		Action:   "種目名を1文字以上で指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "report",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewEntryNotFoundError はトレーニング記録が見つからない場合のエラーを生成する。
func NewEntryNotFoundError(entryID string) *APIError {
	return &APIError{
		Code:     ErrCodeEntryNotFound,
		Message:  fmt.Sprintf("指定されたトレーニング記録が見つかりません: %s", entryID),
		Category: "report",
		Action:   "記録IDを確認してください。",
	}
}

// NewStorageUnavailableError はバッキングストアに到達できない場合のエラーを生成する。
// フロントエンドは503を返し、リマインダーワーカーは当該サイクルをスキップして次のティックで再試行する。
func NewStorageUnavailableError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeStorageUnavailable,
		Message:  fmt.Sprintf("データストアに接続できません: %s", reason),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewDeliveryError は台帳記録後の通知送信失敗エラーを生成する。
// 冪等性の観点では送信済みとして扱い、再送しない（at-most-once）。
// スケジューリング障害ではなく配送障害としてログに記録する。
func NewDeliveryError(userID string, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeDeliveryFailed,
		Message:  fmt.Sprintf("リマインダーの送信に失敗しました（user_id=%s）: %s", userID, reason),
		Category: "reminder",
		Action:   "通知先の設定を確認してください。",
	}
}

// NewWebhookBlockedError はセキュリティポリシーによりWebhook URLがブロックされた場合のエラーを生成する。
func NewWebhookBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeWebhookBlocked,
		Message:  "セキュリティポリシーにより、指定されたWebhook URLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているHTTPSエンドポイントのURLを設定してください。プライベートIPへのアクセスは許可されていません。",
	}
}
