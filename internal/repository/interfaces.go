// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/liftlog/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Upsert はユーザーを作成または更新する。
	// ボットフロントエンドが初回メッセージ受信時に呼び出す。
	Upsert(ctx context.Context, user *model.User) error

	// ListForReminders はリマインダー送信対象の全ユーザーを返す。
	// リマインダーワーカーが各サイクルで呼び出す。
	ListForReminders(ctx context.Context) ([]*model.User, error)
}

// EntryRepository はトレーニング記録の永続化インターフェース。
// エントリは追記専用であり、作成後の更新は行わない。
type EntryRepository interface {
	// Create は新規エントリを作成する。
	Create(ctx context.Context, entry *model.WorkoutEntry) error

	// FindByID は指定IDのエントリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.WorkoutEntry, error)

	// ListByUserAndRange はユーザーのエントリをUTC半開区間 [start, end) で取得する。
	// Timestamp昇順で返す。
	ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]model.WorkoutEntry, error)

	// ListRecentByUser はユーザーの直近のエントリをTimestamp降順で取得する。
	// cursorがゼロ値でない場合はそれより古いエントリのみを返す（カーソルページネーション）。
	ListRecentByUser(ctx context.Context, userID string, cursor time.Time, limit int) ([]model.WorkoutEntry, error)

	// CountByUserAndRange はユーザーのUTC半開区間 [start, end) 内のエントリ数を返す。
	// リマインダーワーカーが「当日すでに記録済みか」の判定に使用する。
	CountByUserAndRange(ctx context.Context, userID string, start, end time.Time) (int, error)

	// Delete は指定ユーザーのエントリを明示的に削除する。
	// 該当エントリが存在しない、または他ユーザーのエントリの場合はfalseを返す。
	Delete(ctx context.Context, userID, entryID string) (bool, error)
}

// ReminderLedger はリマインダー送信台帳の永続化インターフェース。
// (user_id, reminder_date) の一意制約により、プロセス再起動や
// 複数インスタンス同時実行時の重複送信を防ぐ。
type ReminderLedger interface {
	// TryClaim は (userID, reminderDate) の送信枠を原子的に要求する。
	// レコードが存在しなければ永続化してtrueを返し、既に存在すれば
	// 何も変更せずfalseを返す。falseはエラーではなく正常な制御フロー。
	// ストレージ層の一意キー挿入で実装するため、独立プロセスからの
	// 同時呼び出しに対して安全である。
	TryClaim(ctx context.Context, userID, reminderDate string) (bool, error)

	// Find は指定キーの台帳レコードを取得する。見つからない場合はnilを返す。
	Find(ctx context.Context, userID, reminderDate string) (*model.ReminderRecord, error)

	// DeleteOlderThan は指定日数より古い台帳レコードを削除し、削除件数を返す。
	// 保持ポリシーに基づく日次バッチから呼び出す。
	DeleteOlderThan(ctx context.Context, retentionDays int) (int64, error)
}
