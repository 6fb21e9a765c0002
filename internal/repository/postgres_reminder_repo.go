package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/liftlog/internal/model"
)

// PostgresReminderLedger はPostgreSQLを使用したリマインダー送信台帳。
// reminder_logテーブルの主キー (user_id, reminder_date) と
// INSERT ... ON CONFLICT DO NOTHING により、アプリケーションレベルの
// ロックなしでプロセス間の排他を実現する。アプリケーションロックは
// プロセスをまたいで協調できないため、一意性の強制はストア側で行う。
type PostgresReminderLedger struct {
	db *sql.DB
}

// NewPostgresReminderLedger はPostgresReminderLedgerを生成する。
func NewPostgresReminderLedger(db *sql.DB) *PostgresReminderLedger {
	return &PostgresReminderLedger{db: db}
}

// TryClaim は (userID, reminderDate) の送信枠を原子的に要求する。
// 挿入に成功した場合（= 既存レコードなし）はtrue、
// 一意制約により挿入されなかった場合はfalseを返す。
func (l *PostgresReminderLedger) TryClaim(ctx context.Context, userID, reminderDate string) (bool, error) {
	result, err := l.db.ExecContext(ctx,
		`INSERT INTO reminder_log (user_id, reminder_date, sent_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id, reminder_date) DO NOTHING`,
		userID, reminderDate,
	)
	if err != nil {
		return false, fmt.Errorf("リマインダー台帳への記録に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("台帳記録結果の取得に失敗しました: %w", err)
	}

	return rowsAffected == 1, nil
}

// Find は指定キーの台帳レコードを取得する。見つからない場合はnilを返す。
func (l *PostgresReminderLedger) Find(ctx context.Context, userID, reminderDate string) (*model.ReminderRecord, error) {
	record := &model.ReminderRecord{}
	err := l.db.QueryRowContext(ctx,
		`SELECT user_id, to_char(reminder_date, 'YYYY-MM-DD'), sent_at
		 FROM reminder_log WHERE user_id = $1 AND reminder_date = $2`,
		userID, reminderDate,
	).Scan(&record.UserID, &record.ReminderDate, &record.SentAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("リマインダー台帳の取得に失敗しました: %w", err)
	}

	return record, nil
}

// DeleteOlderThan は保持日数を超過した台帳レコードを削除し、削除件数を返す。
func (l *PostgresReminderLedger) DeleteOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	interval := fmt.Sprintf("%d days", retentionDays)

	result, err := l.db.ExecContext(ctx,
		`DELETE FROM reminder_log WHERE reminder_date < (now() - $1::interval)::date`,
		interval,
	)
	if err != nil {
		return 0, fmt.Errorf("リマインダー台帳のクリーンアップに失敗しました: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ ReminderLedger = (*PostgresReminderLedger)(nil)
