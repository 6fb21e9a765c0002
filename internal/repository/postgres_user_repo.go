package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/liftlog/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, chat_id, display_name, timezone, COALESCE(webhook_url, ''), created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.ChatID, &user.DisplayName, &user.Timezone, &user.WebhookURL, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}

	return user, nil
}

// Upsert はユーザーを作成または更新する。
// 既存ユーザーの場合は表示名・タイムゾーン・Webhook URLを更新する。
func (r *PostgresUserRepo) Upsert(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, chat_id, display_name, timezone, webhook_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NOW(), NOW())
		 ON CONFLICT (id) DO UPDATE SET
		     chat_id = EXCLUDED.chat_id,
		     display_name = EXCLUDED.display_name,
		     timezone = EXCLUDED.timezone,
		     webhook_url = EXCLUDED.webhook_url,
		     updated_at = NOW()`,
		user.ID, user.ChatID, user.DisplayName, user.Timezone, user.WebhookURL,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの作成・更新に失敗しました: %w", err)
	}
	return nil
}

// ListForReminders はリマインダー送信対象の全ユーザーを返す。
func (r *PostgresUserRepo) ListForReminders(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chat_id, display_name, timezone, COALESCE(webhook_url, ''), created_at, updated_at
		 FROM users ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("リマインダー対象ユーザーの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.ChatID, &user.DisplayName, &user.Timezone, &user.WebhookURL, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ユーザー行の読み取りに失敗しました: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ユーザー一覧の走査に失敗しました: %w", err)
	}
	return users, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
