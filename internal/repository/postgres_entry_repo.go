package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/liftlog/internal/model"
)

// PostgresEntryRepo はPostgreSQLを使用したトレーニング記録リポジトリ。
// エントリは追記専用であり、UPDATE文は存在しない。
type PostgresEntryRepo struct {
	db *sql.DB
}

// NewPostgresEntryRepo はPostgresEntryRepoを生成する。
func NewPostgresEntryRepo(db *sql.DB) *PostgresEntryRepo {
	return &PostgresEntryRepo{db: db}
}

// Create は新規エントリを作成する。
func (r *PostgresEntryRepo) Create(ctx context.Context, entry *model.WorkoutEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workout_entries (id, user_id, performed_at, exercise, quantity, unit, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.UserID, entry.Timestamp.UTC(), entry.Exercise, entry.Quantity, entry.Unit, entry.Notes, entry.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("トレーニング記録の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのエントリを取得する。見つからない場合はnilを返す。
func (r *PostgresEntryRepo) FindByID(ctx context.Context, id string) (*model.WorkoutEntry, error) {
	entry := &model.WorkoutEntry{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, performed_at, exercise, quantity, unit, COALESCE(notes, ''), created_at
		 FROM workout_entries WHERE id = $1`,
		id,
	).Scan(&entry.ID, &entry.UserID, &entry.Timestamp, &entry.Exercise, &entry.Quantity, &entry.Unit, &entry.Notes, &entry.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("トレーニング記録の取得に失敗しました: %w", err)
	}

	return entry, nil
}

// ListByUserAndRange はユーザーのエントリをUTC半開区間 [start, end) で取得する。
func (r *PostgresEntryRepo) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]model.WorkoutEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, performed_at, exercise, quantity, unit, COALESCE(notes, ''), created_at
		 FROM workout_entries
		 WHERE user_id = $1 AND performed_at >= $2 AND performed_at < $3
		 ORDER BY performed_at ASC`,
		userID, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("区間内のトレーニング記録の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListRecentByUser はユーザーの直近のエントリをTimestamp降順で取得する。
func (r *PostgresEntryRepo) ListRecentByUser(ctx context.Context, userID string, cursor time.Time, limit int) ([]model.WorkoutEntry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if cursor.IsZero() {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, user_id, performed_at, exercise, quantity, unit, COALESCE(notes, ''), created_at
			 FROM workout_entries
			 WHERE user_id = $1
			 ORDER BY performed_at DESC, id DESC
			 LIMIT $2`,
			userID, limit,
		)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, user_id, performed_at, exercise, quantity, unit, COALESCE(notes, ''), created_at
			 FROM workout_entries
			 WHERE user_id = $1 AND performed_at < $2
			 ORDER BY performed_at DESC, id DESC
			 LIMIT $3`,
			userID, cursor.UTC(), limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("直近のトレーニング記録の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// CountByUserAndRange はユーザーのUTC半開区間 [start, end) 内のエントリ数を返す。
func (r *PostgresEntryRepo) CountByUserAndRange(ctx context.Context, userID string, start, end time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workout_entries
		 WHERE user_id = $1 AND performed_at >= $2 AND performed_at < $3`,
		userID, start.UTC(), end.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("トレーニング記録数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// Delete は指定ユーザーのエントリを削除する。削除した場合はtrueを返す。
func (r *PostgresEntryRepo) Delete(ctx context.Context, userID, entryID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM workout_entries WHERE id = $1 AND user_id = $2`,
		entryID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("トレーニング記録の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// scanEntries は結果セットをWorkoutEntryのスライスに変換する。
func scanEntries(rows *sql.Rows) ([]model.WorkoutEntry, error) {
	var entries []model.WorkoutEntry
	for rows.Next() {
		var entry model.WorkoutEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Timestamp, &entry.Exercise, &entry.Quantity, &entry.Unit, &entry.Notes, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("トレーニング記録行の読み取りに失敗しました: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("トレーニング記録一覧の走査に失敗しました: %w", err)
	}
	return entries, nil
}

// compile-time interface check
var _ EntryRepository = (*PostgresEntryRepo)(nil)
