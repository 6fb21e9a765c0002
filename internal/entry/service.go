// Package entry はトレーニング記録の管理機能を提供する。
package entry

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/liftlog/internal/metrics"
	"github.com/hitoshi/liftlog/internal/model"
	"github.com/hitoshi/liftlog/internal/repository"
	"github.com/hitoshi/liftlog/internal/security"
)

// EntryService はトレーニング記録の作成・取得・削除のサービス。
// 記録は追記専用で、作成後の更新はサポートしない。
type EntryService struct {
	entryRepo repository.EntryRepository
	userRepo  repository.UserRepository
	sanitizer security.NoteSanitizerService
	collector metrics.MetricsCollector
	now       func() time.Time
}

// NewEntryService はEntryServiceの新しいインスタンスを生成する。
// collectorはnilを許容する。
func NewEntryService(
	entryRepo repository.EntryRepository,
	userRepo repository.UserRepository,
	sanitizer security.NoteSanitizerService,
	collector metrics.MetricsCollector,
) *EntryService {
	return &EntryService{
		entryRepo: entryRepo,
		userRepo:  userRepo,
		sanitizer: sanitizer,
		collector: collector,
		now:       time.Now,
	}
}

// CreateInput はCreateEntryの入力。
type CreateInput struct {
	// Exercise は種目名。正規化（トリム・小文字化）して保存される。
	Exercise string
	// Quantity は量。正の有限値のみ許可される。
	Quantity float64
	// Unit は量の単位（kg, reps, minなど）。自由形式で、換算は行わない。
	Unit string
	// Notes は備考。サニタイズして保存される。
	Notes string
	// PerformedAt は実施時刻。ゼロ値の場合は現在時刻が使用される。
	PerformedAt time.Time
}

// NormalizeExercise は種目名を正規化する。
// 前後の空白を除去し、小文字に変換する。
// "Squat"と"squat"が別種目として集計されるのを防ぐ。
func NormalizeExercise(exercise string) string {
	return strings.ToLower(strings.TrimSpace(exercise))
}

// CreateEntry はトレーニング記録を作成する。
// 種目名は正規化され、備考はサニタイズされる。
// 実施時刻はUTCに変換して保存される。
func (s *EntryService) CreateEntry(ctx context.Context, userID string, input CreateInput) (*model.WorkoutEntry, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.NewStorageUnavailableError(err.Error())
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	exercise := NormalizeExercise(input.Exercise)
	if exercise == "" {
		return nil, model.NewInvalidExerciseError("種目名が空です")
	}

	if input.Quantity <= 0 || math.IsInf(input.Quantity, 0) || math.IsNaN(input.Quantity) {
		return nil, model.NewInvalidQuantityError("量は正の有限値である必要があります")
	}

	performedAt := input.PerformedAt
	if performedAt.IsZero() {
		performedAt = s.now()
	}

	entry := &model.WorkoutEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Timestamp: performedAt.UTC(),
		Exercise:  exercise,
		Quantity:  input.Quantity,
		Unit:      strings.TrimSpace(input.Unit),
		Notes:     s.sanitizer.Sanitize(input.Notes),
		CreatedAt: s.now().UTC(),
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, model.NewStorageUnavailableError(err.Error())
	}

	if s.collector != nil {
		s.collector.RecordEntriesCreated(1)
	}

	return entry, nil
}

// GetEntry は記録詳細を返す。
// 他ユーザーの記録は存在しないものとして扱う。
func (s *EntryService) GetEntry(ctx context.Context, userID, entryID string) (*model.WorkoutEntry, error) {
	entry, err := s.entryRepo.FindByID(ctx, entryID)
	if err != nil {
		return nil, model.NewStorageUnavailableError(err.Error())
	}
	if entry == nil || entry.UserID != userID {
		return nil, model.NewEntryNotFoundError(entryID)
	}
	return entry, nil
}

// ListResult はListRecentの戻り値。
type ListResult struct {
	Entries    []model.WorkoutEntry
	NextCursor string
	HasMore    bool
}

// ListRecent はユーザーの記録一覧を実施時刻降順で返す。
// カーソルベースページネーションを使用し、limit+1件を取得してHasMoreを判定する。
func (s *EntryService) ListRecent(ctx context.Context, userID, cursorStr string, limit int) (*ListResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.NewStorageUnavailableError(err.Error())
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	// カーソルのパース
	var cursor time.Time
	if cursorStr != "" {
		cursor, err = time.Parse(time.RFC3339Nano, cursorStr)
		if err != nil {
			cursor, err = time.Parse(time.RFC3339, cursorStr)
			if err != nil {
				return nil, model.NewInvalidRangeError("無効なカーソル値: " + cursorStr)
			}
		}
	}

	fetchLimit := limit + 1
	entries, err := s.entryRepo.ListRecentByUser(ctx, userID, cursor, fetchLimit)
	if err != nil {
		return nil, model.NewStorageUnavailableError(err.Error())
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit] // 余分な1件を除外
	}

	var nextCursor string
	if hasMore && len(entries) > 0 {
		nextCursor = entries[len(entries)-1].Timestamp.Format(time.RFC3339Nano)
	}

	return &ListResult{
		Entries:    entries,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// DeleteEntry は記録を削除する。
// 対象が存在しない、または他ユーザーの記録の場合はEntryNotFoundを返す。
func (s *EntryService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	deleted, err := s.entryRepo.Delete(ctx, userID, entryID)
	if err != nil {
		return model.NewStorageUnavailableError(err.Error())
	}
	if !deleted {
		return model.NewEntryNotFoundError(entryID)
	}
	return nil
}
