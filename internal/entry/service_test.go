package entry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hitoshi/liftlog/internal/model"
)

// --- モック ---

type mockEntryRepo struct {
	createFn           func(ctx context.Context, entry *model.WorkoutEntry) error
	findByIDFn         func(ctx context.Context, id string) (*model.WorkoutEntry, error)
	listRecentByUserFn func(ctx context.Context, userID string, cursor time.Time, limit int) ([]model.WorkoutEntry, error)
	deleteFn           func(ctx context.Context, userID, entryID string) (bool, error)
}

func (m *mockEntryRepo) Create(ctx context.Context, entry *model.WorkoutEntry) error {
	if m.createFn != nil {
		return m.createFn(ctx, entry)
	}
	return nil
}
func (m *mockEntryRepo) FindByID(ctx context.Context, id string) (*model.WorkoutEntry, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockEntryRepo) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]model.WorkoutEntry, error) {
	return nil, nil
}
func (m *mockEntryRepo) ListRecentByUser(ctx context.Context, userID string, cursor time.Time, limit int) ([]model.WorkoutEntry, error) {
	if m.listRecentByUserFn != nil {
		return m.listRecentByUserFn(ctx, userID, cursor, limit)
	}
	return nil, nil
}
func (m *mockEntryRepo) CountByUserAndRange(ctx context.Context, userID string, start, end time.Time) (int, error) {
	return 0, nil
}
func (m *mockEntryRepo) Delete(ctx context.Context, userID, entryID string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, entryID)
	}
	return false, nil
}

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.User{ID: id, Timezone: "UTC"}, nil
}
func (m *mockUserRepo) Upsert(ctx context.Context, user *model.User) error {
	return nil
}
func (m *mockUserRepo) ListForReminders(ctx context.Context) ([]*model.User, error) {
	return nil, nil
}

// passthroughSanitizer はサニタイズを素通しするテスト用実装。
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(raw string) string { return raw }

// markerSanitizer はサニタイズ呼び出しを検証するためのテスト用実装。
type markerSanitizer struct{}

func (markerSanitizer) Sanitize(raw string) string { return "sanitized:" + raw }

func newTestService(entryRepo *mockEntryRepo, userRepo *mockUserRepo) *EntryService {
	svc := NewEntryService(entryRepo, userRepo, passthroughSanitizer{}, nil)
	svc.now = func() time.Time {
		return time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

// --- テスト ---

// TestCreateEntry_Success は記録作成の基本動作を検証する。
func TestCreateEntry_Success(t *testing.T) {
	var created *model.WorkoutEntry
	entryRepo := &mockEntryRepo{
		createFn: func(ctx context.Context, entry *model.WorkoutEntry) error {
			created = entry
			return nil
		},
	}
	svc := newTestService(entryRepo, &mockUserRepo{})

	performedAt := time.Date(2024, 3, 4, 10, 30, 0, 0, time.FixedZone("JST", 9*60*60))
	entry, err := svc.CreateEntry(context.Background(), "user-1", CreateInput{
		Exercise:    "Squat",
		Quantity:    100,
		Unit:        "kg",
		Notes:       "felt strong",
		PerformedAt: performedAt,
	})
	if err != nil {
		t.Fatalf("CreateEntry returned error: %v", err)
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}
	if entry.ID == "" {
		t.Error("expected non-empty entry ID")
	}
	if entry.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", entry.UserID, "user-1")
	}
	if entry.Exercise != "squat" {
		t.Errorf("Exercise = %q, want %q（正規化される）", entry.Exercise, "squat")
	}
	if entry.Quantity != 100 {
		t.Errorf("Quantity = %v, want %v", entry.Quantity, 100.0)
	}
	if entry.Timestamp.Location() != time.UTC {
		t.Errorf("TimestampがUTCではありません: %v", entry.Timestamp.Location())
	}
	if !entry.Timestamp.Equal(performedAt) {
		t.Errorf("Timestamp = %v, want %v", entry.Timestamp, performedAt)
	}
}

// TestCreateEntry_DefaultsTimestampToNow は実施時刻未指定時に現在時刻が
// 使用されることを検証する。
func TestCreateEntry_DefaultsTimestampToNow(t *testing.T) {
	svc := newTestService(&mockEntryRepo{}, &mockUserRepo{})

	entry, err := svc.CreateEntry(context.Background(), "user-1", CreateInput{
		Exercise: "bench press",
		Quantity: 60,
		Unit:     "kg",
	})
	if err != nil {
		t.Fatalf("CreateEntry returned error: %v", err)
	}
	want := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	if !entry.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", entry.Timestamp, want)
	}
}

// TestCreateEntry_SanitizesNotes は備考がサニタイザを通ることを検証する。
func TestCreateEntry_SanitizesNotes(t *testing.T) {
	svc := NewEntryService(&mockEntryRepo{}, &mockUserRepo{}, markerSanitizer{}, nil)

	entry, err := svc.CreateEntry(context.Background(), "user-1", CreateInput{
		Exercise: "squat",
		Quantity: 100,
		Notes:    "raw",
	})
	if err != nil {
		t.Fatalf("CreateEntry returned error: %v", err)
	}
	if entry.Notes != "sanitized:raw" {
		t.Errorf("Notes = %q, want %q", entry.Notes, "sanitized:raw")
	}
}

// TestCreateEntry_InvalidQuantity は不正な数量が拒否されることを検証する。
func TestCreateEntry_InvalidQuantity(t *testing.T) {
	svc := newTestService(&mockEntryRepo{}, &mockUserRepo{})

	quantities := []float64{0, -1, -100.5}
	for _, q := range quantities {
		t.Run(fmt.Sprintf("quantity=%v", q), func(t *testing.T) {
			_, err := svc.CreateEntry(context.Background(), "user-1", CreateInput{
				Exercise: "squat",
				Quantity: q,
			})
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidQuantity {
				t.Errorf("expected INVALID_QUANTITY error, got %v", err)
			}
		})
	}
}

// TestCreateEntry_EmptyExercise は空の種目名が拒否されることを検証する。
func TestCreateEntry_EmptyExercise(t *testing.T) {
	svc := newTestService(&mockEntryRepo{}, &mockUserRepo{})

	_, err := svc.CreateEntry(context.Background(), "user-1", CreateInput{
		Exercise: "   ",
		Quantity: 100,
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidExercise {
		t.Errorf("expected INVALID_EXERCISE error, got %v", err)
	}
}

// TestCreateEntry_UserNotFound は未登録ユーザーへの作成が拒否されることを検証する。
func TestCreateEntry_UserNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := newTestService(&mockEntryRepo{}, userRepo)

	_, err := svc.CreateEntry(context.Background(), "ghost", CreateInput{
		Exercise: "squat",
		Quantity: 100,
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("expected USER_NOT_FOUND error, got %v", err)
	}
}

// TestGetEntry_OtherUsersEntryNotFound は他ユーザーの記録が
// 存在しないものとして扱われることを検証する。
func TestGetEntry_OtherUsersEntryNotFound(t *testing.T) {
	entryRepo := &mockEntryRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.WorkoutEntry, error) {
			return &model.WorkoutEntry{ID: id, UserID: "other-user"}, nil
		},
	}
	svc := newTestService(entryRepo, &mockUserRepo{})

	_, err := svc.GetEntry(context.Background(), "user-1", "entry-1")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEntryNotFound {
		t.Errorf("expected ENTRY_NOT_FOUND error, got %v", err)
	}
}

// TestListRecent_Pagination はlimit+1件取得によるHasMore判定と
// NextCursorの設定を検証する。
func TestListRecent_Pagination(t *testing.T) {
	base := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	entryRepo := &mockEntryRepo{
		listRecentByUserFn: func(ctx context.Context, userID string, cursor time.Time, limit int) ([]model.WorkoutEntry, error) {
			if limit != 3 {
				t.Errorf("limit = %d, want 3（limit+1件取得）", limit)
			}
			entries := make([]model.WorkoutEntry, 3)
			for i := range entries {
				entries[i] = model.WorkoutEntry{
					ID:        fmt.Sprintf("entry-%d", i),
					UserID:    userID,
					Timestamp: base.Add(-time.Duration(i) * time.Hour),
				}
			}
			return entries, nil
		},
	}
	svc := newTestService(entryRepo, &mockUserRepo{})

	result, err := svc.ListRecent(context.Background(), "user-1", "", 2)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Errorf("len(Entries) = %d, want 2", len(result.Entries))
	}
	if !result.HasMore {
		t.Error("expected HasMore to be true")
	}
	wantCursor := base.Add(-time.Hour).Format(time.RFC3339Nano)
	if result.NextCursor != wantCursor {
		t.Errorf("NextCursor = %q, want %q", result.NextCursor, wantCursor)
	}
}

// TestListRecent_InvalidCursor は不正なカーソル値が拒否されることを検証する。
func TestListRecent_InvalidCursor(t *testing.T) {
	svc := newTestService(&mockEntryRepo{}, &mockUserRepo{})

	_, err := svc.ListRecent(context.Background(), "user-1", "not-a-time", 10)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRange {
		t.Errorf("expected INVALID_RANGE error, got %v", err)
	}
}

// TestDeleteEntry_NotFound は存在しない記録の削除がエラーになることを検証する。
func TestDeleteEntry_NotFound(t *testing.T) {
	entryRepo := &mockEntryRepo{
		deleteFn: func(ctx context.Context, userID, entryID string) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(entryRepo, &mockUserRepo{})

	err := svc.DeleteEntry(context.Background(), "user-1", "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEntryNotFound {
		t.Errorf("expected ENTRY_NOT_FOUND error, got %v", err)
	}
}

// TestDeleteEntry_Success は削除成功時にエラーが返らないことを検証する。
func TestDeleteEntry_Success(t *testing.T) {
	deleteCalled := false
	entryRepo := &mockEntryRepo{
		deleteFn: func(ctx context.Context, userID, entryID string) (bool, error) {
			deleteCalled = true
			return true, nil
		},
	}
	svc := newTestService(entryRepo, &mockUserRepo{})

	if err := svc.DeleteEntry(context.Background(), "user-1", "entry-1"); err != nil {
		t.Fatalf("DeleteEntry returned error: %v", err)
	}
	if !deleteCalled {
		t.Error("expected Delete to be called")
	}
}

// countingCollector は作成記録メトリクスのみ数えるテスト用コレクター。
type countingCollector struct {
	entriesCreated int
}

func (c *countingCollector) RecordReminderSent(channel string)    {}
func (c *countingCollector) RecordReminderSkipped(reason string)  {}
func (c *countingCollector) RecordClaimConflict()                 {}
func (c *countingCollector) RecordDeliveryFailure(channel string) {}
func (c *countingCollector) RecordCycleLatency(time.Duration)     {}
func (c *countingCollector) RecordSummaryLatency(time.Duration)   {}
func (c *countingCollector) RecordHTTPStatus(statusCode int)      {}
func (c *countingCollector) RecordEntriesCreated(count int)       { c.entriesCreated += count }
func (c *countingCollector) RecordLedgerPurged(count int64)       {}

// TestCreateEntry_RecordsMetric は作成成功時にメトリクスが記録されることを検証する。
func TestCreateEntry_RecordsMetric(t *testing.T) {
	collector := &countingCollector{}
	svc := NewEntryService(&mockEntryRepo{}, &mockUserRepo{}, passthroughSanitizer{}, collector)

	_, err := svc.CreateEntry(context.Background(), "user-1", CreateInput{
		Exercise: "squat",
		Quantity: 100,
	})
	if err != nil {
		t.Fatalf("CreateEntry returned error: %v", err)
	}
	if collector.entriesCreated != 1 {
		t.Errorf("entriesCreated = %d, want 1", collector.entriesCreated)
	}
}

// TestCreateEntry_StorageError はストア障害がSTORAGE_UNAVAILABLEに
// マップされることを検証する。
func TestCreateEntry_StorageError(t *testing.T) {
	entryRepo := &mockEntryRepo{
		createFn: func(ctx context.Context, entry *model.WorkoutEntry) error {
			return errors.New("connection refused")
		},
	}
	svc := newTestService(entryRepo, &mockUserRepo{})

	_, err := svc.CreateEntry(context.Background(), "user-1", CreateInput{
		Exercise: "squat",
		Quantity: 100,
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeStorageUnavailable {
		t.Errorf("expected STORAGE_UNAVAILABLE error, got %v", err)
	}
}
