package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/liftlog/internal/entry"
	"github.com/hitoshi/liftlog/internal/model"
)

// defaultEntriesPerPage は記録一覧の1回の取得件数（デフォルト）。
const defaultEntriesPerPage = 50

// EntryServiceInterface は記録ハンドラーが必要とするサービスインターフェース。
type EntryServiceInterface interface {
	// ListRecent はユーザーの記録一覧を実施時刻降順・カーソルページネーションで返す。
	ListRecent(ctx context.Context, userID, cursor string, limit int) (*entry.ListResult, error)
}

// EntryHandler はトレーニング記録照会のHTTPハンドラー。
type EntryHandler struct {
	service  EntryServiceInterface
	maxLimit int
}

// NewEntryHandler はEntryHandlerを生成する。
// maxLimitは1リクエストで取得できる最大件数。0以下の場合はデフォルト値を使う。
func NewEntryHandler(service EntryServiceInterface, maxLimit int) *EntryHandler {
	if maxLimit <= 0 {
		maxLimit = defaultEntriesPerPage
	}
	return &EntryHandler{
		service:  service,
		maxLimit: maxLimit,
	}
}

// entryResponse は1件のトレーニング記録のAPIレスポンス。
type entryResponse struct {
	ID          string    `json:"id"`
	Exercise    string    `json:"exercise"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `json:"unit,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	PerformedAt time.Time `json:"performed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// entryListResponse は記録一覧のAPIレスポンス。
type entryListResponse struct {
	Entries    []entryResponse `json:"entries"`
	NextCursor string          `json:"next_cursor,omitempty"`
	HasMore    bool            `json:"has_more"`
}

// ListEntries はユーザーの記録一覧を取得する。
// GET /api/users/:id/entries?cursor=xxx&limit=n
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	cursor := r.URL.Query().Get("cursor")

	limit := defaultEntriesPerPage
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeAPIErrorResponse(w, http.StatusBadRequest,
				model.NewInvalidRangeError("limitは1以上の整数で指定してください"))
			return
		}
		limit = parsed
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	result, err := h.service.ListRecent(r.Context(), userID, cursor, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	entries := make([]entryResponse, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, toEntryResponse(e))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entryListResponse{
		Entries:    entries,
		NextCursor: result.NextCursor,
		HasMore:    result.HasMore,
	})
}

// toEntryResponse はmodel.WorkoutEntryからAPIレスポンスに変換する。
func toEntryResponse(e model.WorkoutEntry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		Exercise:    e.Exercise,
		Quantity:    e.Quantity,
		Unit:        e.Unit,
		Notes:       e.Notes,
		PerformedAt: e.Timestamp,
		CreatedAt:   e.CreatedAt,
	}
}
