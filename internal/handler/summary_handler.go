// Package handler は読み取り専用クエリAPIのHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/liftlog/internal/middleware"
	"github.com/hitoshi/liftlog/internal/model"
	"github.com/hitoshi/liftlog/internal/report"
)

// SummaryServiceInterface は集計ハンドラーが必要とするサービスインターフェース。
type SummaryServiceInterface interface {
	// GetSummary は指定ウィンドウのトレーニング集計を返す。
	GetSummary(ctx context.Context, userID string, kind model.WindowKind, tzName string, params report.WindowParams) (*model.Summary, error)
}

// SummaryMetrics は集計クエリのレイテンシ記録に必要なインターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type SummaryMetrics interface {
	RecordSummaryLatency(duration time.Duration)
}

// SummaryHandler はトレーニング集計のHTTPハンドラー。
type SummaryHandler struct {
	service   SummaryServiceInterface
	collector SummaryMetrics
}

// NewSummaryHandler はSummaryHandlerを生成する。
// collectorはnil可（レイテンシを記録しない）。
func NewSummaryHandler(service SummaryServiceInterface, collector SummaryMetrics) *SummaryHandler {
	return &SummaryHandler{
		service:   service,
		collector: collector,
	}
}

// summaryResponse は集計結果のAPIレスポンス。
type summaryResponse struct {
	UserID     string             `json:"user_id"`
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	Totals     map[string]float64 `json:"totals"`
	EntryCount int                `json:"entry_count"`
}

// GetSummary はトレーニング集計を取得する。
// GET /api/users/:id/summary/:kind?tz=&month=&start=&end=
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	kindStr := chi.URLParam(r, "kind")

	kind := model.WindowKind(kindStr)
	switch kind {
	case model.WindowToday, model.WindowWeek, model.WindowMonth, model.WindowPeriod:
	default:
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRangeError("不明な集計区間です: "+kindStr))
		return
	}

	q := r.URL.Query()
	params := report.WindowParams{
		Month: q.Get("month"),
		Start: q.Get("start"),
		End:   q.Get("end"),
	}

	start := time.Now()
	summary, err := h.service.GetSummary(r.Context(), userID, kind, q.Get("tz"), params)
	if h.collector != nil {
		h.collector.RecordSummaryLatency(time.Since(start))
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaryResponse{
		UserID:     summary.UserID,
		Start:      summary.Window.Start,
		End:        summary.Window.End,
		Totals:     summary.Totals,
		EntryCount: summary.EntryCount,
	})
}

// --- ヘルパー関数 ---

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRange,
		model.ErrCodeInvalidTimezone,
		model.ErrCodeInvalidQuantity,
		model.ErrCodeInvalidExercise:
		return http.StatusBadRequest
	case model.ErrCodeUserNotFound, model.ErrCodeEntryNotFound:
		return http.StatusNotFound
	case model.ErrCodeWebhookBlocked:
		return http.StatusForbidden
	case model.ErrCodeStorageUnavailable:
		return http.StatusServiceUnavailable
	case model.ErrCodeDeliveryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
