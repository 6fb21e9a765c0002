package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/liftlog/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Get は指定IDのユーザーを取得する。
	Get(ctx context.Context, userID string) (*model.User, error)
}

// UserHandler はユーザープロフィールのHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// userResponse はユーザープロフィールのAPIレスポンス。
// Webhook URLそのものは通知設定であり照会面には出さない。
type userResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Timezone    string    `json:"timezone"`
	HasWebhook  bool      `json:"has_webhook"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetUser はユーザープロフィールを取得する。
// GET /api/users/:id
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userResponse{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Timezone:    user.Timezone,
		HasWebhook:  user.WebhookURL != "",
		CreatedAt:   user.CreatedAt,
	})
}
