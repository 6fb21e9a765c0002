package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/liftlog/internal/model"
	"github.com/hitoshi/liftlog/internal/security"
)

// webhookMaxResponseSize はWebhookレスポンスの最大読み取りサイズ。
const webhookMaxResponseSize = 1024 * 1024

// WebhookSender はユーザー設定のWebhook URLにリマインダーをPOSTする。
// 送信先はユーザーが自由に設定できるため、SSRFガード付きの
// HTTPクライアントを使用し、送信直前にもURLを再検証する。
type WebhookSender struct {
	httpClient *http.Client
	ssrfGuard  security.SSRFGuardService
	logger     *slog.Logger
	now        func() time.Time
}

// NewWebhookSender はWebhookSenderの新しいインスタンスを生成する。
func NewWebhookSender(ssrfGuard security.SSRFGuardService, logger *slog.Logger, timeout time.Duration) *WebhookSender {
	return &WebhookSender{
		httpClient: ssrfGuard.NewSafeClient(timeout, webhookMaxResponseSize),
		ssrfGuard:  ssrfGuard,
		logger:     logger,
		now:        time.Now,
	}
}

var _ Sender = (*WebhookSender)(nil)

// Name は送信チャネル名を返す。
func (s *WebhookSender) Name() string { return "webhook" }

// webhookPayload はWebhookに送信するJSONペイロード。
type webhookPayload struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
	SentAt  string `json:"sent_at"`
}

// SendReminder はユーザーのWebhook URLにリマインダーをPOSTする。
// 2xx以外のステータスは送信失敗として扱う。
func (s *WebhookSender) SendReminder(ctx context.Context, user *model.User, message string) error {
	if user.WebhookURL == "" {
		return model.NewDeliveryError(user.ID, "Webhook URLが設定されていません")
	}

	// 登録時に検証済みでも、DNS変更等に備えて送信直前に再検証する
	if err := s.ssrfGuard.ValidateURL(user.WebhookURL); err != nil {
		s.logger.Warn("Webhook URLがブロックされました",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return model.NewWebhookBlockedError()
	}

	body, err := json.Marshal(webhookPayload{
		UserID:  user.ID,
		Message: message,
		SentAt:  s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("ペイロードの生成に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, user.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Liftlog/1.0 Reminder")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("Webhookの呼び出しに失敗しました",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return model.NewDeliveryError(user.ID, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("Webhookがエラーステータスを返しました",
			slog.String("user_id", user.ID),
			slog.Int("http_status", resp.StatusCode),
		)
		return model.NewDeliveryError(user.ID, fmt.Sprintf("Webhookがステータス %d を返しました", resp.StatusCode))
	}

	return nil
}
