package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/hitoshi/liftlog/internal/model"
)

const (
	// telegramAPIBase はTelegram Bot APIのベースURL。
	telegramAPIBase = "https://api.telegram.org"
	// telegramSendRate はBot API全体の送信レート上限（msg/sec）。
	telegramSendRate = 30
)

// TelegramSender はTelegram Bot API経由でリマインダーを送信する。
// Bot APIのレート制限に合わせてrate.Limiterで送信を調速する。
type TelegramSender struct {
	httpClient *http.Client
	logger     *slog.Logger
	token      string
	limiter    *rate.Limiter
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewTelegramSender はTelegramSenderの新しいインスタンスを生成する。
func NewTelegramSender(httpClient *http.Client, logger *slog.Logger, token string) *TelegramSender {
	return &TelegramSender{
		httpClient: httpClient,
		logger:     logger,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(telegramSendRate), telegramSendRate),
		baseURL:    telegramAPIBase,
	}
}

var _ Sender = (*TelegramSender)(nil)

// Name は送信チャネル名を返す。
func (s *TelegramSender) Name() string { return "telegram" }

// sendMessageRequest はsendMessage APIのリクエストボディ。
type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// sendMessageResponse はsendMessage APIのレスポンスボディ。
type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendReminder はユーザーのチャットにリマインダーメッセージを送信する。
// レート制限の待機中にコンテキストがキャンセルされた場合はエラーを返す。
func (s *TelegramSender) SendReminder(ctx context.Context, user *model.User, message string) error {
	if s.token == "" {
		return model.NewDeliveryError(user.ID, "Telegramボットトークンが設定されていません")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("レート制限の待機に失敗しました: %w", err)
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID: user.ChatID,
		Text:   message,
	})
	if err != nil {
		return fmt.Errorf("リクエストボディの生成に失敗しました: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("Telegram APIの呼び出しに失敗しました",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return model.NewDeliveryError(user.ID, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.NewDeliveryError(user.ID, "レスポンスボディの読み取りに失敗しました: "+err.Error())
	}

	var result sendMessageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return model.NewDeliveryError(user.ID, "レスポンスJSONのパースに失敗しました: "+err.Error())
	}

	if resp.StatusCode != http.StatusOK || !result.OK {
		s.logger.Error("Telegram APIがエラーを返しました",
			slog.String("user_id", user.ID),
			slog.Int("http_status", resp.StatusCode),
			slog.String("description", result.Description),
		)
		return model.NewDeliveryError(user.ID, fmt.Sprintf("Telegram APIがステータス %d を返しました: %s", resp.StatusCode, result.Description))
	}

	return nil
}
