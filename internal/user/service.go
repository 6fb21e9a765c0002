// Package user はユーザー登録・設定管理機能を提供する。
package user

import (
	"context"
	"strings"
	"time"

	"github.com/hitoshi/liftlog/internal/model"
	"github.com/hitoshi/liftlog/internal/repository"
	"github.com/hitoshi/liftlog/internal/security"
)

// Service はユーザー登録と設定更新のサービス。
// ボットフロントエンドが初回メッセージ受信時にRegisterを呼び出す想定。
type Service struct {
	userRepo  repository.UserRepository
	ssrfGuard security.SSRFGuardService
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	ssrfGuard security.SSRFGuardService,
) *Service {
	return &Service{
		userRepo:  userRepo,
		ssrfGuard: ssrfGuard,
		now:       time.Now,
	}
}

// RegisterInput はRegisterの入力。
type RegisterInput struct {
	// ID はフロントエンド側のユーザー識別子（Telegramのuser_idなど）。
	ID string
	// ChatID は通知送信先のチャット識別子。
	ChatID int64
	// DisplayName は表示名。
	DisplayName string
	// Timezone はIANAタイムゾーン名。空の場合はUTCが設定される。
	Timezone string
	// WebhookURL は通知先Webhook URL。空の場合はWebhook通知を使用しない。
	WebhookURL string
}

// Register はユーザーを登録または更新する。
// タイムゾーンはIANA名として検証され、Webhook URLはSSRFガードを通す。
// 既存ユーザーの場合は設定が上書きされる（upsert）。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	tz := strings.TrimSpace(input.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, model.NewInvalidTimezoneError(tz)
	}

	webhookURL := strings.TrimSpace(input.WebhookURL)
	if webhookURL != "" {
		if err := s.ssrfGuard.ValidateURL(webhookURL); err != nil {
			return nil, model.NewWebhookBlockedError()
		}
	}

	now := s.now().UTC()
	u := &model.User{
		ID:          input.ID,
		ChatID:      input.ChatID,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Timezone:    tz,
		WebhookURL:  webhookURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.userRepo.Upsert(ctx, u); err != nil {
		return nil, model.NewStorageUnavailableError(err.Error())
	}

	return u, nil
}

// Get は指定IDのユーザーを取得する。
func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.NewStorageUnavailableError(err.Error())
	}
	if u == nil {
		return nil, model.NewUserNotFoundError(userID)
	}
	return u, nil
}
