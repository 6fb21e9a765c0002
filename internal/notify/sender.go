// Package notify はリマインダー通知の送信機能を提供する。
// Telegramチャットへの送信と、ユーザー設定のWebhookへの送信をサポートする。
package notify

import (
	"context"

	"github.com/hitoshi/liftlog/internal/model"
)

// Sender は通知送信のインターフェース。
// 送信は最大1回であり、失敗時の再送は呼び出し元も行わない。
type Sender interface {
	// SendReminder はユーザーにリマインダーメッセージを送信する。
	SendReminder(ctx context.Context, user *model.User, message string) error

	// Name は送信チャネル名を返す。ログとメトリクスのラベルに使用する。
	Name() string
}

// Dispatcher はユーザー設定に応じて送信チャネルを選択するSender。
// Webhook URLが設定されていればWebhook、なければTelegramを使用する。
type Dispatcher struct {
	telegram Sender
	webhook  Sender
}

var _ Sender = (*Dispatcher)(nil)

// NewDispatcher はDispatcherの新しいインスタンスを生成する。
// telegramがnilの場合、Webhook未設定ユーザーへの送信はエラーになる。
func NewDispatcher(telegram, webhook Sender) *Dispatcher {
	return &Dispatcher{
		telegram: telegram,
		webhook:  webhook,
	}
}

// SendReminder はユーザー設定に基づいてチャネルを選択し送信する。
func (d *Dispatcher) SendReminder(ctx context.Context, user *model.User, message string) error {
	return d.senderFor(user).SendReminder(ctx, user, message)
}

// Name は選択前のチャネル名としてdispatcherを返す。
func (d *Dispatcher) Name() string {
	return "dispatcher"
}

// ChannelFor はユーザーに使用されるチャネル名を返す。
func (d *Dispatcher) ChannelFor(user *model.User) string {
	return d.senderFor(user).Name()
}

func (d *Dispatcher) senderFor(user *model.User) Sender {
	if user.WebhookURL != "" && d.webhook != nil {
		return d.webhook
	}
	if d.telegram != nil {
		return d.telegram
	}
	return noopSender{}
}

// noopSender はチャネル未設定時のフォールバック。常にエラーを返す。
type noopSender struct{}

func (noopSender) SendReminder(ctx context.Context, user *model.User, message string) error {
	return model.NewDeliveryError(user.ID, "利用可能な通知チャネルがありません")
}

func (noopSender) Name() string { return "none" }
