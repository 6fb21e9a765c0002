// Package reminder はリマインダー送信のバックグラウンドワーカーを提供する。
// ティッカー駆動のクロック、送信判定、台帳クレームによる重複防止を含む。
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/liftlog/internal/metrics"
	"github.com/hitoshi/liftlog/internal/model"
	"github.com/hitoshi/liftlog/internal/report"
	"github.com/hitoshi/liftlog/internal/repository"
)

// defaultMessage はリマインダーの本文。
const defaultMessage = "今日のトレーニングをまだ記録していません。忘れずに記録しましょう！"

// ReminderSender はリマインダー送信のインターフェース。
// notify.Dispatcherが実装する。
type ReminderSender interface {
	SendReminder(ctx context.Context, user *model.User, message string) error
	ChannelFor(user *model.User) string
}

// Clock はリマインダー送信のスケジューリングを行う。
// 短い間隔のティッカーで駆動され、設定タイムゾーンの壁時計が
// 設定時刻（時・分）に一致したサイクルだけ送信処理を実行する。
//
// 重複送信の防止はプロセス内の状態ではなく送信台帳に委ねる。
// このため再起動や複数インスタンス同時実行でも同一ユーザー・同一日の
// リマインダーは最大1回しか送信されない。
type Clock struct {
	userRepo  repository.UserRepository
	entryRepo repository.EntryRepository
	ledger    repository.ReminderLedger
	sender    ReminderSender
	collector metrics.MetricsCollector
	logger    *slog.Logger
	hour      int
	minute    int
	loc       *time.Location
	now       func() time.Time
}

// NewClock はClockの新しいインスタンスを生成する。
// locがnilの場合はUTCを使用する。
func NewClock(
	userRepo repository.UserRepository,
	entryRepo repository.EntryRepository,
	ledger repository.ReminderLedger,
	sender ReminderSender,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	hour, minute int,
	loc *time.Location,
) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{
		userRepo:  userRepo,
		entryRepo: entryRepo,
		ledger:    ledger,
		sender:    sender,
		collector: collector,
		logger:    logger,
		hour:      hour,
		minute:    minute,
		loc:       loc,
		now:       time.Now,
	}
}

// Start は指定間隔のティッカーでクロックを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
// 設定時刻に一致しないティックでは何もしない。
func (c *Clock) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info("リマインダークロックを開始しました",
		slog.Duration("interval", interval),
		slog.Int("hour", c.hour),
		slog.Int("minute", c.minute),
		slog.String("timezone", c.loc.String()),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("リマインダークロックを停止しました")
			return
		case <-ticker.C:
			if !c.shouldFire(c.now()) {
				continue
			}
			if err := c.RunOnce(ctx); err != nil {
				c.logger.Error("リマインダーサイクルの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// shouldFire は設定タイムゾーンの壁時計が設定時刻（時・分）に
// 一致するかを判定する。
func (c *Clock) shouldFire(now time.Time) bool {
	local := now.In(c.loc)
	return local.Hour() == c.hour && local.Minute() == c.minute
}

// RunOnce はリマインダーサイクルを1回実行する。
// 全対象ユーザーについて送信判定・台帳クレーム・送信を順に行う。
// ユーザー一覧の取得に失敗した場合はサイクル全体を中断し、
// 次のティックで再試行する（個別ユーザーの失敗はサイクルを止めない）。
func (c *Clock) RunOnce(ctx context.Context) error {
	start := c.now()
	reminderDate := model.ReminderDateOf(start, c.loc)

	users, err := c.userRepo.ListForReminders(ctx)
	if err != nil {
		return model.NewStorageUnavailableError(err.Error())
	}

	if len(users) == 0 {
		return nil
	}

	c.logger.Info("リマインダーサイクルを開始します",
		slog.Int("user_count", len(users)),
		slog.String("reminder_date", reminderDate),
	)

	// 当日判定用の暦日ウィンドウ（設定タイムゾーン基準）
	window, err := report.Resolve(model.WindowToday, start, c.loc, report.WindowParams{})
	if err != nil {
		return err
	}

	sent := 0
	for _, u := range users {
		// 長いサイクル中のシャットダウンに応答する
		if ctx.Err() != nil {
			c.logger.Info("リマインダーサイクルが中断されました",
				slog.Int("sent", sent),
			)
			return ctx.Err()
		}

		if c.processUser(ctx, u, reminderDate, window) {
			sent++
		}
	}

	duration := time.Since(start)
	c.collector.RecordCycleLatency(duration)
	c.logger.Info("リマインダーサイクルが完了しました",
		slog.Int("user_count", len(users)),
		slog.Int("sent", sent),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// processUser は1ユーザー分の送信判定と送信を行う。
// 送信に成功した場合のみtrueを返す。
func (c *Clock) processUser(ctx context.Context, u *model.User, reminderDate string, window model.ReportWindow) bool {
	// 当日すでに記録済みならリマインド不要
	count, err := c.entryRepo.CountByUserAndRange(ctx, u.ID, window.Start, window.End)
	if err != nil {
		c.logger.Error("当日記録の確認に失敗しました",
			slog.String("user_id", u.ID),
			slog.String("error", err.Error()),
		)
		return false
	}
	if count > 0 {
		c.collector.RecordReminderSkipped("already_logged")
		return false
	}

	// 送信枠のクレーム。falseは別プロセスまたは過去の自分が
	// すでに送信済みであることを意味する。
	claimed, err := c.ledger.TryClaim(ctx, u.ID, reminderDate)
	if err != nil {
		c.logger.Error("台帳クレームに失敗しました",
			slog.String("user_id", u.ID),
			slog.String("reminder_date", reminderDate),
			slog.String("error", err.Error()),
		)
		return false
	}
	if !claimed {
		c.collector.RecordClaimConflict()
		return false
	}

	// クレーム後の送信失敗は配送障害であり、スケジューリング障害ではない。
	// 台帳上は送信済みのまま残し、再送しない（at-most-once）。
	channel := c.sender.ChannelFor(u)
	if err := c.sender.SendReminder(ctx, u, defaultMessage); err != nil {
		c.collector.RecordDeliveryFailure(channel)
		c.logger.Error("リマインダーの送信に失敗しました",
			slog.String("user_id", u.ID),
			slog.String("channel", channel),
			slog.String("reminder_date", reminderDate),
			slog.String("error", err.Error()),
		)
		return false
	}

	c.collector.RecordReminderSent(channel)
	c.logger.Info("リマインダーを送信しました",
		slog.String("user_id", u.ID),
		slog.String("channel", channel),
		slog.String("reminder_date", reminderDate),
	)
	return true
}
