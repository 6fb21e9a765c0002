// Package cleanup は送信台帳の自動削除ジョブを提供する。
// 保持期間（デフォルト90日）を超過した台帳レコードを日次バッチで削除する。
// 台帳は重複送信防止のためだけに存在するので、古いレコードを残す理由はない。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/liftlog/internal/metrics"
	"github.com/hitoshi/liftlog/internal/repository"
)

// LedgerPurgeJob は保持期間を超過した送信台帳レコードの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type LedgerPurgeJob struct {
	ledger        repository.ReminderLedger
	collector     metrics.MetricsCollector
	logger        *slog.Logger
	RetentionDays int // 台帳レコードの保持日数（デフォルト: 90）
}

// NewLedgerPurgeJob は新しいLedgerPurgeJobを生成する。
// デフォルトの保持日数は90日。
func NewLedgerPurgeJob(ledger repository.ReminderLedger, collector metrics.MetricsCollector, logger *slog.Logger) *LedgerPurgeJob {
	return &LedgerPurgeJob{
		ledger:        ledger,
		collector:     collector,
		logger:        logger,
		RetentionDays: 90,
	}
}

// Start は指定間隔で削除ジョブを定期実行する。
// 起動直後に1回実行し、以降はティッカー間隔で繰り返す。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *LedgerPurgeJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("台帳クリーンアップジョブを開始しました",
		slog.Duration("interval", interval),
		slog.Int("retention_days", j.RetentionDays),
	)

	if err := j.Run(ctx); err != nil {
		j.logger.Error("台帳クリーンアップの初回実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("台帳クリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("台帳クリーンアップの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// Run は保持期間を超過した台帳レコードを削除する。
// reminder_dateがRetentionDays日前より古いレコードをDELETEする。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *LedgerPurgeJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := j.ledger.DeleteOlderThan(ctx, j.RetentionDays)
	if err != nil {
		return fmt.Errorf("台帳クリーンアップの実行に失敗: %w", err)
	}

	j.collector.RecordLedgerPurged(deletedCount)

	duration := time.Since(start)
	j.logger.Info("台帳クリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
