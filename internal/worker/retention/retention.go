// Package retention はステータス履歴の自動削除ジョブを提供する。
// 保持期間（デフォルト365日）を超過した履歴行を日次バッチで削除する。
// 応募本体と現在のステータスは削除対象外。
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/jobtrack/internal/repository"
)

// MetricsRecorder は削除件数のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordHistoryPruned(count int64)
}

// Job は保持期間を超過したステータス履歴の自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type Job struct {
	historyRepo   repository.StatusHistoryRepository
	logger        *slog.Logger
	metrics       MetricsRecorder
	RetentionDays int // 履歴の保持日数（デフォルト: 365）
}

// NewJob は新しいJobを生成する。
// デフォルトの保持日数は365日。metricsはnilを許容する。
func NewJob(historyRepo repository.StatusHistoryRepository, logger *slog.Logger, metrics MetricsRecorder) *Job {
	return &Job{
		historyRepo:   historyRepo,
		logger:        logger,
		metrics:       metrics,
		RetentionDays: 365,
	}
}

// Run は保持期間を超過したステータス履歴を削除する。
// changed_atがRetentionDays日前より古い履歴行をDELETEする。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()

	cutoff := time.Now().AddDate(0, 0, -j.RetentionDays)

	deletedCount, err := j.historyRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("ステータス履歴クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("ステータス履歴クリーンアップの実行に失敗: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordHistoryPruned(deletedCount)
	}

	duration := time.Since(start)
	j.logger.Info("ステータス履歴クリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// StartDaily は起動直後に1回実行し、以後24時間ごとにRunを実行する。
// コンテキストのキャンセルで停止する。
func (j *Job) StartDaily(ctx context.Context) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("retention job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("retention job failed", slog.String("error", err.Error()))
			}
		}
	}
}
