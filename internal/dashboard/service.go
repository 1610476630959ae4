// Package dashboard はダッシュボード統計の集計を提供する。
package dashboard

import (
	"context"
	"fmt"

	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/repository"
)

const (
	// recentLimit は直近の応募の表示件数。
	recentLimit = 5
	// upcomingWindowDays は今後の面接を表示する日数。
	upcomingWindowDays = 7
	// monthlyLimit は月別集計の表示月数。
	monthlyLimit = 6
)

// Stats はダッシュボードに表示する集計結果。
type Stats struct {
	TotalApplications  int
	ByStatus           map[model.ApplicationStatus]int
	RecentApplications []*model.Application
	UpcomingInterviews []*model.UpcomingInterview
	ByMonth            []repository.MonthlyCount
}

// Service はダッシュボード統計の集計を提供する。
type Service struct {
	statsRepo  repository.StatsRepository
	intervRepo repository.InterviewRepository
}

// NewService はServiceを生成する。
func NewService(statsRepo repository.StatsRepository, intervRepo repository.InterviewRepository) *Service {
	return &Service{
		statsRepo:  statsRepo,
		intervRepo: intervRepo,
	}
}

// GetStats はユーザーのダッシュボード統計を集計して返す。
// ステータス別集計は件数ゼロのステータスも必ず0で含める。
func (s *Service) GetStats(ctx context.Context, userID string) (*Stats, error) {
	total, err := s.statsRepo.TotalByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get total applications: %w", err)
	}

	counts, err := s.statsRepo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	// 全ステータスをゼロ埋めしてから実測値を上書きする
	byStatus := make(map[model.ApplicationStatus]int, len(model.AllStatuses()))
	for _, status := range model.AllStatuses() {
		byStatus[status] = 0
	}
	for status, count := range counts {
		byStatus[status] = count
	}

	recent, err := s.statsRepo.RecentByUser(ctx, userID, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent applications: %w", err)
	}

	upcoming, err := s.intervRepo.ListUpcomingByUser(ctx, userID, upcomingWindowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming interviews: %w", err)
	}

	byMonth, err := s.statsRepo.CountByMonth(ctx, userID, monthlyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to count by month: %w", err)
	}

	return &Stats{
		TotalApplications:  total,
		ByStatus:           byStatus,
		RecentApplications: recent,
		UpcomingInterviews: upcoming,
		ByMonth:            byMonth,
	}, nil
}
