package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/jobtrack/internal/dashboard"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
)

// DashboardServiceInterface はダッシュボードハンドラーが必要とするサービスインターフェース。
type DashboardServiceInterface interface {
	// GetStats はユーザーのダッシュボード統計を集計して返す。
	GetStats(ctx context.Context, userID string) (*dashboard.Stats, error)
}

// DashboardHandler はダッシュボード統計のHTTPハンドラー。
type DashboardHandler struct {
	service DashboardServiceInterface
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(service DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// upcomingInterviewResponse はダッシュボード表示用の面接予定。応募情報を含む。
type upcomingInterviewResponse struct {
	interviewResponse
	CompanyName   string `json:"company_name"`
	PositionTitle string `json:"position_title"`
}

// monthlyCountResponse は月別の応募件数。
type monthlyCountResponse struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// dashboardStatsResponse はダッシュボード統計のAPIレスポンス。
// by_statusは件数ゼロのステータスも必ず含む。
type dashboardStatsResponse struct {
	TotalApplications  int                         `json:"total_applications"`
	ByStatus           map[string]int              `json:"by_status"`
	RecentApplications []applicationResponse       `json:"recent_applications"`
	UpcomingInterviews []upcomingInterviewResponse `json:"upcoming_interviews"`
	ByMonth            []monthlyCountResponse      `json:"by_month"`
}

// GetStats はダッシュボード統計を取得する。
// GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	stats, err := h.service.GetStats(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := dashboardStatsResponse{
		TotalApplications:  stats.TotalApplications,
		ByStatus:           make(map[string]int, len(stats.ByStatus)),
		RecentApplications: make([]applicationResponse, 0, len(stats.RecentApplications)),
		UpcomingInterviews: make([]upcomingInterviewResponse, 0, len(stats.UpcomingInterviews)),
		ByMonth:            make([]monthlyCountResponse, 0, len(stats.ByMonth)),
	}

	for status, count := range stats.ByStatus {
		resp.ByStatus[string(status)] = count
	}
	for _, app := range stats.RecentApplications {
		resp.RecentApplications = append(resp.RecentApplications, toApplicationResponse(app))
	}
	for _, iv := range stats.UpcomingInterviews {
		resp.UpcomingInterviews = append(resp.UpcomingInterviews, upcomingInterviewResponse{
			interviewResponse: toInterviewResponse(&iv.Interview),
			CompanyName:       iv.CompanyName,
			PositionTitle:     iv.PositionTitle,
		})
	}
	for _, mc := range stats.ByMonth {
		resp.ByMonth = append(resp.ByMonth, monthlyCountResponse{
			Month: mc.Month,
			Count: mc.Count,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// compile-time interface check
var _ DashboardServiceInterface = (*dashboard.Service)(nil)
