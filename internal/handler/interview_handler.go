package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/jobtrack/internal/interview"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
)

// InterviewServiceInterface は面接ハンドラーが必要とするサービスインターフェース。
type InterviewServiceInterface interface {
	// Create は応募に面接予定を追加する。
	Create(ctx context.Context, userID, applicationID string, input interview.Input) (*model.Interview, error)
	// ListByApplication は応募の面接一覧を取得する。
	ListByApplication(ctx context.Context, userID, applicationID string) ([]*model.Interview, error)
	// Update は面接予定を更新する。
	Update(ctx context.Context, userID, interviewID string, input interview.Input) (*model.Interview, error)
	// Delete は面接予定を削除する。
	Delete(ctx context.Context, userID, interviewID string) error
}

// InterviewHandler は面接管理のHTTPハンドラー。
type InterviewHandler struct {
	service InterviewServiceInterface
}

// NewInterviewHandler はInterviewHandlerを生成する。
func NewInterviewHandler(service InterviewServiceInterface) *InterviewHandler {
	return &InterviewHandler{service: service}
}

// interviewRequest は面接の作成・更新リクエストのボディ。
type interviewRequest struct {
	InterviewType    string    `json:"interview_type"`
	ScheduledAt      time.Time `json:"scheduled_at"`
	DurationMinutes  int       `json:"duration_minutes"`
	Location         string    `json:"location"`
	InterviewerNames string    `json:"interviewer_names"`
	Notes            string    `json:"notes"`
	Completed        bool      `json:"completed"`
}

// interviewResponse は面接情報のAPIレスポンス。
type interviewResponse struct {
	ID               string    `json:"id"`
	ApplicationID    string    `json:"application_id"`
	InterviewType    string    `json:"interview_type"`
	ScheduledAt      time.Time `json:"scheduled_at"`
	DurationMinutes  int       `json:"duration_minutes"`
	Location         string    `json:"location"`
	InterviewerNames string    `json:"interviewer_names"`
	Notes            string    `json:"notes"`
	Completed        bool      `json:"completed"`
	CreatedAt        time.Time `json:"created_at"`
}

// Create は面接予定の追加を処理する。
// POST /api/applications/:id/interviews
func (h *InterviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req interviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	iv, err := h.service.Create(r.Context(), userID, chi.URLParam(r, "id"), toInterviewInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toInterviewResponse(iv))
}

// List は応募の面接一覧を取得する。
// GET /api/applications/:id/interviews
func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	interviews, err := h.service.ListByApplication(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]interviewResponse, 0, len(interviews))
	for _, iv := range interviews {
		items = append(items, toInterviewResponse(iv))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// Update は面接予定の更新を処理する。
// PUT /api/interviews/:interviewId
func (h *InterviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req interviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	iv, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "interviewId"), toInterviewInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toInterviewResponse(iv))
}

// Delete は面接予定の削除を処理する。
// DELETE /api/interviews/:interviewId
func (h *InterviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "interviewId")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toInterviewInput はリクエストボディからサービス入力に変換する。
func toInterviewInput(req interviewRequest) interview.Input {
	return interview.Input{
		InterviewType:    req.InterviewType,
		ScheduledAt:      req.ScheduledAt,
		DurationMinutes:  req.DurationMinutes,
		Location:         req.Location,
		InterviewerNames: req.InterviewerNames,
		Notes:            req.Notes,
		Completed:        req.Completed,
	}
}

// toInterviewResponse はmodel.InterviewからAPIレスポンスに変換する。
func toInterviewResponse(iv *model.Interview) interviewResponse {
	return interviewResponse{
		ID:               iv.ID,
		ApplicationID:    iv.ApplicationID,
		InterviewType:    iv.InterviewType,
		ScheduledAt:      iv.ScheduledAt,
		DurationMinutes:  iv.DurationMinutes,
		Location:         iv.Location,
		InterviewerNames: iv.InterviewerNames,
		Notes:            iv.Notes,
		Completed:        iv.Completed,
		CreatedAt:        iv.CreatedAt,
	}
}
