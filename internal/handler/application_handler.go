package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/jobtrack/internal/application"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/repository"
)

// dateLayout は応募日・フォローアップ日のJSON表現。
const dateLayout = "2006-01-02"

// ApplicationServiceInterface は応募ハンドラーが必要とするサービスインターフェース。
type ApplicationServiceInterface interface {
	// Create は応募を作成し、初回ステータス履歴を追記する。
	Create(ctx context.Context, userID string, input application.Input) (*model.Application, error)
	// Get は応募詳細を子リソースとともに取得する。
	Get(ctx context.Context, userID, id string) (*application.Detail, error)
	// List は応募一覧を絞り込み・ソート条件付きで取得する。
	List(ctx context.Context, userID string, opts repository.ApplicationListOptions) ([]repository.ApplicationWithCounts, error)
	// ListHistory は応募のステータス履歴を取得する。
	ListHistory(ctx context.Context, userID, id string) ([]*model.StatusHistory, error)
	// Update は応募を更新する。ステータスが変化した場合のみ履歴を追記する。
	Update(ctx context.Context, userID, id string, input application.Input) (*model.Application, error)
	// Delete は応募を削除する。子リソースも連動して削除される。
	Delete(ctx context.Context, userID, id string) error
}

// ApplicationHandler は応募管理のHTTPハンドラー。
type ApplicationHandler struct {
	service ApplicationServiceInterface
}

// NewApplicationHandler はApplicationHandlerを生成する。
func NewApplicationHandler(service ApplicationServiceInterface) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// applicationRequest は応募の作成・更新リクエストのボディ。
type applicationRequest struct {
	CompanyName    string  `json:"company_name"`
	PositionTitle  string  `json:"position_title"`
	JobDescription string  `json:"job_description"`
	Location       string  `json:"location"`
	SalaryRange    string  `json:"salary_range"`
	JobURL         string  `json:"job_url"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	AppliedDate    string  `json:"applied_date"`
	FollowUpDate   *string `json:"follow_up_date"`
	Notes          string  `json:"notes"`
}

// applicationResponse は応募情報のAPIレスポンス。
type applicationResponse struct {
	ID             string    `json:"id"`
	CompanyName    string    `json:"company_name"`
	PositionTitle  string    `json:"position_title"`
	JobDescription string    `json:"job_description"`
	Location       string    `json:"location"`
	SalaryRange    string    `json:"salary_range"`
	JobURL         string    `json:"job_url"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	AppliedDate    string    `json:"applied_date"`
	FollowUpDate   *string   `json:"follow_up_date"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// applicationListItemResponse は一覧表示用の応募情報。子リソース件数を含む。
type applicationListItemResponse struct {
	applicationResponse
	InterviewCount int `json:"interview_count"`
	DocumentCount  int `json:"document_count"`
	ContactCount   int `json:"contact_count"`
}

// statusHistoryResponse はステータス履歴のAPIレスポンス。
type statusHistoryResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	ChangedAt time.Time `json:"changed_at"`
}

// documentResponse は書類メタデータのAPIレスポンス。
type documentResponse struct {
	ID           string    `json:"id"`
	DocumentType string    `json:"document_type"`
	FileName     string    `json:"file_name"`
	FileURL      string    `json:"file_url"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// applicationDetailResponse は応募詳細のAPIレスポンス。子リソースをすべて含む。
type applicationDetailResponse struct {
	applicationResponse
	StatusHistory []statusHistoryResponse `json:"status_history"`
	Contacts      []contactResponse       `json:"contacts"`
	Documents     []documentResponse      `json:"documents"`
	Interviews    []interviewResponse     `json:"interviews"`
}

// Create は応募の作成を処理する。
// POST /api/applications
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	input, apiErr := toApplicationInput(req)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	app, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toApplicationResponse(app))
}

// List は応募一覧を取得する。
// GET /api/applications?status=&search=&sort_by=&order=
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	opts := repository.ApplicationListOptions{
		Search:     r.URL.Query().Get("search"),
		Descending: r.URL.Query().Get("order") == "desc",
	}

	if status := r.URL.Query().Get("status"); status != "" {
		s := model.ApplicationStatus(status)
		if !s.IsValid() {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidStatusError(status))
			return
		}
		opts.Status = s
	}

	if sortBy := r.URL.Query().Get("sort_by"); sortBy != "" {
		key := repository.ApplicationSortKey(sortBy)
		if !key.IsValid() {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidSortError(sortBy))
			return
		}
		opts.SortBy = key
	}

	apps, err := h.service.List(r.Context(), userID, opts)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]applicationListItemResponse, 0, len(apps))
	for i := range apps {
		items = append(items, applicationListItemResponse{
			applicationResponse: toApplicationResponse(&apps[i].Application),
			InterviewCount:      apps[i].Counts.Interviews,
			DocumentCount:       apps[i].Counts.Documents,
			ContactCount:        apps[i].Counts.Contacts,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// Get は応募詳細を取得する。
// GET /api/applications/:id
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	detail, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toApplicationDetailResponse(detail))
}

// History は応募のステータス履歴を取得する。
// GET /api/applications/:id/history
func (h *ApplicationHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	history, err := h.service.ListHistory(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]statusHistoryResponse, 0, len(history))
	for _, entry := range history {
		items = append(items, statusHistoryResponse{
			ID:        entry.ID,
			Status:    string(entry.Status),
			Notes:     entry.Notes,
			ChangedAt: entry.ChangedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// Update は応募の更新を処理する。
// PUT /api/applications/:id
func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	input, apiErr := toApplicationInput(req)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	app, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toApplicationResponse(app))
}

// Delete は応募の削除を処理する。
// DELETE /api/applications/:id
func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// toApplicationInput はリクエストボディからサービス入力に変換する。
// 日付の形式エラーはAPIErrorとして返す。
func toApplicationInput(req applicationRequest) (application.Input, *model.APIError) {
	input := application.Input{
		CompanyName:    req.CompanyName,
		PositionTitle:  req.PositionTitle,
		JobDescription: req.JobDescription,
		Location:       req.Location,
		SalaryRange:    req.SalaryRange,
		JobURL:         req.JobURL,
		Status:         model.ApplicationStatus(req.Status),
		Priority:       model.Priority(req.Priority),
		Notes:          req.Notes,
	}

	if req.AppliedDate != "" {
		d, err := time.Parse(dateLayout, req.AppliedDate)
		if err != nil {
			return application.Input{}, &model.APIError{
				Code:     "INVALID_DATE",
				Message:  "応募日の形式が正しくありません。",
				Category: "validation",
				Action:   "YYYY-MM-DD形式で入力してください。",
			}
		}
		input.AppliedDate = d
	}

	if req.FollowUpDate != nil && *req.FollowUpDate != "" {
		d, err := time.Parse(dateLayout, *req.FollowUpDate)
		if err != nil {
			return application.Input{}, &model.APIError{
				Code:     "INVALID_DATE",
				Message:  "フォローアップ日の形式が正しくありません。",
				Category: "validation",
				Action:   "YYYY-MM-DD形式で入力してください。",
			}
		}
		input.FollowUpDate = &d
	}

	return input, nil
}

// toApplicationResponse はmodel.ApplicationからAPIレスポンスに変換する。
func toApplicationResponse(app *model.Application) applicationResponse {
	resp := applicationResponse{
		ID:             app.ID,
		CompanyName:    app.CompanyName,
		PositionTitle:  app.PositionTitle,
		JobDescription: app.JobDescription,
		Location:       app.Location,
		SalaryRange:    app.SalaryRange,
		JobURL:         app.JobURL,
		Status:         string(app.Status),
		Priority:       string(app.Priority),
		AppliedDate:    app.AppliedDate.Format(dateLayout),
		Notes:          app.Notes,
		CreatedAt:      app.CreatedAt,
		UpdatedAt:      app.UpdatedAt,
	}
	if app.FollowUpDate != nil {
		s := app.FollowUpDate.Format(dateLayout)
		resp.FollowUpDate = &s
	}
	return resp
}

// toApplicationDetailResponse はapplication.DetailからAPIレスポンスに変換する。
func toApplicationDetailResponse(detail *application.Detail) applicationDetailResponse {
	resp := applicationDetailResponse{
		applicationResponse: toApplicationResponse(detail.Application),
		StatusHistory:       make([]statusHistoryResponse, 0, len(detail.StatusHistory)),
		Contacts:            make([]contactResponse, 0, len(detail.Contacts)),
		Documents:           make([]documentResponse, 0, len(detail.Documents)),
		Interviews:          make([]interviewResponse, 0, len(detail.Interviews)),
	}

	for _, h := range detail.StatusHistory {
		resp.StatusHistory = append(resp.StatusHistory, statusHistoryResponse{
			ID:        h.ID,
			Status:    string(h.Status),
			Notes:     h.Notes,
			ChangedAt: h.ChangedAt,
		})
	}
	for _, c := range detail.Contacts {
		resp.Contacts = append(resp.Contacts, toContactResponse(c))
	}
	for _, d := range detail.Documents {
		resp.Documents = append(resp.Documents, documentResponse{
			ID:           d.ID,
			DocumentType: d.DocumentType,
			FileName:     d.FileName,
			FileURL:      d.FileURL,
			UploadedAt:   d.UploadedAt,
		})
	}
	for _, iv := range detail.Interviews {
		resp.Interviews = append(resp.Interviews, toInterviewResponse(iv))
	}

	return resp
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"code":     apiErr.Code,
		"message":  apiErr.Message,
		"category": apiErr.Category,
		"action":   apiErr.Action,
	})
}

// writeInvalidRequestBody はリクエストボディ解析失敗の400レスポンスを書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeApplicationNotFound, model.ErrCodeContactNotFound, model.ErrCodeInterviewNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidEmail, model.ErrCodeWeakPassword, model.ErrCodeMissingField,
		model.ErrCodeInvalidStatus, model.ErrCodeInvalidPriority, model.ErrCodeInvalidSort:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
