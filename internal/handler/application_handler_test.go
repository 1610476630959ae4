package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/jobtrack/internal/application"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/repository"
)

// --- モック定義 ---

type mockApplicationService struct {
	createFn      func(ctx context.Context, userID string, input application.Input) (*model.Application, error)
	getFn         func(ctx context.Context, userID, id string) (*application.Detail, error)
	listFn        func(ctx context.Context, userID string, opts repository.ApplicationListOptions) ([]repository.ApplicationWithCounts, error)
	listHistoryFn func(ctx context.Context, userID, id string) ([]*model.StatusHistory, error)
	updateFn      func(ctx context.Context, userID, id string, input application.Input) (*model.Application, error)
	deleteFn      func(ctx context.Context, userID, id string) error
}

func (m *mockApplicationService) Create(ctx context.Context, userID string, input application.Input) (*model.Application, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, input)
	}
	return nil, nil
}

func (m *mockApplicationService) Get(ctx context.Context, userID, id string) (*application.Detail, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockApplicationService) List(ctx context.Context, userID string, opts repository.ApplicationListOptions) ([]repository.ApplicationWithCounts, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, opts)
	}
	return nil, nil
}

func (m *mockApplicationService) ListHistory(ctx context.Context, userID, id string) ([]*model.StatusHistory, error) {
	if m.listHistoryFn != nil {
		return m.listHistoryFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockApplicationService) Update(ctx context.Context, userID, id string, input application.Input) (*model.Application, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, input)
	}
	return nil, nil
}

func (m *mockApplicationService) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

var _ ApplicationServiceInterface = (*mockApplicationService)(nil)

// --- テストヘルパー ---

// withUserID はテスト用にリクエストコンテキストにユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

func testApplication() *model.Application {
	return &model.Application{
		ID:            "app-1",
		UserID:        "user-1",
		CompanyName:   "Example Inc",
		PositionTitle: "Backend Engineer",
		Status:        model.StatusApplied,
		Priority:      model.PriorityMedium,
		AppliedDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:     time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

// --- POST /api/applications ---

func TestApplicationHandler_Create_Success(t *testing.T) {
	svc := &mockApplicationService{
		createFn: func(_ context.Context, userID string, input application.Input) (*model.Application, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			if input.CompanyName != "Example Inc" {
				t.Errorf("CompanyName = %q, want Example Inc", input.CompanyName)
			}
			return testApplication(), nil
		},
	}
	h := NewApplicationHandler(svc)

	body := `{"company_name":"Example Inc","position_title":"Backend Engineer","applied_date":"2026-08-01"}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(body)), "user-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["applied_date"] != "2026-08-01" {
		t.Errorf("applied_date = %v, want 2026-08-01", resp["applied_date"])
	}
}

func TestApplicationHandler_Create_InvalidDate(t *testing.T) {
	h := NewApplicationHandler(&mockApplicationService{})

	body := `{"company_name":"Example Inc","position_title":"Backend Engineer","applied_date":"08/01/2026"}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(body)), "user-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if got := parseAPIErrorResponse(t, w)["code"]; got != "INVALID_DATE" {
		t.Errorf("code = %q, want INVALID_DATE", got)
	}
}

func TestApplicationHandler_Create_NoUserInContext(t *testing.T) {
	h := NewApplicationHandler(&mockApplicationService{})

	body := `{"company_name":"Example Inc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/applications", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// --- GET /api/applications ---

func TestApplicationHandler_List_PassesQueryOptions(t *testing.T) {
	var gotOpts repository.ApplicationListOptions
	svc := &mockApplicationService{
		listFn: func(_ context.Context, _ string, opts repository.ApplicationListOptions) ([]repository.ApplicationWithCounts, error) {
			gotOpts = opts
			return []repository.ApplicationWithCounts{
				{Application: *testApplication(), Counts: model.ApplicationCounts{Interviews: 2, Documents: 1, Contacts: 3}},
			}, nil
		},
	}
	h := NewApplicationHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/applications?status=applied&search=example&sort_by=company_name&order=desc", nil), "user-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotOpts.Status != model.StatusApplied {
		t.Errorf("Status = %q, want applied", gotOpts.Status)
	}
	if gotOpts.Search != "example" {
		t.Errorf("Search = %q, want example", gotOpts.Search)
	}
	if gotOpts.SortBy != repository.SortByCompanyName {
		t.Errorf("SortBy = %q, want company_name", gotOpts.SortBy)
	}
	if !gotOpts.Descending {
		t.Error("Descending should be true for order=desc")
	}

	var items []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0]["interview_count"] != float64(2) {
		t.Errorf("interview_count = %v, want 2", items[0]["interview_count"])
	}
}

func TestApplicationHandler_List_InvalidStatus(t *testing.T) {
	h := NewApplicationHandler(&mockApplicationService{})

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/applications?status=daydreaming", nil), "user-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if got := parseAPIErrorResponse(t, w)["code"]; got != model.ErrCodeInvalidStatus {
		t.Errorf("code = %q, want %q", got, model.ErrCodeInvalidStatus)
	}
}

func TestApplicationHandler_List_InvalidSortKey(t *testing.T) {
	h := NewApplicationHandler(&mockApplicationService{})

	// ソート項目はホワイトリスト方式で弾く
	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/applications?sort_by=password_hash", nil), "user-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if got := parseAPIErrorResponse(t, w)["code"]; got != model.ErrCodeInvalidSort {
		t.Errorf("code = %q, want %q", got, model.ErrCodeInvalidSort)
	}
}

// --- GET /api/applications/:id ---

func TestApplicationHandler_Get_NotFound(t *testing.T) {
	svc := &mockApplicationService{
		getFn: func(_ context.Context, _, _ string) (*application.Detail, error) {
			return nil, model.NewApplicationNotFoundError()
		},
	}
	h := NewApplicationHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/applications/app-9", nil), "user-1")
	req = withChiURLParam(req, "id", "app-9")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if got := parseAPIErrorResponse(t, w)["code"]; got != model.ErrCodeApplicationNotFound {
		t.Errorf("code = %q, want %q", got, model.ErrCodeApplicationNotFound)
	}
}

func TestApplicationHandler_Get_Success(t *testing.T) {
	svc := &mockApplicationService{
		getFn: func(_ context.Context, _, id string) (*application.Detail, error) {
			if id != "app-1" {
				t.Errorf("id = %q, want app-1", id)
			}
			return &application.Detail{
				Application: testApplication(),
				StatusHistory: []*model.StatusHistory{
					{ID: "hist-1", ApplicationID: "app-1", Status: model.StatusApplied, ChangedAt: time.Now()},
				},
			}, nil
		},
	}
	h := NewApplicationHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/applications/app-1", nil), "user-1")
	req = withChiURLParam(req, "id", "app-1")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	history, ok := resp["status_history"].([]any)
	if !ok || len(history) != 1 {
		t.Errorf("status_history = %v, want 1 entry", resp["status_history"])
	}
	// 子リソースが空でもnullではなく空配列を返すこと
	if _, ok := resp["contacts"].([]any); !ok {
		t.Errorf("contacts = %v, want empty array", resp["contacts"])
	}
}

// --- GET /api/applications/:id/history ---

func TestApplicationHandler_History_Success(t *testing.T) {
	svc := &mockApplicationService{
		listHistoryFn: func(_ context.Context, _, id string) ([]*model.StatusHistory, error) {
			return []*model.StatusHistory{
				{ID: "hist-2", Status: model.StatusInterview, ChangedAt: time.Now()},
				{ID: "hist-1", Status: model.StatusApplied, ChangedAt: time.Now().Add(-24 * time.Hour)},
			}, nil
		},
	}
	h := NewApplicationHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/applications/app-1/history", nil), "user-1")
	req = withChiURLParam(req, "id", "app-1")
	w := httptest.NewRecorder()

	h.History(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var items []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0]["status"] != "interview" {
		t.Errorf("first status = %v, want interview", items[0]["status"])
	}
}

// --- PUT /api/applications/:id ---

func TestApplicationHandler_Update_Success(t *testing.T) {
	svc := &mockApplicationService{
		updateFn: func(_ context.Context, _, id string, input application.Input) (*model.Application, error) {
			if id != "app-1" {
				t.Errorf("id = %q, want app-1", id)
			}
			app := testApplication()
			app.Status = input.Status
			return app, nil
		},
	}
	h := NewApplicationHandler(svc)

	body := `{"company_name":"Example Inc","position_title":"Backend Engineer","status":"interview","applied_date":"2026-08-01"}`
	req := withUserID(httptest.NewRequest(http.MethodPut, "/api/applications/app-1", strings.NewReader(body)), "user-1")
	req = withChiURLParam(req, "id", "app-1")
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "interview" {
		t.Errorf("status = %v, want interview", resp["status"])
	}
}

// --- DELETE /api/applications/:id ---

func TestApplicationHandler_Delete_Success(t *testing.T) {
	deleted := false
	svc := &mockApplicationService{
		deleteFn: func(_ context.Context, _, id string) error {
			deleted = true
			return nil
		},
	}
	h := NewApplicationHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodDelete, "/api/applications/app-1", nil), "user-1")
	req = withChiURLParam(req, "id", "app-1")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if !deleted {
		t.Error("service Delete should be called")
	}
}

func TestApplicationHandler_Delete_NotOwned(t *testing.T) {
	svc := &mockApplicationService{
		deleteFn: func(_ context.Context, _, _ string) error {
			return model.NewApplicationNotFoundError()
		},
	}
	h := NewApplicationHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodDelete, "/api/applications/app-1", nil), "user-1")
	req = withChiURLParam(req, "id", "app-1")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	// 他ユーザーの応募は403ではなく404
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
