package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/jobtrack/internal/interview"
	"github.com/hitoshi/jobtrack/internal/model"
)

// --- モック定義 ---

type mockInterviewService struct {
	createFn func(ctx context.Context, userID, applicationID string, input interview.Input) (*model.Interview, error)
	listFn   func(ctx context.Context, userID, applicationID string) ([]*model.Interview, error)
	updateFn func(ctx context.Context, userID, interviewID string, input interview.Input) (*model.Interview, error)
	deleteFn func(ctx context.Context, userID, interviewID string) error
}

func (m *mockInterviewService) Create(ctx context.Context, userID, applicationID string, input interview.Input) (*model.Interview, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, applicationID, input)
	}
	return nil, nil
}

func (m *mockInterviewService) ListByApplication(ctx context.Context, userID, applicationID string) ([]*model.Interview, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, applicationID)
	}
	return nil, nil
}

func (m *mockInterviewService) Update(ctx context.Context, userID, interviewID string, input interview.Input) (*model.Interview, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, interviewID, input)
	}
	return nil, nil
}

func (m *mockInterviewService) Delete(ctx context.Context, userID, interviewID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, interviewID)
	}
	return nil
}

var _ InterviewServiceInterface = (*mockInterviewService)(nil)

func testInterview() *model.Interview {
	return &model.Interview{
		ID:              "interview-1",
		ApplicationID:   "app-1",
		InterviewType:   "video",
		ScheduledAt:     time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		CreatedAt:       time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	}
}

// --- テスト ---

func TestInterviewHandler_Create_Success(t *testing.T) {
	svc := &mockInterviewService{
		createFn: func(_ context.Context, _, applicationID string, input interview.Input) (*model.Interview, error) {
			if applicationID != "app-1" {
				t.Errorf("applicationID = %q, want app-1", applicationID)
			}
			if input.InterviewType != "video" {
				t.Errorf("InterviewType = %q, want video", input.InterviewType)
			}
			return testInterview(), nil
		},
	}
	h := NewInterviewHandler(svc)

	body := `{"interview_type":"video","scheduled_at":"2026-09-10T14:00:00Z","duration_minutes":60}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/applications/app-1/interviews", strings.NewReader(body)), "user-1")
	req = withChiURLParam(req, "id", "app-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["interview_type"] != "video" {
		t.Errorf("interview_type = %v, want video", resp["interview_type"])
	}
}

func TestInterviewHandler_Create_MissingType(t *testing.T) {
	svc := &mockInterviewService{
		createFn: func(_ context.Context, _, _ string, _ interview.Input) (*model.Interview, error) {
			return nil, model.NewMissingFieldError("interviewType")
		},
	}
	h := NewInterviewHandler(svc)

	body := `{"scheduled_at":"2026-09-10T14:00:00Z"}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/applications/app-1/interviews", strings.NewReader(body)), "user-1")
	req = withChiURLParam(req, "id", "app-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if got := parseAPIErrorResponse(t, w)["code"]; got != model.ErrCodeMissingField {
		t.Errorf("code = %q, want %q", got, model.ErrCodeMissingField)
	}
}

func TestInterviewHandler_List_Success(t *testing.T) {
	svc := &mockInterviewService{
		listFn: func(_ context.Context, _, _ string) ([]*model.Interview, error) {
			return []*model.Interview{testInterview()}, nil
		},
	}
	h := NewInterviewHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/applications/app-1/interviews", nil), "user-1")
	req = withChiURLParam(req, "id", "app-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var items []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
}

func TestInterviewHandler_Update_Completed(t *testing.T) {
	svc := &mockInterviewService{
		updateFn: func(_ context.Context, _, interviewID string, input interview.Input) (*model.Interview, error) {
			iv := testInterview()
			iv.Completed = input.Completed
			return iv, nil
		},
	}
	h := NewInterviewHandler(svc)

	body := `{"interview_type":"video","scheduled_at":"2026-09-10T14:00:00Z","completed":true}`
	req := withUserID(httptest.NewRequest(http.MethodPut, "/api/interviews/interview-1", strings.NewReader(body)), "user-1")
	req = withChiURLParam(req, "interviewId", "interview-1")
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["completed"] != true {
		t.Errorf("completed = %v, want true", resp["completed"])
	}
}

func TestInterviewHandler_Delete_NotFound(t *testing.T) {
	svc := &mockInterviewService{
		deleteFn: func(_ context.Context, _, _ string) error {
			return model.NewInterviewNotFoundError()
		},
	}
	h := NewInterviewHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodDelete, "/api/interviews/interview-9", nil), "user-1")
	req = withChiURLParam(req, "interviewId", "interview-9")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
