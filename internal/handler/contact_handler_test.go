package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/jobtrack/internal/contact"
	"github.com/hitoshi/jobtrack/internal/model"
)

// --- モック定義 ---

type mockContactService struct {
	createFn func(ctx context.Context, userID, applicationID string, input contact.Input) (*model.Contact, error)
	listFn   func(ctx context.Context, userID, applicationID string) ([]*model.Contact, error)
	updateFn func(ctx context.Context, userID, contactID string, input contact.Input) (*model.Contact, error)
	deleteFn func(ctx context.Context, userID, contactID string) error
}

func (m *mockContactService) Create(ctx context.Context, userID, applicationID string, input contact.Input) (*model.Contact, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, applicationID, input)
	}
	return nil, nil
}

func (m *mockContactService) ListByApplication(ctx context.Context, userID, applicationID string) ([]*model.Contact, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, applicationID)
	}
	return nil, nil
}

func (m *mockContactService) Update(ctx context.Context, userID, contactID string, input contact.Input) (*model.Contact, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, contactID, input)
	}
	return nil, nil
}

func (m *mockContactService) Delete(ctx context.Context, userID, contactID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, contactID)
	}
	return nil
}

var _ ContactServiceInterface = (*mockContactService)(nil)

func testContact() *model.Contact {
	return &model.Contact{
		ID:            "contact-1",
		ApplicationID: "app-1",
		Name:          "Hanako Suzuki",
		Role:          "Recruiter",
		Email:         "hanako@example.com",
		CreatedAt:     time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
	}
}

// --- テスト ---

func TestContactHandler_Create_Success(t *testing.T) {
	svc := &mockContactService{
		createFn: func(_ context.Context, userID, applicationID string, input contact.Input) (*model.Contact, error) {
			if applicationID != "app-1" {
				t.Errorf("applicationID = %q, want app-1", applicationID)
			}
			if input.Name != "Hanako Suzuki" {
				t.Errorf("Name = %q, want Hanako Suzuki", input.Name)
			}
			return testContact(), nil
		},
	}
	h := NewContactHandler(svc)

	body := `{"name":"Hanako Suzuki","role":"Recruiter","email":"hanako@example.com"}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/applications/app-1/contacts", strings.NewReader(body)), "user-1")
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
	if resp["application_id"] != "app-1" {
		t.Errorf("application_id = %v, want app-1", resp["application_id"])
	}
}

func TestContactHandler_Create_ApplicationNotOwned(t *testing.T) {
	svc := &mockContactService{
		createFn: func(_ context.Context, _, _ string, _ contact.Input) (*model.Contact, error) {
			return nil, model.NewApplicationNotFoundError()
		},
	}
	h := NewContactHandler(svc)

	body := `{"name":"Hanako Suzuki"}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/api/applications/app-1/contacts", strings.NewReader(body)), "user-2")
	req = withChiURLParam(req, "id", "app-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestContactHandler_List_ReturnsEmptyArray(t *testing.T) {
	h := NewContactHandler(&mockContactService{})

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/applications/app-1/contacts", nil), "user-1")
	req = withChiURLParam(req, "id", "app-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	// 連絡先ゼロ件はnullではなく空配列
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestContactHandler_Update_NotFound(t *testing.T) {
	svc := &mockContactService{
		updateFn: func(_ context.Context, _, _ string, _ contact.Input) (*model.Contact, error) {
			return nil, model.NewContactNotFoundError()
		},
	}
	h := NewContactHandler(svc)

	body := `{"name":"Hanako Suzuki"}`
	req := withUserID(httptest.NewRequest(http.MethodPut, "/api/contacts/contact-9", strings.NewReader(body)), "user-1")
	req = withChiURLParam(req, "contactId", "contact-9")
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if got := parseAPIErrorResponse(t, w)["code"]; got != model.ErrCodeContactNotFound {
		t.Errorf("code = %q, want %q", got, model.ErrCodeContactNotFound)
	}
}

func TestContactHandler_Delete_Success(t *testing.T) {
	var gotContactID string
	svc := &mockContactService{
		deleteFn: func(_ context.Context, _, contactID string) error {
			gotContactID = contactID
			return nil
		},
	}
	h := NewContactHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodDelete, "/api/contacts/contact-1", nil), "user-1")
	req = withChiURLParam(req, "contactId", "contact-1")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if gotContactID != "contact-1" {
		t.Errorf("contactID = %q, want contact-1", gotContactID)
	}
}
