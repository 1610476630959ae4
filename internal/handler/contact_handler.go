package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/jobtrack/internal/contact"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
)

// ContactServiceInterface は連絡先ハンドラーが必要とするサービスインターフェース。
type ContactServiceInterface interface {
	// Create は応募に連絡先を追加する。
	Create(ctx context.Context, userID, applicationID string, input contact.Input) (*model.Contact, error)
	// ListByApplication は応募の連絡先一覧を取得する。
	ListByApplication(ctx context.Context, userID, applicationID string) ([]*model.Contact, error)
	// Update は連絡先を更新する。
	Update(ctx context.Context, userID, contactID string, input contact.Input) (*model.Contact, error)
	// Delete は連絡先を削除する。
	Delete(ctx context.Context, userID, contactID string) error
}

// ContactHandler は連絡先管理のHTTPハンドラー。
type ContactHandler struct {
	service ContactServiceInterface
}

// NewContactHandler はContactHandlerを生成する。
func NewContactHandler(service ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service}
}

// contactRequest は連絡先の作成・更新リクエストのボディ。
type contactRequest struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	LinkedinURL string `json:"linkedin_url"`
	Notes       string `json:"notes"`
}

// contactResponse は連絡先情報のAPIレスポンス。
type contactResponse struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	LinkedinURL   string    `json:"linkedin_url"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

// Create は連絡先の追加を処理する。
// POST /api/applications/:id/contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	c, err := h.service.Create(r.Context(), userID, chi.URLParam(r, "id"), toContactInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toContactResponse(c))
}

// List は応募の連絡先一覧を取得する。
// GET /api/applications/:id/contacts
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	contacts, err := h.service.ListByApplication(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, toContactResponse(c))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// Update は連絡先の更新を処理する。
// PUT /api/contacts/:contactId
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	c, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "contactId"), toContactInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toContactResponse(c))
}

// Delete は連絡先の削除を処理する。
// DELETE /api/contacts/:contactId
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "contactId")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toContactInput はリクエストボディからサービス入力に変換する。
func toContactInput(req contactRequest) contact.Input {
	return contact.Input{
		Name:        req.Name,
		Role:        req.Role,
		Email:       req.Email,
		Phone:       req.Phone,
		LinkedinURL: req.LinkedinURL,
		Notes:       req.Notes,
	}
}

// toContactResponse はmodel.ContactからAPIレスポンスに変換する。
func toContactResponse(c *model.Contact) contactResponse {
	return contactResponse{
		ID:            c.ID,
		ApplicationID: c.ApplicationID,
		Name:          c.Name,
		Role:          c.Role,
		Email:         c.Email,
		Phone:         c.Phone,
		LinkedinURL:   c.LinkedinURL,
		Notes:         c.Notes,
		CreatedAt:     c.CreatedAt,
	}
}
