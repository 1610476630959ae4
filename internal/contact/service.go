// Package contact は応募先連絡先のビジネスロジックを提供する。
package contact

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/repository"
	"github.com/hitoshi/jobtrack/internal/security"
)

// Service は連絡先のCRUDを提供する。
// 連絡先は応募を経由してのみ到達でき、所有権は常に応募の所有者で検証する。
type Service struct {
	contactRepo repository.ContactRepository
	appRepo     repository.ApplicationRepository
	sanitizer   security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	contactRepo repository.ContactRepository,
	appRepo repository.ApplicationRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		contactRepo: contactRepo,
		appRepo:     appRepo,
		sanitizer:   sanitizer,
	}
}

// Input は連絡先の作成・更新の入力。
type Input struct {
	Name        string
	Role        string
	Email       string
	Phone       string
	LinkedinURL string
	Notes       string
}

// Create は応募に連絡先を追加する。
// 応募が呼び出し元ユーザーの所有でない場合は「見つかりません」を返す。
func (s *Service) Create(ctx context.Context, userID, applicationID string, input Input) (*model.Contact, error) {
	if input.Name == "" {
		return nil, model.NewMissingFieldError("name")
	}

	app, err := s.appRepo.FindByIDAndUser(ctx, applicationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError()
	}

	contact := &model.Contact{
		ID:            uuid.New().String(),
		ApplicationID: applicationID,
		Name:          input.Name,
		Role:          input.Role,
		Email:         input.Email,
		Phone:         input.Phone,
		LinkedinURL:   input.LinkedinURL,
		Notes:         s.sanitizer.Sanitize(input.Notes),
		CreatedAt:     time.Now(),
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	return contact, nil
}

// ListByApplication は応募の連絡先一覧を返す。
func (s *Service) ListByApplication(ctx context.Context, userID, applicationID string) ([]*model.Contact, error) {
	app, err := s.appRepo.FindByIDAndUser(ctx, applicationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError()
	}

	contacts, err := s.contactRepo.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	return contacts, nil
}

// Update は連絡先を更新する。
// 他ユーザー所有の応募に属する連絡先は存在しないものとして扱う。
func (s *Service) Update(ctx context.Context, userID, contactID string, input Input) (*model.Contact, error) {
	if input.Name == "" {
		return nil, model.NewMissingFieldError("name")
	}

	existing, err := s.contactRepo.FindByIDAndUser(ctx, contactID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	if existing == nil {
		return nil, model.NewContactNotFoundError()
	}

	contact := &model.Contact{
		ID:            existing.ID,
		ApplicationID: existing.ApplicationID,
		Name:          input.Name,
		Role:          input.Role,
		Email:         input.Email,
		Phone:         input.Phone,
		LinkedinURL:   input.LinkedinURL,
		Notes:         s.sanitizer.Sanitize(input.Notes),
		CreatedAt:     existing.CreatedAt,
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	return contact, nil
}

// Delete は連絡先を削除する。
func (s *Service) Delete(ctx context.Context, userID, contactID string) error {
	existing, err := s.contactRepo.FindByIDAndUser(ctx, contactID, userID)
	if err != nil {
		return fmt.Errorf("failed to find contact: %w", err)
	}
	if existing == nil {
		return model.NewContactNotFoundError()
	}

	if err := s.contactRepo.DeleteByID(ctx, contactID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	return nil
}
