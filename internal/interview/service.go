// Package interview は面接予定のビジネスロジックを提供する。
package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/repository"
	"github.com/hitoshi/jobtrack/internal/security"
)

// Service は面接のCRUDを提供する。
// 面接は応募を経由してのみ到達でき、所有権は常に応募の所有者で検証する。
type Service struct {
	intervRepo repository.InterviewRepository
	appRepo    repository.ApplicationRepository
	sanitizer  security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	intervRepo repository.InterviewRepository,
	appRepo repository.ApplicationRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		intervRepo: intervRepo,
		appRepo:    appRepo,
		sanitizer:  sanitizer,
	}
}

// Input は面接の作成・更新の入力。
type Input struct {
	InterviewType    string
	ScheduledAt      time.Time
	DurationMinutes  int
	Location         string
	InterviewerNames string
	Notes            string
	Completed        bool
}

// Create は応募に面接予定を追加する。
// 応募が呼び出し元ユーザーの所有でない場合は「見つかりません」を返す。
func (s *Service) Create(ctx context.Context, userID, applicationID string, input Input) (*model.Interview, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	app, err := s.appRepo.FindByIDAndUser(ctx, applicationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError()
	}

	interview := &model.Interview{
		ID:               uuid.New().String(),
		ApplicationID:    applicationID,
		InterviewType:    input.InterviewType,
		ScheduledAt:      input.ScheduledAt,
		DurationMinutes:  input.DurationMinutes,
		Location:         input.Location,
		InterviewerNames: input.InterviewerNames,
		Notes:            s.sanitizer.Sanitize(input.Notes),
		Completed:        input.Completed,
		CreatedAt:        time.Now(),
	}

	if err := s.intervRepo.Create(ctx, interview); err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}

	return interview, nil
}

// ListByApplication は応募の面接一覧を返す。
func (s *Service) ListByApplication(ctx context.Context, userID, applicationID string) ([]*model.Interview, error) {
	app, err := s.appRepo.FindByIDAndUser(ctx, applicationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError()
	}

	interviews, err := s.intervRepo.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}

	return interviews, nil
}

// Update は面接を更新する。
// 他ユーザー所有の応募に属する面接は存在しないものとして扱う。
func (s *Service) Update(ctx context.Context, userID, interviewID string, input Input) (*model.Interview, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.intervRepo.FindByIDAndUser(ctx, interviewID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find interview: %w", err)
	}
	if existing == nil {
		return nil, model.NewInterviewNotFoundError()
	}

	interview := &model.Interview{
		ID:               existing.ID,
		ApplicationID:    existing.ApplicationID,
		InterviewType:    input.InterviewType,
		ScheduledAt:      input.ScheduledAt,
		DurationMinutes:  input.DurationMinutes,
		Location:         input.Location,
		InterviewerNames: input.InterviewerNames,
		Notes:            s.sanitizer.Sanitize(input.Notes),
		Completed:        input.Completed,
		CreatedAt:        existing.CreatedAt,
	}

	if err := s.intervRepo.Update(ctx, interview); err != nil {
		return nil, fmt.Errorf("failed to update interview: %w", err)
	}

	return interview, nil
}

// Delete は面接を削除する。
func (s *Service) Delete(ctx context.Context, userID, interviewID string) error {
	existing, err := s.intervRepo.FindByIDAndUser(ctx, interviewID, userID)
	if err != nil {
		return fmt.Errorf("failed to find interview: %w", err)
	}
	if existing == nil {
		return model.NewInterviewNotFoundError()
	}

	if err := s.intervRepo.DeleteByID(ctx, interviewID); err != nil {
		return fmt.Errorf("failed to delete interview: %w", err)
	}

	return nil
}

// validateInput は面接入力の必須項目を検証する。
func validateInput(input Input) error {
	switch {
	case input.InterviewType == "":
		return model.NewMissingFieldError("interviewType")
	case input.ScheduledAt.IsZero():
		return model.NewMissingFieldError("scheduledAt")
	}
	return nil
}
