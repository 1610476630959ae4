// Package application は求人応募のビジネスロジックを提供する。
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/repository"
	"github.com/hitoshi/jobtrack/internal/security"
)

// StatusMetricsRecorder はステータス遷移のメトリクス記録インターフェース。
type StatusMetricsRecorder interface {
	RecordStatusTransition(from, to string)
}

// Service は応募のCRUDとステータス履歴管理を提供する。
// 全操作が呼び出し元ユーザーIDで所有権を強制する。
// 他ユーザー所有の応募へのアクセスは存在しない応募と同様に「見つかりません」として扱う。
type Service struct {
	appRepo      repository.ApplicationRepository
	historyRepo  repository.StatusHistoryRepository
	contactRepo  repository.ContactRepository
	intervRepo   repository.InterviewRepository
	documentRepo repository.DocumentRepository
	sanitizer    security.ContentSanitizerService
	metrics      StatusMetricsRecorder
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(
	appRepo repository.ApplicationRepository,
	historyRepo repository.StatusHistoryRepository,
	contactRepo repository.ContactRepository,
	intervRepo repository.InterviewRepository,
	documentRepo repository.DocumentRepository,
	sanitizer security.ContentSanitizerService,
	metrics StatusMetricsRecorder,
) *Service {
	return &Service{
		appRepo:      appRepo,
		historyRepo:  historyRepo,
		contactRepo:  contactRepo,
		intervRepo:   intervRepo,
		documentRepo: documentRepo,
		sanitizer:    sanitizer,
		metrics:      metrics,
	}
}

// Input は応募の作成・更新の入力。
type Input struct {
	CompanyName    string
	PositionTitle  string
	JobDescription string
	Location       string
	SalaryRange    string
	JobURL         string
	Status         model.ApplicationStatus
	Priority       model.Priority
	AppliedDate    time.Time
	FollowUpDate   *time.Time
	Notes          string
}

// Detail は応募詳細と子リソースをまとめた構造体。
type Detail struct {
	Application   *model.Application
	StatusHistory []*model.StatusHistory
	Contacts      []*model.Contact
	Documents     []*model.Document
	Interviews    []*model.Interview
}

// Create は応募を作成し、初回ステータス履歴を同時に追記する。
// Status・Priorityが空の場合はそれぞれapplied・mediumを用いる。
func (s *Service) Create(ctx context.Context, userID string, input Input) (*model.Application, error) {
	if input.Status == "" {
		input.Status = model.StatusApplied
	}
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	app := &model.Application{
		ID:             uuid.New().String(),
		UserID:         userID,
		CompanyName:    input.CompanyName,
		PositionTitle:  input.PositionTitle,
		JobDescription: s.sanitizer.Sanitize(input.JobDescription),
		Location:       input.Location,
		SalaryRange:    input.SalaryRange,
		JobURL:         input.JobURL,
		Status:         input.Status,
		Priority:       input.Priority,
		AppliedDate:    input.AppliedDate,
		FollowUpDate:   input.FollowUpDate,
		Notes:          s.sanitizer.Sanitize(input.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	history := &model.StatusHistory{
		ID:            uuid.New().String(),
		ApplicationID: app.ID,
		Status:        app.Status,
		Notes:         "応募を登録しました。",
		ChangedAt:     now,
	}

	if err := s.appRepo.Create(ctx, app, history); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	slog.Info("application created",
		slog.String("application_id", app.ID),
		slog.String("user_id", userID),
	)

	return app, nil
}

// Get は応募詳細を子リソース（履歴・連絡先・書類・面接）付きで取得する。
func (s *Service) Get(ctx context.Context, userID, id string) (*Detail, error) {
	app, err := s.appRepo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError()
	}

	history, err := s.historyRepo.ListByApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}

	contacts, err := s.contactRepo.ListByApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	documents, err := s.documentRepo.ListByApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	interviews, err := s.intervRepo.ListByApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}

	return &Detail{
		Application:   app,
		StatusHistory: history,
		Contacts:      contacts,
		Documents:     documents,
		Interviews:    interviews,
	}, nil
}

// ListHistory は応募のステータス履歴を時系列で返す。
// 応募が呼び出し元ユーザーの所有でない場合は「見つかりません」を返す。
func (s *Service) ListHistory(ctx context.Context, userID, id string) ([]*model.StatusHistory, error) {
	app, err := s.appRepo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError()
	}

	history, err := s.historyRepo.ListByApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}

	return history, nil
}

// List はユーザーの応募一覧を子リソース件数付きで返す。
func (s *Service) List(ctx context.Context, userID string, opts repository.ApplicationListOptions) ([]repository.ApplicationWithCounts, error) {
	if opts.Status != "" && !opts.Status.IsValid() {
		return nil, model.NewInvalidStatusError(string(opts.Status))
	}
	if opts.SortBy != "" && !opts.SortBy.IsValid() {
		return nil, model.NewInvalidSortError(string(opts.SortBy))
	}
	if opts.SortBy == "" {
		opts.SortBy = repository.SortByAppliedDate
		opts.Descending = true
	}

	apps, err := s.appRepo.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return apps, nil
}

// Update は応募を更新する。
// ステータスが変化した場合のみ遷移を記録する履歴行を追記する。
// ステータスが変わらない更新では履歴は追記されない。
func (s *Service) Update(ctx context.Context, userID, id string, input Input) (*model.Application, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.appRepo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if existing == nil {
		return nil, model.NewApplicationNotFoundError()
	}

	now := time.Now()
	app := &model.Application{
		ID:             existing.ID,
		UserID:         existing.UserID,
		CompanyName:    input.CompanyName,
		PositionTitle:  input.PositionTitle,
		JobDescription: s.sanitizer.Sanitize(input.JobDescription),
		Location:       input.Location,
		SalaryRange:    input.SalaryRange,
		JobURL:         input.JobURL,
		Status:         input.Status,
		Priority:       input.Priority,
		AppliedDate:    input.AppliedDate,
		FollowUpDate:   input.FollowUpDate,
		Notes:          s.sanitizer.Sanitize(input.Notes),
		CreatedAt:      existing.CreatedAt,
		UpdatedAt:      now,
	}

	var history *model.StatusHistory
	if input.Status != existing.Status {
		history = &model.StatusHistory{
			ID:            uuid.New().String(),
			ApplicationID: app.ID,
			Status:        input.Status,
			Notes:         fmt.Sprintf("ステータスを %s から %s に変更しました。", existing.Status, input.Status),
			ChangedAt:     now,
		}
	}

	if err := s.appRepo.Update(ctx, app, history); err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	if history != nil {
		if s.metrics != nil {
			s.metrics.RecordStatusTransition(string(existing.Status), string(input.Status))
		}
		slog.Info("application status changed",
			slog.String("application_id", app.ID),
			slog.String("from", string(existing.Status)),
			slog.String("to", string(input.Status)),
		)
	}

	return app, nil
}

// Delete は応募を削除する。子リソースはCASCADE削除される。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.appRepo.DeleteByIDAndUser(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if !deleted {
		return model.NewApplicationNotFoundError()
	}

	slog.Info("application deleted",
		slog.String("application_id", id),
		slog.String("user_id", userID),
	)

	return nil
}

// validateInput は応募入力の必須項目と列挙値を検証する。
func validateInput(input Input) error {
	switch {
	case input.CompanyName == "":
		return model.NewMissingFieldError("companyName")
	case input.PositionTitle == "":
		return model.NewMissingFieldError("positionTitle")
	case input.AppliedDate.IsZero():
		return model.NewMissingFieldError("appliedDate")
	}

	if !input.Status.IsValid() {
		return model.NewInvalidStatusError(string(input.Status))
	}
	if !input.Priority.IsValid() {
		return model.NewInvalidPriorityError(string(input.Priority))
	}

	return nil
}
