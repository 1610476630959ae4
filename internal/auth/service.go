package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/repository"
)

// minPasswordLength は登録時に要求するパスワードの最小文字数。
const minPasswordLength = 8

// emailPattern はメールアドレスの形式チェック用の正規表現。
// 厳密なRFC準拠ではなく、明らかな入力ミスを弾くための形式検査。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service は登録・ログイン・カレントユーザー解決のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   *PasswordHasher
	tokens   *TokenService
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher *PasswordHasher, tokens *TokenService) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register は新規ユーザーを登録し、セッショントークンを発行する。
// メールアドレスは小文字正規化して保存する。
// 重複メールアドレスはEMAIL_TAKENエラーを返す。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, "", err
	}

	email := strings.ToLower(input.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", model.NewEmailTakenError()
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 事前チェック後に同時登録が滑り込んだ場合は一意制約で検出する
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", model.NewEmailTakenError()
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
	)

	return user, token, nil
}

// Login はメールアドレスとパスワードを照合し、セッショントークンを発行する。
// メールアドレス不明とパスワード誤りは同一のエラーで返す（オラクル漏洩の防止）。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" {
		return nil, "", model.NewMissingFieldError("email")
	}
	if password == "" {
		return nil, "", model.NewMissingFieldError("password")
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, "", model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return user, token, nil
}

// CurrentUser はトークンから現在のユーザーを解決する。
// トークンが無効な場合、およびトークンが指すユーザーが既に存在しない場合はnilを返す。
// 副作用はなく、同一リクエスト内で複数回呼んでも安全。
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		// 失敗理由は内部ログでのみ区別し、呼び出し側には一様にnilを返す
		slog.Warn("token verification failed", slog.String("error", err.Error()))
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// validateRegisterInput は登録入力の形式を検証する。
func validateRegisterInput(input RegisterInput) error {
	switch {
	case input.Email == "":
		return model.NewMissingFieldError("email")
	case input.Password == "":
		return model.NewMissingFieldError("password")
	case input.FirstName == "":
		return model.NewMissingFieldError("firstName")
	case input.LastName == "":
		return model.NewMissingFieldError("lastName")
	}

	if !emailPattern.MatchString(input.Email) {
		return model.NewInvalidEmailError()
	}

	if len(input.Password) < minPasswordLength {
		return model.NewWeakPasswordError()
	}

	return nil
}
