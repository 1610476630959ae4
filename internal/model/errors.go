// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// 認証エラーは原因（トークン欠落・改ざん・期限切れ）を区別せず同一形で返し、
// 所有権エラーはリソースの存在を確認させないため「見つかりません」として返す。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, application, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeInvalidEmail        = "INVALID_EMAIL"
	ErrCodeWeakPassword        = "WEAK_PASSWORD"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeInvalidStatus       = "INVALID_STATUS"
	ErrCodeInvalidPriority     = "INVALID_PRIORITY"
	ErrCodeInvalidSort         = "INVALID_SORT"
	ErrCodeApplicationNotFound = "APPLICATION_NOT_FOUND"
	ErrCodeContactNotFound     = "CONTACT_NOT_FOUND"
	ErrCodeInterviewNotFound   = "INTERVIEW_NOT_FOUND"
)

// NewUnauthorizedError は認証エラーを生成する。
// トークンの欠落・無効・期限切れ・ユーザー不在のいずれでも同一の形で返す。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報エラーを生成する。
// メールアドレス不明とパスワード誤りを区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewInvalidEmailError はメールアドレス形式エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "メールアドレスの形式が正しくありません。",
		Category: "validation",
		Action:   "正しいメールアドレスを入力してください。",
	}
}

// NewWeakPasswordError はパスワード強度エラーを生成する。
func NewWeakPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  "パスワードは8文字以上で入力してください。",
		Category: "validation",
		Action:   "8文字以上のパスワードを設定してください。",
	}
}

// NewMissingFieldError は必須フィールド欠落エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("必須項目が入力されていません: %s", field),
		Category: "validation",
		Action:   "すべての必須項目を入力してください。",
	}
}

// NewInvalidStatusError は無効なステータスエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: "validation",
		Action:   "applied、phone_screen、interview、offer、rejected、withdrawn のいずれかを指定してください。",
	}
}

// NewInvalidPriorityError は無効な優先度エラーを生成する。
func NewInvalidPriorityError(priority string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPriority,
		Message:  fmt.Sprintf("無効な優先度です: %s", priority),
		Category: "validation",
		Action:   "low、medium、high のいずれかを指定してください。",
	}
}

// NewInvalidSortError は無効なソート指定エラーを生成する。
func NewInvalidSortError(sortBy string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSort,
		Message:  fmt.Sprintf("無効なソート項目です: %s", sortBy),
		Category: "validation",
		Action:   "applied_date、company_name、position_title、status、priority のいずれかを指定してください。",
	}
}

// NewApplicationNotFoundError は応募未検出エラーを生成する。
// 他ユーザー所有の応募へのアクセスもこのエラーになる。
func NewApplicationNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeApplicationNotFound,
		Message:  "指定された応募が見つかりません。",
		Category: "application",
		Action:   "応募IDを確認してください。",
	}
}

// NewContactNotFoundError は連絡先未検出エラーを生成する。
func NewContactNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeContactNotFound,
		Message:  "指定された連絡先が見つかりません。",
		Category: "application",
		Action:   "連絡先IDを確認してください。",
	}
}

// NewInterviewNotFoundError は面接未検出エラーを生成する。
func NewInterviewNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeInterviewNotFound,
		Message:  "指定された面接が見つかりません。",
		Category: "application",
		Action:   "面接IDを確認してください。",
	}
}
