package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken はトークン検証失敗を表す。
// 改ざん・期限切れ・形式不正のいずれもこのエラーに正規化し、
// 呼び出し側が失敗理由を外部に漏らさないようにする。
var ErrInvalidToken = errors.New("invalid token")

// Claims はトークンに含める利用者識別情報。
// 標準クレーム（iat, exp）とユーザーIDのみを持ち、サーバー側には何も保存しない。
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenService はHMAC-SHA256署名付きトークンの発行と検証を提供する。
// シークレットは起動時にconfigから注入され、プロセス内で読み取り専用として扱う。
type TokenService struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewTokenService はTokenServiceを生成する。
// シークレットが空の場合もインスタンスは返すが、発行・検証は常に失敗する
// （フェイルクローズ。偽造トークンを黙って受け入れるよりも安全側に倒す）。
func NewTokenService(secret string, maxAge time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Issue は指定ユーザーIDの署名付きトークンを発行する。
// 発行時刻と有効期限（発行からmaxAge後）をクレームに含める。
func (s *TokenService) Issue(userID string) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("token secret is not configured")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、ユーザーIDを返す。
// 署名アルゴリズムがHMAC系以外のトークンは受け入れない。
// 失敗理由に関わらずErrInvalidTokenを返す（部分的成功はない）。
func (s *TokenService) Verify(tokenString string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return "", ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
