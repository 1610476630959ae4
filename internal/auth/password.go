// Package auth はパスワード認証、署名付きトークンの発行・検証、
// セッションCookieの管理を提供する。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultBcryptCost は本番用のbcryptコスト。
// テストでは低コスト（bcrypt.MinCost）を注入して高速化できる。
const defaultBcryptCost = 10

// PasswordHasher はパスワードの一方向ハッシュ化と検証を提供する。
// ソルトはbcryptが呼び出しごとに生成してダイジェストに埋め込むため、
// 同一パスワードでも毎回異なるダイジェストになる。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はデフォルトコストのPasswordHasherを生成する。
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: defaultBcryptCost}
}

// NewPasswordHasherWithCost は指定コストのPasswordHasherを生成する。
// 範囲外のコストはデフォルトに丸める。
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードをソルト付きダイジェストに変換する。
// 平文はログにもエラーメッセージにも含めない。
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文パスワードとダイジェストを照合する。
// 不一致・ダイジェスト不正のいずれもfalseを返し、呼び出し側に例外を伝播させない。
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
