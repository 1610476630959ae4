package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/jobtrack/internal/auth"
	"github.com/hitoshi/jobtrack/internal/model"
)

// mockVerifier はTokenVerifierのモック。
type mockVerifier struct {
	verifyFn func(token string) (string, error)
}

func (m *mockVerifier) Verify(token string) (string, error) {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return "", auth.ErrInvalidToken
}

// mockUserFinder はUserFinderのモック。デフォルトではIDに対応するユーザーが存在する。
type mockUserFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.User{ID: id, Email: "user@example.com"}, nil
}

func newGate(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return newGateWithFinder(verifier, &mockUserFinder{})
}

func newGateWithFinder(verifier TokenVerifier, users UserFinder) func(next http.Handler) http.Handler {
	cookie := auth.NewSessionCookie(auth.CookieConfig{MaxAge: time.Hour})
	return NewAuthMiddleware(cookie, verifier, users)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(token string) (string, error) {
			if token == "valid-token" {
				return "user-1", nil
			}
			return "", auth.ErrInvalidToken
		},
	}

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("UserIDFromContext failed: %v", err)
		}
		gotUserID = userID
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
	r.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: "valid-token"})
	rec := httptest.NewRecorder()

	newGate(verifier)(next).ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if gotUserID != "user-1" {
		t.Errorf("userID = %q, want %q", gotUserID, "user-1")
	}
}

func TestAuthMiddleware_MissingCookieOnAPIRoute(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})

	r := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
	rec := httptest.NewRecorder()

	newGate(&mockVerifier{})(next).ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if body["code"] != "UNAUTHORIZED" {
		t.Errorf("code = %q, want UNAUTHORIZED", body["code"])
	}
}

func TestAuthMiddleware_MissingCookieOnPageRoute(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()

	newGate(&mockVerifier{})(next).ServeHTTP(rec, r)

	if rec.Code != http.StatusFound {
		t.Errorf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	// 改ざん・期限切れ・形式不正はverifierが一様にエラーを返す
	verifier := &mockVerifier{
		verifyFn: func(_ string) (string, error) {
			return "", auth.ErrInvalidToken
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})

	t.Run("api route returns 401", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
		r.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: "bad-token"})
		rec := httptest.NewRecorder()

		newGate(verifier)(next).ServeHTTP(rec, r)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("page route redirects", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/applications/abc", nil)
		r.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: "bad-token"})
		rec := httptest.NewRecorder()

		newGate(verifier)(next).ServeHTTP(rec, r)

		if rec.Code != http.StatusFound {
			t.Errorf("status = %d, want 302", rec.Code)
		}
	})
}

func TestAuthMiddleware_DeletedAccount(t *testing.T) {
	// トークンは有効だがユーザー行が消えている。未認証として扱う。
	verifier := &mockVerifier{
		verifyFn: func(_ string) (string, error) {
			return "user-gone", nil
		},
	}
	users := &mockUserFinder{
		findByIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, nil
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})

	t.Run("api route returns 401", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
		r.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: "valid-token"})
		rec := httptest.NewRecorder()

		newGateWithFinder(verifier, users)(next).ServeHTTP(rec, r)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("response should be JSON: %v", err)
		}
		if body["code"] != "UNAUTHORIZED" {
			t.Errorf("code = %q, want UNAUTHORIZED", body["code"])
		}
	})

	t.Run("page route redirects", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		r.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: "valid-token"})
		rec := httptest.NewRecorder()

		newGateWithFinder(verifier, users)(next).ServeHTTP(rec, r)

		if rec.Code != http.StatusFound {
			t.Errorf("status = %d, want 302", rec.Code)
		}
	})
}

func TestAuthMiddleware_UserLookupError(t *testing.T) {
	// ユーザー参照が失敗した場合は閉じる側に倒して401を返す
	verifier := &mockVerifier{
		verifyFn: func(_ string) (string, error) {
			return "user-1", nil
		},
	}
	users := &mockUserFinder{
		findByIDFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})

	r := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
	r.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: "valid-token"})
	rec := httptest.NewRecorder()

	newGateWithFinder(verifier, users)(next).ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUserIDFromContext_NotSet(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, err := UserIDFromContext(r.Context()); err == nil {
		t.Error("UserIDFromContext should fail when no user ID is set")
	}
}

func TestContextWithUserID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := ContextWithUserID(r.Context(), "user-42")

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext failed: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("userID = %q, want %q", userID, "user-42")
	}
}
