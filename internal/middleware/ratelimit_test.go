package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0),
		GeneralBurst:    3,
		MutationRate:    rate.Limit(1.0),
		MutationBurst:   2,
		CleanupInterval: time.Minute,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithUser(method, path, userID string) *http.Request {
	r := httptest.NewRequest(method, path, nil)
	return r.WithContext(ContextWithUserID(r.Context(), userID))
}

func TestRateLimiter_GeneralAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	h := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWithUser(http.MethodGet, "/api/applications", "user-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}

func TestRateLimiter_GeneralRejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	h := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWithUser(http.MethodGet, "/api/applications", "user-1"))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithUser(http.MethodGet, "/api/applications", "user-1"))

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response should set Retry-After")
	}
}

func TestRateLimiter_IsolatesUsers(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	h := rl.GeneralMiddleware()(okHandler())

	// user-1のバーストを使い切る
	for i := 0; i < 4; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWithUser(http.MethodGet, "/api/applications", "user-1"))
	}

	// user-2は影響を受けない
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithUser(http.MethodGet, "/api/applications", "user-2"))
	if rec.Code != http.StatusOK {
		t.Errorf("user-2 status = %d, want 200", rec.Code)
	}

	if count := rl.GeneralLimiterCount(); count != 2 {
		t.Errorf("limiter count = %d, want 2", count)
	}
}

func TestRateLimiter_MutationSkipsReads(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	h := rl.MutationMiddleware()(okHandler())

	// GETはバーストを消費しない
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWithUser(http.MethodGet, "/api/applications", "user-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	if count := rl.MutationLimiterCount(); count != 0 {
		t.Errorf("GET requests should not create mutation limiters, count = %d", count)
	}
}

func TestRateLimiter_MutationRejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	h := rl.MutationMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestWithUser(http.MethodPost, "/api/applications", "user-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithUser(http.MethodPost, "/api/applications", "user-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestRateLimiter_RequiresAuthenticatedContext(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	h := rl.GeneralMiddleware()(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/applications", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
