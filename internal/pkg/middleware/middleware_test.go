package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockmaster/internal/domain"
	"stockmaster/internal/pkg/cache"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/pkg/middleware"
	"stockmaster/internal/pkg/token"
)

type fakeTokenService struct {
	claims *token.CustomClaims
	err    error
}

func (f fakeTokenService) ValidateToken(string) (*token.CustomClaims, error) {
	return f.claims, f.err
}

func okHandler(t *testing.T, wantUser string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantUser != "" {
			claims, ok := middleware.GetUserClaimsFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, wantUser, claims.UserID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	valid := fakeTokenService{claims: &token.CustomClaims{UserID: "u-1", Role: "user"}}

	t.Run("sem header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		middleware.NewAuthMiddleware(valid)(okHandler(t, "")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token inválido", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		rec := httptest.NewRecorder()
		middleware.NewAuthMiddleware(fakeTokenService{err: errors.New("expirado")})(okHandler(t, "")).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token válido", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		rec := httptest.NewRecorder()
		middleware.NewAuthMiddleware(valid)(okHandler(t, "u-1")).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPermissionMiddleware(t *testing.T) {
	h := middleware.PermissionMiddleware(domain.RoleAdmin)(okHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(middleware.WithUserClaims(req.Context(), middleware.UserClaims{UserID: "u", Role: domain.RoleUser})))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(middleware.WithUserClaims(req.Context(), middleware.UserClaims{UserID: "u", Role: domain.RoleAdmin})))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := middleware.RateLimiter(cache.NewFromRedis(rdb), 2, time.Minute, logger.NewNop())(okHandler(t, ""))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Outro IP tem a própria janela
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A janela expira
	mr.FastForward(2 * time.Minute)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
