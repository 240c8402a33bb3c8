package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GeoCanvas-App/internal/domain/model"
)

// stubUsersUseCase テスト用のユースケーススタブ
type stubUsersUseCase struct {
	quota    *model.QuotaStatus
	stats    *model.UserStats
	quotaErr error
	statsErr error
}

func (s *stubUsersUseCase) GetQuota(ctx context.Context, userID string) (*model.QuotaStatus, error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}
	if s.quotaErr != nil {
		return nil, s.quotaErr
	}
	return s.quota, nil
}

func (s *stubUsersUseCase) GetStats(ctx context.Context, userID string) (*model.UserStats, error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	return s.stats, nil
}

func setupUsersRouter(uc *stubUsersUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewUsersHandler(uc)
	router.GET("/users/me/quota", h.GetQuota)
	router.GET("/users/me/stats", h.GetStats)
	return router
}

func TestUsersHandler_GetQuota(t *testing.T) {
	t.Run("残りクォータを返す", func(t *testing.T) {
		resetAt := time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC)
		uc := &stubUsersUseCase{quota: &model.QuotaStatus{Remaining: 2, Total: 5, ResetAt: &resetAt}}
		router := setupUsersRouter(uc)

		req := httptest.NewRequest(http.MethodGet, "/users/me/quota", nil)
		req.Header.Set(identityHeader, "user-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var quota model.QuotaStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quota))
		assert.Equal(t, 2, quota.Remaining)
		assert.Equal(t, 5, quota.Total)
		require.NotNil(t, quota.ResetAt)
	})

	t.Run("識別子ヘッダーなしは401", func(t *testing.T) {
		router := setupUsersRouter(&stubUsersUseCase{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me/quota", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUsersHandler_GetStats(t *testing.T) {
	t.Run("累計配置数を返す", func(t *testing.T) {
		joined := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		uc := &stubUsersUseCase{stats: &model.UserStats{TotalPixelsPlaced: 7, JoinedAt: &joined}}
		router := setupUsersRouter(uc)

		req := httptest.NewRequest(http.MethodGet, "/users/me/stats", nil)
		req.Header.Set(identityHeader, "user-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "total_pixels_placed")
	})

	t.Run("識別子ヘッダーなしは401", func(t *testing.T) {
		router := setupUsersRouter(&stubUsersUseCase{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me/stats", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
