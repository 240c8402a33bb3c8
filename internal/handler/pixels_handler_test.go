package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GeoCanvas-App/internal/domain/model"
)

// stubPixelsUseCase テスト用のユースケーススタブ
type stubPixelsUseCase struct {
	placeResp  *model.CreatePixelResponse
	placeErr   error
	pixel      *model.Pixel
	getErr     error
	regionResp *model.GetPixelsResponse
	regionErr  error
	gotRegion  model.PixelRegion
}

func (s *stubPixelsUseCase) PlacePixel(ctx context.Context, userID string, req *model.CreatePixelRequest) (*model.CreatePixelResponse, error) {
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return s.placeResp, nil
}

func (s *stubPixelsUseCase) GetPixel(ctx context.Context, x, y int) (*model.Pixel, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.pixel, nil
}

func (s *stubPixelsUseCase) GetPixelsByRegion(ctx context.Context, region model.PixelRegion) (*model.GetPixelsResponse, error) {
	s.gotRegion = region
	if s.regionErr != nil {
		return nil, s.regionErr
	}
	return s.regionResp, nil
}

func setupPixelsRouter(uc *stubPixelsUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewPixelsHandler(uc)
	router.POST("/pixels", h.PostPixel)
	router.GET("/pixels", h.GetPixels)
	router.GET("/pixels/coordinate", h.GetPixelByCoordinate)
	return router
}

func TestPixelsHandler_PostPixel(t *testing.T) {
	body := func(x, y int, color string) *bytes.Buffer {
		b, _ := json.Marshal(model.CreatePixelRequest{X: x, Y: y, Color: color})
		return bytes.NewBuffer(b)
	}

	t.Run("配置成功は201", func(t *testing.T) {
		uc := &stubPixelsUseCase{placeResp: &model.CreatePixelResponse{
			Success: true,
			Pixel:   model.PixelResponse{X: 100, Y: 100, Color: "#FF0000"},
		}}
		router := setupPixelsRouter(uc)

		req := httptest.NewRequest(http.MethodPost, "/pixels", body(100, 100, "#FF0000"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(identityHeader, "user-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp model.CreatePixelResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "#FF0000", resp.Pixel.Color)
	})

	t.Run("入力不正は400", func(t *testing.T) {
		uc := &stubPixelsUseCase{placeErr: model.NewInvalidInputError("color", "bad")}
		router := setupPixelsRouter(uc)

		req := httptest.NewRequest(http.MethodPost, "/pixels", body(0, 0, "red"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(identityHeader, "user-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_request")
	})

	t.Run("未認証は401", func(t *testing.T) {
		uc := &stubPixelsUseCase{placeErr: model.ErrUnauthenticated}
		router := setupPixelsRouter(uc)

		req := httptest.NewRequest(http.MethodPost, "/pixels", body(0, 0, "#FF0000"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "unauthorized")
	})

	t.Run("レート制限は429で残り秒数を返す", func(t *testing.T) {
		uc := &stubPixelsUseCase{placeErr: &model.RateLimitedError{RemainingSeconds: 37}}
		router := setupPixelsRouter(uc)

		req := httptest.NewRequest(http.MethodPost, "/pixels", body(0, 0, "#FF0000"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(identityHeader, "user-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusTooManyRequests, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "rate_limited", resp["error"])
		assert.Equal(t, float64(37), resp["remaining_seconds"])
	})

	t.Run("不正なJSONは400", func(t *testing.T) {
		uc := &stubPixelsUseCase{}
		router := setupPixelsRouter(uc)

		req := httptest.NewRequest(http.MethodPost, "/pixels", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(identityHeader, "user-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("内部エラーは500で詳細を漏らさない", func(t *testing.T) {
		uc := &stubPixelsUseCase{placeErr: fmt.Errorf("pq: relation pixels does not exist")}
		router := setupPixelsRouter(uc)

		req := httptest.NewRequest(http.MethodPost, "/pixels", body(0, 0, "#FF0000"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(identityHeader, "user-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "relation")
	})
}

func TestPixelsHandler_GetPixelByCoordinate(t *testing.T) {
	t.Run("存在するピクセルを返す", func(t *testing.T) {
		uc := &stubPixelsUseCase{pixel: &model.Pixel{X: 100, Y: 100, Color: "#00FF00", IsActive: true}}
		router := setupPixelsRouter(uc)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pixels/coordinate?x=100&y=100", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "#00FF00")
	})

	t.Run("存在しない場合は404", func(t *testing.T) {
		uc := &stubPixelsUseCase{getErr: model.ErrPixelNotFound}
		router := setupPixelsRouter(uc)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pixels/coordinate?x=1&y=1", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ストア到達不能は503", func(t *testing.T) {
		uc := &stubPixelsUseCase{getErr: fmt.Errorf("get: %w", model.ErrStorageUnavailable)}
		router := setupPixelsRouter(uc)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pixels/coordinate?x=1&y=1", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("パラメータ欠落は400", func(t *testing.T) {
		uc := &stubPixelsUseCase{}
		router := setupPixelsRouter(uc)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pixels/coordinate?x=1", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPixelsHandler_GetPixels(t *testing.T) {
	t.Run("bboxを解析して領域クエリを実行", func(t *testing.T) {
		uc := &stubPixelsUseCase{regionResp: &model.GetPixelsResponse{
			Pixels: []model.PixelResponse{{X: 1, Y: 2, Color: "#111111"}},
		}}
		router := setupPixelsRouter(uc)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pixels?bbox=0,0,100,200", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, model.PixelRegion{MinX: 0, MinY: 0, MaxX: 100, MaxY: 200}, uc.gotRegion)
	})

	t.Run("bbox欠落は400", func(t *testing.T) {
		router := setupPixelsRouter(&stubPixelsUseCase{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pixels", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "missing_parameter")
	})

	t.Run("bboxの要素数不正は400", func(t *testing.T) {
		router := setupPixelsRouter(&stubPixelsUseCase{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pixels?bbox=1,2,3", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bboxの数値不正は400", func(t *testing.T) {
		router := setupPixelsRouter(&stubPixelsUseCase{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pixels?bbox=a,0,10,10", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("min>maxは400", func(t *testing.T) {
		uc := &stubPixelsUseCase{regionErr: model.NewInvalidInputError("bbox", "min>max")}
		router := setupPixelsRouter(uc)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pixels?bbox=10,0,0,10", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
