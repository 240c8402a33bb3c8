package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"GeoCanvas-App/internal/domain/model"
	"GeoCanvas-App/internal/usecase"
)

// identityHeader 外部の認証基盤が検証済みの呼び出し元IDを載せるヘッダー
const identityHeader = "X-User-Id"

// PixelsHandler ピクセル配置・照会に関するHTTPハンドラー
type PixelsHandler struct {
	pixelsUseCase usecase.PixelsUseCase
}

// NewPixelsHandler PixelsHandlerの新しいインスタンスを作成
func NewPixelsHandler(pixelsUseCase usecase.PixelsUseCase) *PixelsHandler {
	return &PixelsHandler{
		pixelsUseCase: pixelsUseCase,
	}
}

// PostPixel POST /pixels - ピクセルの配置
func (h *PixelsHandler) PostPixel(c *gin.Context) {
	userID := c.GetHeader(identityHeader)

	var req model.CreatePixelRequest

	// リクエストボディの解析（Ginが自動でContent-Type確認）
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	response, err := h.pixelsUseCase.PlacePixel(c.Request.Context(), userID, &req)
	if err != nil {
		respondPlacementError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetPixelByCoordinate GET /pixels/coordinate - 指定座標のピクセルを取得
func (h *PixelsHandler) GetPixelByCoordinate(c *gin.Context) {
	x, ok := queryInt(c, "x")
	if !ok {
		return
	}
	y, ok := queryInt(c, "y")
	if !ok {
		return
	}

	pixel, err := h.pixelsUseCase.GetPixel(c.Request.Context(), x, y)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPixelNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No active pixel at the given coordinate",
			})
		case model.IsInvalidInput(err):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_parameter",
				"message": err.Error(),
			})
		case errors.Is(err, model.ErrStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "storage_unavailable",
				"message": "Pixel storage is temporarily unavailable",
			})
		default:
			log.Printf("❌ ピクセル取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to get pixel",
			})
		}
		return
	}

	c.JSON(http.StatusOK, model.PixelResponse{X: pixel.X, Y: pixel.Y, Color: pixel.Color})
}

// GetPixels GET /pixels - 境界ボックス内のピクセル一覧を取得
func (h *PixelsHandler) GetPixels(c *gin.Context) {
	// クエリパラメータの解析
	bbox := c.Query("bbox")
	if bbox == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": "bbox parameter is required (format: min_x,min_y,max_x,max_y)",
		})
		return
	}

	// bbox の解析
	coords := strings.Split(bbox, ",")
	if len(coords) != 4 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": "bbox must contain 4 coordinates: min_x,min_y,max_x,max_y",
		})
		return
	}

	values := make([]int, 4)
	names := []string{"min_x", "min_y", "max_x", "max_y"}
	for i, raw := range coords {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_parameter",
				"message": "Invalid " + names[i] + " value",
			})
			return
		}
		values[i] = v
	}

	region := model.PixelRegion{MinX: values[0], MinY: values[1], MaxX: values[2], MaxY: values[3]}

	response, err := h.pixelsUseCase.GetPixelsByRegion(c.Request.Context(), region)
	if err != nil {
		if model.IsInvalidInput(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_parameter",
				"message": err.Error(),
			})
			return
		}
		log.Printf("❌ 領域クエリエラー: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to get pixels",
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// respondPlacementError 配置エラーをエラー種別ごとのHTTPレスポンスへ変換する
func respondPlacementError(c *gin.Context, err error) {
	if model.IsInvalidInput(err) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	if errors.Is(err, model.ErrUnauthenticated) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication is required to place pixels",
		})
		return
	}

	if remaining, ok := model.IsRateLimited(err); ok {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":             "rate_limited",
			"message":           err.Error(),
			"remaining_seconds": remaining,
		})
		return
	}

	log.Printf("❌ ピクセル配置エラー: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": "Failed to place pixel",
	})
}

// queryInt 必須の整数クエリパラメータを解析する（失敗時はレスポンス済み）
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": name + " parameter is required",
		})
		return 0, false
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": "Invalid " + name + " value",
		})
		return 0, false
	}
	return v, true
}
