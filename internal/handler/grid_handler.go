package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"GeoCanvas-App/internal/domain/helper"
)

// GridHandler 地理座標とグリッド座標の変換を外部（地図描画側）へ公開するハンドラー
type GridHandler struct {
	mapper *helper.GridMapper
}

// NewGridHandler GridHandlerの新しいインスタンスを作成
func NewGridHandler(mapper *helper.GridMapper) *GridHandler {
	return &GridHandler{
		mapper: mapper,
	}
}

// GetCell GET /grid/cell - 地理座標が属するグリッドセルを取得
// 境界ボックス外の座標は最寄りの端のセルへクランプされる（エラーにならない）
func (h *GridHandler) GetCell(c *gin.Context) {
	lat, ok := queryFloat(c, "lat")
	if !ok {
		return
	}
	lng, ok := queryFloat(c, "lng")
	if !ok {
		return
	}

	coords := h.mapper.ToGrid(lat, lng)
	c.JSON(http.StatusOK, coords)
}

// GetGeo GET /grid/geo - グリッドセルの北西基準角の地理座標を取得
func (h *GridHandler) GetGeo(c *gin.Context) {
	x, ok := queryInt(c, "x")
	if !ok {
		return
	}
	y, ok := queryInt(c, "y")
	if !ok {
		return
	}

	if !h.mapper.Config().Contains(x, y) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": "Coordinate is outside the grid",
		})
		return
	}

	c.JSON(http.StatusOK, h.mapper.ToGeo(x, y))
}

// GetConfig GET /grid/config - グリッドの解像度と地理的範囲を取得
// 地図描画側がビューポート計算の初期化に使う
func (h *GridHandler) GetConfig(c *gin.Context) {
	cfg := h.mapper.Config()
	c.JSON(http.StatusOK, gin.H{
		"width":  cfg.Width,
		"height": cfg.Height,
		"bounds": cfg.Bounds,
	})
}

// queryFloat 必須の数値クエリパラメータを解析する（失敗時はレスポンス済み）
func queryFloat(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": name + " parameter is required",
		})
		return 0, false
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": "Invalid " + name + " value",
		})
		return 0, false
	}
	return v, true
}
