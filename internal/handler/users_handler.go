package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"GeoCanvas-App/internal/domain/model"
	"GeoCanvas-App/internal/usecase"
)

// UsersHandler ユーザーのクォータ・統計に関するHTTPハンドラー
type UsersHandler struct {
	usersUseCase usecase.UsersUseCase
}

// NewUsersHandler UsersHandlerの新しいインスタンスを作成
func NewUsersHandler(usersUseCase usecase.UsersUseCase) *UsersHandler {
	return &UsersHandler{
		usersUseCase: usersUseCase,
	}
}

// GetQuota GET /users/me/quota - 残りクォータの取得
func (h *UsersHandler) GetQuota(c *gin.Context) {
	userID := c.GetHeader(identityHeader)

	quota, err := h.usersUseCase.GetQuota(c.Request.Context(), userID)
	if err != nil {
		h.respondUserError(c, err, "Failed to get quota")
		return
	}

	c.JSON(http.StatusOK, quota)
}

// GetStats GET /users/me/stats - 累計配置数・参加日時の取得
func (h *UsersHandler) GetStats(c *gin.Context) {
	userID := c.GetHeader(identityHeader)

	stats, err := h.usersUseCase.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.respondUserError(c, err, "Failed to get stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *UsersHandler) respondUserError(c *gin.Context, err error, message string) {
	if errors.Is(err, model.ErrUnauthenticated) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication is required",
		})
		return
	}

	log.Printf("❌ ユーザー情報取得エラー: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": message,
	})
}
