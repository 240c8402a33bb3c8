package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"GeoCanvas-App/internal/database"
	"GeoCanvas-App/internal/domain/helper"
	"GeoCanvas-App/internal/domain/model"
	"GeoCanvas-App/internal/domain/service"
	"GeoCanvas-App/internal/handler"
	infraDB "GeoCanvas-App/internal/infrastructure/database"
	"GeoCanvas-App/internal/repository"
	"GeoCanvas-App/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	// グリッド・レート制限設定の読み込み
	gridConfig, err := model.LoadGridConfigFromEnv()
	if err != nil {
		log.Fatalf("グリッド設定の読み込み失敗: %v", err)
	}

	rateConfig, err := service.LoadRateLimitConfigFromEnv()
	if err != nil {
		log.Fatalf("レート制限設定の読み込み失敗: %v", err)
	}

	fmt.Printf("Grid: %dx%d, bounds: (%.2f, %.2f) - (%.2f, %.2f)\n",
		gridConfig.Width, gridConfig.Height,
		gridConfig.Bounds.MinLat, gridConfig.Bounds.MinLng,
		gridConfig.Bounds.MaxLat, gridConfig.Bounds.MaxLng)
	fmt.Printf("Rate limit: %d placements / %s (cooldown fallback: %s)\n",
		rateConfig.MaxPerWindow, rateConfig.Window, rateConfig.CooldownInterval)

	// PostgreSQL（ピクセルの永続ストア）
	fmt.Println("Initializing PostgreSQL client...")
	postgresClient, err := infraDB.NewPostgreSQLClientWithRetry(5, 2*time.Second)
	if err != nil {
		log.Fatalf("PostgreSQLクライアント初期化失敗: %v", err)
	}
	defer postgresClient.Close()
	fmt.Println("✅ PostgreSQL connection successful!")

	// Supabase（読み取り系の統計用）
	fmt.Println("Initializing Supabase client...")
	supabaseClient, err := database.NewSupabaseClient()
	if err != nil {
		log.Fatalf("Supabaseクライアント初期化失敗: %v", err)
	}
	if err := supabaseClient.HealthCheck(); err != nil {
		log.Fatalf("Supabaseヘルスチェック失敗: %v", err)
	}

	// 本番のレート制限ポリシーは固定ウィンドウ方式
	policy := service.NewRateWindowPolicy(rateConfig)

	// リポジトリ・ユースケース・ハンドラーの初期化
	gridMapper := helper.NewGridMapper(gridConfig)
	fallbackStore := repository.NewMemoryPixelsRepository(rateConfig)
	pixelsRepo := repository.NewPostgresPixelsRepository(postgresClient, policy, gridConfig)
	usersRepo := repository.NewPostgresUsersRepository(postgresClient)
	statsRepo := repository.NewSupabaseUsersRepository(supabaseClient)

	pixelsUseCase := usecase.NewPixelsUseCase(pixelsRepo, fallbackStore, gridConfig)
	usersUseCase := usecase.NewUsersUseCase(usersRepo, statsRepo, fallbackStore, policy)

	pixelsHandler := handler.NewPixelsHandler(pixelsUseCase)
	usersHandler := handler.NewUsersHandler(usersUseCase)
	gridHandler := handler.NewGridHandler(gridMapper)

	// Ginエンジンのセットアップ
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		status := "healthy"
		storage := "ok"
		if err := postgresClient.HealthCheck(); err != nil {
			status = "degraded"
			storage = "unavailable"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":          status,
			"service":         "GeoCanvas-App",
			"storage":         storage,
			"fallback_pixels": fallbackStore.Size(),
		})
	})

	router.POST("/pixels", pixelsHandler.PostPixel)
	router.GET("/pixels", pixelsHandler.GetPixels)
	router.GET("/pixels/coordinate", pixelsHandler.GetPixelByCoordinate)

	router.GET("/users/me/quota", usersHandler.GetQuota)
	router.GET("/users/me/stats", usersHandler.GetStats)

	router.GET("/grid/cell", gridHandler.GetCell)
	router.GET("/grid/geo", gridHandler.GetGeo)
	router.GET("/grid/config", gridHandler.GetConfig)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("GeoCanvas-App server starting on :%s...\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("サーバーの起動失敗: %v", err)
	}
}
