package test

import (
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"GeoCanvas-App/internal/domain/model"
	"GeoCanvas-App/internal/domain/repository"
	"GeoCanvas-App/internal/domain/service"
	"GeoCanvas-App/internal/infrastructure/database"
	repoimpl "GeoCanvas-App/internal/repository"
)

// setupTestEnvironment は統一されたテスト環境のセットアップを行う
// .env が存在しないCI環境では環境変数をそのまま使う
func setupTestEnvironment(t *testing.T) {
	t.Helper()

	if err := godotenv.Load("../.env"); err != nil {
		// CI環境等では.envが存在しない場合があるため警告のみ
	}

	if os.Getenv("POSTGRES_URL") == "" && os.Getenv("SUPABASE_URL") == "" {
		t.Skip("⚠️  POSTGRES_URL / SUPABASE_URL が設定されていません。統合テストをスキップします。")
	}
}

// setupTestPixelsRepository は統一されたピクセルリポジトリのセットアップを行う（リトライ付き）
func setupTestPixelsRepository(t *testing.T, policy service.RateLimitPolicy) (repository.PixelsRepository, *database.PostgreSQLClient, func()) {
	t.Helper()
	setupTestEnvironment(t)

	// 接続テストでは短いリトライ間隔を使用
	postgresClient, err := database.NewPostgreSQLClientWithRetry(3, 1*time.Second)
	if err != nil {
		t.Skipf("⚠️  PostgreSQLに接続できません: %v", err)
	}

	cleanup := func() {
		postgresClient.Close()
	}

	repo := repoimpl.NewPostgresPixelsRepository(postgresClient, policy, model.DefaultGridConfig())
	return repo, postgresClient, cleanup
}
