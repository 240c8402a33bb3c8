package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"GeoCanvas-App/internal/database"
	"GeoCanvas-App/internal/domain/model"
	"GeoCanvas-App/internal/domain/repository"
)

// SupabaseUsersRepository Supabase (PostgREST) 経由のユーザー統計リポジトリ
// トランザクションを必要としない読み取り専用の集計にのみ使う。
type SupabaseUsersRepository struct {
	client *database.SupabaseClient
}

// NewSupabaseUsersRepository 新しいSupabaseUsersRepositoryを作成
func NewSupabaseUsersRepository(client *database.SupabaseClient) repository.UserStatsRepository {
	return &SupabaseUsersRepository{
		client: client,
	}
}

// supabaseUserRow usersテーブルのPostgREST表現
type supabaseUserRow struct {
	ID       string     `json:"id"`
	JoinedAt *time.Time `json:"joined_at"`
}

// GetStats 指定ユーザーの累計配置数・参加日時を取得する
// 累計はアクティブ・履歴行の両方を数える（上書きされた配置も実績に含む）
func (r *SupabaseUsersRepository) GetStats(ctx context.Context, userID string) (*model.UserStats, error) {
	_, count, err := r.client.GetClient().From("pixels").
		Select("id", "exact", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("配置数の集計失敗: %w", err)
	}

	stats := &model.UserStats{
		TotalPixelsPlaced: int(count),
	}

	data, _, err := r.client.GetClient().From("users").
		Select("id,joined_at", "exact", false).
		Eq("id", userID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("ユーザーデータの取得失敗: %w", err)
	}

	var users []supabaseUserRow
	if err := json.Unmarshal([]byte(data), &users); err != nil {
		return nil, fmt.Errorf("ユーザーデータのJSONアンマーシャル失敗: %w", err)
	}

	if len(users) > 0 {
		stats.JoinedAt = users[0].JoinedAt
	}

	return stats, nil
}
