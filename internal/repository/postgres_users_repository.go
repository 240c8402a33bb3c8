package repository

import (
	"context"
	"database/sql"
	"errors"

	"GeoCanvas-App/internal/domain/model"
	"GeoCanvas-App/internal/domain/repository"
	"GeoCanvas-App/internal/infrastructure/database"
)

// PostgresUsersRepository ユーザーのレート状態の読み取り専用リポジトリ
// 書き込みは PostgresPixelsRepository.Place のトランザクションに閉じているため、
// ここでは行ロックを取らない読み取りのみを提供する。
type PostgresUsersRepository struct {
	client *database.PostgreSQLClient
}

// NewPostgresUsersRepository 新しいPostgresUsersRepositoryを作成
func NewPostgresUsersRepository(client *database.PostgreSQLClient) repository.UsersRepository {
	return &PostgresUsersRepository{
		client: client,
	}
}

// GetRateState 指定ユーザーのレート状態を取得する
// ユーザーが未登録の場合は配置履歴なしのゼロ値状態を返す（エラーにしない）
func (r *PostgresUsersRepository) GetRateState(ctx context.Context, userID string) (*model.UserRateState, error) {
	query := `SELECT window_start_time, window_count, last_placement_time, joined_at
	          FROM users WHERE id = $1`

	state := &model.UserRateState{UserID: userID}
	err := r.client.DB.QueryRowContext(ctx, query, userID).
		Scan(&state.WindowStartTime, &state.WindowCount, &state.LastPlacementTime, &state.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &model.UserRateState{UserID: userID}, nil
		}
		return nil, classifyStorageError("レート状態の取得失敗", err)
	}

	return state, nil
}
