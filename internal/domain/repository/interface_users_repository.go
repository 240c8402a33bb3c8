package repository

import (
	"context"

	"GeoCanvas-App/internal/domain/model"
)

// UsersRepository ユーザーのレート状態・統計の読み取り系ストア
// レート状態の更新は PixelsRepository.Place のトランザクション内でのみ行われるため、
// このインターフェースは読み取り専用。
type UsersRepository interface {
	// GetRateState 指定ユーザーのレート状態を取得する
	// ユーザーが未登録の場合はゼロ値の状態（配置履歴なし）を返す
	GetRateState(ctx context.Context, userID string) (*model.UserRateState, error)
}

// UserStatsRepository ユーザー統計の読み取り系ストア
type UserStatsRepository interface {
	// GetStats 指定ユーザーの累計配置数・参加日時を取得する
	GetStats(ctx context.Context, userID string) (*model.UserStats, error)
}
