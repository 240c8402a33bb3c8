package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"GeoCanvas-App/internal/domain/model"
	"GeoCanvas-App/internal/domain/repository"
	"GeoCanvas-App/internal/domain/service"
	repoImpl "GeoCanvas-App/internal/repository"
)

// UsersUseCase ユーザーのクォータ・統計の読み取り系オーケストレーション
type UsersUseCase interface {
	// GetQuota 現在の残りクォータを取得する（状態は変更しない）
	GetQuota(ctx context.Context, userID string) (*model.QuotaStatus, error)

	// GetStats 累計配置数・参加日時を取得する
	GetStats(ctx context.Context, userID string) (*model.UserStats, error)
}

// usersUseCaseImpl はUsersUseCaseの実装
type usersUseCaseImpl struct {
	usersRepo repository.UsersRepository
	statsRepo repository.UserStatsRepository
	fallback  *repoImpl.MemoryPixelsRepository
	policy    service.RateLimitPolicy
}

// NewUsersUseCase は新しいUsersUseCaseインスタンスを作成
func NewUsersUseCase(
	usersRepo repository.UsersRepository,
	statsRepo repository.UserStatsRepository,
	fallback *repoImpl.MemoryPixelsRepository,
	policy service.RateLimitPolicy,
) UsersUseCase {
	return &usersUseCaseImpl{
		usersRepo: usersRepo,
		statsRepo: statsRepo,
		fallback:  fallback,
		policy:    policy,
	}
}

// GetQuota 現在の残りクォータを取得する
// データベース到達不能時はメモリフォールバックのクールダウン状態から算出する
func (u *usersUseCaseImpl) GetQuota(ctx context.Context, userID string) (*model.QuotaStatus, error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}

	state, err := u.usersRepo.GetRateState(ctx, userID)
	if err != nil {
		if !errors.Is(err, model.ErrStorageUnavailable) {
			return nil, err
		}

		log.Printf("⚠️ データベース到達不能、メモリ上のクールダウン状態からクォータを算出: %v", err)
		quota := u.fallback.Quota(userID)
		quota.Warning = "Using in-memory cooldown tracking (database unavailable)"
		return &quota, nil
	}

	quota := u.policy.Quota(*state, time.Now().UTC())
	return &quota, nil
}

// GetStats 累計配置数・参加日時を取得する
// 集計に失敗した場合はエラーにせず、警告付きのゼロ値を返す
func (u *usersUseCaseImpl) GetStats(ctx context.Context, userID string) (*model.UserStats, error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}

	stats, err := u.statsRepo.GetStats(ctx, userID)
	if err != nil {
		log.Printf("⚠️ ユーザー統計の取得失敗: %v", err)
		return &model.UserStats{
			TotalPixelsPlaced: 0,
			JoinedAt:          nil,
			Warning:           "Stats unavailable (database error)",
		}, nil
	}

	return stats, nil
}
