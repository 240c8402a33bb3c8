package repository

import (
	"context"
	"sync"
	"time"

	"GeoCanvas-App/internal/domain/model"
	"GeoCanvas-App/internal/domain/repository"
	"GeoCanvas-App/internal/domain/service"
)

// MemoryPixelsRepository データベース到達不能時のプロセス内フォールバックストア
//
// プロセスの生存期間だけ有効なベストエフォートの保持領域で、起動時は空、
// 再起動で消え、永続ストアへ自動的にマージされることもない。
// レート制限はクールダウン（最小間隔）方式のみを適用する。
// ミューテックスはマップの同時変更による実行時障害を防ぐためのもので、
// 永続ストアのようなトランザクション保証を与えるものではない。
type MemoryPixelsRepository struct {
	mu       sync.Mutex
	pixels   map[model.GridCoords]string  // 座標 → 最新カラー
	userLast map[string]time.Time         // ユーザーID → 最終配置時刻
	policy   *service.CooldownPolicy
	now      func() time.Time
}

// NewMemoryPixelsRepository 空のフォールバックストアを作成する
func NewMemoryPixelsRepository(cfg service.RateLimitConfig) *MemoryPixelsRepository {
	return &MemoryPixelsRepository{
		pixels:   make(map[model.GridCoords]string),
		userLast: make(map[string]time.Time),
		policy:   service.NewCooldownPolicy(cfg),
		now:      time.Now,
	}
}

var _ repository.PixelsRepository = (*MemoryPixelsRepository)(nil)

// GetAt 指定座標のピクセルを取得する
func (r *MemoryPixelsRepository) GetAt(ctx context.Context, x, y int) (*model.Pixel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	color, ok := r.pixels[model.GridCoords{X: x, Y: y}]
	if !ok {
		return nil, model.ErrPixelNotFound
	}
	return &model.Pixel{X: x, Y: y, Color: color, IsActive: true}, nil
}

// QueryRegion 指定領域内のピクセル一覧を取得する
func (r *MemoryPixelsRepository) QueryRegion(ctx context.Context, region model.PixelRegion) ([]model.Pixel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pixels []model.Pixel
	for coords, color := range r.pixels {
		if coords.X >= region.MinX && coords.X <= region.MaxX &&
			coords.Y >= region.MinY && coords.Y <= region.MaxY {
			pixels = append(pixels, model.Pixel{X: coords.X, Y: coords.Y, Color: color, IsActive: true})
		}
	}
	return pixels, nil
}

// Place ピクセルをメモリ上に配置する
// 永続ストアと異なり履歴は残らず、座標ごとに最新カラーのみを上書き保持する
func (r *MemoryPixelsRepository) Place(ctx context.Context, x, y int, color, userID string) (*model.Pixel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	state := model.UserRateState{UserID: userID}
	if last, ok := r.userLast[userID]; ok {
		state.LastPlacementTime = &last
	}

	decision := r.policy.Decide(state, now)
	if !decision.Allowed {
		return nil, &model.RateLimitedError{RemainingSeconds: decision.RemainingSeconds}
	}

	r.pixels[model.GridCoords{X: x, Y: y}] = color
	r.userLast[userID] = now

	return &model.Pixel{X: x, Y: y, Color: color, UserID: userID, IsActive: true, CreatedAt: now}, nil
}

// GetRateState 指定ユーザーのメモリ上のレート状態を取得する
// デグレードモードでのクォータ照会に使う
func (r *MemoryPixelsRepository) GetRateState(userID string) *model.UserRateState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := &model.UserRateState{UserID: userID}
	if last, ok := r.userLast[userID]; ok {
		t := last
		state.LastPlacementTime = &t
	}
	return state
}

// Quota メモリ上のレート状態からクォータを射影する
func (r *MemoryPixelsRepository) Quota(userID string) model.QuotaStatus {
	state := r.GetRateState(userID)
	return r.policy.Quota(*state, r.now())
}

// Size 保持中のピクセル数を返す（ヘルス表示用）
func (r *MemoryPixelsRepository) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pixels)
}
