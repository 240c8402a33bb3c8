package repository

import (
	"context"

	"GeoCanvas-App/internal/domain/model"
)

// PixelsRepository ピクセルの永続ストア
type PixelsRepository interface {
	// GetAt 指定座標のアクティブなピクセルを取得する
	// 存在しない場合は model.ErrPixelNotFound、ストア到達不能時は model.ErrStorageUnavailable を返す
	GetAt(ctx context.Context, x, y int) (*model.Pixel, error)

	// QueryRegion 指定領域（両端を含む）内のアクティブなピクセル一覧を取得する
	// ページングは行わないため、領域の大きさは呼び出し側が制限する責務を持つ
	QueryRegion(ctx context.Context, region model.PixelRegion) ([]model.Pixel, error)

	// Place ピクセルを配置する
	// 既存アクティブ行の無効化・新規行の挿入・ユーザーのレート状態更新を
	// 単一のアトミックな作業単位として実行する。レート制限による拒否は
	// model.RateLimitedError、ストア到達不能は model.ErrStorageUnavailable で通知する
	Place(ctx context.Context, x, y int, color, userID string) (*model.Pixel, error)
}
