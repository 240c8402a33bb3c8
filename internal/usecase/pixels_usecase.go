package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"GeoCanvas-App/internal/domain/model"
	"GeoCanvas-App/internal/domain/repository"
	repoImpl "GeoCanvas-App/internal/repository"
)

// デグレードモードで応答に付与する警告文
const (
	warningDegradedWrite = "Pixel placed in memory only (database unavailable)"
	warningDegradedRead  = "Using in-memory storage (database unavailable)"
)

// PixelsUseCase ピクセル配置・照会のオーケストレーション
//
// 配置リクエストは 入力検証 → 認証確認 → 永続ストアへの書き込み の順で処理し、
// 検証・認証エラーはストアやレート状態に一切触れる前に返す。
// 永続ストア到達不能のシグナルを受けた場合のみ、同一リクエストを1回だけ
// メモリフォールバックへ振り向け、応答に警告を付与する（同じストアへの再試行はしない）。
type PixelsUseCase interface {
	// PlacePixel ピクセルを配置する
	PlacePixel(ctx context.Context, userID string, req *model.CreatePixelRequest) (*model.CreatePixelResponse, error)

	// GetPixel 指定座標のアクティブなピクセルを取得する
	GetPixel(ctx context.Context, x, y int) (*model.Pixel, error)

	// GetPixelsByRegion 指定領域内のアクティブなピクセル一覧を取得する
	GetPixelsByRegion(ctx context.Context, region model.PixelRegion) (*model.GetPixelsResponse, error)
}

// pixelsUseCaseImpl はPixelsUseCaseの実装
type pixelsUseCaseImpl struct {
	pixelsRepo repository.PixelsRepository
	fallback   *repoImpl.MemoryPixelsRepository
	grid       model.GridConfig
}

// NewPixelsUseCase は新しいPixelsUseCaseインスタンスを作成
func NewPixelsUseCase(
	pixelsRepo repository.PixelsRepository,
	fallback *repoImpl.MemoryPixelsRepository,
	grid model.GridConfig,
) PixelsUseCase {
	return &pixelsUseCaseImpl{
		pixelsRepo: pixelsRepo,
		fallback:   fallback,
		grid:       grid,
	}
}

// PlacePixel ピクセルを配置する
func (u *pixelsUseCaseImpl) PlacePixel(ctx context.Context, userID string, req *model.CreatePixelRequest) (*model.CreatePixelResponse, error) {
	if err := u.validatePlacement(req); err != nil {
		return nil, err
	}

	if userID == "" {
		return nil, model.ErrUnauthenticated
	}

	pixel, err := u.pixelsRepo.Place(ctx, req.X, req.Y, req.Color, userID)
	if err == nil {
		return &model.CreatePixelResponse{
			Success: true,
			Pixel:   model.PixelResponse{X: pixel.X, Y: pixel.Y, Color: pixel.Color},
		}, nil
	}

	if _, limited := model.IsRateLimited(err); limited {
		return nil, err
	}

	if !errors.Is(err, model.ErrStorageUnavailable) {
		return nil, fmt.Errorf("ピクセル配置に失敗: %w", err)
	}

	// データベース到達不能: メモリフォールバックへ1回だけ切り替える
	log.Printf("⚠️ データベース到達不能、メモリフォールバックへ切り替え: %v", err)

	pixel, err = u.fallback.Place(ctx, req.X, req.Y, req.Color, userID)
	if err != nil {
		return nil, err
	}

	return &model.CreatePixelResponse{
		Success: true,
		Pixel:   model.PixelResponse{X: pixel.X, Y: pixel.Y, Color: pixel.Color},
		Warning: warningDegradedWrite,
	}, nil
}

// GetPixel 指定座標のアクティブなピクセルを取得する
// 点読み取りはフォールバックせず、ストア障害をそのまま上位へ返す
func (u *pixelsUseCaseImpl) GetPixel(ctx context.Context, x, y int) (*model.Pixel, error) {
	if !u.grid.Contains(x, y) {
		return nil, model.NewInvalidInputError("coordinate", fmt.Sprintf("(%d, %d) はグリッド範囲外です", x, y))
	}

	return u.pixelsRepo.GetAt(ctx, x, y)
}

// GetPixelsByRegion 指定領域内のアクティブなピクセル一覧を取得する
func (u *pixelsUseCaseImpl) GetPixelsByRegion(ctx context.Context, region model.PixelRegion) (*model.GetPixelsResponse, error) {
	if !region.IsValid() {
		return nil, model.NewInvalidInputError("bbox", "min値はmax値以下である必要があります")
	}

	pixels, err := u.pixelsRepo.QueryRegion(ctx, region)
	if err != nil {
		if !errors.Is(err, model.ErrStorageUnavailable) {
			return nil, fmt.Errorf("領域内ピクセルの取得に失敗: %w", err)
		}

		log.Printf("⚠️ データベース到達不能、メモリフォールバックから領域を返却: %v", err)
		pixels, err = u.fallback.QueryRegion(ctx, region)
		if err != nil {
			return nil, err
		}
		return &model.GetPixelsResponse{Pixels: toPixelResponses(pixels), Warning: warningDegradedRead}, nil
	}

	return &model.GetPixelsResponse{Pixels: toPixelResponses(pixels)}, nil
}

// validatePlacement 配置リクエストの入力検証
// ストアやレート状態に触れる前に呼ぶこと
func (u *pixelsUseCaseImpl) validatePlacement(req *model.CreatePixelRequest) error {
	if !u.grid.Contains(req.X, req.Y) {
		return model.NewInvalidInputError("coordinate",
			fmt.Sprintf("(%d, %d) はグリッド範囲外です (0-%d, 0-%d)", req.X, req.Y, u.grid.Width-1, u.grid.Height-1))
	}
	if !model.IsValidColor(req.Color) {
		return model.NewInvalidInputError("color", "カラーコードは #RRGGBB 形式である必要があります")
	}
	return nil
}

func toPixelResponses(pixels []model.Pixel) []model.PixelResponse {
	responses := make([]model.PixelResponse, 0, len(pixels))
	for _, p := range pixels {
		responses = append(responses, model.PixelResponse{X: p.X, Y: p.Y, Color: p.Color})
	}
	return responses
}
