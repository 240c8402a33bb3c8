package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"GeoCanvas-App/internal/domain/model"
	"GeoCanvas-App/internal/domain/repository"
	"GeoCanvas-App/internal/domain/service"
	"GeoCanvas-App/internal/infrastructure/database"
)

// PostgresPixelsRepository PostgreSQL上のピクセル永続ストア
//
// 単一占有の不変条件（座標あたり is_active=true は高々1行）は
// Place のトランザクションと部分ユニークインデックス（db/schema.sql）の両方で守る。
type PostgresPixelsRepository struct {
	client *database.PostgreSQLClient
	policy service.RateLimitPolicy
	grid   model.GridConfig
	now    func() time.Time
}

// NewPostgresPixelsRepository 新しいPostgresPixelsRepositoryを作成
// policy のチェックと加算は Place のトランザクション内で永続化されるため、
// 同一ユーザーの並行リクエストがチェックをすり抜けることはない。
func NewPostgresPixelsRepository(client *database.PostgreSQLClient, policy service.RateLimitPolicy, grid model.GridConfig) repository.PixelsRepository {
	return &PostgresPixelsRepository{
		client: client,
		policy: policy,
		grid:   grid,
		now:    time.Now,
	}
}

// GetAt 指定座標のアクティブなピクセルを取得する
func (r *PostgresPixelsRepository) GetAt(ctx context.Context, x, y int) (*model.Pixel, error) {
	query := `SELECT id, x, y, color, user_id, is_active, created_at
	          FROM pixels WHERE x = $1 AND y = $2 AND is_active = true`

	row := r.client.DB.QueryRowContext(ctx, query, x, y)

	var pixel model.Pixel
	err := row.Scan(&pixel.ID, &pixel.X, &pixel.Y, &pixel.Color, &pixel.UserID, &pixel.IsActive, &pixel.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPixelNotFound
		}
		return nil, classifyStorageError("ピクセルの取得失敗", err)
	}

	return &pixel, nil
}

// QueryRegion 指定領域内のアクティブなピクセル一覧を取得する
func (r *PostgresPixelsRepository) QueryRegion(ctx context.Context, region model.PixelRegion) ([]model.Pixel, error) {
	query := `SELECT id, x, y, color, user_id, is_active, created_at
	          FROM pixels
	          WHERE is_active = true
	            AND x BETWEEN $1 AND $2
	            AND y BETWEEN $3 AND $4`

	rows, err := r.client.DB.QueryContext(ctx, query, region.MinX, region.MaxX, region.MinY, region.MaxY)
	if err != nil {
		return nil, classifyStorageError("領域内ピクセルの取得失敗", err)
	}
	defer rows.Close()

	var pixels []model.Pixel
	for rows.Next() {
		var pixel model.Pixel
		if err := rows.Scan(&pixel.ID, &pixel.X, &pixel.Y, &pixel.Color, &pixel.UserID, &pixel.IsActive, &pixel.CreatedAt); err != nil {
			return nil, fmt.Errorf("ピクセルデータのスキャン失敗: %w", err)
		}
		pixels = append(pixels, pixel)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStorageError("領域内ピクセルの読み取り失敗", err)
	}

	return pixels, nil
}

// Place ピクセルを配置する
//
// 1つのトランザクションで以下を実行する:
//  1. 対象座標のアドバイザリロック取得（同一座標の配置を直列化）
//  2. ユーザー行の確保と行ロック（同一ユーザーのチェック→加算の競合防止）
//  3. レートポリシーの判定
//  4. 既存アクティブ行の無効化と新規アクティブ行の挿入
//  5. レート状態の書き戻し
//
// いずれかが失敗すればすべてロールバックされる（部分コミットなし）。
// 同一座標への配置が競合した場合は後にコミットした方が勝ち、
// 先行の行は非アクティブな履歴として残る。
func (r *PostgresPixelsRepository) Place(ctx context.Context, x, y int, color, userID string) (*model.Pixel, error) {
	tx, err := r.client.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, classifyStorageError("トランザクションの開始失敗", err)
	}
	defer tx.Rollback()

	// 同一座標の配置をコミット順で直列化する（非アクティブ化と挿入の交錯防止）
	lockKey := int64(x)*int64(r.grid.Height) + int64(y)
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
		return nil, classifyStorageError("座標ロックの取得失敗", err)
	}

	now := r.now().UTC()

	// ユーザー行がなければ作成してから行ロックを取得する
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, window_count, joined_at) VALUES ($1, 0, $2) ON CONFLICT (id) DO NOTHING`,
		userID, now); err != nil {
		return nil, classifyStorageError("ユーザー行の作成失敗", err)
	}

	var state model.UserRateState
	state.UserID = userID
	err = tx.QueryRowContext(ctx,
		`SELECT window_start_time, window_count, last_placement_time FROM users WHERE id = $1 FOR UPDATE`,
		userID).Scan(&state.WindowStartTime, &state.WindowCount, &state.LastPlacementTime)
	if err != nil {
		return nil, classifyStorageError("レート状態の取得失敗", err)
	}

	decision := r.policy.Decide(state, now)
	if !decision.Allowed {
		return nil, &model.RateLimitedError{RemainingSeconds: decision.RemainingSeconds}
	}

	// 既存のアクティブなピクセルを履歴化（非アクティブ化）
	if _, err := tx.ExecContext(ctx,
		`UPDATE pixels SET is_active = false WHERE x = $1 AND y = $2 AND is_active = true`,
		x, y); err != nil {
		return nil, classifyStorageError("既存ピクセルの無効化失敗", err)
	}

	pixel := &model.Pixel{
		ID:        uuid.NewString(),
		X:         x,
		Y:         y,
		Color:     color,
		UserID:    userID,
		IsActive:  true,
		CreatedAt: now,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pixels (id, x, y, color, user_id, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, true, $6)`,
		pixel.ID, pixel.X, pixel.Y, pixel.Color, pixel.UserID, pixel.CreatedAt); err != nil {
		return nil, classifyStorageError("ピクセルの挿入失敗", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET window_start_time = $2, window_count = $3, last_placement_time = $4 WHERE id = $1`,
		userID, decision.NewState.WindowStartTime, decision.NewState.WindowCount, decision.NewState.LastPlacementTime); err != nil {
		return nil, classifyStorageError("レート状態の更新失敗", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyStorageError("トランザクションのコミット失敗", err)
	}

	return pixel, nil
}

// classifyStorageError ストアのエラーを分類する
// 接続系の障害は model.ErrStorageUnavailable へマップし、
// ユースケース側がデグレードストアへ切り替えられるようにする。
func classifyStorageError(msg string, err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("%s: %w: %v", msg, model.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// isConnectionError 接続障害（SQLSTATEクラス08/57、ネットワークエラー等）かどうかを判定する
func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		class := pqErr.Code.Class()
		// 08: connection exception, 57: operator intervention (シャットダウン等)
		return class == "08" || class == "57"
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
