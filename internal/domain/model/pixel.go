package model

import (
	"regexp"
	"time"
)

// Pixel グリッド上の1セルへの配置記録
// 同一座標に複数の行が存在しうるが、is_active=true の行は常に高々1つ（単一占有の不変条件）。
// 上書きされた行は is_active=false のまま履歴として残り、通常運用で物理削除されることはない。
type Pixel struct {
	ID        string    `json:"id" db:"id"`                 // 行ID（UUID）
	X         int       `json:"x" db:"x"`                   // グリッドX座標
	Y         int       `json:"y" db:"y"`                   // グリッドY座標
	Color     string    `json:"color" db:"color"`           // #RRGGBB 形式の24bitカラー
	UserID    string    `json:"user_id" db:"user_id"`       // 配置したユーザーのID
	IsActive  bool      `json:"is_active" db:"is_active"`   // 現在の占有者かどうか
	CreatedAt time.Time `json:"created_at" db:"created_at"` // 配置日時
}

// colorPattern #RRGGBB（大文字小文字どちらも許容）
var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IsValidColor カラーコードが #RRGGBB 形式かどうかを判定する
func IsValidColor(color string) bool {
	return colorPattern.MatchString(color)
}

// CreatePixelRequest POST /pixels のリクエストボディ
type CreatePixelRequest struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

// PixelResponse クライアントへ返すピクセル表現（読み取り系・配置結果共通）
type PixelResponse struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

// CreatePixelResponse 配置成功時のレスポンス
// Warning はデグレードモードで配置された場合のみ設定される。
type CreatePixelResponse struct {
	Success bool          `json:"success"`
	Pixel   PixelResponse `json:"pixel"`
	Warning string        `json:"warning,omitempty"`
}

// GetPixelsResponse 領域クエリのレスポンス
type GetPixelsResponse struct {
	Pixels  []PixelResponse `json:"pixels"`
	Warning string          `json:"warning,omitempty"`
}

// PixelRegion 領域クエリの対象範囲（両端を含む）
type PixelRegion struct {
	MinX int
	MaxX int
	MinY int
	MaxY int
}

// IsValid 範囲の整合性を検証する
func (r PixelRegion) IsValid() bool {
	return r.MinX <= r.MaxX && r.MinY <= r.MaxY
}
