package model

import "time"

// UserRateState ユーザーごとの配置レート状態
// Pixel の書き込みと同一トランザクション内でのみ更新される（チェックと加算の分離禁止）。
type UserRateState struct {
	UserID            string     `json:"user_id" db:"id"`
	WindowStartTime   *time.Time `json:"window_start_time" db:"window_start_time"`     // 現在のウィンドウ開始時刻（未開始なら nil）
	WindowCount       int        `json:"window_count" db:"window_count"`               // ウィンドウ内の配置数
	LastPlacementTime *time.Time `json:"last_placement_time" db:"last_placement_time"` // 最後に配置した時刻
	JoinedAt          time.Time  `json:"joined_at" db:"joined_at"`
}

// QuotaStatus GET /users/me/quota のレスポンス
// UserRateState の読み取り専用プロジェクション。
type QuotaStatus struct {
	Remaining int        `json:"remaining"`
	Total     int        `json:"total"`
	ResetAt   *time.Time `json:"reset_at"`
	Warning   string     `json:"warning,omitempty"`
}

// UserStats GET /users/me/stats のレスポンス
type UserStats struct {
	TotalPixelsPlaced int        `json:"total_pixels_placed"`
	JoinedAt          *time.Time `json:"joined_at"`
	Warning           string     `json:"warning,omitempty"`
}
