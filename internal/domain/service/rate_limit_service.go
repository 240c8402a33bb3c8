package service

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"GeoCanvas-App/internal/domain/model"
)

// レート制限のデフォルト設定
const (
	DefaultMaxPerWindow     = 5               // 1ウィンドウあたりの最大配置数
	DefaultWindowDuration   = 60 * time.Second // 固定ウィンドウの長さ
	DefaultCooldownInterval = 1 * time.Minute  // 最小配置間隔（代替ポリシー／デグレード時用）
)

// RateLimitConfig レート制限の設定値
type RateLimitConfig struct {
	MaxPerWindow     int
	Window           time.Duration
	CooldownInterval time.Duration
}

// DefaultRateLimitConfig デフォルトのレート制限設定を返す
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxPerWindow:     DefaultMaxPerWindow,
		Window:           DefaultWindowDuration,
		CooldownInterval: DefaultCooldownInterval,
	}
}

// LoadRateLimitConfigFromEnv 環境変数からレート制限設定を読み込む
func LoadRateLimitConfigFromEnv() (RateLimitConfig, error) {
	cfg := DefaultRateLimitConfig()

	if raw := os.Getenv("PIXEL_RATE_MAX"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return RateLimitConfig{}, fmt.Errorf("環境変数 PIXEL_RATE_MAX が不正です: %s", raw)
		}
		cfg.MaxPerWindow = v
	}
	if raw := os.Getenv("PIXEL_RATE_WINDOW_SECONDS"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return RateLimitConfig{}, fmt.Errorf("環境変数 PIXEL_RATE_WINDOW_SECONDS が不正です: %s", raw)
		}
		cfg.Window = time.Duration(v) * time.Second
	}
	if raw := os.Getenv("PIXEL_COOLDOWN_MINUTES"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return RateLimitConfig{}, fmt.Errorf("環境変数 PIXEL_COOLDOWN_MINUTES が不正です: %s", raw)
		}
		cfg.CooldownInterval = time.Duration(v) * time.Minute
	}

	return cfg, nil
}

// RateLimitDecision レート制限の判定結果
// 許可された場合、NewState には配置1件分を加算した更新後の状態が入る。
// 呼び出し側はこの更新をピクセル書き込みと同一トランザクションで永続化すること。
type RateLimitDecision struct {
	Allowed          bool
	RemainingSeconds int                 // 拒否時のみ: 再試行までの秒数
	NewState         model.UserRateState // 許可時のみ: 書き戻すべき状態
}

// RateLimitPolicy レート制限ポリシーの共通インターフェース
// Decide は純粋関数であり、状態の読み取り・判定・更新値の算出のみを行う。
// 永続化はストア側のトランザクション責務。
type RateLimitPolicy interface {
	Name() string

	// Decide 配置1件を許可するかを判定する
	Decide(state model.UserRateState, now time.Time) RateLimitDecision

	// Quota 現在の残りクォータを状態から射影する（状態は変更しない）
	Quota(state model.UserRateState, now time.Time) model.QuotaStatus
}

// RateWindowPolicy 固定ウィンドウカウンタ方式（本番ポリシー）
//
// ウィンドウ終端で MAX 件配置した直後にロールオーバー後また MAX 件配置できるため、
// 境界をまたぐ短時間には最大 2×MAX 件まで通る。これは固定ウィンドウ方式に
// 固有の挙動として受容している（真のスライディングウィンドウではない）。
type RateWindowPolicy struct {
	max    int
	window time.Duration
}

// NewRateWindowPolicy RateWindowPolicy を作成する
func NewRateWindowPolicy(cfg RateLimitConfig) *RateWindowPolicy {
	return &RateWindowPolicy{max: cfg.MaxPerWindow, window: cfg.Window}
}

func (p *RateWindowPolicy) Name() string { return "rate_window" }

func (p *RateWindowPolicy) Decide(state model.UserRateState, now time.Time) RateLimitDecision {
	// ウィンドウ未開始、または開始から WINDOW 経過済みなら新しいウィンドウを開く
	if state.WindowStartTime == nil || now.Sub(*state.WindowStartTime) >= p.window {
		newState := state
		start := now
		newState.WindowStartTime = &start
		newState.WindowCount = 1
		newState.LastPlacementTime = &start
		return RateLimitDecision{Allowed: true, NewState: newState}
	}

	if state.WindowCount < p.max {
		newState := state
		newState.WindowCount = state.WindowCount + 1
		last := now
		newState.LastPlacementTime = &last
		return RateLimitDecision{Allowed: true, NewState: newState}
	}

	resetAt := state.WindowStartTime.Add(p.window)
	return RateLimitDecision{
		Allowed:          false,
		RemainingSeconds: ceilSeconds(resetAt.Sub(now)),
	}
}

func (p *RateWindowPolicy) Quota(state model.UserRateState, now time.Time) model.QuotaStatus {
	if state.WindowStartTime == nil || now.Sub(*state.WindowStartTime) >= p.window {
		return model.QuotaStatus{Remaining: p.max, Total: p.max, ResetAt: nil}
	}

	remaining := p.max - state.WindowCount
	if remaining < 0 {
		remaining = 0
	}
	resetAt := state.WindowStartTime.Add(p.window)
	return model.QuotaStatus{Remaining: remaining, Total: p.max, ResetAt: &resetAt}
}

// CooldownPolicy 最小配置間隔方式（代替ポリシー）
// RateWindowPolicy より厳密に保守的なスループットになる。
// デグレードストアでのレート制限はこちらを使用する。
type CooldownPolicy struct {
	minInterval time.Duration
}

// NewCooldownPolicy CooldownPolicy を作成する
func NewCooldownPolicy(cfg RateLimitConfig) *CooldownPolicy {
	return &CooldownPolicy{minInterval: cfg.CooldownInterval}
}

func (p *CooldownPolicy) Name() string { return "cooldown" }

func (p *CooldownPolicy) Decide(state model.UserRateState, now time.Time) RateLimitDecision {
	if state.LastPlacementTime != nil {
		elapsed := now.Sub(*state.LastPlacementTime)
		if elapsed < p.minInterval {
			return RateLimitDecision{
				Allowed:          false,
				RemainingSeconds: ceilSeconds(p.minInterval - elapsed),
			}
		}
	}

	newState := state
	last := now
	newState.LastPlacementTime = &last
	return RateLimitDecision{Allowed: true, NewState: newState}
}

func (p *CooldownPolicy) Quota(state model.UserRateState, now time.Time) model.QuotaStatus {
	if state.LastPlacementTime == nil {
		return model.QuotaStatus{Remaining: 1, Total: 1, ResetAt: nil}
	}

	elapsed := now.Sub(*state.LastPlacementTime)
	if elapsed >= p.minInterval {
		return model.QuotaStatus{Remaining: 1, Total: 1, ResetAt: nil}
	}

	resetAt := state.LastPlacementTime.Add(p.minInterval)
	return model.QuotaStatus{Remaining: 0, Total: 1, ResetAt: &resetAt}
}

// ceilSeconds 残り時間を切り上げて秒数にする（拒否応答は必ず1秒以上を返す）
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	return int(math.Ceil(d.Seconds()))
}
