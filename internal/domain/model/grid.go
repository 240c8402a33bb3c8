package model

import (
	"fmt"
	"os"
	"strconv"
)

// GridConfig ピクセルグリッドの解像度と対応する地理的範囲の設定
type GridConfig struct {
	Width  int       // グリッドの横セル数
	Height int       // グリッドの縦セル数
	Bounds GeoBounds // グリッドが投影される地理的範囲
}

// GeoBounds グリッド全体が対応する地理的境界ボックス
type GeoBounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// グリッドのデフォルト設定（韓国全土をカバーする基準デプロイの値）
const (
	DefaultGridWidth  = 40000
	DefaultGridHeight = 80000

	DefaultMinLat = 33.0
	DefaultMaxLat = 39.0
	DefaultMinLng = 125.5
	DefaultMaxLng = 129.3
)

// GridCoords グリッド上の整数座標
type GridCoords struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LatLng 地理座標
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultGridConfig 基準デプロイのグリッド設定を返す
func DefaultGridConfig() GridConfig {
	return GridConfig{
		Width:  DefaultGridWidth,
		Height: DefaultGridHeight,
		Bounds: GeoBounds{
			MinLat: DefaultMinLat,
			MaxLat: DefaultMaxLat,
			MinLng: DefaultMinLng,
			MaxLng: DefaultMaxLng,
		},
	}
}

// LoadGridConfigFromEnv 環境変数からグリッド設定を読み込む（未設定の項目はデフォルト値）
func LoadGridConfigFromEnv() (GridConfig, error) {
	cfg := DefaultGridConfig()

	var err error
	if cfg.Width, err = envInt("GRID_WIDTH", cfg.Width); err != nil {
		return GridConfig{}, err
	}
	if cfg.Height, err = envInt("GRID_HEIGHT", cfg.Height); err != nil {
		return GridConfig{}, err
	}
	if cfg.Bounds.MinLat, err = envFloat("GRID_MIN_LAT", cfg.Bounds.MinLat); err != nil {
		return GridConfig{}, err
	}
	if cfg.Bounds.MaxLat, err = envFloat("GRID_MAX_LAT", cfg.Bounds.MaxLat); err != nil {
		return GridConfig{}, err
	}
	if cfg.Bounds.MinLng, err = envFloat("GRID_MIN_LNG", cfg.Bounds.MinLng); err != nil {
		return GridConfig{}, err
	}
	if cfg.Bounds.MaxLng, err = envFloat("GRID_MAX_LNG", cfg.Bounds.MaxLng); err != nil {
		return GridConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return GridConfig{}, err
	}
	return cfg, nil
}

// Validate グリッド設定の整合性を検証する
func (c GridConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("グリッドサイズが不正です: %dx%d", c.Width, c.Height)
	}
	if c.Bounds.MinLat >= c.Bounds.MaxLat {
		return fmt.Errorf("緯度範囲が不正です: min=%f max=%f", c.Bounds.MinLat, c.Bounds.MaxLat)
	}
	if c.Bounds.MinLng >= c.Bounds.MaxLng {
		return fmt.Errorf("経度範囲が不正です: min=%f max=%f", c.Bounds.MinLng, c.Bounds.MaxLng)
	}
	return nil
}

// Contains 指定されたグリッド座標が範囲内かどうかを判定する
func (c GridConfig) Contains(x, y int) bool {
	return x >= 0 && x < c.Width && y >= 0 && y < c.Height
}

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("環境変数 %s の解析失敗: %w", key, err)
	}
	return v, nil
}

func envFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("環境変数 %s の解析失敗: %w", key, err)
	}
	return v, nil
}
