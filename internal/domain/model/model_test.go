package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidColor(t *testing.T) {
	valid := []string{"#FF0000", "#00ff00", "#AbCdEf", "#000000", "#ffffff"}
	for _, c := range valid {
		assert.True(t, IsValidColor(c), c)
	}

	invalid := []string{"", "FF0000", "#FF000", "#FF00000", "#GG0000", "#ff00", "red", "#ff000g"}
	for _, c := range invalid {
		assert.False(t, IsValidColor(c), c)
	}
}

func TestGridConfig_Validate(t *testing.T) {
	cfg := DefaultGridConfig()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Width = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Bounds.MinLat = bad.Bounds.MaxLat
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Bounds.MinLng = 130.0
	assert.Error(t, bad.Validate())
}

func TestGridConfig_Contains(t *testing.T) {
	cfg := DefaultGridConfig()

	assert.True(t, cfg.Contains(0, 0))
	assert.True(t, cfg.Contains(cfg.Width-1, cfg.Height-1))
	assert.False(t, cfg.Contains(-1, 0))
	assert.False(t, cfg.Contains(0, -1))
	assert.False(t, cfg.Contains(cfg.Width, 0))
	assert.False(t, cfg.Contains(0, cfg.Height))
}

func TestLoadGridConfigFromEnv(t *testing.T) {
	t.Run("デフォルト値", func(t *testing.T) {
		cfg, err := LoadGridConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, DefaultGridWidth, cfg.Width)
		assert.Equal(t, DefaultGridHeight, cfg.Height)
		assert.Equal(t, DefaultMinLat, cfg.Bounds.MinLat)
	})

	t.Run("環境変数による上書き", func(t *testing.T) {
		t.Setenv("GRID_WIDTH", "100")
		t.Setenv("GRID_HEIGHT", "200")

		cfg, err := LoadGridConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.Width)
		assert.Equal(t, 200, cfg.Height)
	})

	t.Run("不正な境界はエラー", func(t *testing.T) {
		t.Setenv("GRID_MIN_LAT", "50.0")
		t.Setenv("GRID_MAX_LAT", "40.0")

		_, err := LoadGridConfigFromEnv()
		assert.Error(t, err)
	})
}

func TestPixelRegion_IsValid(t *testing.T) {
	assert.True(t, PixelRegion{MinX: 0, MaxX: 10, MinY: 0, MaxY: 10}.IsValid())
	assert.True(t, PixelRegion{MinX: 5, MaxX: 5, MinY: 5, MaxY: 5}.IsValid())
	assert.False(t, PixelRegion{MinX: 10, MaxX: 0, MinY: 0, MaxY: 10}.IsValid())
	assert.False(t, PixelRegion{MinX: 0, MaxX: 10, MinY: 10, MaxY: 0}.IsValid())
}

func TestErrorVariants(t *testing.T) {
	t.Run("RateLimitedErrorは残り秒数を運ぶ", func(t *testing.T) {
		err := error(&RateLimitedError{RemainingSeconds: 42})
		remaining, ok := IsRateLimited(err)
		require.True(t, ok)
		assert.Equal(t, 42, remaining)
	})

	t.Run("InvalidInputErrorの判定", func(t *testing.T) {
		err := error(NewInvalidInputError("color", "bad format"))
		assert.True(t, IsInvalidInput(err))
		assert.False(t, IsInvalidInput(ErrUnauthenticated))

		_, ok := IsRateLimited(err)
		assert.False(t, ok)
	})
}
