package helper

import (
	"math"

	"github.com/paulmach/orb"

	"GeoCanvas-App/internal/domain/model"
)

// GridMapper 地理座標と固定解像度グリッドの相互変換
// 状態を持たない純粋な変換で、グリッド設定のみに依存する。
type GridMapper struct {
	config model.GridConfig
	bound  orb.Bound
}

// gridSnapEpsilon ToGeo の結果を ToGrid へ戻した際の浮動小数点誤差を吸収する
// （1セルの 1e-7 倍 ≒ 数マイクロメートル。実座標の分類には影響しない）
const gridSnapEpsilon = 1e-7

// NewGridMapper GridMapper を作成する
func NewGridMapper(config model.GridConfig) *GridMapper {
	return &GridMapper{
		config: config,
		bound: orb.Bound{
			Min: orb.Point{config.Bounds.MinLng, config.Bounds.MinLat},
			Max: orb.Point{config.Bounds.MaxLng, config.Bounds.MaxLat},
		},
	}
}

// Config マッパーが使用しているグリッド設定を返す
func (m *GridMapper) Config() model.GridConfig {
	return m.config
}

// ToGrid 地理座標をグリッド座標へ変換する
// 緯度は北がy=0になるよう反転し、小数部は切り捨てる。
// 境界ボックス外の座標はエラーにせず、最も近い端のセルへクランプする。
func (m *GridMapper) ToGrid(lat, lng float64) model.GridCoords {
	point := orb.Point{lng, lat}

	fx := (point.Lon() - m.bound.Min.Lon()) / (m.bound.Max.Lon() - m.bound.Min.Lon()) * float64(m.config.Width)
	fy := (1 - (point.Lat()-m.bound.Min.Lat())/(m.bound.Max.Lat()-m.bound.Min.Lat())) * float64(m.config.Height)

	x := int(math.Floor(fx + gridSnapEpsilon))
	y := int(math.Floor(fy + gridSnapEpsilon))

	return model.GridCoords{
		X: clamp(x, 0, m.config.Width-1),
		Y: clamp(y, 0, m.config.Height-1),
	}
}

// ToGeo グリッド座標をセルの北西基準角の地理座標へ変換する
// ToGrid は切り捨てのため、セル角に対しては ToGrid(ToGeo(x,y)) == (x,y) が厳密に成り立つ。
// セル角に揃わない任意の地理座標については逆変換で小数部の情報が失われる。
func (m *GridMapper) ToGeo(x, y int) model.LatLng {
	lat := m.bound.Min.Lat() + (m.bound.Max.Lat()-m.bound.Min.Lat())*(1-float64(y)/float64(m.config.Height))
	lng := m.bound.Min.Lon() + (m.bound.Max.Lon()-m.bound.Min.Lon())*(float64(x)/float64(m.config.Width))
	return model.LatLng{Lat: lat, Lng: lng}
}

// CellBound 指定セルが覆う地理的範囲を orb.Bound として返す
func (m *GridMapper) CellBound(x, y int) orb.Bound {
	nw := m.ToGeo(x, y)
	se := m.ToGeo(x+1, y+1)
	return orb.Bound{
		Min: orb.Point{nw.Lng, se.Lat},
		Max: orb.Point{se.Lng, nw.Lat},
	}
}

// RegionToGrid 地理的な表示範囲をグリッド上の領域へ変換する
// 地図描画側がビューポートのハイドレーションに使う。
func (m *GridMapper) RegionToGrid(bounds model.GeoBounds) model.PixelRegion {
	// 北西角が最小グリッド座標、南東角が最大グリッド座標になる
	nw := m.ToGrid(bounds.MaxLat, bounds.MinLng)
	se := m.ToGrid(bounds.MinLat, bounds.MaxLng)
	return model.PixelRegion{
		MinX: nw.X,
		MaxX: se.X,
		MinY: nw.Y,
		MaxY: se.Y,
	}
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
