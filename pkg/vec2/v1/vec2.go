package vec2

import (
	"fmt"
	"math"
)

// Vec2 - Hold region coordinates as x and y
type Vec2 struct {
	X int32
	Y int32
}

// GetRegion - Returns the region that a cell position is in
func (v *Vec2) GetRegion(regionSize int32) Vec2 {
	return Vec2{floorDiv(v.X, regionSize), floorDiv(v.Y, regionSize)}
}

// RegionOf - Returns the region that a world position is in. Non-finite
// coordinates fall in region 0.
func RegionOf(x, y float64, regionSize int32) Vec2 {
	cell := Vec2{toCell(x), toCell(y)}
	return cell.GetRegion(regionSize)
}

// String - Formats the region as "x.y", the form used for channel names
func (v Vec2) String() string {
	return fmt.Sprintf("%d.%d", v.X, v.Y)
}

// Parse - Reads a region back from its String form
func Parse(s string) (Vec2, error) {
	var v Vec2
	if _, err := fmt.Sscanf(s, "%d.%d", &v.X, &v.Y); err != nil {
		return Vec2{}, fmt.Errorf("parse region %q: %w", s, err)
	}
	return v, nil
}

func toCell(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Floor(f)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int32(f)
}

func floorDiv(a, b int32) int32 {
	if b <= 0 {
		return 0
	}
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
