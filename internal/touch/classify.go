package touch

import "math"

// DefaultMotionThreshold は移動と判定する最小ピクセル数の推奨値
const DefaultMotionThreshold = 5

// Classify はタッチ点の集合から状態を判定する
// 同じ Group と閾値に対しては常に同じ結果を返す
func Classify(g *Group, threshold uint64) Status {
	for _, pos := range g.slotPos {
		if sliding(pos, threshold) {
			return StatusSlide
		}
	}

	if g.IsEmpty() {
		return StatusNone
	}
	return StatusClick
}

func sliding(pos *Position, threshold uint64) bool {
	dist, ok := pos.Distance()
	if !ok {
		return false
	}
	return uint64(math.Round(dist)) >= threshold
}
