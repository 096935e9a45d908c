package touch

import "math"

// Axis は未設定になり得る座標成分
type Axis struct {
	Value int32
	Valid bool
}

// Point は各成分が独立して未設定になり得る座標
type Point struct {
	X Axis
	Y Axis
}

// Complete は両成分が設定済みかどうかを返す
func (p Point) Complete() bool {
	return p.X.Valid && p.Y.Valid
}

// Position は1つのスロットの現在位置と直前の位置を保持する
type Position struct {
	Cur  Point
	Prev Point // 最初のタッチでは未設定
}

// SetX は現在位置を丸ごとPrevへ移してからX成分だけ上書きする
func (p *Position) SetX(x int32) {
	p.Prev = p.Cur
	p.Cur.X = Axis{Value: x, Valid: true}
}

// SetY は現在位置を丸ごとPrevへ移してからY成分だけ上書きする
func (p *Position) SetY(y int32) {
	p.Prev = p.Cur
	p.Cur.Y = Axis{Value: y, Valid: true}
}

// Distance はPrevからCurまでの距離を返す
// どちらかの座標が揃っていない場合 ok は false
func (p *Position) Distance() (dist float64, ok bool) {
	if !p.Cur.Complete() || !p.Prev.Complete() {
		return 0, false
	}

	dx := int64(p.Cur.X.Value) - int64(p.Prev.X.Value)
	dy := int64(p.Cur.Y.Value) - int64(p.Prev.Y.Value)
	return math.Sqrt(float64(dx*dx + dy*dy)), true
}
