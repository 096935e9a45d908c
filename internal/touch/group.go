package touch

import (
	"errors"
	"fmt"
	"sort"
)

// ErrRebind は解放されていないトラッキングIDが別のスロットに割り当てられたことを表す
var ErrRebind = errors.New("トラッキングIDが解放前に別スロットへ再割り当てされました")

// Slot はデバイスが割り当てるスロット番号
// スロット選択イベントが来ていない場合は Valid が false になる
type Slot struct {
	Num   int32
	Valid bool
}

// SlotOf はスロット番号から Slot を作る
func SlotOf(n int32) Slot {
	return Slot{Num: n, Valid: true}
}

func (s Slot) String() string {
	if !s.Valid {
		return "slot(-)"
	}
	return fmt.Sprintf("slot(%d)", s.Num)
}

// Group は1台のデバイス上のタッチ点の集合
// デコーダのゴルーチンだけが触る
type Group struct {
	idSlot  map[int32]Slot
	slotPos map[Slot]*Position
}

// NewGroup は空の Group を作る
func NewGroup() *Group {
	return &Group{
		idSlot:  make(map[int32]Slot),
		slotPos: make(map[Slot]*Position),
	}
}

// Bind はIDをスロットに割り当て、スロットに新しい Position を作る
// 同じIDと同じスロットの組み合わせなら何もしない
func (g *Group) Bind(id int32, slot Slot) error {
	if bound, ok := g.idSlot[id]; ok {
		if bound != slot {
			return fmt.Errorf("%w: id=%d %v -> %v", ErrRebind, id, bound, slot)
		}
		return nil
	}

	g.idSlot[id] = slot
	g.slotPos[slot] = &Position{}
	return nil
}

// ReleaseHighest は最大のトラッキングIDとそのスロットを削除する
// イベント列からは離れた指のIDが分からないため、最大IDを離れた指とみなす
func (g *Group) ReleaseHighest() {
	if len(g.idSlot) == 0 {
		return
	}

	first := true
	var highest int32
	for id := range g.idSlot {
		if first || id > highest {
			highest = id
			first = false
		}
	}

	delete(g.slotPos, g.idSlot[highest])
	delete(g.idSlot, highest)
}

// IsEmpty は追跡中のスロットがないかどうかを返す
func (g *Group) IsEmpty() bool {
	return len(g.slotPos) == 0
}

// Len は追跡中のスロット数を返す
func (g *Group) Len() int {
	return len(g.slotPos)
}

// Position はスロットの Position を返す
func (g *Group) Position(slot Slot) (*Position, bool) {
	pos, ok := g.slotPos[slot]
	return pos, ok
}

// IDs は追跡中のトラッキングIDを昇順で返す
func (g *Group) IDs() []int32 {
	ids := make([]int32, 0, len(g.idSlot))
	for id := range g.idSlot {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SlotOfID はIDに割り当てられたスロットを返す
func (g *Group) SlotOfID(id int32) (Slot, bool) {
	slot, ok := g.idSlot[id]
	return slot, ok
}
