package touch

import (
	"log"
	"sync/atomic"

	"github.com/char5742/touch-status/internal/event"
)

// Source はデバイスから次のイベント群をブロックして取り出す
type Source interface {
	ReadEvents() ([]event.Event, error)
}

type axisEvent struct {
	kind  event.Kind
	value int32
}

// decoder は1台のデバイスのイベント列からタッチ点を再構成する
//
// 1回のレポートは ID / スロット / 座標イベントの塊として届き、同期イベントで終わる
// ID・スロットの切り替えと同期イベントのたびに flush で溜めた座標を反映する
type decoder struct {
	group *Group

	id      int32
	hasID   bool
	slot    Slot
	pending []axisEvent

	status    *DeviceStatus
	notice    chan<- struct{}
	threshold *atomic.Uint64
}

func newDecoder(status *DeviceStatus, notice chan<- struct{}, threshold *atomic.Uint64) *decoder {
	return &decoder{
		group:     NewGroup(),
		status:    status,
		notice:    notice,
		threshold: threshold,
	}
}

// run はデバイスが読めなくなるまでイベントを処理し続ける
func (d *decoder) run(src Source) error {
	for {
		events, err := src.ReadEvents()
		if err != nil {
			return err
		}
		for _, ev := range events {
			d.feed(ev)
		}
	}
}

func (d *decoder) feed(ev event.Event) {
	switch kind := ev.Kind(); kind {
	case event.KindTrackingID:
		d.flush()
		d.id = ev.Value
		d.hasID = true
	case event.KindSlot:
		d.flush()
		d.slot = SlotOf(ev.Value)
	case event.KindPositionX, event.KindPositionY:
		d.pending = append(d.pending, axisEvent{kind: kind, value: ev.Value})
	case event.KindSync:
		d.flush()
	}
}

func (d *decoder) classify() {
	d.status.publish(Classify(d.group, d.threshold.Load()), d.notice)
}

func (d *decoder) flush() {
	if len(d.pending) == 0 && !d.hasID {
		return
	}

	if d.hasID {
		if d.id == event.ReleaseID {
			d.group.ReleaseHighest()
			d.hasID = false
			d.pending = d.pending[:0]
			d.classify()
			return
		}

		if err := d.group.Bind(d.id, d.slot); err != nil {
			log.Printf("デバイス %d: %v (レポートを破棄します)", d.status.ID, err)
			d.reset()
			return
		}
	}

	// 座標がなくても ID やスロットの変化は判定に反映する
	d.classify()

	for _, ev := range d.pending {
		// 最新の座標を反映する前に判定する
		d.classify()

		pos, ok := d.group.Position(d.slot)
		if !ok {
			d.reset()
			return
		}

		switch ev.kind {
		case event.KindPositionX:
			pos.SetX(ev.value)
		case event.KindPositionY:
			pos.SetY(ev.value)
		}
	}

	d.reset()
}

func (d *decoder) reset() {
	d.pending = d.pending[:0]
	d.hasID = false
	d.slot = Slot{}
}
