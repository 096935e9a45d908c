package event

import "syscall"

// イベントタイプの定数（input-event-codes.hより）
const (
	Syn = 0x00 // 同期イベント
	Key = 0x01 // キーイベント
	Rel = 0x02 // 相対座標イベント
	Abs = 0x03 // 絶対座標イベント

	AbsX            = 0x00 // X軸の絶対座標
	AbsY            = 0x01 // Y軸の絶対座標
	AbsMtSlot       = 0x2f // マルチタッチスロット
	AbsMtTouchMajor = 0x30 // タッチ領域の長径
	AbsMtPositionX  = 0x35 // マルチタッチのX座標
	AbsMtPositionY  = 0x36 // マルチタッチのY座標
	AbsMtTrackingId = 0x39 // タッチ追跡用ID
	AbsMtPressure   = 0x3a // タッチ圧力

	SynReport = 0 // イベント報告の同期
)

// ReleaseID は指が離れたことを示すトラッキングIDの値
const ReleaseID = -1

// Event は入力イベントを表す構造体
type Event struct {
	Time  syscall.Timeval // イベント発生時刻
	Type  uint16          // イベントタイプ
	Code  uint16          // イベントコード
	Value int32           // イベント値
}

// Kind はデコーダが区別するイベントの種類
type Kind int

const (
	KindOther Kind = iota
	KindTrackingID
	KindSlot
	KindPositionX
	KindPositionY
	KindSync
)

func (k Kind) String() string {
	switch k {
	case KindTrackingID:
		return "tracking-id"
	case KindSlot:
		return "slot"
	case KindPositionX:
		return "position-x"
	case KindPositionY:
		return "position-y"
	case KindSync:
		return "sync"
	default:
		return "other"
	}
}

// Kind はイベントを種類に分類する
// EV_SYN はコードに関係なく同期として扱う
func (e Event) Kind() Kind {
	switch e.Type {
	case Syn:
		return KindSync
	case Abs:
		switch e.Code {
		case AbsMtTrackingId:
			return KindTrackingID
		case AbsMtSlot:
			return KindSlot
		case AbsMtPositionX:
			return KindPositionX
		case AbsMtPositionY:
			return KindPositionY
		}
	}
	return KindOther
}

// 以下はテストやシミュレーション用のイベント生成関数

// TrackingID はトラッキングIDイベントを作る
func TrackingID(id int32) Event {
	return Event{Type: Abs, Code: AbsMtTrackingId, Value: id}
}

// Slot はスロット選択イベントを作る
func Slot(slot int32) Event {
	return Event{Type: Abs, Code: AbsMtSlot, Value: slot}
}

// PositionX はX座標イベントを作る
func PositionX(x int32) Event {
	return Event{Type: Abs, Code: AbsMtPositionX, Value: x}
}

// PositionY はY座標イベントを作る
func PositionY(y int32) Event {
	return Event{Type: Abs, Code: AbsMtPositionY, Value: y}
}

// Report は同期イベントを作る
func Report() Event {
	return Event{Type: Syn, Code: SynReport}
}
