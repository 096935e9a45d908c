package touch

import (
	"encoding/json"
	"sync"
	"sync/atomic"
)

// Status は現在のタッチ状態を表す
//
// StatusSlide: 少なくとも1つのタッチ点が移動している
// StatusClick: タッチ点はあるが、どれも移動していない
// StatusNone: タッチ点がない
type Status int32

const (
	StatusNone Status = iota
	StatusClick
	StatusSlide
)

func (s Status) String() string {
	switch s {
	case StatusSlide:
		return "slide"
	case StatusClick:
		return "click"
	default:
		return "none"
	}
}

// MarshalJSON は状態を文字列として書き出す
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// DeviceStatus は1台のデバイスの公開状態
// 書き込むのはそのデバイスのデコーダだけで、読み取りは任意のゴルーチンから行える
type DeviceStatus struct {
	ID   int
	Name string

	status atomic.Int32
	alive  atomic.Bool

	errOnce sync.Once
	err     atomic.Pointer[error]
}

func newDeviceStatus(id int, name string) *DeviceStatus {
	ds := &DeviceStatus{ID: id, Name: name}
	ds.status.Store(int32(StatusNone))
	ds.alive.Store(true)
	return ds
}

// Load は現在の状態を返す
func (ds *DeviceStatus) Load() Status {
	return Status(ds.status.Load())
}

// Alive はデコーダがまだ動いているかどうかを返す
// false の場合、状態は最後の値のまま固定される
func (ds *DeviceStatus) Alive() bool {
	return ds.alive.Load()
}

// Err はデコーダが停止した原因を返す
func (ds *DeviceStatus) Err() error {
	if p := ds.err.Load(); p != nil {
		return *p
	}
	return nil
}

func (ds *DeviceStatus) stop(err error) {
	ds.errOnce.Do(func() {
		if err != nil {
			ds.err.Store(&err)
		}
		ds.alive.Store(false)
	})
}

// publish は状態が変わった場合だけ保存して通知する
// 通知チャネルが埋まっている場合は通知を捨てる（複数の変化を1回の起床にまとめる）
func (ds *DeviceStatus) publish(s Status, notice chan<- struct{}) bool {
	if ds.Load() == s {
		return false
	}
	ds.status.Store(int32(s))

	select {
	case notice <- struct{}{}:
	default:
	}
	return true
}
