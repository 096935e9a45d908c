package touch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync/atomic"
	"time"
)

var (
	ErrNoDevice        = errors.New("利用可能なタッチデバイスがありません")
	ErrDuplicateDevice = errors.New("デバイスIDが重複しています")
	ErrDisconnected    = errors.New("すべてのデバイス監視が停止しました")
	ErrTimeout         = errors.New("状態更新の待機がタイムアウトしました")
)

// Device はリスナーに渡すデバイス
type Device struct {
	ID     int
	Name   string
	Source Source
}

// Listener はタッチデバイスごとにデコーダを動かし、状態の変化を待ち受ける
type Listener struct {
	devices   []*DeviceStatus
	notice    chan struct{}
	done      chan struct{}
	live      atomic.Int32
	threshold *atomic.Uint64
}

// NewListener はデバイスごとに監視ゴルーチンを起動して Listener を作る
//
// threshold: 移動と判定する最小ピクセル数（推奨値 DefaultMotionThreshold）
func NewListener(devices []Device, threshold uint64) (*Listener, error) {
	if len(devices) == 0 {
		return nil, ErrNoDevice
	}

	seen := make(map[int]bool, len(devices))
	for _, dev := range devices {
		if dev.Source == nil {
			return nil, fmt.Errorf("デバイス %d (%s) の入力がありません", dev.ID, dev.Name)
		}
		if seen[dev.ID] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateDevice, dev.ID)
		}
		seen[dev.ID] = true
	}

	l := &Listener{
		notice:    make(chan struct{}, 1),
		done:      make(chan struct{}),
		threshold: new(atomic.Uint64),
	}
	l.threshold.Store(threshold)
	l.live.Store(int32(len(devices)))

	for _, dev := range devices {
		status := newDeviceStatus(dev.ID, dev.Name)
		l.devices = append(l.devices, status)
		go l.watch(dev.Source, status)
	}

	sort.Slice(l.devices, func(i, j int) bool { return l.devices[i].ID < l.devices[j].ID })

	return l, nil
}

func (l *Listener) watch(src Source, status *DeviceStatus) {
	d := newDecoder(status, l.notice, l.threshold)
	err := d.run(src)

	if errors.Is(err, os.ErrClosed) {
		log.Printf("デバイス %d (%s) の監視を終了しました", status.ID, status.Name)
	} else {
		log.Printf("デバイス %d (%s) の読み取りに失敗したため監視を停止します: %v", status.ID, status.Name, err)
	}
	status.stop(err)

	if l.live.Add(-1) == 0 {
		close(l.done)
	}
}

// Wait は状態が更新されるまでブロックする
//
// すべてのデバイス監視が停止している場合は ErrDisconnected を返す
func (l *Listener) Wait() error {
	return l.WaitContext(context.Background())
}

// WaitTimeout は状態が更新されるまで最大 t だけブロックする
func (l *Listener) WaitTimeout(t time.Duration) error {
	timer := time.NewTimer(t)
	defer timer.Stop()

	select {
	case <-l.notice:
		return nil
	case <-l.done:
		return l.drain()
	case <-timer.C:
		return ErrTimeout
	}
}

// WaitContext は状態が更新されるか ctx が終了するまでブロックする
func (l *Listener) WaitContext(ctx context.Context) error {
	select {
	case <-l.notice:
		return nil
	case <-l.done:
		return l.drain()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain は停止後に残っている通知を1つだけ受け取る
func (l *Listener) drain() error {
	select {
	case <-l.notice:
		return nil
	default:
		return ErrDisconnected
	}
}

// Status は全デバイスの状態をまとめて返す
//
// 対応する状態のデバイスが1台でもあればその値は true になる
func (l *Listener) Status() (slide, click, none bool) {
	for _, ds := range l.devices {
		switch ds.Load() {
		case StatusSlide:
			slide = true
		case StatusClick:
			click = true
		case StatusNone:
			none = true
		}
	}
	return slide, click, none
}

// SetMotionThreshold は移動と判定する最小ピクセル数を変更する
// 各デコーダの次回の判定から反映される
func (l *Listener) SetMotionThreshold(pixels uint64) {
	l.threshold.Store(pixels)
}

// MotionThreshold は現在の閾値を返す
func (l *Listener) MotionThreshold() uint64 {
	return l.threshold.Load()
}

// Devices はデバイスごとの状態をID順で返す
func (l *Listener) Devices() []*DeviceStatus {
	return append([]*DeviceStatus(nil), l.devices...)
}

// Live は動作中のデコーダ数を返す
func (l *Listener) Live() int {
	return int(l.live.Load())
}

// Done はすべてのデコーダが停止すると閉じられる
func (l *Listener) Done() <-chan struct{} {
	return l.done
}
