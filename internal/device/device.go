package device

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/char5742/touch-status/internal/event"
	"github.com/char5742/touch-status/internal/touch"
	"github.com/char5742/touch-status/internal/utils"
)

// ErrNotTouchDevice はマルチタッチの座標を報告しないデバイスを表す
var ErrNotTouchDevice = errors.New("タッチデバイスではありません")

// Handle は開いたタッチデバイス
type Handle struct {
	ID   int
	Name string
	Path string

	dev     *evdev.InputDevice
	grabbed bool
}

// Open は指定したパスのデバイスを開く
// タッチデバイスでない場合は ErrNotTouchDevice を返す
func Open(path string) (*Handle, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("デバイスファイルを開くのに失敗しました[path=%s]: %w", path, err)
	}

	h, err := newHandle(dev)
	if err != nil {
		_ = dev.File.Close()
		return nil, err
	}
	return h, nil
}

func newHandle(dev *evdev.InputDevice) (*Handle, error) {
	if !IsTouch(dev.CapabilitiesFlat) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotTouchDevice, dev.Fn, dev.Name)
	}

	// 能力の取得で Fd() が呼ばれたファイルはブロッキングのままなので開き直す
	f, err := openNonblock(dev.Fn)
	if err != nil {
		return nil, fmt.Errorf("デバイスファイルを開き直せませんでした[path=%s]: %w", dev.Fn, err)
	}
	_ = dev.File.Close()
	dev.File = f

	id, ok := EventNumber(dev.Fn)
	if !ok {
		id = -1
	}
	return &Handle{ID: id, Name: dev.Name, Path: dev.Fn, dev: dev}, nil
}

// openNonblock はランタイムのポーラーに載るようにデバイスを開く
// Close すると読み込み中の Read が解除される
func openNonblock(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
}

// Discover はタッチデバイスを探して開く
// paths が空の場合は /dev/input/event* をすべて調べる
func Discover(paths []string) ([]*Handle, error) {
	var handles []*Handle

	if len(paths) == 0 {
		devices, err := evdev.ListInputDevices(DefaultGlob)
		if err != nil {
			return nil, fmt.Errorf("デバイス一覧の取得に失敗しました: %w", err)
		}
		for _, dev := range devices {
			h, err := newHandle(dev)
			if err != nil {
				_ = dev.File.Close()
				continue
			}
			handles = append(handles, h)
		}
	} else {
		seen := make(map[string]bool)
		for _, path := range paths {
			if seen[path] {
				continue
			}
			seen[path] = true

			h, err := Open(path)
			if err != nil {
				log.Printf("デバイスをスキップします: %v", err)
				continue
			}
			handles = append(handles, h)
		}
	}

	assignIDs(handles)

	for _, h := range handles {
		log.Printf("タッチデバイスを検出: %d %s (%s)", h.ID, h.Name, h.Path)
	}
	return handles, nil
}

// assignIDs は eventN の番号が取れなかったデバイスに未使用のIDを振る
func assignIDs(handles []*Handle) {
	next := 0
	for _, h := range handles {
		if h.ID >= next {
			next = h.ID + 1
		}
	}
	for _, h := range handles {
		if h.ID < 0 {
			h.ID = next
			next++
		}
	}
}

// IsTouch はマルチタッチの座標を報告するデバイスかどうかを判定する
func IsTouch(caps map[int][]int) bool {
	for _, code := range caps[event.Abs] {
		if code == event.AbsMtPositionX {
			return true
		}
	}
	return false
}

// EventNumber は /dev/input/eventN のパスから N を取り出す
func EventNumber(path string) (int, bool) {
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "event") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(name[len("event"):]))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ReadEvents は次のイベント群をブロックして読み込む
func (h *Handle) ReadEvents() ([]event.Event, error) {
	raw, err := h.dev.Read()
	if err != nil {
		return nil, err
	}

	events := make([]event.Event, len(raw))
	for i, ev := range raw {
		events[i] = event.Event{Time: ev.Time, Type: ev.Type, Code: ev.Code, Value: ev.Value}
	}
	return events, nil
}

// Grab はデバイスを専有する
func (h *Handle) Grab() error {
	if h.grabbed {
		return nil
	}
	if err := utils.IOCtl(h.dev.File, EVIOCGRAB, 1); err != nil {
		return fmt.Errorf("failed to grab device: %w", err)
	}
	h.grabbed = true
	return nil
}

// Release はデバイスの専有を解除する
func (h *Handle) Release() error {
	if !h.grabbed {
		return nil
	}
	if err := utils.IOCtl(h.dev.File, EVIOCGRAB, 0); err != nil {
		return fmt.Errorf("failed to release device: %w", err)
	}
	h.grabbed = false
	return nil
}

// Close はデバイスを閉じる
// 読み込み中の ReadEvents は os.ErrClosed で戻る
func (h *Handle) Close() error {
	_ = h.Release()
	return h.dev.File.Close()
}

// Device はリスナーに渡す形に変換する
func (h *Handle) Device() touch.Device {
	return touch.Device{ID: h.ID, Name: h.Name, Source: h}
}

// Devices はハンドルの一覧をリスナーに渡す形に変換する
func Devices(handles []*Handle) []touch.Device {
	devices := make([]touch.Device, 0, len(handles))
	for _, h := range handles {
		devices = append(devices, h.Device())
	}
	return devices
}

// CloseAll はすべてのハンドルを閉じる
func CloseAll(handles []*Handle) {
	for _, h := range handles {
		if err := h.Close(); err != nil {
			log.Printf("デバイスのクローズに失敗しました[path=%s]: %v", h.Path, err)
		}
	}
}
