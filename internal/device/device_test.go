package device

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/char5742/touch-status/internal/event"
)

func TestIsTouch(t *testing.T) {
	tests := []struct {
		name string
		caps map[int][]int
		want bool
	}{
		{"multitouch", map[int][]int{event.Abs: {event.AbsX, event.AbsMtSlot, event.AbsMtPositionX, event.AbsMtPositionY}}, true},
		{"single touch only", map[int][]int{event.Abs: {event.AbsX, event.AbsY}}, false},
		{"mouse", map[int][]int{event.Rel: {0, 1}, event.Key: {0x110}}, false},
		{"position x code on another type", map[int][]int{event.Rel: {event.AbsMtPositionX}}, false},
		{"no capabilities", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTouch(tt.caps))
		})
	}
}

func TestEventNumber(t *testing.T) {
	n, ok := EventNumber("/dev/input/event12")
	require.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = EventNumber("/dev/input/mouse0")
	assert.False(t, ok)
	_, ok = EventNumber("/dev/input/by-id/usb-touch-event-mouse")
	assert.False(t, ok)
	_, ok = EventNumber("event")
	assert.False(t, ok)
}

func TestAssignIDs(t *testing.T) {
	handles := []*Handle{
		{ID: 4, Path: "/dev/input/event4"},
		{ID: -1, Path: "/tmp/touch-a"},
		{ID: 2, Path: "/dev/input/event2"},
		{ID: -1, Path: "/tmp/touch-b"},
	}

	assignIDs(handles)

	assert.Equal(t, 4, handles[0].ID)
	assert.Equal(t, 5, handles[1].ID)
	assert.Equal(t, 2, handles[2].ID)
	assert.Equal(t, 6, handles[3].ID)
}

func TestDevicesConversion(t *testing.T) {
	handles := []*Handle{{ID: 1, Name: "pad"}, {ID: 3, Name: "screen"}}

	devices := Devices(handles)
	require.Len(t, devices, 2)
	assert.Equal(t, 3, devices[1].ID)
	assert.Equal(t, "screen", devices[1].Name)
	assert.Same(t, handles[1], devices[1].Source)
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open("/nonexistent/event0")
	assert.Error(t, err)
}

// newFIFOHandle は FIFO をデバイスファイルの代わりにしたハンドルと書き込み側を返す
func newFIFOHandle(t *testing.T) (*Handle, *os.File) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event0")
	require.NoError(t, unix.Mkfifo(path, 0o600))

	f, err := openNonblock(path)
	require.NoError(t, err)
	// 書き込み側を開いておかないと読み込みが EOF になる
	w, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	h := &Handle{ID: 0, Name: "fifo", Path: path, dev: &evdev.InputDevice{Fn: path, File: f}}
	return h, w
}

func TestReadEventsFromFile(t *testing.T) {
	h, w := newFIFOHandle(t)
	defer h.Close()

	raw := evdev.InputEvent{
		Time:  syscall.Timeval{Sec: 1, Usec: 2},
		Type:  event.Abs,
		Code:  event.AbsMtTrackingId,
		Value: 3,
	}
	require.NoError(t, binary.Write(w, binary.LittleEndian, &raw))

	events, err := h.ReadEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.KindTrackingID, events[0].Kind())
	assert.Equal(t, int32(3), events[0].Value)
}

func TestCloseUnblocksReadEvents(t *testing.T) {
	h, _ := newFIFOHandle(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := h.ReadEvents()
		errCh <- err
	}()

	// 読み込みがブロックするまで待つ
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, h.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, os.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("ReadEvents still blocked after Close")
	}
}
