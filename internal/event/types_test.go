package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventKind(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want Kind
	}{
		{"tracking id", TrackingID(3), KindTrackingID},
		{"release", TrackingID(ReleaseID), KindTrackingID},
		{"slot", Slot(1), KindSlot},
		{"x", PositionX(100), KindPositionX},
		{"y", PositionY(200), KindPositionY},
		{"syn report", Report(), KindSync},
		{"syn dropped", Event{Type: Syn, Code: 3}, KindSync},
		{"pressure", Event{Type: Abs, Code: AbsMtPressure, Value: 30}, KindOther},
		{"single touch x", Event{Type: Abs, Code: AbsX, Value: 10}, KindOther},
		{"key", Event{Type: Key, Code: 0x14a, Value: 1}, KindOther},
		{"rel uses same code as slot", Event{Type: Rel, Code: AbsMtSlot}, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ev.Kind())
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "sync", KindSync.String())
	assert.Equal(t, "other", Kind(99).String())
}
