package touch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(x, y int32) Point {
	return Point{X: Axis{Value: x, Valid: true}, Y: Axis{Value: y, Valid: true}}
}

func groupWith(t *testing.T, prev, cur Point) *Group {
	t.Helper()
	g := NewGroup()
	require.NoError(t, g.Bind(1, SlotOf(0)))
	pos, _ := g.Position(SlotOf(0))
	pos.Prev = prev
	pos.Cur = cur
	return g
}

func TestClassify(t *testing.T) {
	t.Run("short move is a click", func(t *testing.T) {
		g := groupWith(t, point(0, 0), point(3, 4))
		assert.Equal(t, StatusClick, Classify(g, 10))
	})

	t.Run("move reaching the threshold is a slide", func(t *testing.T) {
		g := groupWith(t, point(0, 0), point(6, 8))
		assert.Equal(t, StatusSlide, Classify(g, 10))
	})

	t.Run("distance is rounded", func(t *testing.T) {
		// sqrt(90) = 9.486...
		g := groupWith(t, point(0, 0), point(3, 9))
		assert.Equal(t, StatusSlide, Classify(g, 9))
		// sqrt(72) = 8.485...
		g = groupWith(t, point(0, 0), point(6, 6))
		assert.Equal(t, StatusClick, Classify(g, 9))
	})

	t.Run("incomplete samples never slide", func(t *testing.T) {
		g := groupWith(t, Point{X: Axis{Value: 0, Valid: true}}, point(500, 500))
		assert.Equal(t, StatusClick, Classify(g, 1))
	})

	t.Run("empty group is none", func(t *testing.T) {
		assert.Equal(t, StatusNone, Classify(NewGroup(), 10))
	})

	t.Run("all ids released is none", func(t *testing.T) {
		g := groupWith(t, point(0, 0), point(100, 100))
		g.ReleaseHighest()
		assert.Equal(t, StatusNone, Classify(g, 10))
	})

	t.Run("any sliding slot wins", func(t *testing.T) {
		g := groupWith(t, point(0, 0), point(0, 0))
		require.NoError(t, g.Bind(2, SlotOf(1)))
		pos, _ := g.Position(SlotOf(1))
		pos.Prev = point(0, 0)
		pos.Cur = point(0, 50)
		assert.Equal(t, StatusSlide, Classify(g, 10))
	})

	t.Run("zero threshold slides on any complete pair", func(t *testing.T) {
		g := groupWith(t, point(7, 7), point(7, 7))
		assert.Equal(t, StatusSlide, Classify(g, 0))
	})

	t.Run("same input gives same output", func(t *testing.T) {
		g := groupWith(t, point(0, 0), point(6, 8))
		first := Classify(g, 10)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Classify(g, 10))
		}
	})
}

func TestPublishOnlyOnChange(t *testing.T) {
	ds := newDeviceStatus(0, "test")
	notice := make(chan struct{}, 1)

	assert.False(t, ds.publish(StatusNone, notice), "initial value is none")
	assert.Len(t, notice, 0)

	assert.True(t, ds.publish(StatusClick, notice))
	assert.False(t, ds.publish(StatusClick, notice))
	assert.Len(t, notice, 1)
	assert.Equal(t, StatusClick, ds.Load())
}

func TestPublishCoalescesNotifications(t *testing.T) {
	ds := newDeviceStatus(0, "test")
	notice := make(chan struct{}, 1)

	for _, s := range []Status{StatusClick, StatusSlide, StatusClick, StatusNone, StatusSlide} {
		ds.publish(s, notice)
	}

	assert.Len(t, notice, 1)
	assert.Equal(t, StatusSlide, ds.Load())
}

func TestDeviceStatusStop(t *testing.T) {
	ds := newDeviceStatus(3, "pad")
	assert.True(t, ds.Alive())
	assert.NoError(t, ds.Err())

	ds.stop(assert.AnError)
	ds.stop(nil)

	assert.False(t, ds.Alive())
	assert.ErrorIs(t, ds.Err(), assert.AnError)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "slide", StatusSlide.String())
	assert.Equal(t, "click", StatusClick.String())
	assert.Equal(t, "none", StatusNone.String())

	b, err := StatusSlide.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"slide"`, string(b))
}
