package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindRisingEdge(t *testing.T) {
	channel := []float64{-1, -1, 0.5, 1, 1}
	time := []float64{0, 1, 2, 3, 4}
	res, ok := Find(channel, time, 0, 0, 4)
	assert.True(t, ok)
	assert.Equal(t, 2, res.Index)
	assert.Equal(t, 2.0, res.Time)
}

func TestFindNoneReturnsFalse(t *testing.T) {
	channel := []float64{1, 1, 1, 1}
	time := []float64{0, 1, 2, 3}
	_, ok := Find(channel, time, 0, 0, 3)
	assert.False(t, ok)
}

func TestFindRespectsTimeWindow(t *testing.T) {
	channel := []float64{-1, 1, -1, 1}
	time := []float64{0, 1, 2, 3}
	// crossing at i=1 (t=1) is outside [2,3]; crossing at i=3 (t=3) is inside.
	res, ok := Find(channel, time, 0, 2, 3)
	assert.True(t, ok)
	assert.Equal(t, 3, res.Index)
}

func TestFindMismatchedLengthsReturnsFalse(t *testing.T) {
	_, ok := Find([]float64{1, 2}, []float64{1}, 0, 0, 1)
	assert.False(t, ok)
}

func TestDisplayWindowIsFiveDivisions(t *testing.T) {
	assert.InDelta(t, 0.05, DisplayWindow(10), 1e-12) // 10 ms/div * 5 / 1000
}

func TestHoldoffSuppressesUntilWindowElapses(t *testing.T) {
	var h Holdoff
	channel := []float64{-1, 1, -1, 1, -1, 1}
	time := []float64{0, 0.01, 0.02, 0.03, 0.04, 0.05}
	window := 0.03

	res1, ok1 := h.Evaluate(channel, time, 0, 0, 0.05, window)
	assert.True(t, ok1)
	firstTrigger := res1.Time

	// Still within holdoff window (tLatest < trigger+window): must return
	// the same, already-active trigger rather than re-searching.
	res2, ok2 := h.Evaluate(channel, time, 0, 0, firstTrigger+0.01, window)
	assert.True(t, ok2)
	assert.Equal(t, firstTrigger, res2.Time)
}

func TestHoldoffClearsOnBackwardTimeline(t *testing.T) {
	var h Holdoff
	h.active = true
	h.triggerTime = 1.0
	channel := []float64{-1, 1}
	time := []float64{0, 0.001}
	_, _ = h.Evaluate(channel, time, 0, 0, 0.5, 0.03) // tLatest < triggerTime
	assert.False(t, h.active)
}

func TestResetClearsHoldoff(t *testing.T) {
	var h Holdoff
	h.active = true
	h.triggerTime = 5
	h.Reset()
	assert.False(t, h.active)
	assert.Equal(t, 0.0, h.triggerTime)
}
