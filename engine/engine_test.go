package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/miksto/lockin-amplifier-engine/dsp/chain"
	"github.com/miksto/lockin-amplifier-engine/dsp/dbuf"
	"github.com/miksto/lockin-amplifier-engine/engine/config"
)

func TestInitRejectsUndersizedBuffer(t *testing.T) {
	f := New(nil)
	buf := dbuf.New(100)
	err := f.Init(buf, 200)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestStartBeforeInitIsRejected(t *testing.T) {
	f := New(nil)
	err := f.Start(context.Background(), config.Default())
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestUpdateParamsBeforeStartErrors(t *testing.T) {
	f := New(nil)
	buf := dbuf.New(10000)
	assert.NoError(t, f.Init(buf, 10000))
	err := f.UpdateParams(config.Diff{})
	assert.Error(t, err)
}

func TestTickProcessesDueSamplesAndAdvancesClock(t *testing.T) {
	f := New(nil)
	params := config.Default()
	params.RingCapacity = 2000
	runner, err := chain.New(params)
	assert.NoError(t, err)
	f.runner = runner
	f.params = params

	start := time.Unix(0, 0)
	f.lastSampleTime = start
	f.lastPublishTime = start

	later := start.Add(10 * time.Millisecond) // 10ms * 50000Hz = 500 samples
	f.tick(later)

	assert.Equal(t, uint64(500), f.runner.SampleCount())
	assert.Equal(t, later, f.lastSampleTime)
}

func TestTickCapsAtMaxSamplesPerTick(t *testing.T) {
	f := New(nil)
	params := config.Default()
	params.RingCapacity = 2000
	runner, err := chain.New(params)
	assert.NoError(t, err)
	f.runner = runner
	f.params = params
	f.snapshotPoints = 100
	f.buffer = dbuf.New(100) // the stall also makes the tick publish a snapshot

	start := time.Unix(0, 0)
	f.lastSampleTime = start
	f.lastPublishTime = start

	// A huge stall: 10 seconds * 50000Hz would be due, capped at 2000.
	later := start.Add(10 * time.Second)
	f.tick(later)

	assert.Equal(t, uint64(maxSamplesPerTick), f.runner.SampleCount())
}

func TestPublishEmitsFrameReadyAndAveragesOutputs(t *testing.T) {
	f := New(nil)
	params := config.Default()
	params.RingCapacity = 2000
	params.SnapshotPoints = 100
	runner, err := chain.New(params)
	assert.NoError(t, err)
	f.runner = runner
	f.params = params
	f.snapshotPoints = 100
	f.buffer = dbuf.New(100)

	for i := 0; i < 500; i++ {
		runner.ProcessSample()
	}

	f.publish(time.Now())

	select {
	case fr := <-f.events:
		assert.Greater(t, fr.EffectiveSampleRate, 0.0)
	default:
		t.Fatal("expected a FrameReady event")
	}
}

func TestStopOnNeverStartedEngineIsNoop(t *testing.T) {
	f := New(nil)
	assert.NoError(t, f.Stop())
}

func TestUpdateParamsRoutesThroughLoopGoroutine(t *testing.T) {
	f := New(nil)
	buf := dbuf.New(100)
	assert.NoError(t, f.Init(buf, 100))

	params := config.Default()
	params.RingCapacity = 2000
	params.SnapshotPoints = 100
	assert.NoError(t, f.Start(context.Background(), params))
	defer f.Stop()

	time.Sleep(2 * time.Millisecond) // let the loop goroutine process a few samples
	assert.Greater(t, f.runner.SampleCount(), uint64(0))

	err := f.UpdateParams(config.Diff{LPF: &config.LowPassFilter{CutoffFrequency: 5, Order: 2}})
	assert.NoError(t, err)
	assert.Equal(t, 0, f.runner.Rings()[chain.ChanAfterBpf].Len(),
		"filter change applied on the loop goroutine clears rings")

	badCutoff := params.SampleRate // >= Nyquist, rejected
	err = f.UpdateParams(config.Diff{LPF: &config.LowPassFilter{CutoffFrequency: badCutoff, Order: 2}})
	assert.Error(t, err, "errors from the loop goroutine must propagate back to the caller")
}

func TestStartThenStopLifecycle(t *testing.T) {
	f := New(nil)
	buf := dbuf.New(100)
	assert.NoError(t, f.Init(buf, 100))

	params := config.Default()
	params.RingCapacity = 2000
	params.SnapshotPoints = 100
	assert.NoError(t, f.Start(context.Background(), params))
	assert.True(t, f.running)

	time.Sleep(5 * time.Millisecond)
	assert.NoError(t, f.Stop())
	assert.False(t, f.running)
}
