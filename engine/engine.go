// Package engine implements the EngineFacade control surface: a
// message-passing producer that owns the DSP chain and a shared double
// buffer, paced off the monotonic clock and supervised by an errgroup.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/miksto/lockin-amplifier-engine/dsp/chain"
	"github.com/miksto/lockin-amplifier-engine/dsp/dbuf"
	"github.com/miksto/lockin-amplifier-engine/engine/config"
)

// Errors surfaced to callers per spec §7.
var (
	ErrNotInitialized = errors.New("engine: not initialized")
	ErrShapeMismatch  = errors.New("engine: shared buffer too small for declared snapshotPoints")
	ErrAlreadyRunning = errors.New("engine: already started")
)

// maxSamplesPerTick bounds one scheduler tick's work after a long stall.
const maxSamplesPerTick = 2000

// FrameReady is emitted roughly at snapshotRate Hz once a new snapshot has
// been published into the double buffer.
type FrameReady struct {
	Outputs             chain.Outputs
	EffectiveSampleRate float64
	DataLength          int
}

// updateRequest is an UpdateParams control-channel message: the loop
// goroutine is the only one that ever touches the Runner, so the diff and
// its result travel as a message rather than through a shared-memory call.
type updateRequest struct {
	diff   config.Diff
	result chan error
}

// Facade is the engine's control surface: Init, Start, Stop, UpdateParams.
type Facade struct {
	logger *log.Logger

	buffer         *dbuf.Buffer
	snapshotPoints int
	initialized    bool

	running bool
	cancel  context.CancelFunc
	group   *errgroup.Group
	loopCtx context.Context

	events  chan FrameReady
	control chan updateRequest

	runner *chain.Runner
	params config.Params

	lastSampleTime  time.Time
	lastPublishTime time.Time
	nowFunc         func() time.Time
}

// New creates a Facade. logger defaults to log.Default() when nil.
func New(logger *log.Logger) *Facade {
	if logger == nil {
		logger = log.Default()
	}
	return &Facade{
		logger:  logger,
		events:  make(chan FrameReady, 8),
		control: make(chan updateRequest),
		nowFunc: time.Now,
	}
}

// Events returns the channel FrameReady notifications are delivered on.
func (f *Facade) Events() <-chan FrameReady {
	return f.events
}

// Init wires up the shared double buffer. Must precede Start.
func (f *Facade) Init(buffer *dbuf.Buffer, snapshotPoints int) error {
	if buffer.SnapshotPoints() < snapshotPoints {
		return fmt.Errorf("%w: buffer holds %d points, need %d", ErrShapeMismatch, buffer.SnapshotPoints(), snapshotPoints)
	}
	f.buffer = buffer
	f.snapshotPoints = snapshotPoints
	f.initialized = true
	return nil
}

// Start builds the DSP graph from params and begins the scheduler loop.
func (f *Facade) Start(ctx context.Context, params config.Params) error {
	if !f.initialized {
		f.logger.Println("engine: Start before Init, ignoring")
		return ErrNotInitialized
	}
	if f.running {
		return ErrAlreadyRunning
	}
	params.Clamp()

	runner, err := chain.New(params)
	if err != nil {
		return fmt.Errorf("engine: start: %w", err)
	}
	f.runner = runner
	f.params = params

	loopCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	group, groupCtx := errgroup.WithContext(loopCtx)
	f.group = group
	f.loopCtx = groupCtx
	f.running = true

	f.lastSampleTime = f.nowFunc()
	f.lastPublishTime = f.lastSampleTime

	group.Go(func() error {
		return f.loop(groupCtx)
	})
	return nil
}

// Stop cancels the scheduler loop, waits for it to finish, and zeros
// accumulators. DSP component ownership is released.
func (f *Facade) Stop() error {
	if !f.running {
		return nil
	}
	f.cancel()
	err := f.group.Wait()
	f.running = false
	f.runner = nil
	f.loopCtx = nil
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// UpdateParams applies a partial parameter update to the running chain.
// Per spec §5/§6, the diff travels to the scheduler goroutine as a
// control-channel message rather than mutating the Runner directly, since
// that goroutine concurrently calls ProcessSample every tick.
func (f *Facade) UpdateParams(diff config.Diff) error {
	if !f.initialized {
		return ErrNotInitialized
	}
	if !f.running {
		return errors.New("engine: UpdateParams before Start")
	}

	req := updateRequest{diff: diff, result: make(chan error, 1)}
	select {
	case f.control <- req:
	case <-f.loopCtx.Done():
		return errors.New("engine: UpdateParams: engine stopped")
	}

	select {
	case err := <-req.result:
		return err
	case <-f.loopCtx.Done():
		return errors.New("engine: UpdateParams: engine stopped")
	}
}

func (f *Facade) loop(ctx context.Context) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			f.tick(now)
		case req := <-f.control:
			req.result <- f.runner.UpdateParams(req.diff)
		}
	}
}

func (f *Facade) tick(now time.Time) {
	elapsed := now.Sub(f.lastSampleTime).Seconds()
	due := int(math.Floor(elapsed * f.params.SampleRate))
	if due > maxSamplesPerTick {
		due = maxSamplesPerTick
	}
	for i := 0; i < due; i++ {
		f.runner.ProcessSample()
	}
	if due > 0 {
		f.lastSampleTime = now
	}

	snapshotPeriod := time.Duration(1000/f.params.SnapshotRate) * time.Millisecond
	if now.Sub(f.lastPublishTime) >= snapshotPeriod {
		f.publish(now)
		f.lastPublishTime = now
	}
}

func (f *Facade) publish(now time.Time) {
	view := f.buffer.AcquireWrite()
	rings := f.runner.Rings()
	dataLength := 0
	for ch := 0; ch < chain.NumChannels; ch++ {
		n := rings[ch].SnapshotInto(view.Channel(ch), f.snapshotPoints)
		if n > dataLength {
			dataLength = n
		}
	}
	f.buffer.Publish(view)

	outputs := f.runner.AverageAndReset()
	stride := ceilDiv(f.params.RingCapacity, f.snapshotPoints)
	effectiveRate := f.params.SampleRate / float64(stride)

	select {
	case f.events <- FrameReady{Outputs: outputs, EffectiveSampleRate: effectiveRate, DataLength: dataLength}:
	default:
		f.logger.Println("engine: FrameReady consumer not keeping up, dropping event")
	}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 1
	}
	return (a + b - 1) / b
}
