// Package dbuf implements the lock-free double-buffered shared-memory region
// the engine publishes snapshots through: a single producer and a single
// consumer exchange thirteen Float32 channel arrays via one atomic flag.
// Float32 encoding follows the same math.Float32bits/binary.LittleEndian
// approach used to pack audio samples into a byte stream.
package dbuf

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// NumChannels is the fixed channel count and order: reference, modulating,
// modulatingPlusNoise, sensorClean, noise, sensor, afterBpf, mixerI, mixerQ,
// iOutput, qOutput, signedOutput, time.
const NumChannels = 13

const (
	ChannelReference = iota
	ChannelModulating
	ChannelModulatingPlusNoise
	ChannelSensorClean
	ChannelNoise
	ChannelSensor
	ChannelAfterBpf
	ChannelMixerI
	ChannelMixerQ
	ChannelIOutput
	ChannelQOutput
	ChannelSignedOutput
	ChannelTime
)

// Buffer is the shared memory region: a 4-byte atomic flag followed by two
// blocks, each NumChannels contiguous Float32 arrays of length snapshotPoints.
type Buffer struct {
	snapshotPoints int
	flag           atomic.Int32
	blocks         [2][]float32 // row-major: block[b][channel*snapshotPoints+i]
	raw            [2][]byte    // bit-exact little-endian mirror, for External readers
}

// New allocates a Buffer sized for snapshotPoints samples per channel.
func New(snapshotPoints int) *Buffer {
	b := &Buffer{snapshotPoints: snapshotPoints}
	for i := range b.blocks {
		b.blocks[i] = make([]float32, NumChannels*snapshotPoints)
		b.raw[i] = make([]byte, NumChannels*snapshotPoints*4)
	}
	return b
}

// SnapshotPoints returns the per-channel sample count each block holds.
func (b *Buffer) SnapshotPoints() int {
	return b.snapshotPoints
}

// WriteView exposes the inactive block's channel rows for the producer to
// fill. Call Publish once all channels are written.
type WriteView struct {
	block []float32
	raw   []byte
	n     int
}

// AcquireWrite returns a view into whichever block the flag does not
// currently point at.
func (b *Buffer) AcquireWrite() WriteView {
	inactive := 1 - b.flag.Load()
	return WriteView{block: b.blocks[inactive], raw: b.raw[inactive], n: b.snapshotPoints}
}

// Channel returns a float32 slice for the given channel within this view.
func (w WriteView) Channel(ch int) []float32 {
	return w.block[ch*w.n : (ch+1)*w.n]
}

// Publish encodes the view into its bit-exact little-endian mirror and
// flips the flag with a release-ordered store, making the block visible to
// the reader.
func (b *Buffer) Publish(w WriteView) {
	for i, v := range w.block {
		binary.LittleEndian.PutUint32(w.raw[i*4:], math.Float32bits(v))
	}
	inactive := 1 - b.flag.Load()
	b.flag.Store(inactive)
}

// ReadView exposes the active block's channel rows to the consumer.
type ReadView struct {
	block []float32
	n     int
}

// AcquireRead returns a view into whichever block the flag currently points at.
func (b *Buffer) AcquireRead() ReadView {
	active := b.flag.Load()
	return ReadView{block: b.blocks[active], n: b.snapshotPoints}
}

// Channel returns a float32 slice for the given channel within this view.
func (r ReadView) Channel(ch int) []float32 {
	return r.block[ch*r.n : (ch+1)*r.n]
}

// RawBytes returns the bit-exact little-endian byte mirror of whichever
// block the flag currently points at, matching the external shared-memory
// layout: channels in fixed order, each snapshotPoints*4 contiguous bytes.
func (b *Buffer) RawBytes() []byte {
	active := b.flag.Load()
	return b.raw[active]
}

// Flag returns the current flag value (0 or 1), for diagnostics.
func (b *Buffer) Flag() int32 {
	return b.flag.Load()
}
