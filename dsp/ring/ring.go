// Package ring implements the fixed-capacity Float32 ring buffer used to
// hold each of the thirteen display channels. The circular write-index
// bookkeeping follows the same overwrite-oldest pattern as a delay line,
// generalized here to decimated chronological snapshots instead of a fixed
// read-behind tap.
package ring

import "math"

// Buffer is a fixed-capacity ring of float32 samples.
type Buffer struct {
	data     []float32
	writePos int
	length   int
}

// New creates a Buffer with the given fixed capacity.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]float32, capacity)}
}

// Capacity returns the buffer's fixed capacity.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Len returns the number of samples currently held (<= Capacity).
func (b *Buffer) Len() int {
	return b.length
}

// Push appends v, overwriting the oldest sample once the buffer is full.
func (b *Buffer) Push(v float32) {
	cap := len(b.data)
	if cap == 0 {
		return
	}
	b.data[b.writePos] = v
	b.writePos = (b.writePos + 1) % cap
	if b.length < cap {
		b.length++
	}
}

// Clear sets length and write index back to zero.
func (b *Buffer) Clear() {
	b.writePos = 0
	b.length = 0
}

// SnapshotInto copies a decimated chronological view into target, using a
// stride computed from capacity (not current length) so the display
// geometry is stable while the buffer warms up. Returns the number of
// samples written, which equals ceil(length/stride).
func (b *Buffer) SnapshotInto(target []float32, maxPoints int) int {
	cap := len(b.data)
	if cap == 0 || b.length == 0 || maxPoints <= 0 {
		return 0
	}
	stride := int(math.Ceil(float64(cap) / float64(maxPoints)))
	if stride < 1 {
		stride = 1
	}

	// Oldest sample currently held is at writePos when full, or index 0
	// when not yet full, since nothing has wrapped.
	start := 0
	if b.length == cap {
		start = b.writePos
	}

	written := 0
	for i := 0; i < b.length && written < len(target) && written < maxPoints; i += stride {
		idx := (start + i) % cap
		target[written] = b.data[idx]
		written++
	}
	return written
}
