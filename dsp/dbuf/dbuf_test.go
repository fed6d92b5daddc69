package dbuf

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquireWriteTargetsInactiveBlock(t *testing.T) {
	b := New(4)
	assert.Equal(t, int32(0), b.Flag())
	w := b.AcquireWrite()
	// flag=0 means active=0, so write must target block 1.
	assert.True(t, sameUnderlying(w.block, b.blocks[1]))
}

func TestPublishFlipsFlag(t *testing.T) {
	b := New(4)
	w := b.AcquireWrite()
	b.Publish(w)
	assert.Equal(t, int32(1), b.Flag())

	w2 := b.AcquireWrite()
	assert.True(t, sameUnderlying(w2.block, b.blocks[0]))
}

func TestReadViewSeesPublishedData(t *testing.T) {
	b := New(2)
	w := b.AcquireWrite()
	ch := w.Channel(ChannelTime)
	ch[0] = 1.5
	ch[1] = 2.5
	b.Publish(w)

	r := b.AcquireRead()
	got := r.Channel(ChannelTime)
	assert.Equal(t, float32(1.5), got[0])
	assert.Equal(t, float32(2.5), got[1])
}

func TestRawBytesAreLittleEndianFloat32(t *testing.T) {
	b := New(1)
	w := b.AcquireWrite()
	w.Channel(ChannelReference)[0] = 3.25
	b.Publish(w)

	raw := b.RawBytes()
	bits := binary.LittleEndian.Uint32(raw[ChannelReference*4:])
	assert.Equal(t, math.Float32bits(3.25), bits)
}

func TestChannelOrderMatchesFixedLayout(t *testing.T) {
	assert.Equal(t, 0, ChannelReference)
	assert.Equal(t, 12, ChannelTime)
	assert.Equal(t, 13, NumChannels)
}

func sameUnderlying(a, b []float32) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	return &a[0] == &b[0]
}
