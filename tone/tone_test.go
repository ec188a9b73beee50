package tone

import (
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func samples(p []byte) (out []float32) {
	for n := 0; n+4 <= len(p); n += 4 {
		out = append(out, math.Float32frombits(binary.LittleEndian.Uint32(p[n:])))
	}
	return
}

func TestTone_PlayStop(t *testing.T) {
	assert := assert.New(t)

	tn := NewTone()
	assert.False(tn.Playing())

	tn.Play()
	tn.Play()
	assert.True(tn.Playing())
	assert.Equal(1, tn.Starts)

	tn.Stop()
	tn.Stop()
	assert.False(tn.Playing())

	tn.Play()
	assert.Equal(2, tn.Starts)
}

func TestTone_Defaults(t *testing.T) {
	assert := assert.New(t)

	tn := NewTone()
	assert.Equal(440.0, tn.Frequency)
	assert.Equal(44100, tn.SampleRate)
}

func TestTone_Read_Silent(t *testing.T) {
	assert := assert.New(t)

	tn := NewTone()
	buf := make([]byte, 64)
	for n := range buf {
		buf[n] = 0xff
	}

	n, err := tn.Read(buf)
	assert.NoError(err)
	assert.Equal(64, n)
	for _, s := range samples(buf) {
		assert.Equal(float32(0), s)
	}
}

func TestTone_Read_Playing(t *testing.T) {
	assert := assert.New(t)

	tn := NewTone()
	tn.Frequency = 1
	tn.SampleRate = 4
	tn.Amplitude = 1
	tn.Play()

	buf := make([]byte, 4*8)
	n, err := tn.Read(buf)
	assert.NoError(err)
	assert.Equal(len(buf), n)

	// Phase steps by 1/4: -1, 0, 1, 0, repeating.
	want := []float32{-1, 0, 1, 0, -1, 0, 1, 0}
	assert.InDeltaSlice(want, samples(buf), 1e-6)
}

func TestTone_Read_PartialSample(t *testing.T) {
	assert := assert.New(t)

	tn := NewTone()
	n, err := tn.Read(make([]byte, 6))
	assert.NoError(err)
	assert.Equal(4, n)
}

func TestTone_Read_ShortBuffer(t *testing.T) {
	assert := assert.New(t)

	tn := NewTone()
	tn.Play()

	for size := 1; size < 4; size++ {
		n, err := tn.Read(make([]byte, size))
		assert.ErrorIs(err, io.ErrShortBuffer, "size %d", size)
		assert.Equal(0, n)
	}

	n, err := tn.Read(nil)
	assert.NoError(err)
	assert.Equal(0, n)
}

func TestTone_Reader(t *testing.T) {
	assert := assert.New(t)

	tn := NewTone()
	tn.Play()

	var r io.Reader = tn
	buf := make([]byte, 4*SAMPLE_RATE/100)
	_, err := io.ReadFull(r, buf)
	assert.NoError(err)

	peak := float32(0)
	for _, s := range samples(buf) {
		assert.LessOrEqual(s, float32(AMPLITUDE)+1e-6)
		assert.GreaterOrEqual(s, -float32(AMPLITUDE)-1e-6)
		if s > peak {
			peak = s
		}
	}
	assert.Greater(peak, float32(AMPLITUDE)*0.9)
}
