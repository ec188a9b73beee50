// Package tone implements the binary tone generator driven by the sound timer.
//
// The generator has no timing of its own; Play and Stop switch a continuous
// triangle wave at a fixed reference frequency on and off. Hosts pull
// samples through Read, which produces mono little-endian float32 samples,
// the format audio players such as oto consume.
package tone

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
)

const (
	FREQUENCY   = 440.0 // Reference tone, in Hz.
	SAMPLE_RATE = 44100 // Samples per second.
	AMPLITUDE   = 0.25  // Peak sample value.

	sampleSize = 4 // Bytes per float32 sample.
)

// Tone is a play/stop tone generator.
type Tone struct {
	Frequency  float64 // Tone frequency, in Hz.
	SampleRate int     // Samples per second produced by Read.
	Amplitude  float32 // Peak sample value.

	Starts int // Number of stopped-to-playing transitions.

	mutex   sync.Mutex
	playing bool
	phase   float64 // Position in the waveform period, [0, 1).
}

// NewTone creates a tone generator at the reference frequency.
func NewTone() *Tone {
	return &Tone{
		Frequency:  FREQUENCY,
		SampleRate: SAMPLE_RATE,
		Amplitude:  AMPLITUDE,
	}
}

// Play starts the tone. Playing an already playing tone has no effect.
func (tn *Tone) Play() {
	tn.mutex.Lock()
	defer tn.mutex.Unlock()

	if !tn.playing {
		tn.playing = true
		tn.phase = 0
		tn.Starts++
	}
}

// Stop silences the tone. Stopping a silent tone has no effect.
func (tn *Tone) Stop() {
	tn.mutex.Lock()
	defer tn.mutex.Unlock()

	tn.playing = false
}

// Playing returns true while the tone is audible.
func (tn *Tone) Playing() bool {
	tn.mutex.Lock()
	defer tn.mutex.Unlock()

	return tn.playing
}

// triangle returns the triangle wave value at phase p, in [-1, 1].
func triangle(p float64) float64 {
	return 1 - 4*math.Abs(p-0.5)
}

// Read fills p with whole float32 samples: the waveform while playing,
// silence while stopped. A non-empty p too short for one sample fails with
// io.ErrShortBuffer.
func (tn *Tone) Read(p []byte) (n int, err error) {
	if len(p) > 0 && len(p) < sampleSize {
		err = io.ErrShortBuffer
		return
	}

	tn.mutex.Lock()
	defer tn.mutex.Unlock()

	step := 0.0
	if tn.SampleRate > 0 {
		step = tn.Frequency / float64(tn.SampleRate)
	}

	for n+sampleSize <= len(p) {
		var sample float32
		if tn.playing {
			sample = tn.Amplitude * float32(triangle(tn.phase))
			_, tn.phase = math.Modf(tn.phase + step)
		}
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(sample))
		n += sampleSize
	}

	return
}
