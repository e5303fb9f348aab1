package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// waveform selects the oscillator shape used when rendering a tone.
type waveform int

const (
	sineWave waveform = iota
	squareWave
	triangleWave
	sawtoothWave
)

// oscillate returns the waveform amplitude in [-1, 1] for a phase in [0, 1).
func oscillate(w waveform, phase float64) float64 {
	switch w {
	case squareWave:
		if phase < 0.5 {
			return 1
		}
		return -1
	case triangleWave:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	case sawtoothWave:
		return 2*phase - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// ramp is an exponential frequency sweep target reached at a point in time
// relative to the tone start.
type ramp struct {
	freq float64
	at   time.Duration
}

// tone describes one oscillator voice with an exponential volume decay
// toward near-silence over its duration.
type tone struct {
	wave     waveform
	freq     float64
	ramps    []ramp
	gain     float64
	start    time.Duration
	duration time.Duration
}

const fadeFloor = 0.01

// freqAt interpolates the oscillator frequency at time t (relative to the
// tone start) across the configured sweep targets.
func (t tone) freqAt(at float64) float64 {
	f0, t0 := t.freq, 0.0
	for _, r := range t.ramps {
		t1 := r.at.Seconds()
		if at <= t1 {
			if t1 == t0 {
				return r.freq
			}
			return f0 * math.Pow(r.freq/f0, (at-t0)/(t1-t0))
		}
		f0, t0 = r.freq, t1
	}
	return f0
}

// render synthesizes the tones into a single mono 16-bit little-endian PCM
// buffer long enough to hold the last tone's tail.
func render(sampleRate int, tones ...tone) []byte {
	var total time.Duration
	for _, t := range tones {
		if end := t.start + t.duration; end > total {
			total = end
		}
	}
	n := int(float64(sampleRate) * total.Seconds())
	mix := make([]float64, n)

	for _, t := range tones {
		from := int(float64(sampleRate) * t.start.Seconds())
		count := int(float64(sampleRate) * t.duration.Seconds())
		dur := t.duration.Seconds()
		phase := 0.0
		for i := 0; i < count && from+i < n; i++ {
			at := float64(i) / float64(sampleRate)
			// Web-audio style exponential decay toward the fade floor.
			gain := t.gain * math.Pow(fadeFloor/t.gain, at/dur)
			mix[from+i] += gain * oscillate(t.wave, phase)
			phase += t.freqAt(at) / float64(sampleRate)
			if phase >= 1 {
				phase -= 1
			}
		}
	}

	return pcm16(mix, 1)
}

// pcm16 converts float samples to clipped 16-bit little-endian PCM, scaling
// by the given master volume.
func pcm16(samples []float64, volume float64) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		v := s * volume
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(v*math.MaxInt16)))
	}
	return out
}
