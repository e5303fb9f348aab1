package audio

import (
	"bytes"
	"log"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

const sampleRate = 44100

// System synthesizes the retro arcade cues and the background track. A
// failed backend initialization leaves every method as a silent no-op, so
// callers never have to care whether audio is available.
type System struct {
	ctx   *oto.Context
	ready chan struct{}

	mu    sync.Mutex
	muted bool
	music *musicTrack

	musicVolume atomic.Uint64
}

// NewSystem opens the audio device. Initialization failure is logged once
// and produces a muted-forever system rather than an error.
func NewSystem() *System {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	s := &System{}
	s.musicVolume.Store(math.Float64bits(DefaultMusicVolume))
	if err != nil {
		log.Printf("Audio backend unavailable, all sounds disabled: %v", err)
		return s
	}
	s.ctx, s.ready = ctx, ready
	return s
}

// play fires one rendered buffer and reclaims the player once it drains.
func (s *System) play(pcm []byte) {
	if s.ctx == nil || s.Muted() {
		return
	}
	go func() {
		<-s.ready
		p := s.ctx.NewPlayer(bytes.NewReader(pcm))
		p.Play()
		for p.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		p.Close()
	}()
}

// PlayButtonPress is the classic arcade button blip, a square sweep down.
func (s *System) PlayButtonPress() {
	s.play(render(sampleRate, tone{
		wave:     squareWave,
		freq:     800,
		ramps:    []ramp{{600, 50 * time.Millisecond}, {400, 100 * time.Millisecond}},
		gain:     0.1,
		duration: 150 * time.Millisecond,
	}))
}

// PlaySuccess plays a rising C major chord, one triangle voice per beat.
func (s *System) PlaySuccess() {
	notes := []float64{523, 659, 784, 1047}
	tones := make([]tone, len(notes))
	for i, f := range notes {
		tones[i] = tone{
			wave:     triangleWave,
			freq:     f,
			gain:     0.08,
			start:    time.Duration(i) * 100 * time.Millisecond,
			duration: 300 * time.Millisecond,
		}
	}
	s.play(render(sampleRate, tones...))
}

// PlayError plays a harsh sawtooth sweep down to a rumble.
func (s *System) PlayError() {
	s.play(render(sampleRate, tone{
		wave:     sawtoothWave,
		freq:     200,
		ramps:    []ramp{{100, 200 * time.Millisecond}, {50, 400 * time.Millisecond}},
		gain:     0.1,
		duration: 500 * time.Millisecond,
	}))
}

// PlayLevelUp plays a two-octave A major arpeggio.
func (s *System) PlayLevelUp() {
	notes := []float64{440, 554, 659, 880, 1108, 1319, 1760}
	tones := make([]tone, len(notes))
	for i, f := range notes {
		tones[i] = tone{
			wave:     triangleWave,
			freq:     f,
			gain:     0.06,
			start:    time.Duration(i) * 80 * time.Millisecond,
			duration: 400 * time.Millisecond,
		}
	}
	s.play(render(sampleRate, tones...))
}

// PlayHover is a soft high tick for focus changes.
func (s *System) PlayHover() {
	s.play(render(sampleRate, tone{
		wave:     sineWave,
		freq:     1200,
		gain:     0.05,
		duration: 100 * time.Millisecond,
	}))
}

// PlayTyping clicks at a randomized pitch so rapid keystrokes don't drone.
func (s *System) PlayTyping() {
	pitches := []float64{800, 850, 900, 950, 1000}
	s.play(render(sampleRate, tone{
		wave:     squareWave,
		freq:     pitches[rand.Intn(len(pitches))],
		gain:     0.03,
		duration: 50 * time.Millisecond,
	}))
}

// PlayAmbient hums two detuned low sines for a few seconds.
func (s *System) PlayAmbient() {
	s.play(render(sampleRate,
		tone{wave: sineWave, freq: 110, gain: 0.02, duration: 3 * time.Second},
		tone{wave: sineWave, freq: 165, gain: 0.02, duration: 3 * time.Second},
	))
}

// ToggleMute flips the mute state and reports the new one. Muting also
// stops the background track.
func (s *System) ToggleMute() bool {
	s.mu.Lock()
	s.muted = !s.muted
	muted := s.muted
	s.mu.Unlock()
	if muted {
		s.StopMusic()
	}
	return muted
}

// Muted reports whether effects and music are suppressed.
func (s *System) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}
