package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// DefaultMusicVolume matches the menu's initial slider position.
const DefaultMusicVolume = 0.15

// Synthwave progression: Am, F, C, G. One bar per chord, looped forever.
var chordProgression = [][]float64{
	{110.00, 130.81, 164.81},
	{87.31, 110.00, 130.81},
	{130.81, 164.81, 196.00},
	{98.00, 123.47, 146.83},
}

const (
	barSeconds  = 2.0
	stepsPerBar = 8
)

var musicLoopLen = int(barSeconds*sampleRate) * len(chordProgression)

// musicTrack is an endless io.Reader over a pre-rendered loop. Volume is
// applied per read so the slider works while the track plays.
type musicTrack struct {
	loop   []float64
	pos    int
	volume *atomic.Uint64
	player *oto.Player
}

func newMusicTrack(volume *atomic.Uint64) *musicTrack {
	return &musicTrack{loop: renderMusicLoop(), volume: volume}
}

func (m *musicTrack) Read(p []byte) (int, error) {
	vol := math.Float64frombits(m.volume.Load())
	n := len(p) / 2
	for i := 0; i < n; i++ {
		v := m.loop[m.pos] * vol
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint16(p[2*i:], uint16(int16(v*math.MaxInt16)))
		m.pos++
		if m.pos == len(m.loop) {
			m.pos = 0
		}
	}
	return 2 * n, nil
}

// renderMusicLoop builds one pass of the progression with four layers: a
// gated bass pulse, a sustained mid chord, a sixteenth-note arpeggio and a
// soft pad an octave below.
func renderMusicLoop() []float64 {
	loop := make([]float64, musicLoopLen)
	barSamples := musicLoopLen / len(chordProgression)
	stepSamples := barSamples / stepsPerBar

	for bar, chord := range chordProgression {
		base := bar * barSamples
		root := chord[0]

		bassPhase, midPhase, padPhase := 0.0, make([]float64, len(chord)), make([]float64, len(chord))
		arpPhase := 0.0
		for i := 0; i < barSamples; i++ {
			t := float64(i) / float64(sampleRate)
			step := i / stepSamples
			inStep := float64(i%stepSamples) / float64(stepSamples)

			var v float64

			// Bass: low square, gated on the first 60% of every step.
			if inStep < 0.6 {
				v += 0.22 * oscillate(squareWave, bassPhase)
			}
			bassPhase += (root / 2) / float64(sampleRate)
			if bassPhase >= 1 {
				bassPhase -= 1
			}

			// Mid: sustained triangle chord.
			for j, f := range chord {
				v += 0.08 * oscillate(triangleWave, midPhase[j])
				midPhase[j] += f / float64(sampleRate)
				if midPhase[j] >= 1 {
					midPhase[j] -= 1
				}
			}

			// High: sine arpeggio an octave up, one chord tone per step.
			arpFreq := chord[step%len(chord)] * 2
			decay := math.Pow(fadeFloor, inStep)
			v += 0.12 * decay * oscillate(sineWave, arpPhase)
			arpPhase += arpFreq / float64(sampleRate)
			if arpPhase >= 1 {
				arpPhase -= 1
			}

			// Pad: slow-breathing sines an octave down.
			breathe := 0.5 + 0.5*math.Sin(2*math.Pi*t/barSeconds)
			for j, f := range chord {
				v += 0.05 * breathe * oscillate(sineWave, padPhase[j])
				padPhase[j] += (f / 2) / float64(sampleRate)
				if padPhase[j] >= 1 {
					padPhase[j] -= 1
				}
			}

			loop[base+i] = v
		}
	}
	return loop
}

// StartMusic begins the background loop. Already-playing, muted and
// uninitialized systems all make this a no-op.
func (s *System) StartMusic() {
	if s.ctx == nil || s.Muted() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.music != nil {
		return
	}
	<-s.ready
	track := newMusicTrack(&s.musicVolume)
	track.player = s.ctx.NewPlayer(track)
	s.music = track
	track.player.Play()
}

// StopMusic halts and discards the background loop.
func (s *System) StopMusic() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.music == nil {
		return
	}
	s.music.player.Close()
	s.music = nil
}

// ToggleMusic starts or stops the loop and reports whether it is now playing.
func (s *System) ToggleMusic() bool {
	if s.MusicPlaying() {
		s.StopMusic()
		return false
	}
	s.StartMusic()
	return s.MusicPlaying()
}

// MusicPlaying reports whether the background loop is running.
func (s *System) MusicPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.music != nil
}

// SetMusicVolume adjusts the loop volume, clamped to [0, 1]. It applies
// immediately to a running track.
func (s *System) SetMusicVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	s.musicVolume.Store(math.Float64bits(v))
}

// MusicVolume reports the current loop volume.
func (s *System) MusicVolume() float64 {
	return math.Float64frombits(s.musicVolume.Load())
}
