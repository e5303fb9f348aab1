package engine

// SoundBank plays the arcade cues the engine triggers. Implementations
// must tolerate being called from timer goroutines. (Interface lives on
// the consumer side to avoid an import cycle with the audio package.)
type SoundBank interface {
	PlaySuccess()
	PlayError()
	PlayLevelUp()
	PlayHover()
}

// nopSounds is used until a real sound bank is injected.
type nopSounds struct{}

func (nopSounds) PlaySuccess() {}
func (nopSounds) PlayError()   {}
func (nopSounds) PlayLevelUp() {}
func (nopSounds) PlayHover()   {}
