// Package plc implements packet loss concealment for the decoder.
//
// The last good spectrum is replayed with scrambled signs and a fade that
// deepens with every consecutive loss. The faded spectrum is kept, so a run
// of losses decays smoothly instead of restarting from the last good frame.
package plc

const (
	// MinFade is the fade below which concealment outputs silence.
	MinFade = 0.001

	attackFade = 0.5
	seedInit   = 24607
)

// State tracks concealment state across frames.
type State struct {
	// lostCount is the number of consecutive lost frames.
	lostCount int

	// fadeFactor is the overall gain applied to the last good spectrum.
	// 1 when no loss is in progress.
	fadeFactor float64

	// spectrum is the last good spectrum, faded by every loss since.
	spectrum []float64

	lastAttack bool
	seed       uint32
}

// NewState returns concealment state for frames of ns coefficients. Until a
// good frame arrives, concealment produces silence.
func NewState(ns int) *State {
	return &State{
		fadeFactor: 1,
		spectrum:   make([]float64, ns),
		seed:       seedInit,
	}
}

// Reset forgets all history.
func (s *State) Reset() {
	s.lostCount = 0
	s.fadeFactor = 1
	s.lastAttack = false
	s.seed = seedInit
	clear(s.spectrum)
}

// RecordGood stores a successfully decoded spectrum and ends any loss run.
func (s *State) RecordGood(x []float64, attack bool) {
	copy(s.spectrum, x)
	s.lastAttack = attack
	s.lostCount = 0
	s.fadeFactor = 1
}

// step returns the fade applied by loss number n (1-based).
func (s *State) step(n int) float64 {
	switch {
	case s.lastAttack:
		return attackFade
	case n == 1:
		return 1
	case n <= 4:
		return 0.9
	default:
		return 0.85
	}
}

// RecordLoss records a lost frame, fades the stored spectrum and returns
// the overall fade since the last good frame.
func (s *State) RecordLoss() float64 {
	s.lostCount++
	f := s.step(s.lostCount)
	s.fadeFactor *= f
	if s.fadeFactor < MinFade {
		s.fadeFactor = 0
		f = 0
	}
	for k := range s.spectrum {
		s.spectrum[k] *= f
	}
	return s.fadeFactor
}

// Conceal writes the concealment spectrum for the current loss into x:
// the stored spectrum with pseudo-random signs.
func (s *State) Conceal(x []float64) {
	for k, v := range s.spectrum {
		s.seed = (16831 + 12821*s.seed) & 0xffff
		if s.seed&0x8000 != 0 {
			v = -v
		}
		x[k] = v
	}
}

// LostCount returns the number of consecutive lost frames.
func (s *State) LostCount() int {
	return s.lostCount
}

// FadeFactor returns the overall fade since the last good frame.
func (s *State) FadeFactor() float64 {
	return s.fadeFactor
}

// Level returns the peak magnitude of the stored spectrum.
func (s *State) Level() float64 {
	var m float64
	for _, v := range s.spectrum {
		m = max(m, v, -v)
	}
	return m
}

// IsExhausted reports whether concealment has faded to silence.
func (s *State) IsExhausted() bool {
	return s.lostCount > 0 && s.fadeFactor == 0
}
