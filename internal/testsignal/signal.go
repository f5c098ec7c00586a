// Package testsignal generates deterministic test audio.
package testsignal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
)

// Kind selects a signal.
type Kind int

const (
	Silence Kind = iota
	Sine
	AMMultisine
	ChirpSweep
	ImpulseTrain
	SpeechLike
)

var kindNames = [...]string{"silence", "sine", "am_multisine", "chirp_sweep", "impulse_train", "speech_like"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every signal kind.
func Kinds() []Kind {
	return []Kind{Silence, Sine, AMMultisine, ChirpSweep, ImpulseTrain, SpeechLike}
}

// Generate returns frames samples per channel of interleaved audio in
// [-1, 1].
func Generate(kind Kind, sampleRate, frames, channels int) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	if frames <= 0 {
		return nil, fmt.Errorf("invalid sample count: %d", frames)
	}

	out := make([]float32, frames*channels)
	for n := 0; n < frames; n++ {
		t := float64(n) / float64(sampleRate)
		for ch := 0; ch < channels; ch++ {
			var v float64
			switch kind {
			case Silence:
			case Sine:
				v = 0.5 * math.Sin(2*math.Pi*1000*(1+0.01*float64(ch))*t)
			case AMMultisine:
				v = amMultisine(n, ch, t, sampleRate)
			case ChirpSweep:
				v = chirp(n, ch, t, sampleRate, frames)
			case ImpulseTrain:
				v = impulseTrain(n, ch, t, sampleRate)
			case SpeechLike:
				v = speechLike(n, ch, t)
			default:
				return nil, fmt.Errorf("unknown signal kind %v", kind)
			}
			out[n*channels+ch] = float32(clip(v))
		}
	}
	return out, nil
}

// Int16 scales a signal to 16-bit samples, saturating outside [-1, 1].
func Int16(x []float32) []int16 {
	out := make([]int16, len(x))
	for i, v := range x {
		out[i] = int16(math.Round(max(-1, min(1, float64(v))) * 32767))
	}
	return out
}

// Hash returns a hex digest of b.
func Hash(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func amMultisine(n, ch int, t float64, sampleRate int) float64 {
	freqs := [3]float64{440, 1000, 2000}
	mods := [3]float64{1.3, 2.7, 0.9}
	var v float64
	for i, f := range freqs {
		if ch == 1 {
			f *= 1.01
		}
		depth := 0.5 + 0.5*math.Sin(2*math.Pi*mods[i]*t)
		v += 0.3 * depth * math.Sin(2*math.Pi*f*t)
	}
	if onset := sampleRate / 100; n < onset {
		r := float64(n) / float64(onset)
		v *= r * r * r
	}
	return v
}

func chirp(n, ch int, t float64, sampleRate, frames int) float64 {
	d := float64(frames) / float64(sampleRate)
	const f0, f1 = 60.0, 12000.0
	k := math.Log(f1/f0) / d
	phase := 2 * math.Pi * f0 * (math.Exp(k*t) - 1) / k
	env := 0.2 + 0.8*(0.5+0.5*math.Sin(2*math.Pi*0.41*t+0.3*float64(ch)))
	v := 0.85 * env * math.Sin((1+0.006*float64(ch))*phase)
	if ramp := 0.005 * float64(sampleRate); float64(n) < ramp {
		v *= float64(n) / ramp
	}
	return v
}

func impulseTrain(n, ch int, t float64, sampleRate int) float64 {
	period := max(4, int(0.035*float64(sampleRate)))
	decay := 0.0035 * float64(sampleRate)
	pos := n % period
	var v float64
	if pos == 0 {
		v = 0.92
	}
	if pos < int(0.015*float64(sampleRate)) {
		f := 540 + 80*float64(ch)
		v += 0.75 * math.Exp(-float64(pos)/decay) * math.Sin(2*math.Pi*f*float64(pos)/float64(sampleRate))
	}
	v += 0.02 * noise(n, ch, 17)
	return v * (0.6 + 0.4*math.Sin(2*math.Pi*0.19*t+0.4*float64(ch)))
}

func speechLike(n, ch int, t float64) float64 {
	pitch := (95 + 28*math.Sin(2*math.Pi*0.63*t) + 16*math.Sin(2*math.Pi*0.17*t)) * (1 + 0.01*float64(ch))
	phase := 2 * math.Pi * pitch * t
	voiced := math.Sin(phase) + 0.35*math.Sin(2*phase) + 0.2*math.Sin(3*phase)
	voicing := 0.5 + 0.5*math.Sin(2*math.Pi*0.78*t+0.25)
	syllable := 0.25 + 0.75*math.Pow(0.5+0.5*math.Sin(2*math.Pi*3.2*t), 2)
	high := noise(n, ch, 71) - 0.86*noise(n-1, ch, 71)
	mix := voicing*voiced + (1-voicing)*(0.38*high+0.22*math.Sin(2*math.Pi*3200*t))
	return 0.82 * syllable * mix
}

func noise(n, ch, salt int) float64 {
	x := uint32(n*1664525 + ch*1013904223 + salt*2246822519)
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	return float64(int32(x)) / math.MaxInt32
}

func clip(v float64) float64 {
	return max(-0.98, min(0.98, v))
}
