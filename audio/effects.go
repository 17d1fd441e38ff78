package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/vmath"
)

// Wave selects the impact oscillator shape
type Wave uint8

const (
	WaveSine Wave = iota
	WaveSquare
	WaveTriangle
)

// Tone describes the sound of one contact
type Tone struct {
	Frequency float64 // Start pitch in Hz
	Sweep     float64 // End/start pitch ratio, 1 holds pitch
	Volume    float64 // Linear gain in [0, 1]
	Noise     float64 // Noise share in [0, 1]
	Wave      Wave
}

// impact is a finite percussive voice: short linear attack, exponential decay,
// pitch gliding geometrically from Frequency to Frequency*Sweep
type impact struct {
	tone   Tone
	rate   float64
	total  int
	attack int
	decay  float64 // Samples per e-fold
	pos    int
	phase  float64
	noise  *vmath.FastRand
}

// NewImpact renders tone for duration; noise is seeded from the tone so equal tones sound equal
func NewImpact(tone Tone, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	if tone.Sweep <= 0 {
		tone.Sweep = 1
	}
	return &impact{
		tone:   tone,
		rate:   float64(rate),
		total:  rate.N(duration),
		attack: rate.N(parameter.CollisionSoundAttack),
		decay:  math.Max(1, float64(rate.N(parameter.CollisionSoundDecay))),
		noise:  vmath.NewFastRand(math.Float64bits(tone.Frequency) ^ uint64(tone.Wave)),
	}
}

func (v *impact) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if v.pos >= v.total {
			return i, i > 0
		}

		val := v.oscillate()
		if v.tone.Noise > 0 {
			val = (1-v.tone.Noise)*val + v.tone.Noise*v.noise.Range(-1, 1)
		}
		val *= v.gain()

		samples[i][0] = val
		samples[i][1] = val

		progress := float64(v.pos) / float64(v.total)
		freq := v.tone.Frequency * math.Pow(v.tone.Sweep, progress)
		v.phase += freq / v.rate
		v.phase -= math.Floor(v.phase)
		v.pos++
	}
	return len(samples), true
}

func (v *impact) Err() error { return nil }

func (v *impact) oscillate() float64 {
	switch v.tone.Wave {
	case WaveSquare:
		if v.phase < 0.5 {
			return 1
		}
		return -1
	case WaveTriangle:
		return 4*math.Abs(v.phase-0.5) - 1
	default:
		return math.Sin(2 * math.Pi * v.phase)
	}
}

// gain is the amplitude envelope at the current sample
func (v *impact) gain() float64 {
	if v.pos < v.attack {
		return float64(v.pos) / float64(v.attack)
	}
	return math.Exp(-float64(v.pos-v.attack) / v.decay)
}

// newVolume maps linear gain onto effects.Volume; zero gain is silent since log2(0) is -Inf
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// ToneFor maps a contact to a tone: faster approach is higher and louder
// Body pairs ring as a sine; boundary hits are a quieter noisy square
func ToneFor(c physics.Contact, master float64) Tone {
	t := vmath.Clamp(c.Speed/parameter.CollisionSpeedForMaxPitch, 0, 1)
	tone := Tone{
		Frequency: vmath.Lerp(parameter.CollisionPitchMin, parameter.CollisionPitchMax, t),
		Sweep:     parameter.CollisionPitchSweep,
		Volume:    vmath.Clamp(master*(0.25+0.75*t), 0, 1),
		Wave:      WaveSine,
	}
	if c.Kind == physics.ContactBoundary {
		tone.Wave = WaveSquare
		tone.Noise = parameter.CollisionBoundaryNoise
		// Square waves carry more energy at equal gain
		tone.Volume *= 0.5
	}
	return tone
}

// CreateCollisionSound renders a tone as a finite streamer at its gain
func CreateCollisionSound(tone Tone, rate beep.SampleRate) beep.Streamer {
	return newVolume(NewImpact(tone, parameter.CollisionSoundDuration, rate), tone.Volume)
}
