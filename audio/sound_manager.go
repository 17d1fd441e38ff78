package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"golang.org/x/time/rate"

	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/status"
)

const sampleRate = beep.SampleRate(parameter.AudioSampleRate)

// SoundManager turns contacts into tones on a shared mixer
// Safe for concurrent use; Play is a no-op until Initialize succeeds
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	limiter     *rate.Limiter
	volume      float64
	initialized bool
	speaker     bool // Mixer is driven by the speaker goroutine

	muted   *atomic.Bool
	played  *atomic.Uint64
	dropped *atomic.Uint64
}

// NewSoundManager limits output to perSecond tones with the given burst
func NewSoundManager(volume, perSecond float64, burst int) *SoundManager {
	sm := &SoundManager{
		mixer:   &beep.Mixer{},
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		volume:  volume,
	}
	sm.Instrument(nil)
	return sm
}

// Instrument exposes play counts and mute state through reg; call before Play
func (sm *SoundManager) Instrument(reg *status.Registry) {
	sm.muted = reg.Flag(status.AudioMuted)
	sm.played = reg.Counter(status.AudioPlayed)
	sm.dropped = reg.Counter(status.AudioDropped)
}

// Initialize opens the audio device and starts playback of the mixer
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(parameter.AudioBufferDuration)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	sm.speaker = true
	return nil
}

// Cleanup silences everything and detaches from the device
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	sm.withMixer(func(m *beep.Mixer) { m.Clear() })
	if sm.speaker {
		speaker.Clear()
	}
	sm.initialized = false
}

// Play queues a tone for c; false when muted, throttled, too soft or uninitialized
func (sm *SoundManager) Play(c physics.Contact) bool {
	if sm.muted.Load() || c.Speed < parameter.CollisionSoundMinSpeed {
		return false
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return false
	}
	if !sm.limiter.AllowN(time.Now(), 1) {
		sm.dropped.Add(1)
		return false
	}

	streamer := CreateCollisionSound(ToneFor(c, sm.volume), sampleRate)
	sm.withMixer(func(m *beep.Mixer) { m.Add(streamer) })
	sm.played.Add(1)
	return true
}

// withMixer serializes mixer access against the speaker goroutine
func (sm *SoundManager) withMixer(fn func(*beep.Mixer)) {
	if sm.speaker {
		speaker.Lock()
		defer speaker.Unlock()
	}
	fn(sm.mixer)
}

// ToggleMute flips mute and returns the new state
func (sm *SoundManager) ToggleMute() bool {
	for {
		old := sm.muted.Load()
		if sm.muted.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (sm *SoundManager) SetMuted(muted bool) { sm.muted.Store(muted) }
func (sm *SoundManager) IsMuted() bool       { return sm.muted.Load() }

// Stats returns tones played and tones dropped by the limiter
func (sm *SoundManager) Stats() (played, dropped uint64) {
	return sm.played.Load(), sm.dropped.Load()
}
