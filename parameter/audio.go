package parameter

import "time"

// Audio hardware settings
const (
	AudioSampleRate = 44100

	// AudioBufferDuration determines speaker latency
	AudioBufferDuration = 50 * time.Millisecond

	// AudioDrainInterval is how often the audio service drains the collision queue
	AudioDrainInterval = 10 * time.Millisecond
)

// Collision tone
const (
	CollisionSoundDuration = 90 * time.Millisecond
	CollisionSoundAttack   = 2 * time.Millisecond
	CollisionSoundDecay    = 20 * time.Millisecond // Exponential time constant after attack

	// CollisionPitchSweep is the end/start frequency ratio; impacts fall in pitch
	CollisionPitchSweep = 0.6

	// CollisionBoundaryNoise is the noise share mixed into boundary hits
	CollisionBoundaryNoise = 0.35

	// Pitch range mapped from approach speed
	CollisionPitchMin = 180.0
	CollisionPitchMax = 1400.0

	// CollisionSpeedForMaxPitch is the approach speed that reaches CollisionPitchMax
	CollisionSpeedForMaxPitch = 40.0

	// CollisionSoundMinSpeed filters resting boundary contacts
	CollisionSoundMinSpeed = 0.5

	// CollisionSoundsPerSecond and CollisionSoundBurst bound the tone rate
	CollisionSoundsPerSecond = 30
	CollisionSoundBurst      = 8
)

// DefaultMasterVolume in [0, 1]
const DefaultMasterVolume = 0.6
