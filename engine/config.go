package engine

import (
	"fmt"

	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/vmath"
)

// Config is the validated construction input of a World
type Config struct {
	Gravity           float64        `mapstructure:"gravity"`
	GlobalFriction    float64        `mapstructure:"global_friction"`
	FixedDeltaTime    float64        `mapstructure:"fixed_delta_time"`
	MaxRealDeltaTime  float64        `mapstructure:"max_real_delta_time"`
	TimeScale         float64        `mapstructure:"time_scale"`
	Bounds            physics.Bounds `mapstructure:"bounds"`
	ContactThreshold  float64        `mapstructure:"contact_threshold"`
	TangentialDamping float64        `mapstructure:"tangential_damping"`
}

// DefaultConfig returns an unbounded world at 60 Hz
func DefaultConfig() Config {
	return Config{
		Gravity:           parameter.DefaultGravity,
		GlobalFriction:    parameter.DefaultGlobalFriction,
		FixedDeltaTime:    parameter.DefaultFixedDeltaTime,
		MaxRealDeltaTime:  parameter.DefaultMaxRealDeltaTime,
		TimeScale:         parameter.DefaultTimeScale,
		ContactThreshold:  parameter.DefaultContactThreshold,
		TangentialDamping: parameter.DefaultTangentialDamping,
	}
}

// Validate rejects values the accumulator or resolver cannot honor
func (c Config) Validate() error {
	if !vmath.IsFinite(c.FixedDeltaTime) || c.FixedDeltaTime <= 0 {
		return fmt.Errorf("%w: fixed_delta_time %v must be positive", ErrInvalidParams, c.FixedDeltaTime)
	}
	if !vmath.IsFinite(c.MaxRealDeltaTime) || c.MaxRealDeltaTime <= 0 {
		return fmt.Errorf("%w: max_real_delta_time %v must be positive", ErrInvalidParams, c.MaxRealDeltaTime)
	}
	if err := validateParams(c.Gravity, c.GlobalFriction, c.TimeScale); err != nil {
		return err
	}
	if !vmath.IsFinite(c.Bounds.Width) || !vmath.IsFinite(c.Bounds.Height) || c.Bounds.Width < 0 || c.Bounds.Height < 0 {
		return fmt.Errorf("%w: bounds %vx%v must be non-negative", ErrInvalidParams, c.Bounds.Width, c.Bounds.Height)
	}
	if !vmath.IsFinite(c.ContactThreshold) || c.ContactThreshold < 0 {
		return fmt.Errorf("%w: contact_threshold %v must be non-negative", ErrInvalidParams, c.ContactThreshold)
	}
	if !vmath.IsFinite(c.TangentialDamping) || c.TangentialDamping < 0 || c.TangentialDamping >= 1 {
		return fmt.Errorf("%w: tangential_damping %v outside [0,1)", ErrInvalidParams, c.TangentialDamping)
	}
	return nil
}

func (c Config) resolverConfig() physics.ResolverConfig {
	return physics.ResolverConfig{
		Bounds:            c.Bounds,
		ContactThreshold:  c.ContactThreshold,
		TangentialDamping: c.TangentialDamping,
	}
}
