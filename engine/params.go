package engine

import (
	"fmt"

	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/vmath"
)

// Params are the runtime-tunable simulation parameters
// Paused mirrors the lifecycle state and is read-only through Params()
type Params struct {
	Gravity        float64 `json:"gravity"`
	GlobalFriction float64 `json:"global_friction"`
	TimeScale      float64 `json:"time_scale"`
	Paused         bool    `json:"paused"`
}

// ParamsPatch is a partial update, nil fields are left unchanged
type ParamsPatch struct {
	Gravity        *float64 `json:"gravity,omitempty"`
	GlobalFriction *float64 `json:"global_friction,omitempty"`
	TimeScale      *float64 `json:"time_scale,omitempty"`
	Paused         *bool    `json:"paused,omitempty"`
}

// Float returns a pointer for building patches inline
func Float(v float64) *float64 { return &v }

// Bool returns a pointer for building patches inline
func Bool(v bool) *bool { return &v }

// apply returns p with the patch applied, validating the result
func (pp ParamsPatch) apply(p Params) (Params, error) {
	if pp.Gravity != nil {
		p.Gravity = *pp.Gravity
	}
	if pp.GlobalFriction != nil {
		p.GlobalFriction = *pp.GlobalFriction
	}
	if pp.TimeScale != nil {
		p.TimeScale = *pp.TimeScale
	}
	if err := validateParams(p.Gravity, p.GlobalFriction, p.TimeScale); err != nil {
		return Params{}, err
	}
	return p, nil
}

func validateParams(gravity, friction, timeScale float64) error {
	if !vmath.IsFinite(gravity) {
		return fmt.Errorf("%w: gravity %v must be finite", ErrInvalidParams, gravity)
	}
	if !vmath.IsFinite(friction) || friction <= 0 || friction > 1 {
		return fmt.Errorf("%w: global_friction %v outside (0,1]", ErrInvalidParams, friction)
	}
	if !vmath.IsFinite(timeScale) || timeScale < 0 || timeScale > parameter.MaxTimeScale {
		return fmt.Errorf("%w: time_scale %v outside [0,%v]", ErrInvalidParams, timeScale, parameter.MaxTimeScale)
	}
	return nil
}
