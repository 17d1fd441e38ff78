package input

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/collide/engine"
)

// ParamKey names a tunable exposed to sliders and remote clients
type ParamKey uint8

const (
	ParamGravity ParamKey = iota
	ParamFriction
	ParamTimeScale
	ParamPaused // Non-zero pauses
)

var paramNames = map[ParamKey]string{
	ParamGravity:   "gravity",
	ParamFriction:  "friction",
	ParamTimeScale: "time_scale",
	ParamPaused:    "paused",
}

func (k ParamKey) String() string {
	if name, ok := paramNames[k]; ok {
		return name
	}
	return fmt.Sprintf("param(%d)", uint8(k))
}

// ParseParamKey accepts the names produced by String, case-insensitive
func ParseParamKey(s string) (ParamKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range paramNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown parameter %q", engine.ErrInvalidParams, s)
}

// SetParam maps one slider value onto a params patch
func (p *Port) SetParam(key ParamKey, value float64) error {
	var patch engine.ParamsPatch
	switch key {
	case ParamGravity:
		patch.Gravity = engine.Float(value)
	case ParamFriction:
		patch.GlobalFriction = engine.Float(value)
	case ParamTimeScale:
		patch.TimeScale = engine.Float(value)
	case ParamPaused:
		patch.Paused = engine.Bool(value != 0)
	default:
		return fmt.Errorf("%w: %v", engine.ErrInvalidParams, key)
	}
	return p.target.SetParams(patch)
}
