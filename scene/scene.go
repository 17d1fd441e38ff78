package scene

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/physics"
	"github.com/lixenwraith/collide/vmath"
)

var (
	ErrUnknownPreset = errors.New("unknown scene preset")
	ErrInvalidScene  = errors.New("invalid scene")
)

// BoundarySpec declares one segment
type BoundarySpec struct {
	P1 vmath.Vec2 `mapstructure:"p1" json:"p1"`
	P2 vmath.Vec2 `mapstructure:"p2" json:"p2"`
}

// Scene is a declarative world population
// Gravity and Friction override world params when set
type Scene struct {
	Name       string               `mapstructure:"name"`
	Gravity    *float64             `mapstructure:"gravity"`
	Friction   *float64             `mapstructure:"global_friction"`
	Entities   []physics.BodyConfig `mapstructure:"entities"`
	Boundaries []BoundarySpec       `mapstructure:"boundaries"`
	Scatter    *Scatter             `mapstructure:"scatter"`
}

// Validate checks every declared entity and boundary before anything touches a world
func (s *Scene) Validate() error {
	for i, e := range s.Entities {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: entity %d: %w", ErrInvalidScene, i, err)
		}
	}
	for i, b := range s.Boundaries {
		if err := physics.ValidateSegment(b.P1, b.P2); err != nil {
			return fmt.Errorf("%w: boundary %d: %w", ErrInvalidScene, i, err)
		}
	}
	if s.Scatter != nil {
		if err := s.Scatter.Validate(); err != nil {
			return fmt.Errorf("%w: scatter: %w", ErrInvalidScene, err)
		}
	}
	return nil
}

// Bodies returns declared entities followed by the scatter field for seed
func (s *Scene) Bodies(seed int64) []physics.BodyConfig {
	bodies := make([]physics.BodyConfig, 0, len(s.Entities))
	bodies = append(bodies, s.Entities...)
	if s.Scatter != nil {
		bodies = append(bodies, s.Scatter.Generate(seed)...)
	}
	return bodies
}

// Result lists ids created by Apply, in declaration order
type Result struct {
	Entities   []physics.EntityID
	Boundaries []physics.BoundaryID
}

// Apply populates w; the scene is validated first so a bad scene leaves w untouched
func Apply(w *engine.World, s *Scene, seed int64) (Result, error) {
	var res Result
	if err := s.Validate(); err != nil {
		return res, err
	}

	if s.Gravity != nil || s.Friction != nil {
		patch := engine.ParamsPatch{Gravity: s.Gravity, GlobalFriction: s.Friction}
		if err := w.SetParams(patch); err != nil {
			return res, err
		}
	}

	for _, b := range s.Boundaries {
		id, err := w.AddBoundary(b.P1, b.P2)
		if err != nil {
			return res, err
		}
		res.Boundaries = append(res.Boundaries, id)
	}
	for _, cfg := range s.Bodies(seed) {
		id, err := w.SpawnEntity(cfg)
		if err != nil {
			return res, err
		}
		res.Entities = append(res.Entities, id)
	}
	return res, nil
}

// Load reads a scene file; format follows the extension (toml, yaml, json)
func Load(path string) (*Scene, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading scene %s: %w", path, err)
	}

	var s Scene
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error unmarshaling scene %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
