package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/physics"
)

// EnvPrefix namespaces environment overrides, e.g. COLLIDE_WORLD_GRAVITY
const EnvPrefix = "COLLIDE"

// Config is the full host configuration
type Config struct {
	World   WorldConfig   `mapstructure:"world"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Audio   AudioConfig   `mapstructure:"audio"`
	Server  ServerConfig  `mapstructure:"server"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Window  WindowConfig  `mapstructure:"window"`
	Scene   SceneConfig   `mapstructure:"scene"`
}

type WorldConfig struct {
	Gravity           float64        `mapstructure:"gravity"`
	GlobalFriction    float64        `mapstructure:"global_friction"`
	FixedDeltaTime    float64        `mapstructure:"fixed_delta_time"`
	MaxRealDeltaTime  float64        `mapstructure:"max_real_delta_time"`
	TimeScale         float64        `mapstructure:"time_scale"`
	Bounds            physics.Bounds `mapstructure:"bounds"`
	ContactThreshold  float64        `mapstructure:"contact_threshold"`
	TangentialDamping float64        `mapstructure:"tangential_damping"`
}

// EngineConfig converts to the kernel's construction input
func (w WorldConfig) EngineConfig() engine.Config {
	return engine.Config{
		Gravity:           w.Gravity,
		GlobalFriction:    w.GlobalFriction,
		FixedDeltaTime:    w.FixedDeltaTime,
		MaxRealDeltaTime:  w.MaxRealDeltaTime,
		TimeScale:         w.TimeScale,
		Bounds:            w.Bounds,
		ContactThreshold:  w.ContactThreshold,
		TangentialDamping: w.TangentialDamping,
	}
}

type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"` // json or console
	AddSource   bool   `mapstructure:"add_source"`
	ServiceName string `mapstructure:"service_name"`
	LogFile     string `mapstructure:"log_file"` // Empty disables file output
	MaxSize     int    `mapstructure:"max_size"` // Megabytes before rotation
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"` // Days
	Compress    bool   `mapstructure:"compress"`
}

type AudioConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	MasterVolume    float64 `mapstructure:"master_volume"`
	SoundsPerSecond float64 `mapstructure:"sounds_per_second"`
	Burst           int     `mapstructure:"burst"`
}

type ServerConfig struct {
	Address          string        `mapstructure:"address"`
	Path             string        `mapstructure:"path"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	ReadLimit        int64         `mapstructure:"read_limit"`
	SendQueueSize    int           `mapstructure:"send_queue_size"`
	MaxClients       int           `mapstructure:"max_clients"`
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
}

type SandboxConfig struct {
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	CellsPerUnit  float64       `mapstructure:"cells_per_unit"` // Horizontal zoom; vertical is halved for cell aspect
	ShowHUD       bool          `mapstructure:"show_hud"`

	// Keys overrides default bindings, key name to action name, e.g. {"x" = "quit"}
	Keys map[string]string `mapstructure:"keys"`
}

type WindowConfig struct {
	Width         int     `mapstructure:"width"`
	Height        int     `mapstructure:"height"`
	PixelsPerUnit float64 `mapstructure:"pixels_per_unit"`
	Title         string  `mapstructure:"title"`
}

type SceneConfig struct {
	Preset string `mapstructure:"preset"`
	File   string `mapstructure:"file"` // Overrides Preset when set
	Seed   int64  `mapstructure:"seed"`
}

// SetDefaults registers every key so env overrides resolve without a file
func SetDefaults(v *viper.Viper) {
	// -- World --
	v.SetDefault("world.gravity", parameter.DefaultGravity)
	v.SetDefault("world.global_friction", parameter.DefaultGlobalFriction)
	v.SetDefault("world.fixed_delta_time", parameter.DefaultFixedDeltaTime)
	v.SetDefault("world.max_real_delta_time", parameter.DefaultMaxRealDeltaTime)
	v.SetDefault("world.time_scale", parameter.DefaultTimeScale)
	v.SetDefault("world.bounds.width", 0.0)
	v.SetDefault("world.bounds.height", 0.0)
	v.SetDefault("world.contact_threshold", parameter.DefaultContactThreshold)
	v.SetDefault("world.tangential_damping", parameter.DefaultTangentialDamping)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "collide")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", true)

	// -- Audio --
	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.master_volume", parameter.DefaultMasterVolume)
	v.SetDefault("audio.sounds_per_second", parameter.CollisionSoundsPerSecond)
	v.SetDefault("audio.burst", parameter.CollisionSoundBurst)

	// -- Server --
	v.SetDefault("server.address", ":7777")
	v.SetDefault("server.path", "/ws")
	v.SetDefault("server.snapshot_interval", parameter.SnapshotInterval)
	v.SetDefault("server.write_timeout", "5s")
	v.SetDefault("server.read_limit", 64*1024)
	v.SetDefault("server.send_queue_size", 64)
	v.SetDefault("server.max_clients", 16)
	v.SetDefault("server.allowed_origins", []string{})

	// -- Hosts --
	v.SetDefault("sandbox.frame_interval", parameter.FrameUpdateInterval)
	v.SetDefault("sandbox.cells_per_unit", 2.0)
	v.SetDefault("sandbox.show_hud", true)
	v.SetDefault("window.width", 960)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.pixels_per_unit", 16.0)
	v.SetDefault("window.title", "collide")

	// -- Scene --
	v.SetDefault("scene.preset", "box")
	v.SetDefault("scene.file", "")
	v.SetDefault("scene.seed", 1)
}

// NewDefaultConfig returns defaults only, no file or env
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewViper returns a viper instance with defaults and COLLIDE_ env binding
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (format by extension) over defaults and env overrides
// An empty path searches ./collide.{toml,yaml,json} and tolerates its absence
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("collide")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals and validates
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate returns the first failing rule
func (c *Config) Validate() error {
	if err := c.World.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("logger.level %q is not a valid level", c.Logger.Level)
	}
	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}
	if c.Audio.MasterVolume < 0 || c.Audio.MasterVolume > 1 {
		return fmt.Errorf("audio.master_volume must be between 0.0 and 1.0")
	}
	if c.Audio.SoundsPerSecond <= 0 || c.Audio.Burst <= 0 {
		return fmt.Errorf("audio.sounds_per_second and audio.burst must be positive")
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path must start with /")
	}
	if c.Server.SnapshotInterval <= 0 {
		return fmt.Errorf("server.snapshot_interval must be positive")
	}
	if c.Server.SendQueueSize <= 0 || c.Server.MaxClients <= 0 {
		return fmt.Errorf("server.send_queue_size and server.max_clients must be positive integers")
	}
	if c.Sandbox.FrameInterval <= 0 || c.Sandbox.CellsPerUnit <= 0 {
		return fmt.Errorf("sandbox.frame_interval and sandbox.cells_per_unit must be positive")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 || c.Window.PixelsPerUnit <= 0 {
		return fmt.Errorf("window dimensions must be positive")
	}
	if c.Scene.Preset == "" && c.Scene.File == "" {
		return fmt.Errorf("scene.preset or scene.file is required")
	}
	return nil
}
