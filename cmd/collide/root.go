package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/collide/config"
	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/event"
	"github.com/lixenwraith/collide/observability"
	"github.com/lixenwraith/collide/scene"
)

var (
	cfgFile   string
	sceneName string
	sceneFile string
	seed      int64
	logLevel  string

	// cfg is loaded by the root pre-run hook before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "collide",
	Short:         "Fixed-step 2D collision sandbox",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			observability.InitializeLogger(config.NewDefaultConfig().Logger)
			return err
		}
		applyFlags(cmd, loaded)
		cfg = loaded

		observability.InitializeLogger(cfg.Logger)
		observability.GetLogger().Debug("configuration loaded",
			zap.String("version", Version),
			zap.String("scene", cfg.Scene.Preset),
			zap.Int64("seed", cfg.Scene.Seed),
		)
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	err := rootCmd.Execute()
	observability.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "collide:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./collide.{toml,yaml,json})")
	flags.StringVarP(&sceneName, "scene", "s", "", "built-in scene preset")
	flags.StringVar(&sceneFile, "scene-file", "", "scene file, overrides --scene")
	flags.Int64Var(&seed, "seed", 0, "seed for scattered scenes")
	flags.StringVar(&logLevel, "log-level", "", "log level override")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// applyFlags lets explicit flags win over file and env values
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("scene") {
		c.Scene.Preset = sceneName
		c.Scene.File = ""
	}
	if flags.Changed("scene-file") {
		c.Scene.File = sceneFile
	}
	if flags.Changed("seed") {
		c.Scene.Seed = seed
	}
	if flags.Changed("log-level") {
		c.Logger.Level = logLevel
	}
}

// buildWorld constructs and starts a world populated from the configured scene
// queue may be nil when no host consumes collision events
func buildWorld(c *config.Config, queue *event.Queue, logger *zap.Logger) (*engine.World, error) {
	opts := []engine.Option{engine.WithLogger(logger.Named("world"))}
	if queue != nil {
		opts = append(opts, engine.WithEventQueue(queue))
	}

	w, err := engine.NewWorld(c.World.EngineConfig(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create world: %w", err)
	}

	s, err := scene.Resolve(c.Scene.Preset, c.Scene.File)
	if err != nil {
		return nil, err
	}
	res, err := scene.Apply(w, s, c.Scene.Seed)
	if err != nil {
		return nil, fmt.Errorf("apply scene: %w", err)
	}
	if err := w.Start(); err != nil {
		return nil, err
	}

	logger.Info("world ready",
		zap.String("scene", s.Name),
		zap.Int("entities", len(res.Entities)),
		zap.Int("boundaries", len(res.Boundaries)),
	)
	return w, nil
}
