package main

import (
	"github.com/spf13/cobra"

	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/observability"
	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/render"
	"github.com/lixenwraith/collide/window"
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Interactive desktop window",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()

		// No event queue: the window host reads contacts from snapshots
		world, err := buildWorld(cfg, nil, logger)
		if err != nil {
			return err
		}
		defer world.Dispose()

		// Ebiten drives ticks from its own update loop, so the runner interval is unused
		runner := engine.NewRunner(world, engine.NewTimeProvider(), 0, logger.Named("runner"))

		w := cfg.Window
		viewport := render.NewViewport(w.Width, w.Height, w.PixelsPerUnit, 1)
		if b := world.Config().Bounds; b.Enabled() {
			viewport.Fit(b)
		}

		ctrl := window.NewController(world, runner, viewport, logger.Named("window"))
		ctrl.Port().SetTolerance(parameter.WindowEndpointRadius*2, parameter.WindowEndpointRadius)
		return window.Run(window.NewGame(ctrl, runner, w.Width, w.Height), w)
	},
}

func init() {
	rootCmd.AddCommand(windowCmd)
}
