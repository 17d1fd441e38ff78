package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/collide/audio"
	"github.com/lixenwraith/collide/config"
	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/event"
	"github.com/lixenwraith/collide/input"
	"github.com/lixenwraith/collide/observability"
	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/render"
	"github.com/lixenwraith/collide/service"
	"github.com/lixenwraith/collide/status"
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Interactive terminal sandbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("create screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("init screen: %w", err)
		}

		// Restore the terminal before printing a crash so the trace stays readable
		defer func() {
			if r := recover(); r != nil {
				screen.Fini()
				fmt.Fprintf(os.Stderr, "\n\x1b[31mCOLLIDE CRASHED: %v\x1b[0m\n", r)
				fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
				os.Exit(1)
			}
		}()
		defer screen.Fini()

		return runSandbox(cmd.Context(), screen, cfg)
	},
}

func init() {
	rootCmd.AddCommand(sandboxCmd)
}

// sandbox owns every piece of the terminal host; all methods run on the loop goroutine
type sandbox struct {
	screen   tcell.Screen
	world    *engine.World
	runner   *engine.Runner
	terminal *render.Terminal
	port     *input.Port
	keys     *input.KeyTable
	pointer  render.PointerTracker
	audio    *audio.Service
	metrics  *status.Registry
	logger   *zap.Logger
	slow     bool
}

var errQuit = errors.New("quit")

// runSandbox drives an initialized screen until quit, ctx cancellation or world disposal
func runSandbox(ctx context.Context, screen tcell.Screen, c *config.Config) error {
	logger := observability.GetLogger()

	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	// Audio is the only queue consumer on this host
	metrics := status.NewRegistry()
	queue := event.NewQueue()
	queue.Instrument(metrics)
	world, err := buildWorld(c, queue, logger)
	if err != nil {
		return err
	}
	defer world.Dispose()

	hub := service.NewHub(logger)
	audioSvc := audio.NewService()
	if err := hub.Register(audioSvc); err != nil {
		return err
	}
	if err := hub.InitAll(c.Audio, queue, metrics, logger); err != nil {
		return fmt.Errorf("init services: %w", err)
	}
	if err := hub.StartAll(); err != nil {
		return fmt.Errorf("start services: %w", err)
	}
	defer func() {
		if err := hub.StopAll(); err != nil {
			logger.Warn("service shutdown incomplete", zap.Error(err))
		}
	}()

	keys, err := input.ApplyKeyConfig(input.DefaultKeyTable(), c.Sandbox.Keys)
	if err != nil {
		return fmt.Errorf("key bindings: %w", err)
	}

	term := render.NewTerminal(screen, c.Sandbox.CellsPerUnit, c.Sandbox.ShowHUD)
	if b := world.Config().Bounds; b.Enabled() {
		term.Viewport().Fit(b)
	}

	sb := &sandbox{
		screen:   screen,
		world:    world,
		runner:   engine.NewRunner(world, engine.NewTimeProvider(), c.Sandbox.FrameInterval, logger.Named("runner")),
		terminal: term,
		port:     input.NewPort(world, term.Viewport(), logger.Named("input")),
		keys:     keys,
		audio:    audioSvc,
		metrics:  metrics,
		logger:   logger,
	}
	sb.runner.Instrument(metrics)
	sb.port.SetTolerance(parameter.TerminalGrabTolerance, parameter.TerminalHoverTolerance)
	sb.updateStatus()

	done := make(chan struct{})
	defer close(done)
	events := pumpEvents(screen, done)

	ticker := time.NewTicker(c.Sandbox.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := sb.handle(ev); err != nil {
				if errors.Is(err, errQuit) || errors.Is(err, engine.ErrWorldDisposed) {
					return nil
				}
				return err
			}
		case <-ticker.C:
			if err := sb.runner.Tick(); err != nil {
				if errors.Is(err, engine.ErrWorldDisposed) {
					return nil
				}
				return err
			}
			sb.updateStatus()
			if snap, ok := sb.runner.Latest(); ok {
				sb.terminal.Draw(&snap, sb.port.State() == input.PortDragging)
			}
		}
	}
}

// eventSource is the polling half of tcell.Screen
type eventSource interface {
	PollEvent() tcell.Event
}

// pumpEvents forwards polled events until the source is finalized or done closes
func pumpEvents(src eventSource, done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event, 64)
	go func() {
		defer close(events)
		for {
			ev := src.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}

func (sb *sandbox) handle(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		sb.screen.Sync()
		sb.terminal.Resize()
		return nil
	case *tcell.EventMouse:
		return sb.soft(sb.pointer.Handle(ev, sb.port))
	case *tcell.EventKey:
		return sb.handleKey(ev)
	}
	return nil
}

func (sb *sandbox) handleKey(ev *tcell.EventKey) error {
	vp := sb.terminal.Viewport()
	switch sb.keys.Lookup(ev) {
	case input.ActionQuit:
		return errQuit
	case input.ActionGravityUp:
		return sb.nudgeGravity(-parameter.WindowGravityStep)
	case input.ActionGravityDown:
		return sb.nudgeGravity(parameter.WindowGravityStep)
	case input.ActionPause:
		paused := 1.0
		if sb.world.State() == engine.StatePaused {
			paused = 0
		}
		return sb.soft(sb.port.SetParam(input.ParamPaused, paused))
	case input.ActionSlowMotion:
		sb.slow = !sb.slow
		scale := 1.0
		if sb.slow {
			scale = parameter.WindowSlowMotionScale
		}
		return sb.soft(sb.port.SetParam(input.ParamTimeScale, scale))
	case input.ActionZoomIn:
		vp.SetScale(vp.Scale() * parameter.WindowZoomStep)
	case input.ActionZoomOut:
		vp.SetScale(vp.Scale() / parameter.WindowZoomStep)
	case input.ActionFit:
		if b := sb.world.Config().Bounds; b.Enabled() {
			vp.Fit(b)
		}
	case input.ActionMute:
		if m := sb.audio.Manager(); m != nil {
			m.ToggleMute()
		}
		sb.updateStatus()
	}
	return nil
}

func (sb *sandbox) nudgeGravity(delta float64) error {
	g := sb.world.Params().Gravity + delta
	return sb.soft(sb.port.SetParam(input.ParamGravity, g))
}

// soft logs rejected input and keeps only disposal as fatal
func (sb *sandbox) soft(err error) error {
	if err == nil || errors.Is(err, engine.ErrWorldDisposed) {
		return err
	}
	sb.logger.Debug("input rejected", zap.Error(err))
	return nil
}

// updateStatus shows drop counters, plus the audio marker while sound is live
func (sb *sandbox) updateStatus() {
	text := sb.metrics.Summary() + " "
	if m := sb.audio.Manager(); m != nil && !sb.audio.IsDisabled() && !m.IsMuted() {
		text += parameter.AudioStr
	}
	sb.terminal.SetStatus(text)
}
