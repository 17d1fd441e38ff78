package window

import (
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/lixenwraith/collide/config"
	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/parameter"
	"github.com/lixenwraith/collide/render"
)

// Game implements ebiten.Game on top of a Controller
type Game struct {
	ctrl   *Controller
	runner *engine.Runner
	bg     color.RGBA

	width, height int
}

func NewGame(ctrl *Controller, runner *engine.Runner, width, height int) *Game {
	return &Game{
		ctrl:   ctrl,
		runner: runner,
		bg:     rgba(render.RgbBackground),
		width:  width,
		height: height,
	}
}

// Update is called each tick by Ebitengine
func (g *Game) Update() error {
	err := g.ctrl.Update(pollInput())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrQuit), errors.Is(err, engine.ErrWorldDisposed):
		return ebiten.Termination
	default:
		return err
	}
}

// Draw is called each frame by Ebitengine
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.bg)

	snap, ok := g.runner.Latest()
	if !ok {
		return
	}
	frame := g.ctrl.BuildFrame(&snap)

	for _, l := range frame.Lines {
		vector.StrokeLine(screen, l.X1, l.Y1, l.X2, l.Y2, l.Width, l.Color, true)
	}
	for _, c := range frame.Circles {
		vector.DrawFilledCircle(screen, c.X, c.Y, c.R, c.Color, true)
	}
	ebitenutil.DebugPrint(screen, frame.HUD)
}

// Layout tracks the window size so the viewport follows resizes
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.ctrl.viewport.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// pollInput reads the ebiten input state for this tick
func pollInput() InputState {
	mx, my := ebiten.CursorPosition()
	_, wheel := ebiten.Wheel()

	in := InputState{
		X:            float64(mx),
		Y:            float64(my),
		JustPressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		JustReleased: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
		Wheel:        wheel,
		TogglePause:  inpututil.IsKeyJustPressed(ebiten.KeySpace),
		ToggleSlow:   inpututil.IsKeyJustPressed(ebiten.KeyS),
		Quit:         inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ),
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		in.GravityDelta += parameter.WindowGravityStep
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		in.GravityDelta -= parameter.WindowGravityStep
	}
	return in
}

// Run opens the window and blocks until it closes
func Run(game *Game, cfg config.WindowConfig) error {
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(ebiten.DefaultTPS)

	err := ebiten.RunGame(game)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
