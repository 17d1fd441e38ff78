package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/lixenwraith/collide/config"
	"github.com/lixenwraith/collide/scene"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := config.NewDefaultConfig()
	c.Audio.Enabled = false
	c.Server.Address = "127.0.0.1:0"
	c.Sandbox.FrameInterval = 5 * time.Millisecond
	return c
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, Version+"\n", out.String())
	require.NotNil(t, cfg)
}

func TestApplyFlags(t *testing.T) {
	c := testConfig(t)
	c.Scene.File = "scene.toml"

	require.NoError(t, rootCmd.PersistentFlags().Set("scene", "wall"))
	require.NoError(t, rootCmd.PersistentFlags().Set("seed", "9"))
	t.Cleanup(func() {
		for _, name := range []string{"scene", "seed"} {
			f := rootCmd.PersistentFlags().Lookup(name)
			f.Changed = false
			_ = f.Value.Set(f.DefValue)
		}
	})

	cmd := &cobra.Command{Use: "flags"}
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	applyFlags(cmd, c)
	assert.Equal(t, "wall", c.Scene.Preset)
	assert.Empty(t, c.Scene.File)
	assert.Equal(t, int64(9), c.Scene.Seed)
	assert.Equal(t, "info", c.Logger.Level)
}

func TestBuildWorld(t *testing.T) {
	c := testConfig(t)
	for _, name := range scene.Presets() {
		t.Run(name, func(t *testing.T) {
			c.Scene.Preset = name
			w, err := buildWorld(c, nil, zap.NewNop())
			require.NoError(t, err)
			defer w.Dispose()

			snap, err := w.Snapshot()
			require.NoError(t, err)
			assert.NotEmpty(t, snap.Entities)
		})
	}

	c.Scene.Preset = "nope"
	_, err := buildWorld(c, nil, zap.NewNop())
	assert.ErrorIs(t, err, scene.ErrUnknownPreset)
}

func TestRunServeStopsOnCancel(t *testing.T) {
	prev := cfg
	cfg = testConfig(t)
	t.Cleanup(func() { cfg = prev })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestRunSandboxQuitKey(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(60, 20)
	defer screen.Fini()

	done := make(chan error, 1)
	go func() { done <- runSandbox(context.Background(), screen, testConfig(t)) }()

	// Let a few frames render before quitting
	time.Sleep(50 * time.Millisecond)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sandbox did not quit")
	}

	cells, w, h := screen.GetContents()
	require.Equal(t, 60*20, len(cells))
	require.Equal(t, 60, w)
	require.Equal(t, 20, h)

	var status []rune
	for x := 0; x < w; x++ {
		status = append(status, cells[(h-1)*w+x].Runes...)
	}
	assert.Contains(t, string(status), "tick")
	assert.Contains(t, string(status), "ev-0")
}

func TestSandboxKeys(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(60, 20)
	defer screen.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runSandbox(ctx, screen, testConfig(t)) }()

	screen.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'm', tcell.ModNone)
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sandbox did not stop")
	}
}

// endlessSource never runs dry, so the pump always has an event to send
type endlessSource struct{}

func (endlessSource) PollEvent() tcell.Event {
	return tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)
}

func TestPumpEventsExitsWhenReaderStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	done := make(chan struct{})
	events := pumpEvents(endlessSource{}, done)

	// Fill the buffer so the pump is parked on a send
	<-events
	time.Sleep(20 * time.Millisecond)
	close(done)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event pump did not exit")
		}
	}
}
