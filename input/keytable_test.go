package input

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyTableLookup(t *testing.T) {
	kt := DefaultKeyTable()

	tests := []struct {
		name string
		ev   *tcell.EventKey
		want Action
	}{
		{"rune quit", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), ActionQuit},
		{"space pause", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), ActionPause},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), ActionQuit},
		{"arrow up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), ActionGravityUp},
		{"unbound rune", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), ActionNone},
		{"unbound key", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kt.Lookup(tt.ev))
		})
	}
}

func TestKeyTableCloneIsIndependent(t *testing.T) {
	base := DefaultKeyTable()
	c := base.Clone()
	c.Runes['q'] = ActionMute
	delete(c.Keys, tcell.KeyUp)

	assert.Equal(t, ActionQuit, base.Runes['q'])
	assert.Equal(t, ActionGravityUp, base.Keys[tcell.KeyUp])
}

func TestApplyKeyConfig(t *testing.T) {
	base := DefaultKeyTable()
	kt, err := ApplyKeyConfig(base, map[string]string{
		"x":     "quit",
		"space": "mute",
		"q":     "none",
		"F2":    "fit",
	})
	require.NoError(t, err)

	assert.Equal(t, ActionQuit, kt.Runes['x'])
	assert.Equal(t, ActionMute, kt.Runes[' '])
	assert.NotContains(t, kt.Runes, 'q')
	assert.Equal(t, ActionFit, kt.Keys[tcell.KeyF2])

	// Base untouched
	assert.Equal(t, ActionQuit, base.Runes['q'])
	assert.Equal(t, ActionPause, base.Runes[' '])
}

func TestApplyKeyConfigErrors(t *testing.T) {
	_, err := ApplyKeyConfig(DefaultKeyTable(), map[string]string{"x": "explode"})
	assert.ErrorContains(t, err, "unknown action")

	_, err = ApplyKeyConfig(DefaultKeyTable(), map[string]string{"NoSuchKey": "quit"})
	assert.ErrorContains(t, err, "unknown key")
}

func TestParseActionRoundTrip(t *testing.T) {
	for a, name := range actionNames {
		got, err := ParseAction(name)
		require.NoError(t, err)
		assert.Equal(t, a, got)
		assert.Equal(t, name, a.String())
	}
}
