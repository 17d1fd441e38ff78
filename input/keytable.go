package input

import "github.com/gdamore/tcell/v2"

// Action is a host command bound to a key
type Action uint8

const (
	ActionNone Action = iota
	ActionQuit
	ActionPause
	ActionSlowMotion
	ActionGravityUp
	ActionGravityDown
	ActionZoomIn
	ActionZoomOut
	ActionFit
	ActionMute
)

var actionNames = map[Action]string{
	ActionQuit:        "quit",
	ActionPause:       "pause",
	ActionSlowMotion:  "slow_motion",
	ActionGravityUp:   "gravity_up",
	ActionGravityDown: "gravity_down",
	ActionZoomIn:      "zoom_in",
	ActionZoomOut:     "zoom_out",
	ActionFit:         "fit",
	ActionMute:        "mute",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

// KeyTable maps keys to actions
type KeyTable struct {
	// Special keys (Ctrl+*, arrows, Esc)
	Keys map[tcell.Key]Action

	// Printable rune bindings
	Runes map[rune]Action
}

// DefaultKeyTable returns the default key bindings
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		Keys: map[tcell.Key]Action{
			tcell.KeyCtrlC:  ActionQuit,
			tcell.KeyEscape: ActionQuit,
			tcell.KeyUp:     ActionGravityUp,
			tcell.KeyDown:   ActionGravityDown,
		},
		Runes: map[rune]Action{
			'q': ActionQuit,
			' ': ActionPause,
			'p': ActionPause,
			's': ActionSlowMotion,
			'+': ActionZoomIn,
			'=': ActionZoomIn,
			'-': ActionZoomOut,
			'f': ActionFit,
			'm': ActionMute,
		},
	}
}

// Lookup resolves a key event; rune bindings ignore modifiers
func (kt *KeyTable) Lookup(ev *tcell.EventKey) Action {
	if ev.Key() == tcell.KeyRune {
		return kt.Runes[ev.Rune()]
	}
	return kt.Keys[ev.Key()]
}

// Clone returns a deep copy of the KeyTable with independent maps
func (kt *KeyTable) Clone() *KeyTable {
	return &KeyTable{
		Keys:  cloneMap(kt.Keys),
		Runes: cloneMap(kt.Runes),
	}
}

func cloneMap[K comparable](m map[K]Action) map[K]Action {
	c := make(map[K]Action, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
