package input

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// Rune aliases for keys that can't be written as a bare config key
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
	"plus":      '+',
	"minus":     '-',
}

// ParseAction resolves an action name; "none" unbinds
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "none" || name == "" {
		return ActionNone, nil
	}
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", name)
}

// ApplyKeyConfig merges key-name to action-name overrides into a copy of base
// Key names are single runes, rune aliases or tcell key names such as "Up" or "Ctrl-Q"
func ApplyKeyConfig(base *KeyTable, overrides map[string]string) (*KeyTable, error) {
	kt := base.Clone()
	for keyName, actionName := range overrides {
		action, err := ParseAction(actionName)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", keyName, err)
		}

		if r, ok := resolveRune(keyName); ok {
			setBinding(kt.Runes, r, action)
			continue
		}
		key, ok := resolveKey(keyName)
		if !ok {
			return nil, fmt.Errorf("unknown key %q", keyName)
		}
		setBinding(kt.Keys, key, action)
	}
	return kt, nil
}

func setBinding[K comparable](m map[K]Action, k K, a Action) {
	if a == ActionNone {
		delete(m, k)
		return
	}
	m[k] = a
}

func resolveRune(s string) (rune, bool) {
	if r, ok := runeAliases[strings.ToLower(s)]; ok {
		return r, true
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return r, true
	}
	return 0, false
}

func resolveKey(s string) (tcell.Key, bool) {
	for k, name := range tcell.KeyNames {
		if strings.EqualFold(name, s) {
			return k, true
		}
	}
	return 0, false
}
