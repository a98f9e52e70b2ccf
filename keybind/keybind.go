// Package keybind defines triggers, actions, and the keybinding table that
// the portal and grab backends consume.
package keybind

import (
	"fmt"
	"strings"
)

// Mods is a bitset of modifier keys.
type Mods uint8

const (
	ModCtrl Mods = 1 << iota
	ModShift
	ModAlt
	ModSuper
)

// Trigger is one key combination. Key holds a normalized key name from the
// named-key table; Code holds a raw hardware keycode for triggers written as
// "code:NNN" (which have no portal representation).
type Trigger struct {
	Key  string
	Code uint16
	Mods Mods
}

// Binding is one configured keybinding. A Sequence longer than one entry is
// a leader chord; only single-trigger bindings may be registered globally.
type Binding struct {
	Sequence []Trigger
	Action   Action
	Global   bool
}

// Table is the read-only keybinding table built from configuration.
type Table []Binding

// namedKeys maps config key names to their canonical form. Aliases map to
// the same canonical name so that equal combinations hash equal.
var namedKeys = map[string]string{
	"space": "space", "enter": "enter", "return": "enter",
	"tab": "tab", "escape": "escape", "esc": "escape",
	"backspace": "backspace", "delete": "delete", "del": "delete",
	"home": "home", "end": "end",
	"pageup": "pageup", "page_up": "pageup",
	"pagedown": "pagedown", "page_down": "pagedown",
	"up": "up", "down": "down", "left": "left", "right": "right",
	"minus": "minus", "-": "minus", "plus": "plus", "+": "plus",
	"equal": "equal", "=": "equal",
	"comma": "comma", "period": "period", "slash": "slash",
	"grave": "grave", "`": "grave",
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		namedKeys[string(c)] = string(c)
	}
	for c := '0'; c <= '9'; c++ {
		namedKeys[string(c)] = string(c)
	}
	for i := 1; i <= 24; i++ {
		name := fmt.Sprintf("f%d", i)
		namedKeys[name] = name
	}
}

// ParseTrigger parses a single combination like "ctrl+shift+t" or
// "super+code:117".
func ParseTrigger(s string) (Trigger, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Trigger{}, fmt.Errorf("empty trigger")
	}

	var t Trigger
	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "ctrl", "control":
			t.Mods |= ModCtrl
		case "shift":
			t.Mods |= ModShift
		case "alt", "opt", "option":
			t.Mods |= ModAlt
		case "super", "cmd", "win", "meta":
			t.Mods |= ModSuper
		default:
			if t.Key != "" || t.Code != 0 {
				return Trigger{}, fmt.Errorf("trigger %q has more than one non-modifier key", s)
			}
			if code, ok := strings.CutPrefix(part, "code:"); ok {
				var n int
				if _, err := fmt.Sscanf(code, "%d", &n); err != nil || n <= 0 || n > 0xffff {
					return Trigger{}, fmt.Errorf("trigger %q: bad keycode %q", s, code)
				}
				t.Code = uint16(n)
				continue
			}
			name, ok := namedKeys[part]
			if !ok {
				return Trigger{}, fmt.Errorf("trigger %q: unknown key %q", s, part)
			}
			t.Key = name
		}
	}
	if t.Key == "" && t.Code == 0 {
		return Trigger{}, fmt.Errorf("trigger %q has no key", s)
	}
	return t, nil
}

// ParseSequence parses a binding trigger, which may be a single combination
// or a ">"-separated leader chord like "ctrl+a > t".
func ParseSequence(s string) ([]Trigger, error) {
	parts := strings.Split(s, ">")
	seq := make([]Trigger, 0, len(parts))
	for _, p := range parts {
		t, err := ParseTrigger(p)
		if err != nil {
			return nil, err
		}
		seq = append(seq, t)
	}
	return seq, nil
}

// String renders the trigger in canonical config form: modifiers in fixed
// order, then the key.
func (t Trigger) String() string {
	var parts []string
	if t.Mods&ModCtrl != 0 {
		parts = append(parts, "ctrl")
	}
	if t.Mods&ModShift != 0 {
		parts = append(parts, "shift")
	}
	if t.Mods&ModAlt != 0 {
		parts = append(parts, "alt")
	}
	if t.Mods&ModSuper != 0 {
		parts = append(parts, "super")
	}
	if t.Code != 0 {
		parts = append(parts, fmt.Sprintf("code:%d", t.Code))
	} else {
		parts = append(parts, t.Key)
	}
	return strings.Join(parts, "+")
}

// ShortcutID translates a trigger into the shortcut identifier registered
// with the desktop shell. Raw-keycode triggers have no shell-representable
// name, so ok is false and the caller skips the entry.
func ShortcutID(t Trigger) (string, bool) {
	if t.Code != 0 {
		return "", false
	}
	return t.String(), true
}
