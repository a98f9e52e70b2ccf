package keybind

import (
	"fmt"
	"strings"
)

// ActionKind tags the variant carried by an Action.
type ActionKind uint8

const (
	// ActionExec runs a shell command.
	ActionExec ActionKind = iota
	// ActionNotify posts a desktop notification.
	ActionNotify
	// ActionReload reloads the configuration and re-registers shortcuts.
	ActionReload
)

// Action is what happens when a binding fires.
type Action struct {
	Kind ActionKind
	Arg  string
}

// ParseAction parses a config action string: "exec:<command>",
// "notify:<message>", or "reload".
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "reload":
		return Action{Kind: ActionReload}, nil
	case strings.HasPrefix(s, "exec:"):
		arg := strings.TrimSpace(strings.TrimPrefix(s, "exec:"))
		if arg == "" {
			return Action{}, fmt.Errorf("exec action has no command")
		}
		return Action{Kind: ActionExec, Arg: arg}, nil
	case strings.HasPrefix(s, "notify:"):
		arg := strings.TrimSpace(strings.TrimPrefix(s, "notify:"))
		if arg == "" {
			return Action{}, fmt.Errorf("notify action has no message")
		}
		return Action{Kind: ActionNotify, Arg: arg}, nil
	}
	return Action{}, fmt.Errorf("unknown action %q", s)
}

// Description is the human-readable label registered with the desktop shell
// and shown in its shortcut settings.
func (a Action) Description() string {
	switch a.Kind {
	case ActionExec:
		return "Run: " + a.Arg
	case ActionNotify:
		return "Notify: " + a.Arg
	case ActionReload:
		return "Reload hotkeyd configuration"
	}
	return "Unknown action"
}

func (a Action) String() string {
	switch a.Kind {
	case ActionExec:
		return "exec:" + a.Arg
	case ActionNotify:
		return "notify:" + a.Arg
	case ActionReload:
		return "reload"
	}
	return "unknown"
}
