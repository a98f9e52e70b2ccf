package keybind

import (
	"testing"
)

func TestParseTrigger(t *testing.T) {
	cases := []struct {
		in   string
		want Trigger
	}{
		{"ctrl+shift+t", Trigger{Key: "t", Mods: ModCtrl | ModShift}},
		{"Ctrl + Shift + T", Trigger{Key: "t", Mods: ModCtrl | ModShift}},
		{"super+space", Trigger{Key: "space", Mods: ModSuper}},
		{"alt+return", Trigger{Key: "enter", Mods: ModAlt}},
		{"f12", Trigger{Key: "f12"}},
		{"ctrl+code:117", Trigger{Code: 117, Mods: ModCtrl}},
	}
	for _, c := range cases {
		got, err := ParseTrigger(c.in)
		if err != nil {
			t.Errorf("ParseTrigger(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseTrigger(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestParseTriggerErrors(t *testing.T) {
	for _, in := range []string{"", "ctrl+", "ctrl+shift", "ctrl+t+u", "bogus_key", "code:0", "code:99999"} {
		if _, err := ParseTrigger(in); err == nil {
			t.Errorf("ParseTrigger(%q): expected error", in)
		}
	}
}

func TestParseSequence(t *testing.T) {
	seq, err := ParseSequence("ctrl+a > t")
	if err != nil {
		t.Fatal(err)
	}
	if len(seq) != 2 {
		t.Fatalf("got %d triggers, want 2", len(seq))
	}
	if seq[0] != (Trigger{Key: "a", Mods: ModCtrl}) || seq[1] != (Trigger{Key: "t"}) {
		t.Errorf("unexpected sequence %+v", seq)
	}
}

func TestTriggerStringCanonical(t *testing.T) {
	// Modifier order in the rendered form is fixed regardless of input order.
	a, _ := ParseTrigger("shift+ctrl+t")
	b, _ := ParseTrigger("ctrl+shift+t")
	if a.String() != b.String() || a.String() != "ctrl+shift+t" {
		t.Errorf("got %q and %q, want ctrl+shift+t", a.String(), b.String())
	}
}

func TestShortcutID(t *testing.T) {
	tr, _ := ParseTrigger("ctrl+shift+t")
	id, ok := ShortcutID(tr)
	if !ok || id != "ctrl+shift+t" {
		t.Errorf("got (%q, %v), want (ctrl+shift+t, true)", id, ok)
	}

	raw, _ := ParseTrigger("code:117")
	if _, ok := ShortcutID(raw); ok {
		t.Error("raw keycode trigger should have no shortcut id")
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("exec:playerctl play-pause")
	if err != nil {
		t.Fatal(err)
	}
	if a.Kind != ActionExec || a.Arg != "playerctl play-pause" {
		t.Errorf("unexpected action %+v", a)
	}
	if a.Description() != "Run: playerctl play-pause" {
		t.Errorf("unexpected description %q", a.Description())
	}

	if _, err := ParseAction("exec:"); err == nil {
		t.Error("expected error for empty exec command")
	}
	if _, err := ParseAction("launch:thing"); err == nil {
		t.Error("expected error for unknown action")
	}

	r, err := ParseAction("reload")
	if err != nil || r.Kind != ActionReload {
		t.Errorf("reload parse failed: %+v, %v", r, err)
	}
}
