//go:build !linux

package grab

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"

	"hotkeyd/keybind"
)

// xGrabber registers triggers through golang.design/x/hotkey (Cocoa/Win32)
// and fans all activations into one channel.
type xGrabber struct {
	hks  []*hotkey.Hotkey
	out  chan keybind.Trigger
	done chan struct{}
	once sync.Once
}

// Supported reports whether direct grabbing is available on this platform.
func Supported() bool { return true }

func New() (Grabber, error) {
	return &xGrabber{
		out:  make(chan keybind.Trigger, 4),
		done: make(chan struct{}),
	}, nil
}

func (g *xGrabber) Register(t keybind.Trigger) error {
	mods, key, err := mapTrigger(t)
	if err != nil {
		return err
	}
	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("registering %s: %w", t, err)
	}
	g.hks = append(g.hks, hk)

	go func() {
		for {
			select {
			case <-hk.Keydown():
				select {
				case g.out <- t:
				default:
				}
			case <-g.done:
				return
			}
		}
	}()
	return nil
}

func (g *xGrabber) Unregister() {
	g.once.Do(func() {
		close(g.done)
		for _, hk := range g.hks {
			hk.Unregister()
		}
	})
}

func (g *xGrabber) Activations() <-chan keybind.Trigger {
	return g.out
}

// mapTrigger translates a trigger into hotkey package modifiers and key.
// Only the modifier and key names that exist on every supported platform
// are mapped; anything else is an error and the binding is skipped.
func mapTrigger(t keybind.Trigger) ([]hotkey.Modifier, hotkey.Key, error) {
	if t.Code != 0 {
		return nil, 0, fmt.Errorf("trigger %s: raw keycodes are not grabbable", t)
	}
	if t.Mods&(keybind.ModAlt|keybind.ModSuper) != 0 {
		return nil, 0, fmt.Errorf("trigger %s: only ctrl/shift modifiers are portable here", t)
	}

	var mods []hotkey.Modifier
	if t.Mods&keybind.ModCtrl != 0 {
		mods = append(mods, hotkey.ModCtrl)
	}
	if t.Mods&keybind.ModShift != 0 {
		mods = append(mods, hotkey.ModShift)
	}

	key, ok := keyByName[t.Key]
	if !ok {
		return nil, 0, fmt.Errorf("trigger %s: key %q is not grabbable", t, t.Key)
	}
	return mods, key, nil
}

var keyByName = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"space": hotkey.KeySpace,
	"enter": hotkey.KeyReturn,
	"up":    hotkey.KeyUp,
	"down":  hotkey.KeyDown,
	"left":  hotkey.KeyLeft,
	"right": hotkey.KeyRight,
}
