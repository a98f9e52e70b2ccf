// Package doctor runs interactive diagnostics for the portal backend.
package doctor

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"hotkeyd/keybind"
	"hotkeyd/portal"
)

const bindTimeout = 30 * time.Second

type nopDispatcher struct{}

func (nopDispatcher) Perform(keybind.Action) {}

// Run executes the diagnostic checks and returns an exit code (0=all pass,
// 1=any fail).
func Run() int {
	fmt.Println("hotkeyd doctor - desktop portal diagnostics")
	fmt.Println("===========================================")

	allPass := true

	bus := checkSessionBus()
	if bus == nil {
		allPass = false
	}
	if allPass && !checkPortalService(bus) {
		allPass = false
	}
	if allPass && !checkBind(bus) {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkSessionBus() *portal.Conn {
	fmt.Println()
	fmt.Println("[1/3] Session bus")

	bus, err := portal.Connect()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		fmt.Println("  (is DBUS_SESSION_BUS_ADDRESS set?)")
		return nil
	}
	fmt.Printf("  PASS: connected as %s\n", bus.UniqueName())
	return bus
}

func checkPortalService(bus *portal.Conn) bool {
	fmt.Println()
	fmt.Println("[2/3] GlobalShortcuts portal")

	conn := bus.Raw()
	var owned bool
	err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0,
		"org.freedesktop.portal.Desktop").Store(&owned)
	if err != nil || !owned {
		fmt.Println("  FAIL: org.freedesktop.portal.Desktop is not on the bus")
		fmt.Println("  (is xdg-desktop-portal running?)")
		return false
	}

	obj := conn.Object("org.freedesktop.portal.Desktop", "/org/freedesktop/portal/desktop")
	v, err := obj.GetProperty("org.freedesktop.portal.GlobalShortcuts.version")
	if err != nil {
		fmt.Printf("  FAIL: portal does not expose GlobalShortcuts: %v\n", err)
		fmt.Println("  (your desktop's portal backend may not implement it)")
		return false
	}
	version, _ := v.Value().(uint32)
	fmt.Printf("  PASS: GlobalShortcuts version %d\n", version)
	return true
}

// checkBind drives a real CreateSession/BindShortcuts handshake with one
// throwaway shortcut. The shell may pop a permission dialog, so this only
// runs on a terminal and waits generously.
func checkBind(bus *portal.Conn) bool {
	fmt.Println()
	fmt.Println("[3/3] Shortcut registration")

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("  SKIP: not a terminal (the shell may need to show a dialog)")
		return true
	}
	fmt.Println("Binding a test shortcut; approve the dialog if one appears...")

	mgr := portal.NewManager(nopDispatcher{})
	mgr.SetBus(bus)
	defer mgr.Close()

	trigger, err := keybind.ParseTrigger("ctrl+shift+f11")
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	mgr.Refresh(keybind.Table{{
		Sequence: []keybind.Trigger{trigger},
		Action:   keybind.Action{Kind: keybind.ActionNotify, Arg: "hotkeyd doctor"},
		Global:   true,
	}})

	deadline := time.After(bindTimeout)
	for {
		select {
		case sig := <-bus.Signals():
			mgr.HandleSignal(sig)
			if mgr.Bound() {
				fmt.Println("  PASS: session bound")
				return true
			}
			// A denial drops the manager back to closed; no point waiting
			// out the deadline.
			if !mgr.Active() {
				fmt.Println("  FAIL: the portal refused the request (denied or cancelled)")
				return false
			}
		case <-deadline:
			fmt.Println("  FAIL: timeout waiting for the portal to bind")
			fmt.Println("  (the request may have been denied, or the portal is unresponsive)")
			return false
		}
	}
}
