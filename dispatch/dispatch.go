// Package dispatch executes the actions that activated shortcuts resolve to.
package dispatch

import (
	"os/exec"

	"github.com/godbus/dbus/v5"

	"hotkeyd/keybind"
	"hotkeyd/log"
)

const (
	notifyDest  = "org.freedesktop.Notifications"
	notifyPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyIface = "org.freedesktop.Notifications"
)

// Runner performs actions for real: exec spawns a shell command, notify
// posts a desktop notification, reload invokes the provided callback.
// Perform never blocks the caller's event loop.
type Runner struct {
	conn   *dbus.Conn // for notifications; may be nil
	reload func()
}

// New builds a Runner. conn may be nil, in which case notify actions only
// log. reload must not be nil and must be safe to call from Perform; it
// should defer the actual reload instead of re-entering the caller.
func New(conn *dbus.Conn, reload func()) *Runner {
	return &Runner{conn: conn, reload: reload}
}

func (r *Runner) Perform(a keybind.Action) {
	switch a.Kind {
	case keybind.ActionExec:
		r.execute(a.Arg)
	case keybind.ActionNotify:
		r.notify(a.Arg)
	case keybind.ActionReload:
		r.reload()
	}
}

func (r *Runner) execute(command string) {
	cmd := exec.Command("/bin/sh", "-c", command)
	if err := cmd.Start(); err != nil {
		log.Errorf("exec %q: %v", command, err)
		return
	}
	// Reap in the background so the child never zombies.
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Warnf("exec %q: %v", command, err)
		}
	}()
}

func (r *Runner) notify(message string) {
	if r.conn == nil {
		log.Info("notify: " + message)
		return
	}
	go func() {
		obj := r.conn.Object(notifyDest, notifyPath)
		call := obj.Call(notifyIface+".Notify", 0,
			"hotkeyd",                 // app_name
			uint32(0),                 // replaces_id
			"",                        // app_icon
			"hotkeyd",                 // summary
			message,                   // body
			[]string{},                // actions
			map[string]dbus.Variant{}, // hints
			int32(-1),                 // expire_timeout
		)
		if call.Err != nil {
			log.Warnf("notify: %v", call.Err)
		}
	}()
}
