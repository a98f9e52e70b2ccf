// Package portal registers global shortcuts with the desktop shell through
// the org.freedesktop.portal.GlobalShortcuts interface on the session bus.
//
// The portal protocol is asynchronous and signal-correlated: a method call
// returns a request handle, and the actual result arrives later as a
// Request.Response signal on an object path the client can compute up front.
package portal

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	portalDest  = "org.freedesktop.portal.Desktop"
	desktopPath = dbus.ObjectPath("/org/freedesktop/portal/desktop")

	shortcutsIface = "org.freedesktop.portal.GlobalShortcuts"
	requestIface   = "org.freedesktop.portal.Request"
	sessionIface   = "org.freedesktop.portal.Session"

	requestPathPrefix = "/org/freedesktop/portal/desktop/request/"
)

// Match identifies one signal subscription: interface, member, and the exact
// object path the signal is expected on.
type Match struct {
	Interface string
	Member    string
	Path      dbus.ObjectPath
}

// Bus is the slice of a session-bus connection the portal client needs. The
// connection is borrowed, not owned; the caller may swap it at any time via
// Manager.SetBus after tearing the old session down.
type Bus interface {
	// UniqueName returns this connection's unique bus name (":1.42").
	UniqueName() string
	// AddMatch and RemoveMatch manage one signal match rule each. Every
	// added match must be removed exactly once.
	AddMatch(m Match) error
	RemoveMatch(m Match) error
	// Call issues a method call on the portal service asynchronously. done,
	// if non-nil, receives the call's own completion error; a nil done makes
	// the call fire-and-forget. method is the fully qualified name.
	Call(path dbus.ObjectPath, method string, done func(error), args ...any)
	// Signals is the channel every matched signal is delivered on. The
	// owner's event loop drains it and feeds Manager.HandleSignal.
	Signals() <-chan *dbus.Signal
}

// Conn adapts a godbus connection to the Bus interface.
type Conn struct {
	conn *dbus.Conn
	sigs chan *dbus.Signal
}

// Connect opens (or reuses) the session bus connection and registers the
// signal channel.
func Connect() (*Conn, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	sigs := make(chan *dbus.Signal, 16)
	conn.Signal(sigs)
	return &Conn{conn: conn, sigs: sigs}, nil
}

func (c *Conn) UniqueName() string {
	return c.conn.Names()[0]
}

func (c *Conn) AddMatch(m Match) error {
	return c.conn.AddMatchSignal(
		dbus.WithMatchInterface(m.Interface),
		dbus.WithMatchMember(m.Member),
		dbus.WithMatchObjectPath(m.Path),
	)
}

func (c *Conn) RemoveMatch(m Match) error {
	return c.conn.RemoveMatchSignal(
		dbus.WithMatchInterface(m.Interface),
		dbus.WithMatchMember(m.Member),
		dbus.WithMatchObjectPath(m.Path),
	)
}

func (c *Conn) Call(path dbus.ObjectPath, method string, done func(error), args ...any) {
	obj := c.conn.Object(portalDest, path)
	if done == nil {
		obj.Go(method, dbus.FlagNoReplyExpected, nil, args...)
		return
	}
	ch := make(chan *dbus.Call, 1)
	obj.Go(method, 0, ch, args...)
	go func() {
		call := <-ch
		done(call.Err)
	}()
}

func (c *Conn) Signals() <-chan *dbus.Signal {
	return c.sigs
}

// Raw exposes the underlying connection for collaborators that speak other
// bus interfaces (desktop notifications, doctor checks).
func (c *Conn) Raw() *dbus.Conn {
	return c.conn
}
