package portal

import (
	"sort"

	"github.com/godbus/dbus/v5"

	"hotkeyd/keybind"
	"hotkeyd/log"
)

// Dispatcher receives activated actions at the application boundary. The
// call is synchronous; implementations must not retain the Action past the
// call, because the next refresh replaces the table it was resolved from.
type Dispatcher interface {
	Perform(a keybind.Action)
}

type sessionState int

const (
	stateClosed sessionState = iota
	stateAwaitingSession
	stateAwaitingBind
	stateBound
)

func (s sessionState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateAwaitingSession:
		return "awaiting-session"
	case stateAwaitingBind:
		return "awaiting-bind"
	case stateBound:
		return "bound"
	}
	return "unknown"
}

// shortcutMap is the id → action table. It is rebuilt wholesale on every
// refresh and never partially updated, so an id bound in consecutive
// refreshes always resolves to the newest action: last rebuild wins.
type shortcutMap struct {
	actions map[string]keybind.Action
}

// Manager drives the portal session lifecycle:
//
//	Closed → AwaitingSession → AwaitingBind → Bound
//
// with any failure dropping back to Closed. It is not internally locked:
// every method, including HandleSignal, must be invoked from the single
// goroutine that owns the event loop.
type Manager struct {
	bus        Bus
	dispatcher Dispatcher

	// ParentWindow is the portal parent-window identifier passed to
	// BindShortcuts. Empty means no parent.
	ParentWindow string

	state      sessionState
	shortcuts  *shortcutMap
	session    dbus.ObjectPath
	pending    *pending
	activation *Match
}

func NewManager(d Dispatcher) *Manager {
	return &Manager{dispatcher: d}
}

// SetBus swaps the borrowed connection. Any live session is torn down on
// the old connection first; the caller refreshes afterwards if the new
// connection is usable.
func (m *Manager) SetBus(bus Bus) {
	m.Close()
	m.bus = bus
}

// Bound reports whether the full handshake has completed.
func (m *Manager) Bound() bool {
	return m.state == stateBound
}

// Active reports whether a handshake is in flight or bound. It goes false
// the moment a failure or cancellation drops the session back to closed.
func (m *Manager) Active() bool {
	return m.state != stateClosed
}

// Refresh tears down any existing session and, when the table contains
// registrable global bindings, starts a new CreateSession → BindShortcuts
// handshake. With no connection or no global bindings it stays closed and
// issues no calls.
func (m *Manager) Refresh(table keybind.Table) {
	m.Close()

	if m.bus == nil {
		log.RefreshSkipped("no session bus")
		return
	}

	sm := buildShortcutMap(table)
	if len(sm.actions) == 0 {
		log.RefreshSkipped("no global keybinds")
		return
	}
	m.shortcuts = sm

	err := m.request("CreateSession", m.onSessionCreated, func(token string) []any {
		return []any{map[string]dbus.Variant{
			"handle_token":         dbus.MakeVariant(token),
			"session_handle_token": dbus.MakeVariant(NewToken()),
		}}
	})
	if err != nil {
		log.Errorf("portal CreateSession: %v", err)
		m.Close()
		return
	}
	m.state = stateAwaitingSession
}

// Close tears the session down: outstanding response match removed, the
// Activated match removed, a best-effort Session.Close fired on the portal,
// and the shortcut map discarded. Idempotent; safe from any state.
func (m *Manager) Close() {
	if m.pending != nil {
		if err := m.bus.RemoveMatch(m.pending.match); err != nil {
			log.Warnf("removing response match: %v", err)
		}
		m.pending = nil
	}
	if m.activation != nil {
		if err := m.bus.RemoveMatch(*m.activation); err != nil {
			log.Warnf("removing activation match: %v", err)
		}
		m.activation = nil
	}
	if m.session != "" {
		// Fire-and-forget; the portal drops the session when we vanish from
		// the bus anyway.
		m.bus.Call(m.session, sessionIface+".Close", nil)
		m.session = ""
	}
	m.shortcuts = nil
	m.state = stateClosed
}

// HandleSignal routes one bus signal. Signals that match neither the
// outstanding request path nor the live session path are ignored; after a
// close, late deliveries land here and fall through.
func (m *Manager) HandleSignal(sig *dbus.Signal) {
	switch {
	case m.pending != nil && sig.Path == m.pending.path && sig.Name == requestIface+".Response":
		m.handleResponse(sig)
	case m.activation != nil && sig.Path == m.session && sig.Name == shortcutsIface+".Activated":
		m.handleActivated(sig)
	}
}

func (m *Manager) onSessionCreated(results map[string]dbus.Variant) {
	handle := sessionHandle(results)
	if handle == "" {
		log.Warn("portal CreateSession response missing session_handle")
		m.Close()
		return
	}
	m.session = dbus.ObjectPath(handle)

	match := Match{Interface: shortcutsIface, Member: "Activated", Path: m.session}
	if err := m.bus.AddMatch(match); err != nil {
		log.Errorf("subscribing to Activated: %v", err)
		m.Close()
		return
	}
	m.activation = &match

	err := m.request("BindShortcuts", m.onShortcutsBound, func(token string) []any {
		return []any{
			m.session,
			bindList(m.shortcuts),
			m.ParentWindow,
			map[string]dbus.Variant{"handle_token": dbus.MakeVariant(token)},
		}
	})
	if err != nil {
		log.Errorf("portal BindShortcuts: %v", err)
		m.Close()
		return
	}
	m.state = stateAwaitingBind
}

func (m *Manager) onShortcutsBound(map[string]dbus.Variant) {
	m.state = stateBound
	log.SessionBound(string(m.session), len(m.shortcuts.actions))
}

// handleActivated routes one Activated signal into the dispatcher. The
// second positional field is the shortcut id. Unknown ids are silently
// ignored; the shell may deliver activations for shortcuts an earlier
// refresh registered and the current table no longer has.
func (m *Manager) handleActivated(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	id, ok := sig.Body[1].(string)
	if !ok {
		return
	}
	action, ok := m.lookup(id)
	if !ok {
		return
	}
	log.Activation(id, action.Description())
	m.dispatcher.Perform(action)
}

// lookup resolves a shortcut id against the current map only. An id that
// survived a refresh resolves to the action the latest rebuild gave it.
func (m *Manager) lookup(id string) (keybind.Action, bool) {
	if m.shortcuts == nil {
		return keybind.Action{}, false
	}
	action, ok := m.shortcuts.actions[id]
	return action, ok
}

// buildShortcutMap translates the keybinding table into portal shortcuts.
// Leader chords cannot be global, non-global bindings are not the portal's
// business, and triggers without a shell-representable form are logged and
// skipped without aborting the rebuild. Two triggers mapping to the same
// id: last write wins.
func buildShortcutMap(table keybind.Table) *shortcutMap {
	actions := make(map[string]keybind.Action)
	for _, b := range table {
		if len(b.Sequence) != 1 {
			continue
		}
		if !b.Global {
			continue
		}
		id, ok := keybind.ShortcutID(b.Sequence[0])
		if !ok {
			log.Warnf("skipping global keybind %s: no shell representation", b.Sequence[0])
			continue
		}
		actions[id] = b.Action
	}
	return &shortcutMap{actions: actions}
}

// boundShortcut marshals as (s a{sv}): the shortcut id plus its properties.
type boundShortcut struct {
	ID    string
	Props map[string]dbus.Variant
}

// bindList builds the BindShortcuts payload, one tuple per map entry. The
// id doubles as the preferred trigger hint since it already is the
// canonical trigger string. Sorted for a stable wire order.
func bindList(sm *shortcutMap) []boundShortcut {
	ids := make([]string, 0, len(sm.actions))
	for id := range sm.actions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	list := make([]boundShortcut, 0, len(ids))
	for _, id := range ids {
		list = append(list, boundShortcut{
			ID: id,
			Props: map[string]dbus.Variant{
				"description":       dbus.MakeVariant(sm.actions[id].Description()),
				"preferred_trigger": dbus.MakeVariant(id),
			},
		})
	}
	return list
}

// sessionHandle extracts the session object path from a CreateSession
// response. Portals have shipped it both as a string and as an object path.
func sessionHandle(results map[string]dbus.Variant) string {
	v, ok := results["session_handle"]
	if !ok {
		return ""
	}
	switch s := v.Value().(type) {
	case string:
		return s
	case dbus.ObjectPath:
		return string(s)
	}
	return ""
}
