package portal

import (
	"strings"

	"github.com/godbus/dbus/v5"

	"hotkeyd/log"
)

// Response codes carried by the Request.Response signal.
const (
	responseSuccess   uint32 = 0
	responseCancelled uint32 = 1
	responseEnded     uint32 = 2
)

// pending tracks one in-flight portal request from the moment the method
// call is issued until its Response signal fires or the session is closed.
// Requests are not pipelined; the manager keeps at most one.
type pending struct {
	token     string
	path      dbus.ObjectPath
	match     Match
	method    string
	onSuccess func(results map[string]dbus.Variant)
}

// requestPath precomputes the object path the portal will emit the
// Request.Response signal on: the fixed prefix, then the caller's unique bus
// name with the leading ":" stripped and every "." rewritten to "_" (object
// path segments disallow dots), then the handle token.
func requestPath(uniqueName, token string) dbus.ObjectPath {
	sender := strings.TrimPrefix(uniqueName, ":")
	sender = strings.ReplaceAll(sender, ".", "_")
	return dbus.ObjectPath(requestPathPrefix + sender + "/" + token)
}

// request issues one portal method call. args receives the fresh handle
// token and builds the call arguments with it embedded.
//
// The Response match is added before the call goes out. The portal may emit
// the signal before the call's own return travels back, so subscribing
// afterwards can silently lose the response. If the portal ends up using a
// request path other than the precomputed one we would miss the response;
// re-subscribing on the returned handle is a known gap left open on purpose.
func (m *Manager) request(method string, onSuccess func(map[string]dbus.Variant), args func(token string) []any) error {
	token := NewToken()
	path := requestPath(m.bus.UniqueName(), token)
	match := Match{Interface: requestIface, Member: "Response", Path: path}

	if err := m.bus.AddMatch(match); err != nil {
		return err
	}
	m.pending = &pending{
		token:     token,
		path:      path,
		match:     match,
		method:    method,
		onSuccess: onSuccess,
	}

	m.bus.Call(desktopPath, shortcutsIface+"."+method, func(err error) {
		// The real result arrives via the Response signal; the call's own
		// completion is only worth a log line.
		if err != nil {
			log.Warnf("portal %s call failed: %v", method, err)
		}
	}, args(token)...)
	return nil
}

// handleResponse consumes the Response signal for the outstanding request.
// The match is removed exactly once, before any payload handling.
func (m *Manager) handleResponse(sig *dbus.Signal) {
	p := m.pending
	m.pending = nil
	if err := m.bus.RemoveMatch(p.match); err != nil {
		log.Warnf("removing response match for %s: %v", p.method, err)
	}

	code, results, ok := decodeResponse(sig.Body)
	if !ok {
		log.Warnf("portal %s: malformed response signal", p.method)
		m.Close()
		return
	}

	switch code {
	case responseSuccess:
		p.onSuccess(results)
	case responseCancelled:
		log.Info("portal " + p.method + " cancelled by user")
		m.Close()
	case responseEnded:
		log.Warn("portal " + p.method + " ended unexpectedly")
		m.Close()
	default:
		log.Warnf("portal %s: unknown response code %d", p.method, code)
		m.Close()
	}
}

// decodeResponse unpacks the (uint32 code, dict results) signal body.
func decodeResponse(body []any) (uint32, map[string]dbus.Variant, bool) {
	if len(body) < 2 {
		return 0, nil, false
	}
	code, ok := body[0].(uint32)
	if !ok {
		return 0, nil, false
	}
	results, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return 0, nil, false
	}
	return code, results, true
}
