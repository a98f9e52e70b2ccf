package portal

import (
	"github.com/godbus/dbus/v5"
)

// FakeCall is one method call recorded by the FakeBus.
type FakeCall struct {
	Path   dbus.ObjectPath
	Method string
	Args   []any
	Done   func(error)
}

// FakeBus implements Bus for tests: it records every operation in order and
// lets tests inject signals and call completions.
type FakeBus struct {
	Name string

	// Ops is the ordered operation log: "add:<path>", "remove:<path>",
	// "call:<method>".
	Ops     []string
	Calls   []FakeCall
	Matches map[Match]int // net add/remove count per match

	AddErr error // next AddMatch returns this

	sigs chan *dbus.Signal
}

func NewFakeBus(name string) *FakeBus {
	return &FakeBus{
		Name:    name,
		Matches: make(map[Match]int),
		sigs:    make(chan *dbus.Signal, 16),
	}
}

func (f *FakeBus) UniqueName() string { return f.Name }

func (f *FakeBus) AddMatch(m Match) error {
	if f.AddErr != nil {
		err := f.AddErr
		f.AddErr = nil
		return err
	}
	f.Ops = append(f.Ops, "add:"+string(m.Path))
	f.Matches[m]++
	return nil
}

func (f *FakeBus) RemoveMatch(m Match) error {
	f.Ops = append(f.Ops, "remove:"+string(m.Path))
	f.Matches[m]--
	return nil
}

func (f *FakeBus) Call(path dbus.ObjectPath, method string, done func(error), args ...any) {
	f.Ops = append(f.Ops, "call:"+method)
	f.Calls = append(f.Calls, FakeCall{Path: path, Method: method, Args: args, Done: done})
}

func (f *FakeBus) Signals() <-chan *dbus.Signal { return f.sigs }

// Emit delivers a signal on the fake's channel for tests that drive a real
// event loop. Most tests call Manager.HandleSignal directly instead.
func (f *FakeBus) Emit(sig *dbus.Signal) { f.sigs <- sig }

// LastCall returns the most recent recorded call.
func (f *FakeBus) LastCall() FakeCall {
	return f.Calls[len(f.Calls)-1]
}

// ActiveMatches counts matches that were added but not yet removed.
func (f *FakeBus) ActiveMatches() int {
	n := 0
	for _, c := range f.Matches {
		n += c
	}
	return n
}
