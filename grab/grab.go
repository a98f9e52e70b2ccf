// Package grab registers global keybinds directly with the windowing system.
// It is the fallback for platforms without the GlobalShortcuts portal; on
// Linux the portal backend is used instead.
package grab

import "hotkeyd/keybind"

// Grabber holds a set of registered global keybinds and reports their
// activations on one channel.
type Grabber interface {
	// Register grabs one trigger. Unsupported combinations return an error
	// and the remaining registrations proceed.
	Register(t keybind.Trigger) error
	// Unregister releases every grabbed trigger.
	Unregister()
	// Activations delivers the trigger of each press.
	Activations() <-chan keybind.Trigger
}
