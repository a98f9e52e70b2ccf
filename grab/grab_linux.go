//go:build linux

package grab

import "errors"

// Supported reports whether direct grabbing is available. On Linux the
// portal backend owns global shortcuts, so it never is.
func Supported() bool { return false }

func New() (Grabber, error) {
	return nil, errors.New("direct key grabbing is not supported on linux; the desktop portal handles global shortcuts")
}
