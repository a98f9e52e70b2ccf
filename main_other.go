//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/mainthread"

	"hotkeyd/config"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// Cocoa/Win32 key grabbing must happen on the main OS thread.
	mainthread.Init(run)
}

func serve(cfgPath string, cfg *config.Config, _ string) {
	runGrab(cfgPath, cfg)
}
