//go:build linux

package main

import "hotkeyd/config"

func main() {
	run()
}

func serve(cfgPath string, cfg *config.Config, parentWindow string) {
	runPortal(cfgPath, cfg, parentWindow)
}
