package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hotkeyd/config"
	"hotkeyd/dispatch"
	"hotkeyd/grab"
	"hotkeyd/keybind"
	"hotkeyd/log"
)

// runGrab is the non-portal backend: global bindings are grabbed directly
// from the windowing system and routed into the same dispatch path.
func runGrab(cfgPath string, cfg *config.Config) {
	reloadCh := make(chan struct{}, 1)
	requestReload := func() {
		select {
		case reloadCh <- struct{}{}:
		default:
		}
	}

	runner := dispatch.New(nil, requestReload)
	g, actions := registerAll(cfg.Table())

	stopWatch := watchConfig(cfgPath, requestReload)
	defer stopWatch()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case t := <-g.Activations():
			if a, ok := actions[t]; ok {
				log.Activation(t.String(), a.Description())
				runner.Perform(a)
			}
		case <-reloadCh:
			if table, ok := reloadTable(cfgPath); ok {
				g.Unregister()
				g, actions = registerAll(table)
			}
		case <-sigChan:
			log.Info("shutting down")
			g.Unregister()
			log.Close()
			return
		}
	}
}

// registerAll grabs every global leaf binding. Individual failures are
// logged and skipped; the rest stay registered.
func registerAll(table keybind.Table) (grab.Grabber, map[keybind.Trigger]keybind.Action) {
	g, err := grab.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	actions := make(map[keybind.Trigger]keybind.Action)
	for _, b := range table {
		if len(b.Sequence) != 1 || !b.Global {
			continue
		}
		t := b.Sequence[0]
		if err := g.Register(t); err != nil {
			log.Warnf("skipping keybind %s: %v", t, err)
			continue
		}
		actions[t] = b.Action
	}
	log.Info(fmt.Sprintf("grabbed %d global keybinds", len(actions)))
	return g, actions
}
