package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"hotkeyd/config"
	"hotkeyd/dispatch"
	"hotkeyd/doctor"
	"hotkeyd/keybind"
	"hotkeyd/log"
	"hotkeyd/portal"
)

var version = "dev"

func run() {
	configFlag := flag.String("config", "", "Config file path (default: OS config dir + hotkeyd/config.toml)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run portal diagnostics and exit")
	parentFlag := flag.String("parent-window", "", "Portal parent window identifier passed to BindShortcuts")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("hotkeyd %s\n", version)
		os.Exit(0)
	}
	if *doctorFlag {
		os.Exit(doctor.Run())
	}

	cfgPath := *configFlag
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot determine config path: %v\n", err)
			os.Exit(1)
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Log dir precedence: flag, env, config file, OS default.
	logDirHint := *logPathFlag
	if logDirHint == "" && os.Getenv("HOTKEYD_LOG_PATH") == "" {
		logDirHint = cfg.LogPath
	}
	logPath, err := log.ResolveDir(logDirHint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.Info("hotkeyd " + version + " starting")

	serve(cfgPath, cfg, *parentFlag)
}

func runPortal(cfgPath string, cfg *config.Config, parentWindow string) {
	bus, err := portal.Connect()
	if err != nil {
		log.Errorf("session bus: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "hotkeyd needs a D-Bus session bus; run 'hotkeyd -doctor' for details")
		os.Exit(1)
	}

	reloadCh := make(chan struct{}, 1)
	requestReload := func() {
		select {
		case reloadCh <- struct{}{}:
		default:
		}
	}

	runner := dispatch.New(bus.Raw(), requestReload)
	mgr := portal.NewManager(runner)
	mgr.ParentWindow = parentWindow
	mgr.SetBus(bus)
	mgr.Refresh(cfg.Table())

	stopWatch := watchConfig(cfgPath, requestReload)
	defer stopWatch()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case sig := <-bus.Signals():
			mgr.HandleSignal(sig)
		case <-reloadCh:
			if table, ok := reloadTable(cfgPath); ok {
				mgr.Refresh(table)
			}
		case <-sigChan:
			log.Info("shutting down")
			mgr.Close()
			log.Close()
			return
		}
	}
}

// reloadTable reloads the config file. A broken config keeps the previous
// bindings active rather than dropping every registered shortcut.
func reloadTable(cfgPath string) (keybind.Table, bool) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.ConfigReload(cfgPath, 0, err)
		return nil, false
	}
	table := cfg.Table()
	log.ConfigReload(cfgPath, len(table), nil)
	return table, true
}

// watchConfig watches the config file's directory (editors replace the file
// by rename, which would orphan a direct watch) and debounces bursts of
// write events into one reload request. Returns a stop function; watching
// is best-effort and a failure only disables hot reload.
func watchConfig(cfgPath string, requestReload func()) func() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warnf("config watch disabled: %v", err)
		return func() {}
	}
	if err := watcher.Add(filepath.Dir(cfgPath)); err != nil {
		log.Warnf("config watch disabled: %v", err)
		watcher.Close()
		return func() {}
	}

	go func() {
		var debounce *time.Timer
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(cfgPath) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, requestReload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("config watcher: %v", err)
			}
		}
	}()
	return func() { watcher.Close() }
}
