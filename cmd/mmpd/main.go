package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/michd/mmpd-sub000/internal/pkg/config"
	"github.com/michd/mmpd-sub000/internal/pkg/engine"
	"github.com/michd/mmpd-sub000/internal/pkg/focus"
	"github.com/michd/mmpd-sub000/internal/pkg/keyboard"
	"github.com/michd/mmpd-sub000/internal/pkg/logger"
	"github.com/michd/mmpd-sub000/internal/pkg/match"
	"github.com/michd/mmpd-sub000/internal/pkg/midi"
	"github.com/michd/mmpd-sub000/internal/pkg/midi/driver"
	"github.com/michd/mmpd-sub000/internal/pkg/midi/driver/rtmidi"
	"github.com/michd/mmpd-sub000/internal/pkg/shell"
	"github.com/michd/mmpd-sub000/internal/pkg/state"
)

var (
	configPath = flag.String("config", "",
		"path to the macro configuration (default: $XDG_CONFIG_HOME/mmpd/mmpd.yml)")
	midiDevice = flag.String("midi-device", "",
		"substring of the MIDI input port name to listen on (overrides the config's midi_device)")
	logLevel = flag.Int("loglevel", logger.InfoLvl,
		"logging level: 0 errors, 1 warnings, 2 info, 3 debug")

	logLevelSet bool
)

func main() {
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "loglevel" {
			logLevelSet = true
		}
	})
	if flag.NArg() > 1 {
		if err := parseSubcommandArgs(flag.Arg(0), flag.Args()[1:]); err != nil {
			os.Exit(2)
		}
	}
	os.Exit(run())
}

// parseSubcommandArgs re-parses the tokens after the subcommand name into
// the same flag variables. Stdlib flag stops at the first non-flag
// argument, so "mmpd monitor -midi-device X" leaves -midi-device unparsed
// without this second pass.
func parseSubcommandArgs(cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	flag.VisitAll(func(f *flag.Flag) {
		fs.Var(f.Value, f.Name, f.Usage)
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "loglevel" {
			logLevelSet = true
		}
	})
	return nil
}

func run() int {
	path := *configPath
	if path == "" {
		path = defaultConfigPath()
	}

	settings, err := loadSettings(filepath.Join(filepath.Dir(path), "mmpd.ini"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad settings file: %v\n", err)
		return 1
	}

	level := settings.LogLevel
	if logLevelSet {
		level = *logLevel
	}
	log := logger.New(level)
	defer log.Sync()

	switch cmd := flag.Arg(0); cmd {
	case "list-devices":
		ports, err := rtmidi.New(log).ListPorts()
		if err != nil {
			log.Error("listing midi ports failed", zap.Error(err))
			return 1
		}
		for _, port := range ports {
			fmt.Println(port)
		}
		return 0

	case "monitor":
		if err := runMonitor(rtmidi.New(log), *midiDevice); err != nil {
			log.Error("monitor failed", zap.Error(err))
			return 1
		}
		return 0

	case "init":
		if err := writeTemplate(path); err != nil {
			log.Error("writing config template failed", zap.Error(err))
			return 1
		}
		fmt.Printf("wrote starter config to %s\n", path)
		return 0

	case "":
		for {
			result, err := runEngine(path, settings, log)
			if err != nil {
				log.Error("startup failed", zap.Error(err))
				return 1
			}
			if result == engine.ResultRestart {
				log.Info("restarting")
				continue
			}
			return 0
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		return 1
	}
}

// runEngine performs one full engine lifetime: adapters are acquired,
// the loop runs until exit or restart, everything is torn down again.
func runEngine(path string, settings Settings, log *zap.Logger) (engine.Result, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return engine.ResultExit, fmt.Errorf("loading config %s failed: %w", path, err)
	}
	log.Info("config loaded", zap.String("path", path), zap.Int("macros", len(cfg.Macros)))
	if len(cfg.Macros) == 0 {
		log.Warn("config has no macros, nothing will ever match")
	}

	drv := rtmidi.New(log)

	pattern, err := resolvePortPattern(drv, cfg.MidiDevice)
	if err != nil {
		return engine.ResultExit, err
	}

	kb, err := keyboard.NewUinput(log)
	if err != nil {
		return engine.ResultExit, fmt.Errorf("keyboard backend unavailable: %w", err)
	}
	defer kb.Close()

	fa, err := focus.NewX11(log)
	if err != nil {
		return engine.ResultExit, fmt.Errorf("focus backend unavailable: %w", err)
	}
	defer fa.Close()

	events := make(chan midi.Message, settings.EventBuffer)
	if err := drv.StartListening(pattern, events); err != nil {
		return engine.ResultExit, err
	}
	defer drv.StopListening()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	// LIFO: stop delivery first, then release the watching goroutine
	defer close(sigs)
	defer signal.Stop(sigs)
	go func() {
		sig, ok := <-sigs
		if !ok {
			return
		}
		log.Info("signal received", zap.Stringer("signal", sig))
		drv.StopListening()
	}()

	var reloads <-chan bool
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if settings.AutoReload {
		reloads = config.DetectChanges(ctx, path, log)
	}

	st := state.NewFacade(state.NewTracker(), fa)
	runner := engine.NewRunner(kb, shell.NewExec(log), log)
	loop := engine.NewLoop(cfg, path, st, runner, events, reloads, log)

	return loop.Run(), nil
}

// resolvePortPattern turns the -midi-device flag or the config's
// midi_device matcher into the substring pattern the driver expects. The
// flag wins; the matcher picks the first port it accepts.
func resolvePortPattern(drv driver.Driver, matcher *match.String) (string, error) {
	if *midiDevice != "" {
		return *midiDevice, nil
	}
	if matcher == nil {
		return "", nil
	}

	ports, err := drv.ListPorts()
	if err != nil {
		return "", err
	}
	for _, port := range ports {
		if matcher.Matches(port) {
			return port, nil
		}
	}
	return "", driver.ErrNoMatchingPort
}
