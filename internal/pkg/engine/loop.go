package engine

import (
	"go.uber.org/zap"

	"github.com/michd/mmpd-sub000/internal/pkg/config"
	"github.com/michd/mmpd-sub000/internal/pkg/macro"
	"github.com/michd/mmpd-sub000/internal/pkg/midi"
	"github.com/michd/mmpd-sub000/internal/pkg/state"
)

// Result tells the caller what to do after the loop returns.
type Result int

const (
	ResultExit Result = iota
	ResultRestart
)

// Loop drives the evaluation engine from the event channel. It owns the
// active config and is the only mutator of the MIDI state.
type Loop struct {
	cfg        config.Config
	configPath string

	state     *state.Facade
	evaluator *Evaluator
	runner    *Runner
	events    <-chan midi.Message
	reloads   <-chan bool
	logger    *zap.Logger
}

// NewLoop wires the loop. reloads may be nil; when set (the fsnotify
// watcher), a value on it triggers the same reload a reload_macros control
// action would.
func NewLoop(
	cfg config.Config,
	configPath string,
	st *state.Facade,
	runner *Runner,
	events <-chan midi.Message,
	reloads <-chan bool,
	logger *zap.Logger,
) *Loop {
	return &Loop{
		cfg:        cfg,
		configPath: configPath,
		state:      st,
		evaluator:  NewEvaluator(st),
		runner:     runner,
		events:     events,
		reloads:    reloads,
		logger:     logger,
	}
}

// Run blocks until the event channel closes or a control action ends the
// loop. It returns ResultRestart when a restart control action fired.
func (l *Loop) Run() Result {
	for {
		select {
		case msg, ok := <-l.events:
			if !ok {
				l.logger.Debug("event channel closed")
				return ResultExit
			}
			result, done := l.handle(msg)
			if done {
				return result
			}

		case _, ok := <-l.reloads:
			if !ok {
				l.reloads = nil
				continue
			}
			if !l.reload() {
				return ResultExit
			}
		}
	}
}

func (l *Loop) handle(msg midi.Message) (Result, bool) {
	l.state.Update(msg)

	matched := l.evaluator.Evaluate(l.cfg.Macros, msg)
	if matched == nil {
		return 0, false
	}
	if matched.Name != "" {
		l.logger.Debug("macro matched", zap.String("name", matched.Name))
	}

	// control actions are staged and applied only after the whole action
	// list ran
	var staged *macro.ControlAction
	for _, action := range matched.Actions {
		if control := l.runner.Run(action); control != nil {
			staged = control
		}
	}

	if staged == nil {
		return 0, false
	}
	switch *staged {
	case macro.ControlReloadMacros:
		if !l.reload() {
			return ResultExit, true
		}
	case macro.ControlRestart:
		l.logger.Info("restart requested")
		return ResultRestart, true
	case macro.ControlExit:
		l.logger.Info("exit requested")
		return ResultExit, true
	}
	return 0, false
}

// reload re-reads the config from the remembered path and replaces the
// active rule set wholesale. A failed reload keeps the old config. The
// return value is false when the new config has no macros, which ends
// the loop.
func (l *Loop) reload() bool {
	cfg, err := config.Load(l.configPath)
	if err != nil {
		l.logger.Warn("config reload failed, keeping previous config", zap.Error(err))
		return true
	}

	l.cfg = cfg
	l.logger.Info("macros reloaded", zap.Int("count", len(cfg.Macros)))

	if len(cfg.Macros) == 0 {
		l.logger.Info("no macros left after reload, exiting")
		return false
	}
	return true
}
