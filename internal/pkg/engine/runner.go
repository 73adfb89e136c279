package engine

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/michd/mmpd-sub000/internal/pkg/keyboard"
	"github.com/michd/mmpd-sub000/internal/pkg/macro"
	"github.com/michd/mmpd-sub000/internal/pkg/shell"
)

// Runner executes the actions of a matched macro, synchronously and in
// declared order. Keyboard and shell failures are logged and swallowed;
// the remaining actions of the macro still run.
type Runner struct {
	keyboard keyboard.Adapter
	shell    shell.Adapter
	logger   *zap.Logger
}

func NewRunner(kb keyboard.Adapter, sh shell.Adapter, logger *zap.Logger) *Runner {
	return &Runner{keyboard: kb, shell: sh, logger: logger}
}

// Run executes one action. Control actions are not executed here; they are
// returned so the main loop can act on them after the macro finishes.
func (r *Runner) Run(a macro.Action) *macro.ControlAction {
	switch a.Type {
	case macro.ActionKeySequence:
		delay := delayOrDefault(a.Delay)
		for _, sequence := range strings.Fields(a.Sequence) {
			for i := 0; i < a.Count; i++ {
				if err := r.keyboard.SendKeySequence(sequence, delay); err != nil {
					r.logger.Warn("sending key sequence failed",
						zap.String("sequence", sequence), zap.Error(err))
				}
			}
		}

	case macro.ActionEnterText:
		delay := delayOrDefault(a.Delay)
		for i := 0; i < a.Count; i++ {
			if err := r.keyboard.SendText(a.Text, delay); err != nil {
				r.logger.Warn("sending text failed",
					zap.String("text", a.Text), zap.Error(err))
			}
		}

	case macro.ActionShell:
		r.shell.Execute(a.Command, a.Args, a.EnvVars)

	case macro.ActionWait:
		time.Sleep(time.Duration(a.Duration) * time.Microsecond)

	case macro.ActionControl:
		control := a.Control
		return &control
	}

	return nil
}

func delayOrDefault(delay *uint32) uint32 {
	if delay != nil {
		return *delay
	}
	return macro.DefaultKeyDelay
}
