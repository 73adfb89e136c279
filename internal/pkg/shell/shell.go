// Package shell launches processes on behalf of macro actions.
package shell

import (
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// Adapter is the narrow interface the action runner consumes. Output is
// discarded and exit codes are not surfaced.
type Adapter interface {
	Execute(command string, args []string, envVars [][2]string)
}

// Exec runs commands detached through os/exec.
type Exec struct {
	logger *zap.Logger
}

func NewExec(logger *zap.Logger) *Exec {
	return &Exec{logger: logger}
}

// Execute starts the command and releases it without waiting for the exit
// status; a macro must not block on the processes it spawns.
func (e *Exec) Execute(command string, args []string, envVars [][2]string) {
	cmd := exec.Command(command, args...)
	if len(envVars) > 0 {
		env := os.Environ()
		for _, kv := range envVars {
			env = append(env, kv[0]+"="+kv[1])
		}
		cmd.Env = env
	}

	if err := cmd.Start(); err != nil {
		e.logger.Warn("starting shell command failed",
			zap.String("command", command), zap.Error(err))
		return
	}
	go func() {
		// reap the child; the exit code is deliberately ignored
		_ = cmd.Wait()
	}()
	e.logger.Debug("shell command started",
		zap.String("command", command), zap.Strings("args", args))
}
