package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level values accepted by the -loglevel flag and the mmpd.ini log_level key.
const (
	ErrorLvl = 0
	WarnLvl  = 1
	InfoLvl  = 2
	DebugLvl = 3
)

func zapLevel(lvl int) zapcore.Level {
	switch {
	case lvl <= ErrorLvl:
		return zap.ErrorLevel
	case lvl == WarnLvl:
		return zap.WarnLevel
	case lvl == InfoLvl:
		return zap.InfoLevel
	default:
		return zap.DebugLevel
	}
}

// New builds the process logger: console encoder on stderr, threshold
// selected by the numeric level above.
func New(lvl int) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(lvl))
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		// the fixed development config cannot produce a bad output path
		panic(err)
	}
	return logger
}
