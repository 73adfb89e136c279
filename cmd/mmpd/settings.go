package main

import (
	"fmt"
	"os"

	"github.com/go-ini/ini"

	"github.com/michd/mmpd-sub000/internal/pkg/logger"
)

// Settings are application-level knobs, separate from the macro rule file.
// They live in mmpd.ini next to the macro config.
type Settings struct {
	LogLevel    int
	EventBuffer int
	AutoReload  bool
}

func defaultSettings() Settings {
	return Settings{
		LogLevel:    logger.InfoLvl,
		EventBuffer: 1024,
		AutoReload:  false,
	}
}

// loadSettings reads mmpd.ini. A missing file yields the defaults.
func loadSettings(path string) (Settings, error) {
	s := defaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings file failed: %w", err)
	}

	cfg, err := ini.Load(data)
	if err != nil {
		return s, fmt.Errorf("parsing settings file failed: %w", err)
	}

	section := cfg.Section("mmpd")

	if key, err := section.GetKey("log_level"); err == nil {
		lvl, err := key.Int()
		if err != nil {
			return s, fmt.Errorf("log_level: %w", err)
		}
		s.LogLevel = lvl
	}

	if key, err := section.GetKey("event_buffer"); err == nil {
		size, err := key.Int()
		if err != nil {
			return s, fmt.Errorf("event_buffer: %w", err)
		}
		if size < 1 {
			return s, fmt.Errorf("event_buffer must be at least 1, got %d", size)
		}
		s.EventBuffer = size
	}

	if key, err := section.GetKey("auto_reload"); err == nil {
		b, err := key.Bool()
		if err != nil {
			return s, fmt.Errorf("auto_reload: %w", err)
		}
		s.AutoReload = b
	}

	return s, nil
}
