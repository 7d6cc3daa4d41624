package main

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"
)

type runConfig struct {
	count           int
	pauseAfter      int
	hold            time.Duration
	initiallyPaused bool
}

func defaultRunConfig() runConfig {
	return runConfig{
		count:      30,
		pauseAfter: 8,
		hold:       200 * time.Millisecond,
	}
}

// loadRunConfig reads the [stream] section of an ini file on top of base.
// Missing keys keep the base value.
func loadRunConfig(path string, base runConfig) (runConfig, error) {
	file, err := ini.Load(path)
	if err != nil {
		return base, fmt.Errorf("load config %s: %w", path, err)
	}

	section := file.Section("stream")
	cfg := runConfig{
		count:           section.Key("count").MustInt(base.count),
		pauseAfter:      section.Key("pause_after").MustInt(base.pauseAfter),
		hold:            section.Key("hold").MustDuration(base.hold),
		initiallyPaused: section.Key("initially_paused").MustBool(base.initiallyPaused),
	}
	return cfg, nil
}

func (c runConfig) validate() error {
	if c.count < 0 {
		return fmt.Errorf("count must not be negative, got %d", c.count)
	}
	if c.pauseAfter < 0 {
		return fmt.Errorf("pause-after must not be negative, got %d", c.pauseAfter)
	}
	if c.hold < 0 {
		return fmt.Errorf("hold must not be negative, got %s", c.hold)
	}
	return nil
}
