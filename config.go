// config.go: external configuration surface for assembling a LoggerRegistry
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"strconv"
	"strings"
)

// ConsoleConfig configures the optional ConsoleSink.
type ConsoleConfig struct {
	Enabled bool
	Target  string // "stdout" or "stderr"
	Pattern string
	Level   Level
}

// FileConfig configures the optional RollingFileSink.
type FileConfig struct {
	Enabled         bool
	Path            string
	Pattern         string
	Level           Level
	Encoding        string // "pattern" or "json"
	MaxSize         int64
	MaxBackups      int
	Compress        bool
	CompressProgram string
	CompressArgs    []string
}

// AsyncConfig configures the optional AsyncDispatcher sitting in front of
// the configured sinks.
type AsyncConfig struct {
	Enabled          bool
	BufferSize       int64
	OverflowStrategy OverflowStrategy
}

// Config is the fully-resolved, validated configuration for assembling a
// LoggerRegistry. It is built by applying a Settings map (an opaque
// key/value input an external loader has already validated) onto
// DefaultConfig via Apply.
type Config struct {
	RootLevel       Level
	LocationCapture bool
	Console         ConsoleConfig
	File            FileConfig
	Async           AsyncConfig
	LoggerLevels    map[string]Level
}

// DefaultConfig returns a Config with a console sink enabled at Info and
// everything else disabled - the smallest useful starting point.
func DefaultConfig() *Config {
	return &Config{
		RootLevel:       LevelInfo,
		LocationCapture: false,
		Console: ConsoleConfig{
			Enabled: true,
			Target:  "stdout",
			Pattern: "%date %level [%logger] %message%n",
			Level:   LevelAll,
		},
		File: FileConfig{
			Level:      LevelAll,
			Encoding:   "pattern",
			MaxSize:    100 << 20, // 100 MiB
			MaxBackups: 5,
		},
		Async: AsyncConfig{
			BufferSize:       1 << 16,
			OverflowStrategy: OverflowBlock,
		},
		LoggerLevels: map[string]Level{},
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.LoggerLevels = make(map[string]Level, len(c.LoggerLevels))
	for k, v := range c.LoggerLevels {
		clone.LoggerLevels[k] = v
	}
	clone.File.CompressArgs = append([]string(nil), c.File.CompressArgs...)
	return &clone
}

// Validate reports whether c is internally consistent: the async buffer
// size (when async is enabled) must be a positive power of two, rotation
// thresholds must be non-negative, and the console target must be a
// recognized stream name.
func (c *Config) Validate() error {
	if c.Async.Enabled {
		if c.Async.BufferSize <= 0 || c.Async.BufferSize&(c.Async.BufferSize-1) != 0 {
			return newComponentError(ErrCodeInvalidConfig, "async.bufferSize must be a positive power of two")
		}
	}
	if c.File.Enabled {
		if c.File.Path == "" {
			return newComponentError(ErrCodeInvalidConfig, "file.path must be set when file.enabled is true")
		}
		if c.File.MaxSize < 0 {
			return newComponentError(ErrCodeInvalidConfig, "file.maxSize cannot be negative")
		}
		if c.File.MaxBackups < 0 {
			return newComponentError(ErrCodeInvalidConfig, "file.maxBackups cannot be negative")
		}
	}
	if c.Console.Enabled && c.Console.Target != "stdout" && c.Console.Target != "stderr" {
		return newComponentError(ErrCodeInvalidConfig, "console.target must be stdout or stderr")
	}
	return nil
}

// Settings is an opaque key/value map supplied by an external loader (env,
// flags, a config file already parsed elsewhere). Apply assumes values
// have already been validated by that loader, per the external-interfaces
// contract; malformed values still surface as an error rather than being
// silently ignored, since a core bug here should not fail open.
type Settings map[string]string

// Apply mutates cfg according to every recognized key present in settings.
// Unrecognized keys are ignored. logger.<name> keys (one per distinct
// name) populate cfg.LoggerLevels.
func Apply(cfg *Config, settings Settings) error {
	for key, value := range settings {
		if err := applyOne(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(cfg *Config, key, value string) error {
	switch {
	case key == "rootLevel":
		lvl, ok := ParseLevel(value)
		if !ok {
			return newComponentError(ErrCodeInvalidLevel, "rootLevel: "+value)
		}
		cfg.RootLevel = lvl

	case key == "locationCapture":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return newComponentError(ErrCodeInvalidConfig, "locationCapture: "+value)
		}
		cfg.LocationCapture = b

	case key == "console.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return newComponentError(ErrCodeInvalidConfig, "console.enabled: "+value)
		}
		cfg.Console.Enabled = b
	case key == "console.target":
		cfg.Console.Target = value
	case key == "console.pattern":
		cfg.Console.Pattern = value
	case key == "console.level":
		lvl, ok := ParseLevel(value)
		if !ok {
			return newComponentError(ErrCodeInvalidLevel, "console.level: "+value)
		}
		cfg.Console.Level = lvl

	case key == "file.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return newComponentError(ErrCodeInvalidConfig, "file.enabled: "+value)
		}
		cfg.File.Enabled = b
	case key == "file.path":
		cfg.File.Path = value
	case key == "file.pattern":
		cfg.File.Pattern = value
	case key == "file.level":
		lvl, ok := ParseLevel(value)
		if !ok {
			return newComponentError(ErrCodeInvalidLevel, "file.level: "+value)
		}
		cfg.File.Level = lvl
	case key == "file.encoding":
		cfg.File.Encoding = value
	case key == "file.maxSize":
		size, err := ParseSize(value)
		if err != nil {
			return err
		}
		cfg.File.MaxSize = size
	case key == "file.maxBackups":
		n, err := strconv.Atoi(value)
		if err != nil {
			return newComponentError(ErrCodeInvalidConfig, "file.maxBackups: "+value)
		}
		cfg.File.MaxBackups = n
	case key == "file.compress":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return newComponentError(ErrCodeInvalidConfig, "file.compress: "+value)
		}
		cfg.File.Compress = b
	case key == "file.compress.program":
		cfg.File.CompressProgram = value
	case key == "file.compress.args":
		cfg.File.CompressArgs = strings.Fields(value)

	case key == "async.bufferSize":
		size, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return newComponentError(ErrCodeInvalidConfig, "async.bufferSize: "+value)
		}
		cfg.Async.Enabled = true
		cfg.Async.BufferSize = size
	case key == "async.overflowStrategy":
		strategy, ok := parseOverflowStrategy(value)
		if !ok {
			return newComponentError(ErrCodeInvalidConfig, "async.overflowStrategy: "+value)
		}
		cfg.Async.OverflowStrategy = strategy

	case strings.HasPrefix(key, "logger."):
		name := strings.TrimPrefix(key, "logger.")
		lvl, ok := ParseLevel(value)
		if !ok {
			return newComponentError(ErrCodeInvalidLevel, key+": "+value)
		}
		if cfg.LoggerLevels == nil {
			cfg.LoggerLevels = map[string]Level{}
		}
		cfg.LoggerLevels[name] = lvl
	}
	return nil
}

func parseOverflowStrategy(s string) (OverflowStrategy, bool) {
	switch strings.ToUpper(s) {
	case "BLOCK":
		return OverflowBlock, true
	case "DROP_OLDEST":
		return OverflowDropOldest, true
	case "DROP_NEWEST":
		return OverflowDropNewest, true
	case "SYNCHRONOUS_WRITE":
		return OverflowSynchronousWrite, true
	case "DISCARD":
		return OverflowDiscard, true
	default:
		return 0, false
	}
}
