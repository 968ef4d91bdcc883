// Package config handles synvm run configuration.
//
// Values are layered, later sources winning:
//
//  1. built-in defaults
//  2. synvm.toml (found by walking up from the working directory, or given explicitly)
//  3. SYNVM_* environment variables
//  4. command-line flags (applied by the caller)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gitlab.com/efronlicht/enve"
)

// FileName is the configuration file searched for by FindAndLoad.
const FileName = "synvm.toml"

// Environment variables consulted by ApplyEnv.
const (
	EnvMaxSteps  = "SYNVM_MAX_STEPS"
	EnvTimeout   = "SYNVM_TIMEOUT"
	EnvLogLevel  = "SYNVM_LOG_LEVEL"
	EnvLogFormat = "SYNVM_LOG_FORMAT"
	EnvStats     = "SYNVM_STATS"
	EnvReport    = "SYNVM_REPORT"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings for a run.
type Config struct {
	// MaxSteps limits executed instructions. Zero means unlimited.
	MaxSteps int64 `toml:"max_steps"`

	// Timeout bounds wall-clock run time, e.g. "30s". Zero means none.
	Timeout time.Duration `toml:"timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// LogFormat is console or json.
	LogFormat string `toml:"log_format"`

	// Stats prints the opcode histogram after the run.
	Stats bool `toml:"stats"`

	// Report is a path for the CBOR run report. Empty disables it.
	Report string `toml:"report"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:  "warn",
		LogFormat: "console",
	}
}

// Load reads the TOML file at path on top of the defaults. Unknown keys are
// rejected so typos do not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}

	cfg.Path, err = filepath.Abs(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return cfg, nil
}

// FindAndLoad walks up from startDir to find a synvm.toml file and loads it.
// The defaults are returned when no file is found.
func FindAndLoad(startDir string) (Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Default(), err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}

// ApplyEnv overrides c with any SYNVM_* variables that are set. Unset keys
// are skipped because enve logs every missing key it is asked about. A value
// that does not parse is an error rather than a silent fallback.
func (c *Config) ApplyEnv() error {
	if isSet(EnvMaxSteps) {
		n, err := enve.Lookup(parseInt64, EnvMaxSteps)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvMaxSteps, err)
		}
		c.MaxSteps = n
	}
	if isSet(EnvTimeout) {
		d, err := enve.Lookup(time.ParseDuration, EnvTimeout)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvTimeout, err)
		}
		c.Timeout = d
	}
	if isSet(EnvLogLevel) {
		c.LogLevel = enve.StringOr(EnvLogLevel, c.LogLevel)
	}
	if isSet(EnvLogFormat) {
		c.LogFormat = enve.StringOr(EnvLogFormat, c.LogFormat)
	}
	if isSet(EnvStats) {
		b, err := enve.Lookup(strconv.ParseBool, EnvStats)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvStats, err)
		}
		c.Stats = b
	}
	if isSet(EnvReport) {
		c.Report = enve.StringOr(EnvReport, c.Report)
	}
	return nil
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func isSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max_steps must not be negative", ErrInvalid)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalid)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

// Resolve loads configuration the way the CLI does: an explicit file when
// path is set, otherwise the nearest synvm.toml above dir, then the
// environment. The result is validated.
func Resolve(path, dir string) (Config, error) {
	var (
		cfg Config
		err error
	)
	if path != "" {
		cfg, err = Load(path)
	} else {
		cfg, err = FindAndLoad(dir)
	}
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
