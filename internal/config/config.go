package config

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/dshills/blockforge/internal/config/loader"
	"github.com/dshills/blockforge/internal/timeline"
)

// EnvPrefix prefixes environment variables read by Load.
const EnvPrefix = "BLOCKFORGE_"

var (
	formats   = timeline.Formats()
	logLevels = []string{"debug", "info", "warn", "warning", "error"}
)

// HistoryConfig sizes one kind of document history.
type HistoryConfig struct {
	MaxSize    int
	DebounceMs int
}

// Debounce returns the debounce window as a duration.
func (h HistoryConfig) Debounce() time.Duration {
	return time.Duration(h.DebounceMs) * time.Millisecond
}

// Config holds all blockforge settings.
type Config struct {
	Canvas         HistoryConfig
	Schema         HistoryConfig
	LogLevel       string
	MetricsEnabled bool
	TimelineFormat string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Canvas:         HistoryConfig{MaxSize: 100, DebounceMs: 1000},
		Schema:         HistoryConfig{MaxSize: 50, DebounceMs: 1500},
		LogLevel:       "info",
		TimelineFormat: timeline.FormatText,
	}
}

// Load builds the configuration from defaults, the file at path and the
// environment. An empty path skips the file layer, and a missing file is
// not an error.
func Load(path string) (Config, error) {
	return LoadFS(loader.DefaultFS(), path, loader.NewEnvLoader(EnvPrefix))
}

// LoadFS is Load with an explicit file system and environment source.
// A nil env skips the environment layer.
func LoadFS(fsys loader.FileSystem, path string, env loader.Loader) (Config, error) {
	var merged map[string]any

	if path != "" {
		l, err := loader.ForPath(fsys, path)
		if err != nil {
			return Config{}, err
		}
		file, err := l.Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, file)
	}

	if env != nil {
		vars, err := env.Load()
		if err != nil {
			return Config{}, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, vars)
	}

	cfg, err := FromMap(merged)
	if err != nil {
		if path != "" {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		return Config{}, err
	}
	return cfg, nil
}

// FromMap applies a nested settings map on top of Default and validates
// the result.
func FromMap(m map[string]any) (Config, error) {
	cfg := Default()

	ints := []struct {
		path string
		dst  *int
	}{
		{"history.canvas.maxSize", &cfg.Canvas.MaxSize},
		{"history.canvas.debounceMs", &cfg.Canvas.DebounceMs},
		{"history.schema.maxSize", &cfg.Schema.MaxSize},
		{"history.schema.debounceMs", &cfg.Schema.DebounceMs},
	}
	for _, f := range ints {
		if err := getInt(m, f.path, f.dst); err != nil {
			return Config{}, err
		}
	}
	if err := getString(m, "logging.level", &cfg.LogLevel); err != nil {
		return Config{}, err
	}
	if err := getString(m, "timeline.format", &cfg.TimelineFormat); err != nil {
		return Config{}, err
	}
	if err := getBool(m, "metrics.enabled", &cfg.MetricsEnabled); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	for name, h := range map[string]HistoryConfig{"canvas": c.Canvas, "schema": c.Schema} {
		if h.MaxSize < 1 {
			return fmt.Errorf("%w: history.%s.maxSize must be at least 1, got %d", ErrInvalidValue, name, h.MaxSize)
		}
		if h.DebounceMs < 0 {
			return fmt.Errorf("%w: history.%s.debounceMs must not be negative, got %d", ErrInvalidValue, name, h.DebounceMs)
		}
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("%w: logging.level %q", ErrInvalidValue, c.LogLevel)
	}
	if !slices.Contains(formats, c.TimelineFormat) {
		return fmt.Errorf("%w: timeline.format %q", ErrInvalidValue, c.TimelineFormat)
	}
	return nil
}

func getInt(m map[string]any, path string, dst *int) error {
	v, ok := loader.Lookup(m, path)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case uint64:
		*dst = int(n)
	case float64:
		if n != math.Trunc(n) {
			return fmt.Errorf("%w: %s must be an integer, got %v", ErrTypeMismatch, path, n)
		}
		*dst = int(n)
	default:
		return fmt.Errorf("%w: %s must be an integer, got %T", ErrTypeMismatch, path, v)
	}
	return nil
}

func getString(m map[string]any, path string, dst *string) error {
	v, ok := loader.Lookup(m, path)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%w: %s must be a string, got %T", ErrTypeMismatch, path, v)
	}
	*dst = s
	return nil
}

func getBool(m map[string]any, path string, dst *bool) error {
	v, ok := loader.Lookup(m, path)
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		return fmt.Errorf("%w: %s must be a boolean, got %T", ErrTypeMismatch, path, v)
	}
	*dst = b
	return nil
}
