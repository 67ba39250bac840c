package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // e.g. "BLOCKFORGE_"
	mapping map[string]string // env var -> config path
	environ func() []string
}

// NewEnvLoader creates an environment loader. The prefix includes the
// trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, defaultEnvMapping(prefix))
}

// NewEnvLoaderWithMapping creates a loader with explicit variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		environ: os.Environ,
	}
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "HISTORY_CANVAS_MAX_SIZE":    "history.canvas.maxSize",
		prefix + "HISTORY_CANVAS_DEBOUNCE_MS": "history.canvas.debounceMs",
		prefix + "HISTORY_SCHEMA_MAX_SIZE":    "history.schema.maxSize",
		prefix + "HISTORY_SCHEMA_DEBOUNCE_MS": "history.schema.debounceMs",
		prefix + "LOG_LEVEL":                  "logging.level",
		prefix + "METRICS_ENABLED":            "metrics.enabled",
		prefix + "TIMELINE_FORMAT":            "timeline.format",
	}
}

// Load reads the environment and returns a configuration map. Mapped
// variables land on their configured path; other prefixed variables map to
// section.camelCaseName. Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(config, path, parseValue(value))
	}

	return config, nil
}

// AddMapping adds an environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// envToPath converts BLOCKFORGE_TIMELINE_ROW_LIMIT to timeline.rowLimit.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	if name == "" {
		return ""
	}

	parts := strings.Split(strings.ToLower(name), "_")
	section := parts[0]
	if len(parts) == 1 {
		return section
	}

	setting := parts[1]
	for _, part := range parts[2:] {
		if part != "" {
			setting += strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return section + "." + setting
}

// parseValue converts booleans and integers; everything else stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
