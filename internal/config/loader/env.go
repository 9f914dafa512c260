package loader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is the prefix of every environment variable tama reads.
const EnvPrefix = "TAMA_"

// ValueKind describes how an environment variable value is parsed.
type ValueKind int

const (
	// KindAuto guesses the type from the value.
	KindAuto ValueKind = iota
	// KindString keeps the raw value.
	KindString
	// KindPathList splits the value on the OS path list separator.
	KindPathList
	// KindBoolOrList parses true/false, otherwise a comma separated list.
	KindBoolOrList
	// KindDuration keeps the value as a duration string.
	KindDuration
)

// EnvBinding maps an environment variable to a config key.
type EnvBinding struct {
	Key  string
	Kind ValueKind
}

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string
	mapping map[string]EnvBinding
}

// NewEnvLoader creates an environment loader with the default tama mapping.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
	}
}

func defaultEnvMapping(prefix string) map[string]EnvBinding {
	return map[string]EnvBinding{
		prefix + "CONFIG_PATH":         {Key: "configPath", Kind: KindString},
		prefix + "EXTRA_PLUGIN_PATHS":  {Key: "extraPluginPaths", Kind: KindPathList},
		prefix + "CUSTOM_TASK_PATHS":   {Key: "customTaskPaths", Kind: KindPathList},
		prefix + "BASIC_AS_MULTI_TASK": {Key: "basicAsMultiTask", Kind: KindBoolOrList},
		prefix + "LOG_LEVEL":           {Key: "logLevel", Kind: KindString},
		prefix + "LUA_TIMEOUT":         {Key: "luaTimeout", Kind: KindDuration},
	}
}

// Ignored lists prefixed variables that are read elsewhere and never become
// config keys.
var Ignored = map[string]bool{
	EnvPrefix + "PATH": true,
}

// Load reads environment variables and returns a flat configuration map.
// Empty values are treated as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for env, binding := range l.mapping {
		if val, ok := os.LookupEnv(env); ok {
			config[binding.Key] = parseValue(val, binding.Kind)
		}
	}

	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}
		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if _, mapped := l.mapping[name]; mapped || Ignored[name] {
			continue
		}
		config[l.envToKey(name)] = parseValue(value, KindAuto)
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar string, binding EnvBinding) {
	if l.mapping == nil {
		l.mapping = make(map[string]EnvBinding)
	}
	l.mapping[envVar] = binding
}

// envToKey converts TAMA_SOME_SETTING to someSetting.
func (l *EnvLoader) envToKey(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		if i == 0 || b.Len() == 0 {
			b.WriteString(lower)
			continue
		}
		b.WriteString(strings.ToUpper(lower[:1]) + lower[1:])
	}
	return b.String()
}

func parseValue(s string, kind ValueKind) any {
	switch kind {
	case KindString, KindDuration:
		return s
	case KindPathList:
		return splitList(s, string(filepath.ListSeparator))
	case KindBoolOrList:
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
		return splitList(s, ",")
	}

	if s == "" {
		return s
	}

	lower := strings.ToLower(s)
	if lower == "true" || lower == "yes" || lower == "on" {
		return true
	}
	if lower == "false" || lower == "no" || lower == "off" {
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Only treat values with a decimal point as floats.
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if _, err := time.ParseDuration(s); err == nil {
		return s
	}

	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}

	return s
}

func splitList(s, sep string) []any {
	out := []any{}
	for _, item := range strings.Split(s, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
