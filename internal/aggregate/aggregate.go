// Package aggregate builds the runner's task configuration from a directory
// of config fragments.
//
// Every JSON, YAML, TOML and Lua file below the directory is decoded and
// stored under its basename without extension. Fragments sharing a basename
// are deep merged; later files win on colliding values.
package aggregate

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dshills/tama/internal/config/layer"
	"github.com/dshills/tama/internal/config/loader"
	"github.com/dshills/tama/internal/logger"
	"github.com/dshills/tama/internal/vfs"
)

// Pattern selects the fragment files below the config directory.
const Pattern = "**/*.{json,yml,yaml,toml,lua}"

// ErrNoEvaluator is returned for Lua fragments when no evaluator is set.
var ErrNoEvaluator = errors.New("no Lua evaluator configured")

// Evaluator evaluates script fragments to Go values.
type Evaluator interface {
	Evaluate(path string) (any, error)
}

// Aggregator loads config fragments.
type Aggregator struct {
	fs     *vfs.FS
	files  *loader.FileLoader
	eval   Evaluator
	logger *log.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithFS sets the filesystem fragments are read from.
func WithFS(fsys *vfs.FS) Option {
	return func(a *Aggregator) {
		a.fs = fsys
	}
}

// WithEvaluator sets the evaluator used for Lua fragments.
func WithEvaluator(e Evaluator) Option {
	return func(a *Aggregator) {
		a.eval = e
	}
}

// WithLogger sets the aggregator logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger.Component(l, "aggregate")
	}
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		fs:     vfs.OS(),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.files = loader.New(a.fs)
	return a
}

// Aggregate loads every fragment below dir. Fragments whose value is nil,
// false, zero or the empty string are skipped. A missing dir yields an empty
// map.
func (a *Aggregator) Aggregate(dir string) (map[string]any, error) {
	matches, err := a.fs.Expand(vfs.ExpandOptions{Cwd: dir, Filter: vfs.FilesOnly}, Pattern)
	if err != nil {
		return nil, err
	}

	result := make(map[string]any)
	for _, rel := range matches {
		file := filepath.Join(dir, filepath.FromSlash(rel))
		value, err := a.load(file)
		if err != nil {
			return nil, err
		}
		if !truthy(value) {
			a.logger.Debug("skipping empty fragment", "file", rel)
			continue
		}

		key := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
		a.logger.Debug("loaded fragment", "file", rel, "key", key)
		merge(result, key, value)
	}
	return result, nil
}

func (a *Aggregator) load(file string) (any, error) {
	if strings.EqualFold(filepath.Ext(file), ".lua") {
		if a.eval == nil {
			return nil, fmt.Errorf("%s: %w", file, ErrNoEvaluator)
		}
		return a.eval.Evaluate(file)
	}
	return a.files.Load(file)
}

func merge(result map[string]any, key string, value any) {
	src, srcIsMap := value.(map[string]any)
	dst, dstIsMap := result[key].(map[string]any)
	if srcIsMap && dstIsMap {
		layer.DeepMerge(dst, src)
		return
	}
	result[key] = value
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case uint64:
		return x != 0
	case float64:
		return x != 0
	}
	return true
}
