// Package loader decodes configuration files and environment variables into
// plain Go maps.
//
// Files are decoded by extension: .json, .yml/.yaml and .toml are supported.
// Decoded values use map[string]any for objects and []any for lists so they can
// be merged with the helpers in the layer package.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/tama/internal/vfs"
)

// Decoder turns raw file content into a Go value.
type Decoder func(source string, data []byte) (any, error)

var decoders = map[string]Decoder{
	".json": decodeJSON,
	".yml":  decodeYAML,
	".yaml": decodeYAML,
	".toml": decodeTOML,
}

// Supported reports whether files with the given extension can be decoded.
func Supported(ext string) bool {
	_, ok := decoders[strings.ToLower(ext)]
	return ok
}

// Extensions returns the supported extensions without the leading dot.
func Extensions() []string {
	return []string{"json", "yml", "yaml", "toml"}
}

// FileLoader reads and decodes configuration files.
type FileLoader struct {
	fs *vfs.FS
}

// New creates a FileLoader reading from fsys.
func New(fsys *vfs.FS) *FileLoader {
	if fsys == nil {
		fsys = vfs.OS()
	}
	return &FileLoader{fs: fsys}
}

// Load reads path and decodes it according to its extension.
func (l *FileLoader) Load(path string) (any, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return decode(path, data)
}

// LoadMap loads path and requires the document to be a mapping.
// An empty document yields an empty map.
func (l *FileLoader) LoadMap(path string) (map[string]any, error) {
	v, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	switch m := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return m, nil
	default:
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("expected a mapping, got %T", v)}
	}
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
