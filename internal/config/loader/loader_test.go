package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"/etc/blockforge.toml", "*loader.TOMLLoader", false},
		{"config.yaml", "*loader.YAMLLoader", false},
		{"config.YML", "*loader.YAMLLoader", false},
		{"config.json", "", true},
		{"config", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			l, err := ForPath(NewMemFS(), tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("ForPath(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ForPath(%q) error = %v", tt.path, err)
			}
			if got := typeName(l); got != tt.want {
				t.Errorf("ForPath(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func typeName(l Loader) string {
	switch l.(type) {
	case *TOMLLoader:
		return "*loader.TOMLLoader"
	case *YAMLLoader:
		return "*loader.YAMLLoader"
	default:
		return "unknown"
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"history": map[string]any{
			"canvas": map[string]any{"maxSize": 100, "debounceMs": 1000},
		},
		"logging": map[string]any{"level": "info"},
	}
	src := map[string]any{
		"history": map[string]any{
			"canvas": map[string]any{"maxSize": int64(20)},
		},
		"logging": "flat",
	}

	got := DeepMerge(dst, src)

	if v, _ := Lookup(got, "history.canvas.maxSize"); v != int64(20) {
		t.Errorf("maxSize = %v, want 20", v)
	}
	if v, _ := Lookup(got, "history.canvas.debounceMs"); v != 1000 {
		t.Errorf("debounceMs = %v, want 1000", v)
	}
	if got["logging"] != "flat" {
		t.Errorf("logging = %v, want flat", got["logging"])
	}
}

func TestDeepMerge_NilDst(t *testing.T) {
	got := DeepMerge(nil, map[string]any{"a": 1})
	if got["a"] != 1 {
		t.Errorf("DeepMerge(nil, ...) = %v", got)
	}
}

func TestLookup(t *testing.T) {
	data := map[string]any{
		"a": map[string]any{"b": map[string]any{"c": 3}},
		"x": 1,
	}

	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{"a.b.c", 3, true},
		{"x", 1, true},
		{"a.missing", nil, false},
		{"x.y", nil, false},
	}

	for _, tt := range tests {
		got, ok := Lookup(data, tt.path)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("Lookup(%q) = %v, %v; want %v, %v", tt.path, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseError_Error(t *testing.T) {
	tests := []struct {
		err  *ParseError
		want string
	}{
		{&ParseError{Path: "a.toml", Line: 2, Column: 5, Message: "bad"}, "parse error in a.toml at line 2, column 5: bad"},
		{&ParseError{Path: "a.toml", Line: 2, Message: "bad"}, "parse error in a.toml at line 2: bad"},
		{&ParseError{Path: "a.toml", Message: "bad"}, "parse error in a.toml: bad"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	inner := errors.New("inner")
	if !errors.Is(&ParseError{Err: inner}, inner) {
		t.Error("ParseError should unwrap")
	}
}

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/blockforge.toml", `
[history.canvas]
maxSize = 25
debounceMs = 500

[logging]
level = "debug"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/blockforge.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if v, _ := Lookup(config, "history.canvas.maxSize"); v != int64(25) {
		t.Errorf("maxSize = %v (%T), want 25", v, v)
	}
	if v, _ := Lookup(config, "logging.level"); v != "debug" {
		t.Errorf("logging.level = %v, want debug", v)
	}
}

func TestTOMLLoader_LoadNonExistent(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/missing.toml").Load()
	if err != nil || config != nil {
		t.Errorf("Load() = %v, %v; want nil, nil", config, err)
	}
}

func TestTOMLLoader_LoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/invalid.toml", "[history\nmaxSize = 4\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/invalid.toml").Load()

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Path != "/invalid.toml" {
		t.Errorf("Path = %q, want /invalid.toml", parseErr.Path)
	}
	if parseErr.Line == 0 {
		t.Error("expected line position from the TOML decoder")
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := (&TOMLLoader{}).LoadFromReader(strings.NewReader(`[timeline]
format = "json"`))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := Lookup(config, "timeline.format"); v != "json" {
		t.Errorf("timeline.format = %v", v)
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/blockforge.yaml", `
history:
  schema:
    maxSize: 10
    debounceMs: 250
metrics:
  enabled: true
`)

	config, err := NewYAMLLoaderWithFS(memfs, "/blockforge.yaml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if v, _ := Lookup(config, "history.schema.maxSize"); v != 10 {
		t.Errorf("maxSize = %v (%T), want 10", v, v)
	}
	if v, _ := Lookup(config, "metrics.enabled"); v != true {
		t.Errorf("metrics.enabled = %v, want true", v)
	}
}

func TestYAMLLoader_LoadNonExistent(t *testing.T) {
	config, err := NewYAMLLoaderWithFS(NewMemFS(), "/missing.yaml").Load()
	if err != nil || config != nil {
		t.Errorf("Load() = %v, %v; want nil, nil", config, err)
	}
}

func TestYAMLLoader_LoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/invalid.yaml", "history: [unclosed\n")

	_, err := NewYAMLLoaderWithFS(memfs, "/invalid.yaml").Load()

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Path != "/invalid.yaml" {
		t.Errorf("Path = %q", parseErr.Path)
	}
}

func TestYAMLLoader_LoadFromReader(t *testing.T) {
	config, err := (&YAMLLoader{}).LoadFromReader(strings.NewReader("logging:\n  level: warn\n"))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := Lookup(config, "logging.level"); v != "warn" {
		t.Errorf("logging.level = %v", v)
	}
}
