package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/blockforge/internal/engine/canvas"
	"github.com/dshills/blockforge/internal/engine/schema"
)

// Script is a recorded editing session: the document it starts from and
// the operations applied to it.
type Script struct {
	Blocks []canvas.Block `yaml:"blocks" toml:"blocks"`
	Tables []schema.Table `yaml:"tables" toml:"tables"`
	Steps  []Step         `yaml:"steps" toml:"steps"`
}

// Step is one editor operation.
type Step struct {
	Op string `yaml:"op" toml:"op"`

	// Target picks the history for undo, redo, goto, clear and flush:
	// "canvas" (default) or "schema".
	Target string `yaml:"target" toml:"target"`

	ID       string `yaml:"id" toml:"id"`
	TableID  string `yaml:"tableId" toml:"tableId"`
	ColumnID string `yaml:"columnId" toml:"columnId"`

	Block  *canvas.Block  `yaml:"block" toml:"block"`
	Table  *schema.Table  `yaml:"table" toml:"table"`
	Column *schema.Column `yaml:"column" toml:"column"`

	Type       *string           `yaml:"type" toml:"type"`
	Name       *string           `yaml:"name" toml:"name"`
	Position   *canvas.Position  `yaml:"position" toml:"position"`
	Size       *canvas.Size      `yaml:"size" toml:"size"`
	Properties map[string]any    `yaml:"properties" toml:"properties"`
	Styles     map[string]string `yaml:"styles" toml:"styles"`

	Index    int    `yaml:"index" toml:"index"`
	Duration string `yaml:"duration" toml:"duration"`
}

// wait returns the parsed Duration of a wait step.
func (s Step) wait() (time.Duration, error) {
	d, err := time.ParseDuration(s.Duration)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s.Duration, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s.Duration)
	}
	return d, nil
}

// LoadScript reads a YAML or TOML script, chosen by extension.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}

	var script Script
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&script); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&script); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported script format: %s", path)
	}

	return &script, nil
}
