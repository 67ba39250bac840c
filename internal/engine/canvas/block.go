package canvas

import (
	"maps"
	"slices"
)

// Position is the top-left corner of a block on the canvas.
type Position struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
}

// Size is the rendered size of a block.
type Size struct {
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
}

// Block is one element placed on the canvas, such as a hero or a form.
type Block struct {
	ID         string            `json:"id" yaml:"id" toml:"id"`
	Type       string            `json:"type" yaml:"type" toml:"type"`
	Position   Position          `json:"position" yaml:"position" toml:"position"`
	Size       Size              `json:"size" yaml:"size" toml:"size"`
	Properties map[string]any    `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties,omitempty"`
	Styles     map[string]string `json:"styles,omitempty" yaml:"styles,omitempty" toml:"styles,omitempty"`
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	b.Properties = cloneProperties(b.Properties)
	b.Styles = maps.Clone(b.Styles)
	return b
}

// BlockUpdate is a partial update of a block. Nil fields are left unchanged;
// map entries are merged key by key.
type BlockUpdate struct {
	Type       *string
	Position   *Position
	Size       *Size
	Properties map[string]any
	Styles     map[string]string
}

// Apply returns a copy of b with the update merged in.
func (u BlockUpdate) Apply(b Block) Block {
	b = b.Clone()
	if u.Type != nil {
		b.Type = *u.Type
	}
	if u.Position != nil {
		b.Position = *u.Position
	}
	if u.Size != nil {
		b.Size = *u.Size
	}
	if len(u.Properties) > 0 {
		if b.Properties == nil {
			b.Properties = make(map[string]any, len(u.Properties))
		}
		for k, v := range u.Properties {
			b.Properties[k] = cloneValue(v)
		}
	}
	if len(u.Styles) > 0 {
		if b.Styles == nil {
			b.Styles = make(map[string]string, len(u.Styles))
		}
		maps.Copy(b.Styles, u.Styles)
	}
	return b
}

// Blocks is the ordered block list of a canvas. It is the snapshot type
// stored in the history.
type Blocks []Block

// Clone returns a deep copy of the list.
func (bs Blocks) Clone() Blocks {
	if bs == nil {
		return nil
	}
	out := make(Blocks, len(bs))
	for i, b := range bs {
		out[i] = b.Clone()
	}
	return out
}

// Index returns the position of the block with id, or -1.
func (bs Blocks) Index(id string) int {
	return slices.IndexFunc(bs, func(b Block) bool {
		return b.ID == id
	})
}

// Find returns the block with id.
func (bs Blocks) Find(id string) (Block, bool) {
	i := bs.Index(id)
	if i < 0 {
		return Block{}, false
	}
	return bs[i].Clone(), true
}

func cloneProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies the container types produced by decoding JSON or YAML.
func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneProperties(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(v)
	case map[string]string:
		return maps.Clone(v)
	default:
		return v
	}
}
