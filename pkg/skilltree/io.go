package skilltree

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Data is the decoded form of a tree file, keyed by category name.
type Data map[string]CategoryData

// CategoryData is one category of a tree file.
type CategoryData struct {
	Root  string              `json:"root" yaml:"root"`
	Nodes map[string]NodeData `json:"nodes" yaml:"nodes"`
}

// NodeData is one node of a tree file. Nil links are absent targets.
type NodeData struct {
	Name    string    `json:"name" yaml:"name"`
	Desc    string    `json:"desc,omitempty" yaml:"desc,omitempty"`
	Col     int       `json:"col" yaml:"col"`
	Row     int       `json:"row" yaml:"row"`
	Effects []string  `json:"effects,omitempty" yaml:"effects,omitempty"`
	Links   []*string `json:"links,omitempty" yaml:"links,omitempty"`
}

// ReadJSON decodes a JSON tree from r and builds it. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Tree, error) {
	var data Data
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return Build(data)
}

// ReadYAML decodes a YAML tree from r and builds it. ReadYAML does not close r.
func ReadYAML(r io.Reader) (*Tree, error) {
	var data Data
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return Build(data)
}

// WriteJSON encodes t as an indented JSON tree document.
func WriteJSON(t *Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.Data()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Load reads a tree file, choosing the decoder by extension:
// .yaml and .yml are YAML, everything else JSON.
func Load(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var t *Tree
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		t, err = ReadYAML(f)
	default:
		t, err = ReadJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
