// Package style maps node states to colors and lays out node labels.
//
// A [Table] replaces string-keyed color lookups with one color per
// [reach.NodeState] for each drawn element: cell fill, label text and link
// stroke. Tables are read from the JSON color file used by the planner:
//
//	{
//	  "cell":  {"active": "#2f7d32", "possible": "#f9a825", "orphaned": "#c62828", "inactive": "#37474f"},
//	  "label": {"active": "#ffffff", "inactive": "#cfd8dc"},
//	  "link":  {"inactive": "#546e7a"}
//	}
//
// States missing from the file keep their [Default] colors. "orphaned" and
// "orphan" name the same state.
package style

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/matzehuels/hexplanner/pkg/reach"
)

// Colors maps each state to a CSS color.
type Colors map[reach.NodeState]string

// Get returns the color for s, falling back to the inactive color.
func (c Colors) Get(s reach.NodeState) string {
	if v, ok := c[s]; ok && v != "" {
		return v
	}
	return c[reach.Inactive]
}

// Table holds the colors and fonts for one rendering.
type Table struct {
	Cell       Colors  `json:"cell"`
	Label      Colors  `json:"label"`
	Link       Colors  `json:"link"`
	Background string  `json:"background,omitempty"`
	FontFamily string  `json:"font_family,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
}

// Default returns the built-in table.
func Default() Table {
	return Table{
		Cell: Colors{
			reach.Inactive: "#37474f",
			reach.Active:   "#2e7d32",
			reach.Possible: "#f9a825",
			reach.Orphan:   "#c62828",
		},
		Label: Colors{
			reach.Inactive: "#cfd8dc",
			reach.Active:   "#ffffff",
			reach.Possible: "#212121",
			reach.Orphan:   "#ffffff",
		},
		Link: Colors{
			reach.Inactive: "#546e7a",
			reach.Active:   "#66bb6a",
		},
		Background: "#263238",
		FontFamily: "sans-serif",
		FontSize:   12,
	}
}

var colorRe = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+|(rgb|rgba|hsl|hsla)\([0-9., %]+\))$`)

// Validate checks that every color is a recognizable CSS color and that
// inactive colors, the fallback for every other state, are present.
func (t Table) Validate() error {
	for name, cs := range map[string]Colors{"cell": t.Cell, "label": t.Label, "link": t.Link} {
		if cs[reach.Inactive] == "" {
			return fmt.Errorf("%s: missing inactive color", name)
		}
		for st, c := range cs {
			if !colorRe.MatchString(c) {
				return fmt.Errorf("%s.%s: invalid color %q", name, st, c)
			}
		}
	}
	if t.Background != "" && !colorRe.MatchString(t.Background) {
		return fmt.Errorf("background: invalid color %q", t.Background)
	}
	if t.FontSize < 0 {
		return fmt.Errorf("font_size: must not be negative")
	}
	return nil
}

// merge overlays the non-empty values of o onto t.
func (t Table) merge(o Table) Table {
	out := Table{
		Cell:       mergeColors(t.Cell, o.Cell),
		Label:      mergeColors(t.Label, o.Label),
		Link:       mergeColors(t.Link, o.Link),
		Background: t.Background,
		FontFamily: t.FontFamily,
		FontSize:   t.FontSize,
	}
	if o.Background != "" {
		out.Background = o.Background
	}
	if o.FontFamily != "" {
		out.FontFamily = o.FontFamily
	}
	if o.FontSize > 0 {
		out.FontSize = o.FontSize
	}
	return out
}

func mergeColors(base, over Colors) Colors {
	out := make(Colors, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// ReadJSON decodes a color file from r over the [Default] table.
func ReadJSON(r io.Reader) (Table, error) {
	var t Table
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return Table{}, fmt.Errorf("decode: %w", err)
	}
	out := Default().merge(t)
	if err := out.Validate(); err != nil {
		return Table{}, err
	}
	return out, nil
}

// Load reads a color file. An empty path returns the default table.
func Load(path string) (Table, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	t, err := ReadJSON(f)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
