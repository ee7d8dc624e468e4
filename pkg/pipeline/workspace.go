package pipeline

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"

	"github.com/matzehuels/hexplanner/pkg/cache"
	"github.com/matzehuels/hexplanner/pkg/config"
	"github.com/matzehuels/hexplanner/pkg/errors"
	"github.com/matzehuels/hexplanner/pkg/hexgrid"
	"github.com/matzehuels/hexplanner/pkg/planner"
	"github.com/matzehuels/hexplanner/pkg/skilltree"
	"github.com/matzehuels/hexplanner/pkg/style"
)

// Workspace is everything loaded from disk that a render depends on.
// It is read-only after LoadWorkspace and safe to share.
type Workspace struct {
	Tree  *skilltree.Tree
	Grid  *hexgrid.Grid
	Style style.Table

	// DefaultCategory seeds planners when a request names none.
	DefaultCategory string

	// TreeHash and StyleHash identify the loaded content for cache keys.
	TreeHash  string
	StyleHash string
}

// LoadWorkspace reads the tree and color files named by cfg.
func LoadWorkspace(cfg *config.Config) (*Workspace, error) {
	if _, err := os.Stat(cfg.Data.Tree); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "tree file %s", cfg.Data.Tree)
	}
	tree, err := skilltree.Load(cfg.Data.Tree)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load tree")
	}
	st, err := style.Load(cfg.Data.Colors)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStyle, err, "load colors")
	}
	return NewWorkspace(tree, cfg.NewGrid(), st, cfg.Data.Center, cfg.Planner.DefaultCategory)
}

// NewWorkspace assembles a workspace from loaded parts. A positive center
// recenters every category on that column.
func NewWorkspace(tree *skilltree.Tree, grid *hexgrid.Grid, st style.Table, center int, defaultCategory string) (*Workspace, error) {
	if center > 0 {
		centered, err := tree.CenterColumns(center)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnknownRoot, err, "center columns")
		}
		tree = centered
	}
	if defaultCategory != "" {
		if _, ok := tree.Category(defaultCategory); !ok {
			return nil, errors.New(errors.ErrCodeUnknownCategory, "default category %q not in tree", defaultCategory)
		}
	}

	var buf bytes.Buffer
	if err := skilltree.WriteJSON(tree, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash tree")
	}
	styleData, err := json.Marshal(st)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash style")
	}

	return &Workspace{
		Tree:            tree,
		Grid:            grid,
		Style:           st,
		DefaultCategory: defaultCategory,
		TreeHash:        cache.Hash(buf.Bytes()),
		StyleHash:       cache.Hash(styleData),
	}, nil
}

// NewPlanner returns a planner over the workspace tree. An empty category
// falls back to DefaultCategory, then to the planner default.
func (w *Workspace) NewPlanner(category string, selection []string) (*planner.Planner, error) {
	if category == "" {
		category = w.DefaultCategory
	}
	opts := []planner.Option{planner.WithSelection(selection)}
	if category != "" {
		opts = append(opts, planner.WithCategory(category))
	}
	p, err := planner.New(w.Tree, w.Grid, opts...)
	if err != nil {
		if stderrors.Is(err, planner.ErrUnknownCategory) {
			return nil, errors.Wrap(errors.ErrCodeUnknownCategory, err, "category %q", category)
		}
		return nil, errors.Wrap(errors.ErrCodeUnknownRoot, err, "build planner")
	}
	return p, nil
}
