package cache

import "slices"

// Keyer builds cache keys for rendered artifacts.
type Keyer interface {
	// ArtifactKey returns the key for one rendering of a tree.
	// treeHash identifies the tree content, usually Hash of its JSON.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds every input of a rendering besides the tree itself.
type ArtifactKeyOpts struct {
	Renderer  string   `json:"renderer"`
	Category  string   `json:"category"`
	Format    string   `json:"format"`
	Selection []string `json:"selection"`
	StyleHash string   `json:"style,omitempty"`
	Scale     float64  `json:"scale,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`
	External  bool     `json:"external,omitempty"`
}

// DefaultKeyer hashes all key inputs into a fixed-length key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey hashes treeHash with opts. Selection order does not matter.
func (DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	opts.Selection = slices.Clone(opts.Selection)
	slices.Sort(opts.Selection)
	return hashKey("artifact", treeHash, opts)
}

var _ Keyer = DefaultKeyer{}
