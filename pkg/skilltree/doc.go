// Package skilltree holds the static node graph a planner works on.
//
// A [Tree] is a set of named categories. Each category has one root and a
// set of member nodes placed on hexagonal cells; every node belongs to
// exactly one category. Nodes carry a display name, effect tags and an
// ordered list of outgoing links, which may cross category boundaries.
//
// # File Format
//
// Trees are read from JSON ([ReadJSON]) or YAML ([ReadYAML]) documents keyed
// by category name:
//
//	{
//	  "Firepower": {
//	    "root": "0",
//	    "nodes": {
//	      "0": {"name": "Weapon Heat", "col": 8, "row": 0,
//	            "effects": ["heat"], "links": ["1", null]},
//	      "1": {"name": "Range", "col": 8, "row": 1, "effects": ["range"]}
//	    }
//	  }
//	}
//
// Null link targets are kept as empty strings so link order is preserved;
// consumers skip them. [Load] picks the decoder from the file extension.
//
// # Validation
//
// [Build] checks only what lookups depend on: every root is a member of its
// category, node IDs are unique across the tree and no two nodes of one
// category share a cell. Cycles, dangling links and unreachable islands are
// not rejected.
//
// A Tree is immutable after construction and safe for concurrent reads.
package skilltree
