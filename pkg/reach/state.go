package reach

import "fmt"

// NodeState is the display state of a single node.
type NodeState int

const (
	// Inactive nodes are neither selected nor reachable next.
	Inactive NodeState = iota
	// Active nodes are selected and connected to the root.
	Active
	// Orphan nodes are selected but disconnected from the root.
	Orphan
	// Possible nodes are unselected and adjacent to an active node.
	Possible
)

// States lists every state in paint order: later states draw over earlier ones.
var States = []NodeState{Inactive, Active, Possible, Orphan}

var stateNames = map[NodeState]string{
	Inactive: "inactive",
	Active:   "active",
	Orphan:   "orphan",
	Possible: "possible",
}

// String returns the lowercase state name.
func (s NodeState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("NodeState(%d)", int(s))
}

// ParseState parses a state name. "orphaned" is accepted as an alias for
// orphan, as used by older color tables.
func ParseState(name string) (NodeState, error) {
	switch name {
	case "inactive":
		return Inactive, nil
	case "active":
		return Active, nil
	case "orphan", "orphaned":
		return Orphan, nil
	case "possible":
		return Possible, nil
	}
	return Inactive, fmt.Errorf("unknown node state %q", name)
}

// MarshalText implements encoding.TextMarshaler so states can key JSON maps.
func (s NodeState) MarshalText() ([]byte, error) {
	if _, ok := stateNames[s]; !ok {
		return nil, fmt.Errorf("unknown node state %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *NodeState) UnmarshalText(text []byte) error {
	st, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
