package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gocit/internal/errors"
)

// Node identifies one lagged variable: the value of variable Var read Lag steps
// before the reference time. Lag is always <= 0.
type Node struct {
	Var int
	Lag int
}

// N is shorthand for Node{Var: v, Lag: lag}
func N(v, lag int) Node {
	return Node{Var: v, Lag: lag}
}

func (n Node) String() string {
	return fmt.Sprintf("(%d, %d)", n.Var, n.Lag)
}

// NodeSet is an ordered list of nodes
type NodeSet []Node

// Unique drops repeated nodes, keeping first occurrences in order
func (s NodeSet) Unique() NodeSet {
	out := make(NodeSet, 0, len(s))
	seen := make(map[Node]struct{}, len(s))
	for _, n := range s {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Contains reports whether n is in s
func (s NodeSet) Contains(n Node) bool {
	for _, m := range s {
		if m == n {
			return true
		}
	}
	return false
}

// Without returns s minus every node contained in any of others, order kept
func (s NodeSet) Without(others ...NodeSet) NodeSet {
	out := make(NodeSet, 0, len(s))
	for _, n := range s {
		drop := false
		for _, o := range others {
			if o.Contains(n) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, n)
		}
	}
	return out
}

// MaxAbsLag returns the largest |lag| in s
func (s NodeSet) MaxAbsLag() int {
	maxLag := 0
	for _, n := range s {
		if -n.Lag > maxLag {
			maxLag = -n.Lag
		}
	}
	return maxLag
}

// Key is an order-insensitive identity of the set, duplicates ignored
func (s NodeSet) Key() string {
	u := s.Unique()
	sorted := make(NodeSet, len(u))
	copy(sorted, u)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Var != sorted[j].Var {
			return sorted[i].Var < sorted[j].Var
		}
		return sorted[i].Lag < sorted[j].Lag
	})
	parts := make([]string, len(sorted))
	for i, n := range sorted {
		parts[i] = n.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func (s NodeSet) String() string {
	parts := make([]string, len(s))
	for i, n := range s {
		parts[i] = n.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ResidualKey identifies the residual of target regressed on conditions
func ResidualKey(target, conditions NodeSet) string {
	return target.Key() + "|" + conditions.Key()
}

// Validate checks lags and variable indices against a dataset with numVars columns
func (s NodeSet) Validate(numVars int) error {
	for _, n := range s {
		if n.Lag > 0 {
			return errors.InvalidSpec("nodes are %s, but all lags must be non-positive", s)
		}
		if n.Var < 0 || n.Var >= numVars {
			return errors.InvalidSpec("var index %d, but must be in [0, %d]", n.Var, numVars-1)
		}
	}
	return nil
}

// ParseNodeSet parses a comma separated list of var:lag pairs, e.g. "0:-1,2:0".
// An empty string is the empty set.
func ParseNodeSet(s string) (NodeSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out NodeSet
	for _, part := range strings.Split(s, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 2 {
			return nil, errors.InvalidSpec("node %q must have the form var:lag", part)
		}
		v, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, errors.InvalidSpec("node %q has a non-integer variable", part)
		}
		lag, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, errors.InvalidSpec("node %q has a non-integer lag", part)
		}
		out = append(out, N(v, lag))
	}
	return out, nil
}
