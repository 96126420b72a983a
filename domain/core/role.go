package core

import (
	"strings"

	"gocit/internal/errors"
)

// Role tags a sample-matrix row as belonging to X, Y or Z
type Role int

const (
	RoleX Role = 0
	RoleY Role = 1
	RoleZ Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleX:
		return "x"
	case RoleY:
		return "y"
	case RoleZ:
		return "z"
	default:
		return "?"
	}
}

// MaskType selects the role groups whose masked samples are removed
type MaskType struct {
	X, Y, Z bool
}

// MaskAll masks samples in X, Y and Z
var MaskAll = MaskType{X: true, Y: true, Z: true}

// Includes reports whether role r takes part in masking
func (m MaskType) Includes(r Role) bool {
	switch r {
	case RoleX:
		return m.X
	case RoleY:
		return m.Y
	case RoleZ:
		return m.Z
	}
	return false
}

func (m MaskType) String() string {
	var b strings.Builder
	if m.X {
		b.WriteByte('x')
	}
	if m.Y {
		b.WriteByte('y')
	}
	if m.Z {
		b.WriteByte('z')
	}
	return b.String()
}

// ParseMaskType parses a combination of 'x', 'y', 'z'; commas, spaces, quotes and brackets are ignored
func ParseMaskType(s string) (MaskType, error) {
	var m MaskType
	cleaned := strings.NewReplacer(",", "", " ", "", "'", "", "[", "", "]", "").Replace(strings.ToLower(s))
	if cleaned == "" {
		return m, errors.InvalidConfig("mask_type = %q, but must contain 'x','y','z', or any combination", s)
	}
	for _, r := range cleaned {
		switch r {
		case 'x':
			m.X = true
		case 'y':
			m.Y = true
		case 'z':
			m.Z = true
		default:
			return m, errors.InvalidConfig("mask_type = %q, but must contain 'x','y','z', or any combination", s)
		}
	}
	return m, nil
}
