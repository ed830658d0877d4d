package ir

import (
	"strconv"
	"strings"
)

// Shape represents the dimensions of a tensor variable.
// An empty shape means the shape is unknown. Negative dimensions are
// dynamic and compare literally.
type Shape []int64

// IsEmpty reports whether the shape carries no dimensions.
func (s Shape) IsEmpty() bool {
	return len(s) == 0
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String formats the shape as [d0,d1,...].
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.FormatInt(d, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
