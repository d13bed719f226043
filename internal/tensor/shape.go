package tensor

import (
	"fmt"
	"slices"
	"strings"
)

// Shape lists the extent of every dimension, outermost first. Image
// batches are [N, C, H, W].
type Shape []int

// NumElements returns the product of the dimensions (1 for a scalar).
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Validate rejects shapes with a zero or negative dimension.
func (s Shape) Validate() error {
	if i := slices.IndexFunc(s, func(d int) bool { return d < 1 }); i >= 0 {
		return fmt.Errorf("dimension %d of %v is %d, want > 0", i, s, s[i])
	}
	return nil
}

// Equal reports whether s and other have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of s that does not alias it.
func (s Shape) Clone() Shape {
	if s == nil {
		return Shape{}
	}
	return slices.Clone(s)
}

// String formats the shape the way NumPy prints tuples: (10000,) or (1, 3, 32, 32).
func (s Shape) String() string {
	if len(s) == 1 {
		return fmt.Sprintf("(%d,)", s[0])
	}
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ComputeStrides returns row-major element strides: the last dimension is
// contiguous.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i]
	}
	return strides
}

// BroadcastShapes aligns a and b on their trailing dimensions and returns
// the common shape. A dimension of 1, or a missing one, stretches to the
// other side. The bool reports whether either input has to stretch.
//
//	(1, 16, 1, 1) + (8, 16, 32, 32) -> (8, 16, 32, 32), true
//	(8, 16, 32, 32) + (8, 32, 16, 16) -> error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	rank := max(len(a), len(b))
	pa, pb := padLeft(a, rank), padLeft(b, rank)

	out := make(Shape, rank)
	stretched := false
	for i := range out {
		switch {
		case pa[i] == pb[i]:
			out[i] = pa[i]
		case pa[i] == 1:
			out[i], stretched = pb[i], true
		case pb[i] == 1:
			out[i], stretched = pa[i], true
		default:
			return nil, false, fmt.Errorf("cannot broadcast %v with %v: dimension %d is %d vs %d", a, b, i, pa[i], pb[i])
		}
	}
	return out, stretched || len(a) != len(b), nil
}

func padLeft(s Shape, rank int) Shape {
	out := make(Shape, rank)
	for i := range out {
		out[i] = 1
	}
	copy(out[rank-len(s):], s)
	return out
}
