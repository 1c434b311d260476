package geometry

import "math"

// DefaultTolerance is the gap, in floor-plan units, under which two
// rectangles still count as touching.
const DefaultTolerance = 1.0

// Adjacent reports whether two rectangles overlap or touch along a side
// within tolerance. The result is symmetric in a and b.
//
// Rectangles whose bounding boxes do not intersect even after expanding by
// tolerance are rejected without further work. Otherwise they are adjacent
// when they overlap on both axes, or when they meet along one axis (gap
// below tolerance) while overlapping, or nearly overlapping, on the other.
func Adjacent(a, b Rect, tolerance float64) bool {
	xPossible := a.Left() < b.Right()+tolerance && a.Right()+tolerance > b.Left()
	yPossible := a.Top() < b.Bottom()+tolerance && a.Bottom()+tolerance > b.Top()
	if !xPossible || !yPossible {
		return false
	}

	// Signed overlap per axis: negative when separated, zero when touching.
	dx := math.Min(a.Right(), b.Right()) - math.Max(a.Left(), b.Left())
	dy := math.Min(a.Bottom(), b.Bottom()) - math.Max(a.Top(), b.Top())

	if dx > 0 && dy > 0 {
		return true
	}

	touchingX := dy > -tolerance && math.Abs(dx) < tolerance
	touchingY := dx > -tolerance && math.Abs(dy) < tolerance
	return touchingX || touchingY
}
