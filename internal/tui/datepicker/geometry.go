package datepicker

// Point is a terminal cell coordinate.
type Point struct {
	X, Y int
}

// Rect is a terminal cell rectangle.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// CorrectAnchor slides a w×h box anchored at a left and up until it fits in
// viewport, and never past the viewport origin.
func CorrectAnchor(a Point, viewport Rect, w, h int) Point {
	out := a
	if right := viewport.X + viewport.W; out.X+w > right {
		out.X -= out.X + w - right
	}
	if bottom := viewport.Y + viewport.H; out.Y+h > bottom {
		out.Y -= out.Y + h - bottom
	}
	out.X = max(out.X, viewport.X)
	out.Y = max(out.Y, viewport.Y)
	return out
}
