package drag

import "math"

type Point struct {
	X, Y float64
}

func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Rect is an axis-aligned rectangle with its origin at the top left.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Overlaps reports whether r and o share a region of positive area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

func (r Rect) Translate(d Point) Rect {
	return Rect{r.X + d.X, r.Y + d.Y, r.W, r.H}
}

func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

// CenteredIn returns r moved so its center is o's center.
func (r Rect) CenteredIn(o Rect) Rect {
	return r.Translate(o.Center().Sub(r.Center()))
}

// corners are top left, top right, bottom left, bottom right.
func (r Rect) corners() [4]Point {
	return [4]Point{
		{r.X, r.Y},
		{r.X + r.W, r.Y},
		{r.X, r.Y + r.H},
		{r.X + r.W, r.Y + r.H},
	}
}

// cornerDistance is the mean distance between matching corners of r and o.
func cornerDistance(r, o Rect) float64 {
	a, b := r.corners(), o.corners()
	var sum float64
	for i := range a {
		sum += a[i].Dist(b[i])
	}
	return sum / 4
}
