package dispatch

import "math"

const (
	fullTurn = 2 * math.Pi

	// layoutMargin is the room left around the outer ring for labels.
	layoutMargin = 40.0

	// degenerateArea is the area below which a polygon is treated as empty.
	degenerateArea = 1e-9
)

// Point is a 2D position. Run positions are relative to the layout center;
// polygon vertices are absolute.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Variant selects which magnitude of an attribute drives the polygon.
type Variant int

const (
	Ability    Variant = iota // player values
	Difficulty                // task values
)

func (v Variant) String() string {
	switch v {
	case Ability:
		return "ability"
	case Difficulty:
		return "difficulty"
	default:
		return "unknown"
	}
}

// Layout is the shared polar frame both polygons are drawn in.
type Layout struct {
	Center    Point   `json:"center"`
	MaxRadius float64 `json:"max_radius"`
}

// NewLayout derives the frame for a width×height surface: centered, with
// the outer ring 40 units inside the shorter half-extent.
func NewLayout(width, height float64) Layout {
	cx, cy := width/2, height/2
	r := math.Min(cx, cy) - layoutMargin
	if r < 0 {
		r = 0
	}
	return Layout{Center: Point{X: cx, Y: cy}, MaxRadius: r}
}

// DefaultLayout is the 600×600 frame (center 300,300, radius 260).
func DefaultLayout() Layout { return NewLayout(600, 600) }

// Absolute converts a center-relative point to layout coordinates.
func (l Layout) Absolute(p Point) Point { return l.Center.Add(p) }

// axisAngle is the angle of axis i out of n: index 0 points straight up and
// the axes proceed clockwise in screen coordinates.
func axisAngle(i, n int) float64 {
	return float64(i)*(fullTurn/float64(n)) - math.Pi/2
}

// AxisPoint returns the point on axis i (of n) at the given 0..100 magnitude,
// relative to the center.
func (l Layout) AxisPoint(i, n, value int) Point {
	angle := axisAngle(i, n)
	r := float64(value) / MaxValue * l.MaxRadius
	return Point{X: math.Cos(angle) * r, Y: math.Sin(angle) * r}
}

// Polygon is an ordered, implicitly closed vertex ring.
type Polygon []Point

// PolygonFor maps each attribute to a vertex: angle from its index, radius
// from its magnitude. Ability and difficulty polygons of the same list share
// index order, so vertex i of both always lies on the same axis.
func PolygonFor(attrs Attributes, v Variant, l Layout) Polygon {
	n := len(attrs)
	pts := make(Polygon, n)
	for i, a := range attrs {
		value := a.PlayerValue
		if v == Difficulty {
			value = a.TaskValue
		}
		pts[i] = l.Center.Add(l.AxisPoint(i, n, value))
	}
	return pts
}

// Contains reports whether pt lies inside the polygon using the even-odd
// crossing rule with a rightward horizontal ray.
//
// Boundary convention: an edge counts only when one endpoint is strictly
// above pt.Y and the other is not, and the crossing must lie strictly to the
// right of pt. Points on a lower or left boundary therefore test inside,
// points on an upper or right boundary test outside. For the square
// (10,10),(10,-10),(-10,-10),(-10,10): (-10,-10) is inside, (10,10) is not.
func (pg Polygon) Contains(pt Point) bool {
	inside := false
	n := len(pg)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := pg[i], pg[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) &&
			pt.X < (pj.X-pi.X)*(pt.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// PointInPolygon is the free-function form of Polygon.Contains.
func PointInPolygon(pt Point, pg Polygon) bool { return pg.Contains(pt) }

// Area is the absolute shoelace area.
func (pg Polygon) Area() float64 {
	var sum float64
	n := len(pg)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		sum += pg[j].X*pg[i].Y - pg[i].X*pg[j].Y
	}
	return math.Abs(sum) / 2
}

// Degenerate reports a polygon with no usable area (e.g. all task values 0).
func (pg Polygon) Degenerate() bool { return pg.Area() <= degenerateArea }
