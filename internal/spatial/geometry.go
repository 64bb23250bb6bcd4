package spatial

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"github.com/jengzang/arena-zones-backend/internal/models"
)

// Point represents a 2D point in arena coordinate space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsMissing reports whether either coordinate is NaN
func (p Point) IsMissing() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y)
}

// Containment is the result of a point-in-zone test
type Containment uint8

const (
	Outside Containment = iota
	Inside
	// Unknown is returned when the tested coordinate is missing
	Unknown
)

func (c Containment) String() string {
	switch c {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	default:
		return "unknown"
	}
}

// Shape is a resolved zone primitive. The set of shapes is closed:
// only Polygon and Circle implement it.
type Shape interface {
	contains(x, y float64) bool
	bounds() r2.Rect
	isShape()
}

// Polygon is a simple polygon, implicitly closed from the last vertex back to the first
type Polygon struct {
	Vertices []Point `json:"vertices"`
}

// Circle is a closed disk
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

func (Polygon) isShape() {}
func (Circle) isShape()  {}

// contains uses the even-odd rule with a ray cast towards +x.
// An edge counts when (y1 <= py < y2) or (y2 <= py < y1) and px lies left of the
// edge at py. The half-open interval fixes which horizontal edges and vertices
// are inside, so it must not be changed.
func (p Polygon) contains(px, py float64) bool {
	n := len(p.Vertices)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		x1, y1 := p.Vertices[j].X, p.Vertices[j].Y
		x2, y2 := p.Vertices[i].X, p.Vertices[i].Y
		if (y1 <= py && py < y2) || (y2 <= py && py < y1) {
			xCross := x1 + (py-y1)*(x2-x1)/(y2-y1)
			if px < xCross {
				inside = !inside
			}
		}
		j = i
	}

	return inside
}

func (p Polygon) bounds() r2.Rect {
	rect := r2.EmptyRect()
	for _, v := range p.Vertices {
		rect = rect.AddPoint(r2.Point{X: v.X, Y: v.Y})
	}
	return rect
}

// contains includes the boundary
func (c Circle) contains(x, y float64) bool {
	dx := x - c.Center.X
	dy := y - c.Center.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

func (c Circle) bounds() r2.Rect {
	return r2.RectFromCenterSize(
		r2.Point{X: c.Center.X, Y: c.Center.Y},
		r2.Point{X: 2 * c.Radius, Y: 2 * c.Radius},
	)
}

// Contains tests whether (x, y) lies in shape. A NaN coordinate yields Unknown.
func Contains(shape Shape, x, y float64) Containment {
	if math.IsNaN(x) || math.IsNaN(y) {
		return Unknown
	}
	if shape.contains(x, y) {
		return Inside
	}
	return Outside
}

// ContainsAll is the vectorised form of Contains over parallel coordinate slices
func ContainsAll(shape Shape, xs, ys []float64) ([]Containment, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("coordinate slices differ in length (x=%d, y=%d): %w",
			len(xs), len(ys), models.ErrInvalidArgument)
	}

	result := make([]Containment, len(xs))
	for i := range xs {
		result[i] = Contains(shape, xs[i], ys[i])
	}
	return result, nil
}

// Bounds returns the axis-aligned bounding box of shape
func Bounds(shape Shape) r2.Rect {
	return shape.bounds()
}

// RectanglePolygon builds the 4-vertex polygon (x1,y1),(x2,y1),(x2,y2),(x1,y2)
// from two opposite corners, whatever their relative position.
func RectanglePolygon(a, b Point) Polygon {
	return Polygon{Vertices: []Point{
		{X: a.X, Y: a.Y},
		{X: b.X, Y: a.Y},
		{X: b.X, Y: b.Y},
		{X: a.X, Y: b.Y},
	}}
}

// Centroid returns the vertex mean of a polygon or the center of a circle
func Centroid(shape Shape) Point {
	switch s := shape.(type) {
	case Circle:
		return s.Center
	case Polygon:
		if len(s.Vertices) == 0 {
			return Point{}
		}
		var sumX, sumY float64
		for _, v := range s.Vertices {
			sumX += v.X
			sumY += v.Y
		}
		n := float64(len(s.Vertices))
		return Point{X: sumX / n, Y: sumY / n}
	default:
		panic(fmt.Sprintf("spatial: unhandled shape %T", shape))
	}
}

// Area returns the enclosed area (shoelace formula for polygons)
func Area(shape Shape) float64 {
	switch s := shape.(type) {
	case Circle:
		return math.Pi * s.Radius * s.Radius
	case Polygon:
		if len(s.Vertices) < 3 {
			return 0
		}
		var sum float64
		for i := range s.Vertices {
			j := (i + 1) % len(s.Vertices)
			sum += s.Vertices[i].X*s.Vertices[j].Y - s.Vertices[j].X*s.Vertices[i].Y
		}
		return math.Abs(sum) / 2
	default:
		panic(fmt.Sprintf("spatial: unhandled shape %T", shape))
	}
}
