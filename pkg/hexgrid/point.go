package hexgrid

// Point is a position in the Cartesian plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the vector sum p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the vector difference p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// InTriangle reports whether p lies strictly inside the triangle abc.
//
// The test uses barycentric coordinates with the sign of the triangle's area
// folded in, so the vertex winding order does not matter. Points on an edge
// are outside.
func (p Point) InTriangle(a, b, c Point) bool {
	area := 0.5 * (-b.Y*c.X + a.Y*(-b.X+c.X) + a.X*(b.Y-c.Y) + b.X*c.Y)
	sign := 1.0
	if area < 0 {
		sign = -1
	}

	s := sign * (a.Y*c.X - a.X*c.Y + p.X*(c.Y-a.Y) + p.Y*(a.X-c.X))
	t := sign * (a.X*b.Y - a.Y*b.X + p.X*(a.Y-b.Y) + p.Y*(b.X-a.X))
	return s > 0 && t > 0 && s+t < 2*area*sign
}

// InRectangle reports whether p lies inside the axis-aligned rectangle with
// top-left corner tl and bottom-right corner br. Edges are inclusive.
func (p Point) InRectangle(tl, br Point) bool {
	return p.X >= tl.X && p.X <= br.X && p.Y >= tl.Y && p.Y <= br.Y
}
