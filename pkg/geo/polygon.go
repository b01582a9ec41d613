package geo

import "math"

// Polygon is a closed ring defined by its vertices in order. The closing
// edge from the last vertex back to the first is implied.
type Polygon struct {
	Vertices []Point2
}

// NewPolygon creates a polygon from a list of vertices.
func NewPolygon(pts ...Point2) Polygon {
	return Polygon{Vertices: pts}
}

// Rect creates an axis-aligned rectangle with one corner at (x, y),
// counterclockwise.
func Rect(x, y, w, d float64) Polygon {
	return NewPolygon(Pt(x, y), Pt(x+w, y), Pt(x+w, y+d), Pt(x, y+d))
}

// Len returns the number of vertices.
func (p Polygon) Len() int {
	return len(p.Vertices)
}

// IsEmpty returns true if the polygon has fewer than 3 vertices.
func (p Polygon) IsEmpty() bool {
	return len(p.Vertices) < 3
}

// Edge returns the i-th edge as (start, end). Wraps around.
func (p Polygon) Edge(i int) (Point2, Point2) {
	n := len(p.Vertices)
	return p.Vertices[i%n], p.Vertices[(i+1)%n]
}

// EdgeLength returns the length of the i-th edge.
func (p Polygon) EdgeLength(i int) float64 {
	a, b := p.Edge(i)
	return a.Distance(b)
}

// SignedArea returns the signed area using the shoelace formula.
// Positive for counterclockwise winding, negative for clockwise.
func (p Polygon) SignedArea() float64 {
	n := len(p.Vertices)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p.Vertices[i].X * p.Vertices[j].Y
		area -= p.Vertices[j].X * p.Vertices[i].Y
	}
	return area / 2
}

// Area returns the unsigned area of the polygon.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// IsCounterClockwise returns true if vertices are in CCW order.
func (p Polygon) IsCounterClockwise() bool {
	return p.SignedArea() > 0
}

// EnsureCCW returns the polygon with vertices in counterclockwise order.
func (p Polygon) EnsureCCW() Polygon {
	if p.SignedArea() < 0 {
		return p.Reverse()
	}
	return p
}

// Reverse returns the polygon with reversed vertex order.
func (p Polygon) Reverse() Polygon {
	n := len(p.Vertices)
	rev := make([]Point2, n)
	for i, v := range p.Vertices {
		rev[n-1-i] = v
	}
	return Polygon{Vertices: rev}
}

// IsSimple reports whether no two non-adjacent edges intersect and no
// edge is degenerate.
func (p Polygon) IsSimple() bool {
	n := len(p.Vertices)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := p.Edge(i)
		if a1.Distance(a2) < 1e-9 {
			return false
		}
		for j := i + 1; j < n; j++ {
			// Skip adjacent edges (they share an endpoint).
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1, b2 := p.Edge(j)
			if segmentsIntersect(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}

func segmentsIntersect(a1, a2, b1, b2 Point2) bool {
	d1 := a2.Sub(a1).Cross(b1.Sub(a1))
	d2 := a2.Sub(a1).Cross(b2.Sub(a1))
	d3 := b2.Sub(b1).Cross(a1.Sub(b1))
	d4 := b2.Sub(b1).Cross(a2.Sub(b1))
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return onSegment(a1, a2, b1) || onSegment(a1, a2, b2) ||
		onSegment(b1, b2, a1) || onSegment(b1, b2, a2)
}

func onSegment(a, b, q Point2) bool {
	if math.Abs(b.Sub(a).Cross(q.Sub(a))) > 1e-9 {
		return false
	}
	return q.X >= math.Min(a.X, b.X)-1e-9 && q.X <= math.Max(a.X, b.X)+1e-9 &&
		q.Y >= math.Min(a.Y, b.Y)-1e-9 && q.Y <= math.Max(a.Y, b.Y)+1e-9
}

// Centroid returns the centroid of the polygon.
func (p Polygon) Centroid() Point2 {
	n := len(p.Vertices)
	if n == 0 {
		return Point2{}
	}
	a := p.SignedArea()
	if n < 3 || math.Abs(a) < 1e-12 {
		// Degenerate: return the vertex average.
		sum := Point2{}
		for _, v := range p.Vertices {
			sum = sum.Add(v)
		}
		return sum.Scale(1.0 / float64(n))
	}
	cx, cy := 0.0, 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := p.Vertices[i].X*p.Vertices[j].Y - p.Vertices[j].X*p.Vertices[i].Y
		cx += (p.Vertices[i].X + p.Vertices[j].X) * cross
		cy += (p.Vertices[i].Y + p.Vertices[j].Y) * cross
	}
	f := 1.0 / (6.0 * a)
	return Point2{cx * f, cy * f}
}

// BoundingBox returns the axis-aligned bounding box as (min, max).
func (p Polygon) BoundingBox() (Point2, Point2) {
	if len(p.Vertices) == 0 {
		return Point2{}, Point2{}
	}
	minP := p.Vertices[0]
	maxP := p.Vertices[0]
	for _, v := range p.Vertices[1:] {
		if v.X < minP.X {
			minP.X = v.X
		}
		if v.Y < minP.Y {
			minP.Y = v.Y
		}
		if v.X > maxP.X {
			maxP.X = v.X
		}
		if v.Y > maxP.Y {
			maxP.Y = v.Y
		}
	}
	return minP, maxP
}

// Contains returns true if the point is inside the polygon using ray casting.
func (p Polygon) Contains(pt Point2) bool {
	n := len(p.Vertices)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi := p.Vertices[i]
		vj := p.Vertices[j]
		if (vi.Y > pt.Y) != (vj.Y > pt.Y) &&
			pt.X < (vj.X-vi.X)*(pt.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Perimeter returns the total perimeter length.
func (p Polygon) Perimeter() float64 {
	n := len(p.Vertices)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		total += p.EdgeLength(i)
	}
	return total
}

// Translate returns the polygon shifted by the given offset.
func (p Polygon) Translate(off Point2) Polygon {
	out := make([]Point2, len(p.Vertices))
	for i, v := range p.Vertices {
		out[i] = v.Add(off)
	}
	return Polygon{Vertices: out}
}

// RotateAround returns the polygon rotated by angle radians around center.
func (p Polygon) RotateAround(center Point2, angle float64) Polygon {
	out := make([]Point2, len(p.Vertices))
	for i, v := range p.Vertices {
		out[i] = v.RotateAround(center, angle)
	}
	return Polygon{Vertices: out}
}

// IsRectangular reports whether the polygon is a quadrilateral with four
// right angles (within tolerance).
func (p Polygon) IsRectangular() bool {
	if len(p.Vertices) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		a := p.Vertices[i]
		b := p.Vertices[(i+1)%4]
		c := p.Vertices[(i+2)%4]
		if math.Abs(b.Sub(a).Dot(c.Sub(b))) > 1e-6*b.Sub(a).Length()*c.Sub(b).Length() {
			return false
		}
	}
	return true
}

// IsConvex reports whether every interior angle turns the same way.
func (p Polygon) IsConvex() bool {
	n := len(p.Vertices)
	if n < 3 {
		return false
	}
	sign := 0.0
	for i := 0; i < n; i++ {
		a := p.Vertices[i]
		b := p.Vertices[(i+1)%n]
		c := p.Vertices[(i+2)%n]
		cross := b.Sub(a).Cross(c.Sub(b))
		if math.Abs(cross) < 1e-9 {
			continue
		}
		if sign == 0 {
			sign = cross
		} else if sign*cross < 0 {
			return false
		}
	}
	return true
}

// OffsetOut returns the polygon expanded outward, by dx along edges
// whose outward normal is mostly horizontal and dy along edges whose
// outward normal is mostly vertical. The polygon must be CCW.
func (p Polygon) OffsetOut(dx, dy float64) Polygon {
	n := len(p.Vertices)
	if n < 3 || (dx <= 0 && dy <= 0) {
		return p
	}
	dist := func(a, b Point2) float64 {
		out := b.Sub(a).Normalize().Perp().Scale(-1) // outward for CCW
		return math.Abs(out.X)*dx + math.Abs(out.Y)*dy
	}
	out := make([]Point2, 0, n)
	for i := 0; i < n; i++ {
		prev := p.Vertices[(i+n-1)%n]
		cur := p.Vertices[i]
		next := p.Vertices[(i+1)%n]

		n1 := cur.Sub(prev).Normalize().Perp().Scale(-1)
		n2 := next.Sub(cur).Normalize().Perp().Scale(-1)
		d1 := dist(prev, cur)
		d2 := dist(cur, next)

		a1 := prev.Add(n1.Scale(d1))
		a2 := cur.Add(n1.Scale(d1))
		b1 := cur.Add(n2.Scale(d2))
		b2 := next.Add(n2.Scale(d2))

		pt, ok := lineIntersection(a1, a2, b1, b2)
		if !ok {
			pt = a2
		}
		out = append(out, pt)
	}
	return Polygon{Vertices: out}
}

// Inset returns the polygon shrunk inward by the given distance. Each
// edge is moved toward the interior along its inward normal and the
// moved edges are re-intersected. The polygon must be convex and CCW;
// an empty polygon is returned when the inset collapses it.
func (p Polygon) Inset(d float64) Polygon {
	n := len(p.Vertices)
	if n < 3 || d <= 0 {
		return p
	}
	out := make([]Point2, 0, n)
	for i := 0; i < n; i++ {
		prev := p.Vertices[(i+n-1)%n]
		cur := p.Vertices[i]
		next := p.Vertices[(i+1)%n]

		// Inward normals of the two edges meeting at cur (CCW ring:
		// inward is the left-hand perpendicular).
		n1 := cur.Sub(prev).Normalize().Perp()
		n2 := next.Sub(cur).Normalize().Perp()

		a1 := prev.Add(n1.Scale(d))
		a2 := cur.Add(n1.Scale(d))
		b1 := cur.Add(n2.Scale(d))
		b2 := next.Add(n2.Scale(d))

		pt, ok := lineIntersection(a1, a2, b1, b2)
		if !ok {
			// Collinear edges: the offset point is shared.
			pt = a2
		}
		out = append(out, pt)
	}
	// A collapse can invert the ring through its center, which
	// preserves winding and area sign. An inverted (or locally
	// pinched) ring reverses at least one edge against its source.
	for i := 0; i < n; i++ {
		src := p.Vertices[(i+1)%n].Sub(p.Vertices[i])
		ins := out[(i+1)%n].Sub(out[i])
		if src.Dot(ins) <= 0 {
			return Polygon{}
		}
	}
	res := Polygon{Vertices: out}
	if res.SignedArea() <= 1e-9 {
		return Polygon{}
	}
	return res
}

// lineIntersection returns the intersection of the infinite lines
// through (a1,a2) and (b1,b2).
func lineIntersection(a1, a2, b1, b2 Point2) (Point2, bool) {
	da := a2.Sub(a1)
	db := b2.Sub(b1)
	denom := da.Cross(db)
	if math.Abs(denom) < 1e-12 {
		return Point2{}, false
	}
	t := b1.Sub(a1).Cross(db) / denom
	return a1.Add(da.Scale(t)), true
}
