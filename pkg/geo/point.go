package geo

import "math"

// Point2 represents a point in the ground plane (Z is up).
type Point2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Origin is the zero point.
var Origin = Point2{0, 0}

// Pt is a shorthand constructor for Point2.
func Pt(x, y float64) Point2 {
	return Point2{X: x, Y: y}
}

// Add returns p + q.
func (p Point2) Add(q Point2) Point2 {
	return Point2{p.X + q.X, p.Y + q.Y}
}

// Sub returns p - q.
func (p Point2) Sub(q Point2) Point2 {
	return Point2{p.X - q.X, p.Y - q.Y}
}

// Scale returns p * s.
func (p Point2) Scale(s float64) Point2 {
	return Point2{p.X * s, p.Y * s}
}

// Length returns the Euclidean length of the vector.
func (p Point2) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Normalize returns the unit vector in the same direction.
// Returns zero vector if length is zero.
func (p Point2) Normalize() Point2 {
	l := p.Length()
	if l < 1e-12 {
		return Point2{}
	}
	return Point2{p.X / l, p.Y / l}
}

// Dot returns the dot product of p and q.
func (p Point2) Dot(q Point2) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Cross returns the 2D cross product (z-component of the 3D cross).
func (p Point2) Cross(q Point2) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Distance returns the Euclidean distance from p to q.
func (p Point2) Distance(q Point2) float64 {
	return p.Sub(q).Length()
}

// Rotate returns p rotated by angle radians around the origin.
func (p Point2) Rotate(angle float64) Point2 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Point2{
		X: p.X*c - p.Y*s,
		Y: p.X*s + p.Y*c,
	}
}

// RotateAround returns p rotated by angle radians around center.
func (p Point2) RotateAround(center Point2, angle float64) Point2 {
	return p.Sub(center).Rotate(angle).Add(center)
}

// Lerp returns the linear interpolation between p and q at t in [0,1].
func (p Point2) Lerp(q Point2, t float64) Point2 {
	return Point2{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}

// Perp returns p rotated 90 degrees counterclockwise.
func (p Point2) Perp() Point2 {
	return Point2{-p.Y, p.X}
}

// AtHeight lifts the planar point to the given elevation.
func (p Point2) AtHeight(z float64) Point3 {
	return Point3{X: p.X, Y: p.Y, Z: z}
}

// Point3 represents a point in 3D space (Z is up).
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pt3 is a shorthand constructor for Point3.
func Pt3(x, y, z float64) Point3 {
	return Point3{X: x, Y: y, Z: z}
}

// Add returns p + q.
func (p Point3) Add(q Point3) Point3 {
	return Point3{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns p - q.
func (p Point3) Sub(q Point3) Point3 {
	return Point3{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Scale returns p * s.
func (p Point3) Scale(s float64) Point3 {
	return Point3{p.X * s, p.Y * s, p.Z * s}
}

// Dot returns the dot product of p and q.
func (p Point3) Dot(q Point3) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Cross returns the cross product of p and q.
func (p Point3) Cross(q Point3) Point3 {
	return Point3{
		X: p.Y*q.Z - p.Z*q.Y,
		Y: p.Z*q.X - p.X*q.Z,
		Z: p.X*q.Y - p.Y*q.X,
	}
}

// Length returns the Euclidean length of the vector.
func (p Point3) Length() float64 {
	return math.Sqrt(p.Dot(p))
}

// Plan projects the point onto the ground plane.
func (p Point3) Plan() Point2 {
	return Point2{X: p.X, Y: p.Y}
}
