// Package solid assembles buildings into closed boundary
// representations. A Model owns an exterior shell made of semantically
// tagged planar surfaces, and optionally interior shells and floor
// plans. Shells are verified watertight before they leave the package.
package solid

import (
	"fmt"
	"math"
	"sort"

	"github.com/cityforge/cityforge/pkg/geo"
)

// Role classifies what a surface represents on the building.
type Role string

const (
	RoleGround        Role = "GroundSurface"
	RoleWall          Role = "WallSurface"
	RoleRoof          Role = "RoofSurface"
	RoleInteriorFloor Role = "FloorSurface"
)

// Surface is a single planar polygon with a semantic role. The ring is
// ordered so its normal points away from the enclosed volume. Owner is
// empty for the main body, or the part index (as assigned by the
// assembler) for geometry contributed by a building part.
type Surface struct {
	Role  Role
	Ring  []geo.Point3
	Owner string
}

// Reverse flips the traversal order of the ring in place.
func (s *Surface) Reverse() {
	for i, j := 0, len(s.Ring)-1; i < j; i, j = i+1, j-1 {
		s.Ring[i], s.Ring[j] = s.Ring[j], s.Ring[i]
	}
}

// Normal returns the (unnormalised) Newell normal of the ring.
func (s Surface) Normal() geo.Point3 {
	var n geo.Point3
	for i := range s.Ring {
		a := s.Ring[i]
		b := s.Ring[(i+1)%len(s.Ring)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// Shell is a set of surfaces intended to close a volume.
type Shell struct {
	Surfaces []Surface
}

func (sh *Shell) Add(role Role, owner string, ring ...geo.Point3) {
	sh.Surfaces = append(sh.Surfaces, Surface{Role: role, Owner: owner, Ring: ring})
}

// Envelope is an axis-aligned bounding box.
type Envelope struct {
	Min, Max geo.Point3
}

// Contains reports whether other fits inside the envelope, with a
// small tolerance for arithmetic noise.
func (e Envelope) Contains(other Envelope) bool {
	const eps = 1e-9
	return other.Min.X >= e.Min.X-eps && other.Min.Y >= e.Min.Y-eps && other.Min.Z >= e.Min.Z-eps &&
		other.Max.X <= e.Max.X+eps && other.Max.Y <= e.Max.Y+eps && other.Max.Z <= e.Max.Z+eps
}

// ExpandXY grows the envelope horizontally, leaving heights alone.
func (e Envelope) ExpandXY(dx, dy float64) Envelope {
	e.Min.X -= dx
	e.Max.X += dx
	e.Min.Y -= dy
	e.Max.Y += dy
	return e
}

// Envelope returns the bounding box of all surfaces in the shell.
func (sh Shell) Envelope() Envelope {
	e := Envelope{
		Min: geo.Point3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: geo.Point3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, s := range sh.Surfaces {
		for _, p := range s.Ring {
			e.Min.X = math.Min(e.Min.X, p.X)
			e.Min.Y = math.Min(e.Min.Y, p.Y)
			e.Min.Z = math.Min(e.Min.Z, p.Z)
			e.Max.X = math.Max(e.Max.X, p.X)
			e.Max.Y = math.Max(e.Max.Y, p.Y)
			e.Max.Z = math.Max(e.Max.Z, p.Z)
		}
	}
	return e
}

// Volume computes the enclosed volume via the divergence theorem. The
// result is only meaningful for a watertight shell with outward
// normals. Each ring is fan-triangulated; the signed tetrahedron
// volumes cancel correctly even for non-convex rings.
func (sh Shell) Volume() float64 {
	var v float64
	for _, s := range sh.Surfaces {
		if len(s.Ring) < 3 {
			continue
		}
		a := s.Ring[0]
		for i := 1; i < len(s.Ring)-1; i++ {
			b := s.Ring[i]
			c := s.Ring[i+1]
			v += a.Dot(b.Cross(c))
		}
	}
	return v / 6
}

const edgeQuantum = 1e-6

type edgeKey struct {
	ax, ay, az, bx, by, bz int64
}

func quantize(v float64) int64 {
	return int64(math.Round(v / edgeQuantum))
}

func pointKey(p geo.Point3) [3]int64 {
	return [3]int64{quantize(p.X), quantize(p.Y), quantize(p.Z)}
}

// CheckWatertight verifies that every undirected edge of the shell is
// shared by exactly two surfaces which traverse it in opposite
// directions. Coordinates are quantized so that vertices produced by
// independent constructions still match.
func (sh Shell) CheckWatertight() error {
	type tally struct {
		forward, backward int
	}
	edges := make(map[edgeKey]*tally)
	for _, s := range sh.Surfaces {
		n := len(s.Ring)
		if n < 3 {
			return fmt.Errorf("degenerate surface with %d vertices", n)
		}
		for i := 0; i < n; i++ {
			a := pointKey(s.Ring[i])
			b := pointKey(s.Ring[(i+1)%n])
			if a == b {
				return fmt.Errorf("zero-length edge at %v", s.Ring[i])
			}
			key := edgeKey{a[0], a[1], a[2], b[0], b[1], b[2]}
			dir := true
			if !lessKey(a, b) {
				key = edgeKey{b[0], b[1], b[2], a[0], a[1], a[2]}
				dir = false
			}
			t := edges[key]
			if t == nil {
				t = &tally{}
				edges[key] = t
			}
			if dir {
				t.forward++
			} else {
				t.backward++
			}
		}
	}
	var bad []string
	for k, t := range edges {
		if t.forward == 1 && t.backward == 1 {
			continue
		}
		bad = append(bad, fmt.Sprintf("edge (%g %g %g)-(%g %g %g) used %d/%d times",
			float64(k.ax)*edgeQuantum, float64(k.ay)*edgeQuantum, float64(k.az)*edgeQuantum,
			float64(k.bx)*edgeQuantum, float64(k.by)*edgeQuantum, float64(k.bz)*edgeQuantum,
			t.forward, t.backward))
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("shell not closed: %s (and %d more)", bad[0], len(bad)-1)
	}
	return nil
}

func lessKey(a, b [3]int64) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}

// Model is the full geometric representation of one building at one
// level of detail.
type Model struct {
	BuildingID string
	Spec       Spec

	// Exterior holds the outer shell. For the planar family it
	// contains a single horizontal surface and is exempt from the
	// watertightness check.
	Exterior Shell

	// Interior shells and per-storey floor plans, populated only when
	// Spec.Interior is set.
	Interior []Shell
	Floors   []Surface
}

// Planar reports whether the model is a flat footprint rather than a
// volume.
func (m *Model) Planar() bool {
	return m.Spec.Family == FamilyPlanar
}

// Check validates every shell of the model.
func (m *Model) Check() error {
	if m.Planar() {
		return nil
	}
	if err := m.Exterior.CheckWatertight(); err != nil {
		return fmt.Errorf("exterior: %w", err)
	}
	for i, sh := range m.Interior {
		if err := sh.CheckWatertight(); err != nil {
			return fmt.Errorf("interior shell %d: %w", i, err)
		}
	}
	return nil
}
