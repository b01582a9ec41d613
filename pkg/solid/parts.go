package solid

import (
	"sort"
	"strconv"

	"github.com/cityforge/cityforge/pkg/geo"
)

const partClearance = 1e-6

// indexParts groups the building's parts by the footprint edge they
// attach to and validates that each contact patch fits strictly
// inside its edge without touching a corner or a neighbouring part.
func (a *assembler) indexParts() error {
	if len(a.b.Parts) == 0 {
		return nil
	}
	a.byEdge = make(map[int][]partRef)
	for i, p := range a.b.Parts {
		if p.Edge < 0 || p.Edge >= a.fp.Len() {
			return geomErrf(a.b.ID, "part %d attached to edge %d of a %d-edge footprint", i, p.Edge, a.fp.Len())
		}
		edgeLen := a.fp.EdgeLength(p.Edge)
		if p.Offset < partClearance || p.Offset+p.Length > edgeLen-partClearance {
			return geomErrf(a.b.ID, "part %d contact patch [%.2f, %.2f] outside edge %d of length %.2f",
				i, p.Offset, p.Offset+p.Length, p.Edge, edgeLen)
		}
		if p.Length <= 0 || p.Width <= 0 || p.Height <= 0 {
			return geomErrf(a.b.ID, "part %d has a non-positive dimension", i)
		}
		a.byEdge[p.Edge] = append(a.byEdge[p.Edge], partRef{Part: p, idx: i})
	}
	for edge := 0; edge < a.fp.Len(); edge++ {
		refs := a.byEdge[edge]
		sort.Slice(refs, func(i, j int) bool { return refs[i].Offset < refs[j].Offset })
		for i := 1; i < len(refs); i++ {
			if refs[i-1].Offset+refs[i-1].Length > refs[i].Offset-partClearance {
				return geomErrf(a.b.ID, "parts %d and %d overlap on edge %d", refs[i-1].idx, refs[i].idx, edge)
			}
		}
	}
	return nil
}

// attachParts notches the parent wall above each contact patch and
// emits the three outer walls and the flat cap of every part. The
// part's footprint is spliced into the shared ground surface by
// unionGroundRing, so the union stays a single closed shell. Edges are
// walked in footprint order so identical inputs yield identical
// surface order.
func (a *assembler) attachParts(m *Model, walls []Surface, topAt func(geo.Point2) float64) error {
	for edge := 0; edge < a.fp.Len(); edge++ {
		refs := a.byEdge[edge]
		if len(refs) == 0 {
			continue
		}
		p, q := a.fp.Edge(edge)
		dir := q.Sub(p).Normalize()
		out := dir.Perp().Scale(-1)

		var detour []geo.Point3
		for _, ref := range refs {
			c1 := p.Add(dir.Scale(ref.Offset))
			c2 := p.Add(dir.Scale(ref.Offset + ref.Length))
			o1 := c1.Add(out.Scale(ref.Width))
			o2 := c2.Add(out.Scale(ref.Width))
			h := ref.Height

			if h >= topAt(c1)-partClearance || h >= topAt(c2)-partClearance {
				return geomErrf(a.b.ID, "part %d height %.2f reaches the parent wall top", ref.idx, h)
			}

			owner := strconv.Itoa(ref.idx)
			m.Exterior.Add(RoleWall, owner,
				c1.AtHeight(0), o1.AtHeight(0), o1.AtHeight(h), c1.AtHeight(h))
			m.Exterior.Add(RoleWall, owner,
				o1.AtHeight(0), o2.AtHeight(0), o2.AtHeight(h), o1.AtHeight(h))
			m.Exterior.Add(RoleWall, owner,
				o2.AtHeight(0), c2.AtHeight(0), c2.AtHeight(h), o2.AtHeight(h))
			m.Exterior.Add(RoleRoof, owner,
				c1.AtHeight(h), o1.AtHeight(h), o2.AtHeight(h), c2.AtHeight(h))

			detour = append(detour,
				c1.AtHeight(0), c1.AtHeight(h), c2.AtHeight(h), c2.AtHeight(0))
		}

		// Splice the detour into the wall bottom: instead of running
		// straight from corner to corner, the wall climbs over each
		// part's contact patch.
		ring := walls[edge].Ring
		spliced := make([]geo.Point3, 0, len(ring)+len(detour))
		spliced = append(spliced, ring[0])
		spliced = append(spliced, detour...)
		spliced = append(spliced, ring[1:]...)
		walls[edge].Ring = spliced
	}
	return nil
}

// unionGroundRing traces the footprint with each part's outline
// spliced into its host edge, reversed to face downward.
func (a *assembler) unionGroundRing() []geo.Point3 {
	var ring []geo.Point3
	for i := 0; i < a.fp.Len(); i++ {
		p, q := a.fp.Edge(i)
		ring = append(ring, p.AtHeight(0))
		refs := a.byEdge[i]
		if len(refs) == 0 {
			continue
		}
		dir := q.Sub(p).Normalize()
		out := dir.Perp().Scale(-1)
		for _, ref := range refs {
			c1 := p.Add(dir.Scale(ref.Offset))
			c2 := p.Add(dir.Scale(ref.Offset + ref.Length))
			ring = append(ring,
				c1.AtHeight(0),
				c1.Add(out.Scale(ref.Width)).AtHeight(0),
				c2.Add(out.Scale(ref.Width)).AtHeight(0),
				c2.AtHeight(0))
		}
	}
	return reversed(ring)
}
