package generate

import (
	"math/rand"

	"github.com/cityforge/cityforge/pkg/params"
	"github.com/cityforge/cityforge/pkg/report"
)

// Part placement keeps a clear margin from footprint corners so the
// union never degenerates at a vertex.
const partEdgeMargin = 0.5

// attachParts tries to place up to MaxParts garages/alcoves flush
// against randomly chosen footprint edges. Placement is best-effort:
// each part gets a bounded retry budget and is dropped, not fatal, when
// no valid position exists.
func (g *Generator) attachParts(rng *rand.Rand, b *params.Building, rep *report.Report) {
	if !chance(rng, g.cfg.PartPercent) {
		return
	}
	want := 1 + rng.Intn(g.cfg.MaxParts)

	for n := 0; n < want; n++ {
		part, ok := g.placePart(rng, b)
		if !ok {
			rep.AddWarning(report.StageGeneration, b.ID,
				"no valid placement for part %d of %d after %d attempts, dropped",
				n+1, want, g.cfg.PartRetries)
			continue
		}
		b.Parts = append(b.Parts, part)
	}
}

// placePart samples position and size up to the retry budget.
func (g *Generator) placePart(rng *rand.Rand, b *params.Building) (params.Part, bool) {
	for try := 0; try < g.cfg.PartRetries; try++ {
		part := g.samplePart(rng, b)

		edgeLen := b.Footprint.EdgeLength(part.Edge)
		room := edgeLen - 2*partEdgeMargin - part.Length
		if room < 0 {
			continue
		}
		part.Offset = round2(partEdgeMargin + rng.Float64()*room)

		if overlapsExisting(part, b.Parts) {
			continue
		}
		return part, true
	}
	return params.Part{}, false
}

func (g *Generator) samplePart(rng *rand.Rand, b *params.Building) params.Part {
	// A part must stay below its parent's eave so the wall above the
	// contact patch keeps a positive height.
	height := b.StoreyHeight
	if height >= b.EaveHeight {
		height = round2(0.8 * b.EaveHeight)
	}
	part := params.Part{
		ParentID: b.ID,
		Edge:     rng.Intn(b.Footprint.Len()),
		Height:   height,
		RoofType: params.RoofFlat,
	}
	if rng.Intn(2) == 0 {
		part.Kind = params.PartGarage
		part.Width = round2(uniform(rng, 2, 3))
		part.Length = round2(uniform(rng, 4, 5))
	} else {
		part.Kind = params.PartAlcove
		part.Width = round2(uniform(rng, 0.5, 1))
		part.Length = round2(uniform(rng, 1.3, 1.9))
	}
	return part
}

// overlapsExisting reports whether the part's contact interval collides
// with an already placed part on the same edge.
func overlapsExisting(p params.Part, placed []params.Part) bool {
	for _, q := range placed {
		if q.Edge != p.Edge {
			continue
		}
		if p.Offset < q.Offset+q.Length && q.Offset < p.Offset+p.Length {
			return true
		}
	}
	return false
}
