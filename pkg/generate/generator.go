// Package generate produces randomized, constraint-satisfying building
// parameter records. All randomness flows from an explicit seed: the
// i-th building is drawn from a source derived from (seed, i), so the
// sequence is reproducible and restartable regardless of how the work
// is split.
package generate

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/cityforge/cityforge/pkg/config"
	"github.com/cityforge/cityforge/pkg/geo"
	"github.com/cityforge/cityforge/pkg/params"
	"github.com/cityforge/cityforge/pkg/report"
)

// Options selects what the generator produces.
type Options struct {
	Count      int
	Seed       int64
	Rotation   bool   // random orientation instead of axis-aligned
	Parts      bool   // attach garages and alcoves
	Streets    bool   // emit the decorative road network
	Vegetation bool   // emit parks in place of some buildings
	CRS        string // named regional coordinate offset, empty = local
}

// Generator produces parameter records.
type Generator struct {
	cfg  *config.Config
	opts Options
}

// New creates a generator. Count defaults to 1000 when non-positive.
func New(cfg *config.Config, opts Options) *Generator {
	if opts.Count <= 0 {
		opts.Count = 1000
	}
	return &Generator{cfg: cfg, opts: opts}
}

// Generate produces the full parameter set for one run.
func (g *Generator) Generate() (*params.City, *report.Report, error) {
	rep := report.New(g.opts.Count)

	if g.opts.Streets && g.opts.Rotation {
		return nil, nil, fmt.Errorf("streets and rotated buildings cannot be combined")
	}
	if g.opts.Streets && g.opts.CRS != "" {
		return nil, nil, fmt.Errorf("streets and a non-local coordinate system cannot be combined")
	}
	shift, err := g.cfg.CRSOffset(g.opts.CRS)
	if err != nil {
		return nil, nil, err
	}

	// Park cells are reserved up front from a dedicated stream so that
	// toggling vegetation never reshuffles the buildings themselves.
	parkCells := map[int]bool{}
	if g.opts.Vegetation {
		decorRng := rand.New(rand.NewSource(subSeed(g.opts.Seed, -1)))
		want := int(math.Round(g.cfg.ParkRatio * float64(g.opts.Count)))
		for i := 0; i < want; i++ {
			parkCells[decorRng.Intn(g.opts.Count)] = true
		}
	}

	city := &params.City{}
	maxRow, maxCol := 0, 0
	for i := 0; i < g.opts.Count; i++ {
		col, row := g.cellFor(i)
		if col > maxCol {
			maxCol = col
		}
		if row > maxRow {
			maxRow = row
		}
		if parkCells[i] {
			city.Parks = append(city.Parks, g.parkAt(col, row))
			continue
		}

		rng := rand.New(rand.NewSource(subSeed(g.opts.Seed, i)))
		b := g.building(rng, col, row, shift, rep)
		city.Buildings = append(city.Buildings, b)
	}

	if g.opts.Streets {
		city.Streets = g.streets(maxCol, maxRow)
	}

	rep.AddInfo(report.StageGeneration, "generated %d buildings, %d parks",
		len(city.Buildings), len(city.Parks))
	return city, rep, nil
}

// cellFor arranges building i on a near-square grid.
func (g *Generator) cellFor(i int) (col, row int) {
	gridSize := int(math.Round(math.Sqrt(float64(g.opts.Count))))
	if gridSize < 1 {
		gridSize = 1
	}
	return i / gridSize, i % gridSize
}

// building randomizes one parameter record.
func (g *Generator) building(rng *rand.Rand, col, row int, shift [2]float64, rep *report.Report) params.Building {
	cfg := g.cfg

	b := params.Building{
		ID: uuid.Must(uuid.NewRandomFromReader(rng)).String(),
		Origin: geo.Pt(
			shift[0]+float64(col)*cfg.CellSize,
			shift[1]+float64(row)*cfg.CellSize,
		),
	}

	w := round2(uniform(rng, cfg.MinWidth, cfg.MaxWidth))
	d := round2(uniform(rng, cfg.MinDepth, cfg.MaxDepth))

	irregular := chance(rng, cfg.IrregularPercent)
	b.Footprint = footprint(rng, w, d, irregular)

	b.Storeys = cfg.MinStoreys + rng.Intn(cfg.MaxStoreys-cfg.MinStoreys+1)
	b.StoreyHeight = round2(uniform(rng, cfg.MinStoreyHeight, cfg.MaxStoreyHeight))
	b.EaveHeight = round2(float64(b.Storeys) * b.StoreyHeight)

	b.RoofType = g.roofType(rng, b.Storeys, irregular)

	if b.RoofType.HasRidge() {
		rise := cfg.DefaultRoofRise
		if b.EaveHeight > cfg.LowBuildingEaves {
			rise = round2(uniform(rng, cfg.MinRoofRise, cfg.MaxRoofRise))
		}
		b.RidgeHeight = round2(b.EaveHeight + rise)
		b.MeanRoofHeight = round2(b.EaveHeight + rise/2)
	} else {
		b.RidgeHeight = b.EaveHeight
		b.MeanRoofHeight = b.EaveHeight
	}

	short := math.Min(w, d)
	switch b.RoofType {
	case params.RoofHipped:
		b.RidgeSetback = round2(uniform(rng, 0.4, 0.5*short))
	case params.RoofPyramidal:
		b.RidgeSetback = round2(0.5 * short)
	}

	if chance(rng, cfg.OverhangPercent) {
		b.OverhangX = round2(uniform(rng, cfg.MinOverhang, cfg.MaxOverhang))
		if b.RoofType == params.RoofHipped || b.RoofType == params.RoofPyramidal {
			b.OverhangY = b.OverhangX
		} else {
			b.OverhangY = round2(uniform(rng, cfg.MinOverhang, cfg.MaxOverhang))
		}
	}

	// Wall thickness is tied to the window embrasure in the source
	// dataset; keep the same floor of 0.2m.
	emb := round2(uniform(rng, 0.0, 0.2))
	b.WallThickness = math.Max(0.2, 2*emb)
	b.Joist = round2(uniform(rng, 0.2, 0.3))

	if g.opts.Rotation {
		b.Rotation = round2(uniform(rng, -cfg.MaxRotation, cfg.MaxRotation))
	}

	if g.opts.Parts {
		g.attachParts(rng, &b, rep)
	}
	return b
}

// roofType picks a roof type honoring configured weights. Tall buildings
// and notched footprints fall back to the types they can carry.
func (g *Generator) roofType(rng *rand.Rand, storeys int, irregular bool) params.RoofType {
	if storeys >= g.cfg.FlatOnlyStoreys {
		return params.RoofFlat
	}
	candidates := params.RoofTypes
	if irregular {
		candidates = []params.RoofType{params.RoofFlat, params.RoofShed}
	}

	total := 0
	weights := make([]int, len(candidates))
	for i, rt := range candidates {
		w := 1
		if g.cfg.RoofWeights != nil {
			if cw, ok := g.cfg.RoofWeights[string(rt)]; ok {
				w = cw
			}
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return params.RoofFlat
	}
	pick := rng.Intn(total)
	for i, w := range weights {
		pick -= w
		if pick < 0 {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}

// footprint builds a rectangle, or an L-shape when irregular is set: a
// corner notch of a quarter to half of each extent.
func footprint(rng *rand.Rand, w, d float64, irregular bool) geo.Polygon {
	if !irregular {
		return geo.Rect(0, 0, w, d)
	}
	nx := round2(uniform(rng, 0.25*w, 0.5*w))
	ny := round2(uniform(rng, 0.25*d, 0.5*d))
	return geo.NewPolygon(
		geo.Pt(0, 0),
		geo.Pt(w, 0),
		geo.Pt(w, d-ny),
		geo.Pt(w-nx, d-ny),
		geo.Pt(w-nx, d),
		geo.Pt(0, d),
	)
}

func (g *Generator) parkAt(col, row int) params.Park {
	cfg := g.cfg
	x := float64(col) * cfg.CellSize
	y := float64(row) * cfg.CellSize
	return params.Park{
		Bounds: params.Rect2{
			Min: geo.Pt(x-cfg.StreetSeparation, y-cfg.StreetSeparation),
			Max: geo.Pt(
				x+cfg.CellSize-cfg.StreetWidth-cfg.StreetSeparation,
				y+cfg.CellSize-cfg.StreetWidth-cfg.StreetSeparation,
			),
		},
		Height: cfg.ParkHeight,
	}
}

// streets lays a sparse orthogonal road network over the building grid.
func (g *Generator) streets(maxCol, maxRow int) *params.StreetNetwork {
	cfg := g.cfg
	cell := cfg.CellSize
	width := cfg.StreetWidth
	sep := cfg.StreetSeparation

	s := &params.StreetNetwork{
		Outline: params.Rect2{
			Min: geo.Pt(-width-sep, -width-sep),
			Max: geo.Pt(
				float64(maxCol)*cell+cell+width,
				float64(maxRow)*cell+cell+width,
			),
		},
	}
	for c := 0; c <= maxCol; c += cfg.StreetSkip {
		for r := 0; r <= maxRow; r += cfg.StreetSkip {
			p0x := float64(c)*cell - sep
			p1x := float64(c+cfg.StreetSkip)*cell - sep - width
			if p1x >= float64(maxCol)*cell {
				p1x = float64(maxCol)*cell + cell
			}
			p0y := float64(r)*cell - sep
			p1y := float64(r+cfg.StreetSkip)*cell - sep - width
			if p1y >= float64(maxRow)*cell {
				p1y = float64(maxRow)*cell + cell
			}
			s.Holes = append(s.Holes, params.Rect2{
				Min: geo.Pt(p0x, p0y),
				Max: geo.Pt(p1x, p1y),
			})
		}
	}
	return s
}

// subSeed derives an independent stream seed from the run seed and a
// building index (splitmix64 finalizer).
func subSeed(seed int64, index int) int64 {
	z := uint64(seed) + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func chance(rng *rand.Rand, percent int) bool {
	return rng.Intn(100) < percent
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
