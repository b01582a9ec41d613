package generate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityforge/cityforge/pkg/config"
	"github.com/cityforge/cityforge/pkg/params"
)

func testConfig() *config.Config {
	cfg := config.Default()
	return &cfg
}

func generateCity(t *testing.T, opts Options) *params.City {
	t.Helper()
	g := New(testConfig(), opts)
	city, _, err := g.Generate()
	require.NoError(t, err)
	return city
}

func TestGenerateCount(t *testing.T) {
	city := generateCity(t, Options{Count: 50, Seed: 7})
	assert.Len(t, city.Buildings, 50)
}

func TestGeneratedBuildingsSatisfyInvariants(t *testing.T) {
	city := generateCity(t, Options{Count: 200, Seed: 11, Parts: true, Rotation: true})
	require.NoError(t, city.Validate())

	for _, b := range city.Buildings {
		assert.True(t, b.Footprint.IsSimple(), "building %s footprint not simple", b.ID)
		assert.True(t, b.Footprint.IsCounterClockwise(), "building %s footprint not CCW", b.ID)
		assert.GreaterOrEqual(t, b.RidgeHeight, b.EaveHeight, "building %s ridge below eaves", b.ID)
		assert.GreaterOrEqual(t, b.MeanRoofHeight, b.EaveHeight)
		assert.LessOrEqual(t, b.MeanRoofHeight, b.RidgeHeight)
	}
}

func TestDeterminism(t *testing.T) {
	opts := Options{Count: 40, Seed: 42, Parts: true, Rotation: true}
	a := generateCity(t, opts)
	b := generateCity(t, opts)
	assert.Equal(t, a, b, "identical seed and options must reproduce the sequence")

	var bufA, bufB bytes.Buffer
	require.NoError(t, params.Write(&bufA, a))
	require.NoError(t, params.Write(&bufB, b))
	assert.Equal(t, bufA.Bytes(), bufB.Bytes(), "serialized output must be byte-identical")
}

func TestSeedChangesSequence(t *testing.T) {
	a := generateCity(t, Options{Count: 20, Seed: 1})
	b := generateCity(t, Options{Count: 20, Seed: 2})
	assert.NotEqual(t, a, b)
}

func TestTallBuildingsGetFlatRoofs(t *testing.T) {
	cfg := testConfig()
	city := generateCity(t, Options{Count: 300, Seed: 3})
	for _, b := range city.Buildings {
		if b.Storeys >= cfg.FlatOnlyStoreys {
			assert.Equal(t, params.RoofFlat, b.RoofType,
				"building %s with %d storeys must be flat", b.ID, b.Storeys)
		}
	}
}

func TestIrregularFootprintsKeepConstructibleRoofs(t *testing.T) {
	city := generateCity(t, Options{Count: 300, Seed: 5})
	for _, b := range city.Buildings {
		if b.Footprint.Len() > 4 {
			assert.Contains(t, []params.RoofType{params.RoofFlat, params.RoofShed}, b.RoofType,
				"notched footprint %s got roof %s", b.ID, b.RoofType)
		}
	}
}

func TestPartsFitAndNeverOverlap(t *testing.T) {
	city := generateCity(t, Options{Count: 300, Seed: 9, Parts: true})
	sawPart := false
	for _, b := range city.Buildings {
		for i, p := range b.Parts {
			sawPart = true
			assert.Equal(t, b.ID, p.ParentID)
			edgeLen := b.Footprint.EdgeLength(p.Edge)
			assert.GreaterOrEqual(t, p.Offset, partEdgeMargin-1e-9)
			assert.LessOrEqual(t, p.Offset+p.Length, edgeLen-partEdgeMargin+1e-9)
			for _, q := range b.Parts[:i] {
				if q.Edge == p.Edge {
					disjoint := p.Offset+p.Length <= q.Offset || q.Offset+q.Length <= p.Offset
					assert.True(t, disjoint, "building %s has overlapping parts", b.ID)
				}
			}
		}
	}
	assert.True(t, sawPart, "expected at least one part in 300 buildings")
}

func TestPartsDroppedOnTinyFootprint(t *testing.T) {
	// Footprints barely larger than the placement margins cannot hold a
	// garage; the generator must emit the building anyway.
	cfg := testConfig()
	cfg.MinWidth, cfg.MaxWidth = 1.2, 1.4
	cfg.MinDepth, cfg.MaxDepth = 1.2, 1.4
	cfg.IrregularPercent = 0
	cfg.PartPercent = 100
	cfg.MaxParts = 3

	g := New(cfg, Options{Count: 30, Seed: 13, Parts: true})
	city, rep, err := g.Generate()
	require.NoError(t, err)
	require.Len(t, city.Buildings, 30)
	for _, b := range city.Buildings {
		assert.Empty(t, b.Parts, "building %s should have no parts", b.ID)
	}
	assert.NotEmpty(t, rep.Findings, "dropped parts should be reported")
}

func TestRotationDisabledIsAxisAligned(t *testing.T) {
	city := generateCity(t, Options{Count: 25, Seed: 17})
	for _, b := range city.Buildings {
		assert.Zero(t, b.Rotation)
	}
}

func TestCRSOffsetApplied(t *testing.T) {
	city := generateCity(t, Options{Count: 4, Seed: 19, CRS: "Nordoostpolder"})
	for _, b := range city.Buildings {
		assert.GreaterOrEqual(t, b.Origin.X, 173469.0)
		assert.GreaterOrEqual(t, b.Origin.Y, 526427.0)
	}
}

func TestStreetsExcludeRotationAndCRS(t *testing.T) {
	g := New(testConfig(), Options{Count: 4, Seed: 1, Streets: true, Rotation: true})
	_, _, err := g.Generate()
	assert.Error(t, err)

	g = New(testConfig(), Options{Count: 4, Seed: 1, Streets: true, CRS: "Nordoostpolder"})
	_, _, err = g.Generate()
	assert.Error(t, err)
}

func TestStreetsAndParks(t *testing.T) {
	city := generateCity(t, Options{Count: 100, Seed: 23, Streets: true, Vegetation: true})
	require.NotNil(t, city.Streets)
	assert.NotEmpty(t, city.Streets.Holes)
	assert.NotEmpty(t, city.Parks)
	// Parks replace buildings, never duplicate cells.
	assert.Less(t, len(city.Buildings), 100)
	assert.Equal(t, 100, len(city.Buildings)+len(city.Parks))
}
