package citygml

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityforge/cityforge/pkg/geo"
	"github.com/cityforge/cityforge/pkg/lod"
	"github.com/cityforge/cityforge/pkg/params"
	"github.com/cityforge/cityforge/pkg/solid"
)

func testBuilding() *params.Building {
	return &params.Building{
		ID:             "bldg-001",
		Footprint:      geo.Rect(0, 0, 5, 3),
		EaveHeight:     3,
		RidgeHeight:    5,
		MeanRoofHeight: 4,
		RoofType:       params.RoofGabled,
		Storeys:        2,
		StoreyHeight:   1.5,
		WallThickness:  0.2,
		Joist:          0.25,
		Parts: []params.Part{{
			ParentID: "bldg-001",
			Kind:     params.PartGarage,
			Edge:     0,
			Offset:   1,
			Length:   2,
			Width:    1.5,
			Height:   1.2,
			RoofType: params.RoofFlat,
		}},
	}
}

func render(t *testing.T, point string, opts Options) string {
	t.Helper()
	b := testBuilding()
	pt, ok := lod.ByName(point)
	require.True(t, ok)
	m, err := solid.Assemble(b, pt.Spec)
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, pt, opts)
	require.NoError(t, err)
	require.NoError(t, w.WriteBuilding(b, m))
	require.NoError(t, w.Close())
	return buf.String()
}

func parse(t *testing.T, doc string) *etree.Document {
	t.Helper()
	d := etree.NewDocument()
	require.NoError(t, d.ReadFromString(doc))
	return d
}

func TestDocumentShape(t *testing.T) {
	d := parse(t, render(t, "2.0", Options{}))
	require.Equal(t, "core:CityModel", d.Root().FullTag())

	bld := d.FindElements("//bldg:Building")
	require.Len(t, bld, 1)
	assert.Equal(t, "bldg-001", bld[0].SelectAttrValue("gml:id", ""))
	assert.Equal(t, "Gabled", bld[0].SelectElement("bldg:roofType").Text())
	assert.Equal(t, "5", bld[0].SelectElement("bldg:measuredHeight").Text())
	assert.Equal(t, "2", bld[0].SelectElement("bldg:storeysAboveGround").Text())
}

func TestFootprintAndRoofEdge(t *testing.T) {
	d := parse(t, render(t, "0.0", Options{}))
	assert.Len(t, d.FindElements("//bldg:lod0FootPrint"), 1)
	assert.Empty(t, d.FindElements("//bldg:lod0RoofEdge"))

	d = parse(t, render(t, "0.2", Options{}))
	assert.Empty(t, d.FindElements("//bldg:lod0FootPrint"))
	assert.Len(t, d.FindElements("//bldg:lod0RoofEdge"), 1)
}

func TestBlockSolid(t *testing.T) {
	d := parse(t, render(t, "1.0", Options{}))
	members := d.FindElements("//bldg:lod1Solid//gml:surfaceMember")
	assert.Len(t, members, 6) // box
	assert.Empty(t, d.FindElements("//bldg:boundedBy"))
}

func TestBoundariesMergedPerRole(t *testing.T) {
	d := parse(t, render(t, "2.0", Options{}))

	bounded := d.FindElements("//bldg:boundedBy")
	require.Len(t, bounded, 3) // one per role, merged

	walls := d.FindElements("//bldg:WallSurface//gml:surfaceMember")
	assert.Len(t, walls, 4)
	roofs := d.FindElements("//bldg:RoofSurface//gml:surfaceMember")
	assert.Len(t, roofs, 2)
	grounds := d.FindElements("//bldg:GroundSurface//gml:surfaceMember")
	assert.Len(t, grounds, 1)

	// no aggregate solid unless asked for
	assert.Empty(t, d.FindElements("//bldg:lod2Solid"))
}

func TestBuildingPart(t *testing.T) {
	d := parse(t, render(t, "2.1", Options{}))

	part := d.FindElements("//bldg:BuildingPart")
	require.Len(t, part, 1)
	assert.Equal(t, "bldg-001-part-0", part[0].SelectAttrValue("gml:id", ""))
	assert.Equal(t, "Garage", part[0].SelectElement("bldg:function").Text())

	walls := part[0].FindElements(".//bldg:WallSurface//gml:surfaceMember")
	assert.Len(t, walls, 3)
	roofs := part[0].FindElements(".//bldg:RoofSurface//gml:surfaceMember")
	assert.Len(t, roofs, 1)
}

func TestAggregateSolidToggle(t *testing.T) {
	d := parse(t, render(t, "2.1", Options{Solids: true}))
	solids := d.FindElements("//bldg:lod2Solid//gml:CompositeSurface")
	require.Len(t, solids, 1)
}

func TestInteriorGoesToLOD4(t *testing.T) {
	d := parse(t, render(t, "3.2", Options{}))
	ms := d.FindElements("//bldg:lod4MultiSurface//gml:surfaceMember")
	assert.NotEmpty(t, ms)
}

func TestPosListIsClosed(t *testing.T) {
	d := parse(t, render(t, "1.0", Options{}))
	for _, pos := range d.FindElements("//gml:posList") {
		fields := strings.Fields(pos.Text())
		require.Zero(t, len(fields)%3)
		n := len(fields)
		assert.Equal(t, fields[0:3], fields[n-3:n])
		assert.Equal(t, "3", pos.SelectAttrValue("srsDimension", ""))
	}
}

func TestDeterministicWithoutMinting(t *testing.T) {
	a := render(t, "2.3", Options{Solids: true})
	b := render(t, "2.3", Options{Solids: true})
	assert.Equal(t, a, b)
}

func TestDeterministicWithPartsOnTwoEdges(t *testing.T) {
	renderOnce := func(point string) string {
		b := testBuilding()
		b.Parts = append(b.Parts, params.Part{
			ParentID: b.ID,
			Kind:     params.PartAlcove,
			Edge:     2,
			Offset:   1.5,
			Length:   2,
			Width:    1,
			Height:   1.2,
			RoofType: params.RoofFlat,
		})
		pt, ok := lod.ByName(point)
		require.True(t, ok)
		m, err := solid.Assemble(b, pt.Spec)
		require.NoError(t, err)

		var buf bytes.Buffer
		w, err := NewWriter(&buf, pt, Options{Solids: true})
		require.NoError(t, err)
		require.NoError(t, w.WriteBuilding(b, m))
		require.NoError(t, w.Close())
		return buf.String()
	}

	for _, point := range []string{"1.3", "3.0"} {
		first := renderOnce(point)
		for run := 0; run < 20; run++ {
			require.Equal(t, first, renderOnce(point), "point %s run %d", point, run)
		}
	}
}

func TestMintedIDs(t *testing.T) {
	d := parse(t, render(t, "2.0", Options{MintIDs: true}))
	polys := d.FindElements("//gml:Polygon")
	require.NotEmpty(t, polys)
	seen := map[string]bool{}
	for _, p := range polys {
		id := p.SelectAttrValue("gml:id", "")
		assert.True(t, strings.HasPrefix(id, "uuid-"))
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestSinkWritesAllPoints(t *testing.T) {
	dir := t.TempDir()
	sink, err := OpenSink(dir, nil, Options{})
	require.NoError(t, err)

	b := testBuilding()
	models, err := lod.Build(b)
	require.NoError(t, err)
	require.NoError(t, sink.Write(b, models))
	require.NoError(t, sink.Close())
	assert.Equal(t, 1, sink.Written())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 16)

	for _, pt := range lod.Points {
		raw, err := os.ReadFile(filepath.Join(dir, pt.FileTag()+".gml"))
		require.NoError(t, err)
		d := etree.NewDocument()
		require.NoError(t, d.ReadFromBytes(raw))
		assert.Len(t, d.FindElements("//core:cityObjectMember"), 1, pt.Name)
	}
}

func TestStreets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streets.gml")
	sn := &params.StreetNetwork{
		Outline: params.Rect2{Max: geo.Point2{X: 60, Y: 60}},
		Holes: []params.Rect2{
			{Min: geo.Point2{X: 10, Y: 10}, Max: geo.Point2{X: 20, Y: 20}},
			{Min: geo.Point2{X: 30, Y: 30}, Max: geo.Point2{X: 40, Y: 40}},
		},
	}
	require.NoError(t, WriteStreets(path, sn))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	d := etree.NewDocument()
	require.NoError(t, d.ReadFromBytes(raw))
	require.Len(t, d.FindElements("//tran:Road"), 1)
	assert.Len(t, d.FindElements("//gml:interior"), 2)
}

func TestParks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vegetation.gml")
	parks := []params.Park{
		{Bounds: params.Rect2{Max: geo.Point2{X: 20, Y: 20}}, Height: 1.5},
		{Bounds: params.Rect2{Min: geo.Point2{X: 40, Y: 0}, Max: geo.Point2{X: 60, Y: 20}}, Height: 2},
	}
	require.NoError(t, WriteParks(path, parks))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	d := etree.NewDocument()
	require.NoError(t, d.ReadFromBytes(raw))
	covers := d.FindElements("//veg:PlantCover")
	require.Len(t, covers, 2)
	assert.Equal(t, "1.5", covers[0].SelectElement("veg:averageHeight").Text())
}
