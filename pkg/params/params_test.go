package params

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityforge/cityforge/pkg/geo"
)

func sampleBuilding() Building {
	return Building{
		ID:             "b-0001",
		Origin:         geo.Pt(40, 60),
		Rotation:       12.5,
		Footprint:      geo.Rect(0, 0, 6.25, 9.5),
		EaveHeight:     6.4,
		RidgeHeight:    9.2,
		MeanRoofHeight: 7.8,
		RoofType:       RoofGabled,
		OverhangX:      0.3,
		OverhangY:      0.45,
		Storeys:        2,
		StoreyHeight:   3.2,
		WallThickness:  0.2,
		Joist:          0.25,
		Parts: []Part{
			{
				ParentID: "b-0001",
				Kind:     PartGarage,
				Edge:     1,
				Offset:   1.5,
				Length:   4.5,
				Width:    2.5,
				Height:   3.2,
				RoofType: RoofFlat,
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	city := &City{
		Buildings: []Building{sampleBuilding()},
		Streets: &StreetNetwork{
			Outline: Rect2{Min: geo.Pt(-6, -6), Max: geo.Pt(220, 220)},
			Holes: []Rect2{
				{Min: geo.Pt(-1, -1), Max: geo.Pt(54, 54)},
				{Min: geo.Pt(59, -1), Max: geo.Pt(114, 54)},
			},
		},
		Parks: []Park{
			{Bounds: Rect2{Min: geo.Pt(19, 19), Max: geo.Pt(33, 33)}, Height: 3},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, city))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, city, got, "Read(Write(c)) must reproduce c field for field")
}

func TestRoundTripHippedSetback(t *testing.T) {
	b := sampleBuilding()
	b.RoofType = RoofHipped
	b.RidgeSetback = 2.75
	b.Parts = nil
	city := &City{Buildings: []Building{b}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, city))
	got, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, got.Buildings, 1)
	assert.Equal(t, 2.75, got.Buildings[0].RidgeSetback)
}

func TestRoundTripPreservesPartOrder(t *testing.T) {
	b := sampleBuilding()
	second := b.Parts[0]
	second.Kind = PartAlcove
	second.Edge = 3
	second.Offset = 4.0
	second.Length = 1.6
	second.Width = 0.8
	b.Parts = append(b.Parts, second)
	city := &City{Buildings: []Building{b}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, city))
	got, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, got.Buildings[0].Parts, 2)
	assert.Equal(t, PartGarage, got.Buildings[0].Parts[0].Kind)
	assert.Equal(t, PartAlcove, got.Buildings[0].Parts[1].Kind)
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read(strings.NewReader("<specifications><building></building></specifications>"))
	var ie *InputError
	require.ErrorAs(t, err, &ie)

	_, err = Read(strings.NewReader("not xml at all <"))
	require.ErrorAs(t, err, &ie)

	_, err = Read(strings.NewReader("<wrongRoot/>"))
	require.ErrorAs(t, err, &ie)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile("/nonexistent/BuildingInformation.xml")
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Path, "BuildingInformation.xml")
}

func TestValidateInvariants(t *testing.T) {
	b := sampleBuilding()
	require.NoError(t, b.Validate())

	bad := sampleBuilding()
	bad.RidgeHeight = bad.EaveHeight - 1
	assert.Error(t, bad.Validate(), "ridge below eaves must fail")

	bad = sampleBuilding()
	bad.MeanRoofHeight = bad.RidgeHeight + 1
	assert.Error(t, bad.Validate(), "mean above ridge must fail")

	bad = sampleBuilding()
	bad.Footprint = bad.Footprint.Reverse()
	assert.Error(t, bad.Validate(), "clockwise footprint must fail")

	bad = sampleBuilding()
	bad.Footprint = geo.NewPolygon(geo.Pt(0, 0), geo.Pt(6, 9), geo.Pt(6, 0), geo.Pt(0, 9))
	assert.Error(t, bad.Validate(), "self-intersecting footprint must fail")

	bad = sampleBuilding()
	bad.Parts[0].Offset = 8.0 // beyond edge length
	assert.Error(t, bad.Validate(), "part beyond its edge must fail")

	bad = sampleBuilding()
	bad.Parts[0].ParentID = "someone-else"
	assert.Error(t, bad.Validate(), "part with foreign parent must fail")
}

func TestPlacedFootprintRotation(t *testing.T) {
	b := sampleBuilding()
	b.Rotation = 90
	placed := b.PlacedFootprint()
	assert.InDelta(t, b.Footprint.Area(), placed.Area(), 1e-9, "rotation preserves area")
	c := placed.Centroid()
	want := b.Footprint.Centroid().Add(b.Origin)
	assert.InDelta(t, want.X, c.X, 1e-9)
	assert.InDelta(t, want.Y, c.Y, 1e-9)
}
