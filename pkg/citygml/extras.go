package citygml

import (
	"bufio"
	"os"
	"strconv"

	"github.com/beevik/etree"

	"github.com/cityforge/cityforge/pkg/geo"
	"github.com/cityforge/cityforge/pkg/params"
)

// WriteStreets writes the street network as one transportation Road:
// the outline rectangle at ground level with a hole per city block.
func WriteStreets(path string, sn *params.StreetNetwork) error {
	road := etree.NewElement("core:cityObjectMember").CreateElement("tran:Road")
	road.CreateAttr("gml:id", "streets")
	ms := road.CreateElement("tran:lod1MultiSurface").CreateElement("gml:MultiSurface")
	poly := ms.CreateElement("gml:surfaceMember").CreateElement("gml:Polygon")

	ext := poly.CreateElement("gml:exterior").CreateElement("gml:LinearRing")
	ext.CreateElement("gml:posList").SetText(posList(rectRing(sn.Outline, 0, false)))
	for _, hole := range sn.Holes {
		in := poly.CreateElement("gml:interior").CreateElement("gml:LinearRing")
		in.CreateElement("gml:posList").SetText(posList(rectRing(hole, 0, true)))
	}
	return writeSingle(path, road.Parent())
}

// WriteParks writes each park as a vegetated plant cover block at its
// sampled height.
func WriteParks(path string, parks []params.Park) error {
	members := make([]*etree.Element, 0, len(parks))
	for i, park := range parks {
		member := etree.NewElement("core:cityObjectMember")
		pc := member.CreateElement("veg:PlantCover")
		pc.CreateAttr("gml:id", "park-"+strconv.Itoa(i+1))
		h := pc.CreateElement("veg:averageHeight")
		h.CreateAttr("uom", "m")
		h.SetText(ftoa(park.Height))
		ms := pc.CreateElement("veg:lod1MultiSurface").CreateElement("gml:MultiSurface")
		poly := ms.CreateElement("gml:surfaceMember").CreateElement("gml:Polygon")
		ring := poly.CreateElement("gml:exterior").CreateElement("gml:LinearRing")
		ring.CreateElement("gml:posList").SetText(posList(rectRing(park.Bounds, park.Height, false)))
		members = append(members, member)
	}
	return writeSingle(path, members...)
}

// writeSingle writes a small non-streamed document: header, the given
// members, footer.
func writeSingle(path string, members ...*etree.Element) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := bw.WriteString(header); err != nil {
		return err
	}
	for _, member := range members {
		doc := etree.NewDocument()
		doc.SetRoot(member)
		doc.Indent(2)
		if _, err := doc.WriteTo(bw); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString(footer); err != nil {
		return err
	}
	return bw.Flush()
}

// rectRing traces a rectangle at the given height, counterclockwise,
// or clockwise for interior rings.
func rectRing(r params.Rect2, z float64, clockwise bool) []geo.Point3 {
	ring := []geo.Point3{
		{X: r.Min.X, Y: r.Min.Y, Z: z},
		{X: r.Max.X, Y: r.Min.Y, Z: z},
		{X: r.Max.X, Y: r.Max.Y, Z: z},
		{X: r.Min.X, Y: r.Max.Y, Z: z},
	}
	if clockwise {
		ring[1], ring[3] = ring[3], ring[1]
	}
	return ring
}
