// Package citygml serializes assembled building models into CityGML
// 2.0 documents, one file per LOD point. Writing is streaming: each
// building is encoded and flushed before the next one is assembled, so
// peak memory stays proportional to a single building and a partially
// written file is still well-formed up to the last flushed member.
package citygml

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/cityforge/cityforge/pkg/geo"
	"github.com/cityforge/cityforge/pkg/lod"
	"github.com/cityforge/cityforge/pkg/params"
	"github.com/cityforge/cityforge/pkg/solid"
)

// Options control the optional output features.
type Options struct {
	// Solids additionally emits an aggregate gml:Solid per building
	// at LOD 2 and 3 (LOD 1 always carries a solid, it has no
	// thematic surfaces).
	Solids bool

	// MintIDs stamps a fresh gml:id on every polygon. Off by default
	// so that identical runs produce byte-identical files.
	MintIDs bool
}

const header = `<?xml version="1.0" encoding="UTF-8"?>
<core:CityModel xmlns:core="http://www.opengis.net/citygml/2.0" xmlns:bldg="http://www.opengis.net/citygml/building/2.0" xmlns:tran="http://www.opengis.net/citygml/transportation/2.0" xmlns:veg="http://www.opengis.net/citygml/vegetation/2.0" xmlns:gml="http://www.opengis.net/gml" xmlns:xlink="http://www.w3.org/1999/xlink" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://www.opengis.net/citygml/building/2.0 http://schemas.opengis.net/citygml/building/2.0/building.xsd">
`

const footer = `</core:CityModel>
`

// Writer emits one CityGML document for a single LOD point.
type Writer struct {
	w     io.Writer
	point lod.Point
	opts  Options
	open  bool
}

// NewWriter writes the document header and returns a writer ready to
// accept buildings.
func NewWriter(w io.Writer, point lod.Point, opts Options) (*Writer, error) {
	if _, err := io.WriteString(w, header); err != nil {
		return nil, err
	}
	return &Writer{w: w, point: point, opts: opts, open: true}, nil
}

// WriteBuilding appends one cityObjectMember for the building.
func (w *Writer) WriteBuilding(b *params.Building, m *solid.Model) error {
	member := etree.NewElement("core:cityObjectMember")
	w.buildingElem(member, b, m)

	doc := etree.NewDocument()
	doc.SetRoot(member)
	doc.Indent(2)
	if _, err := doc.WriteTo(w.w); err != nil {
		return err
	}
	return nil
}

// Close writes the document footer. The underlying file, if any, is
// the caller's to close.
func (w *Writer) Close() error {
	if !w.open {
		return nil
	}
	w.open = false
	_, err := io.WriteString(w.w, footer)
	return err
}

func (w *Writer) buildingElem(member *etree.Element, b *params.Building, m *solid.Model) {
	bld := member.CreateElement("bldg:Building")
	bld.CreateAttr("gml:id", b.ID)
	bld.CreateElement("bldg:roofType").SetText(string(b.RoofType))
	h := bld.CreateElement("bldg:measuredHeight")
	h.CreateAttr("uom", "m")
	h.SetText(ftoa(b.RidgeHeight))
	bld.CreateElement("bldg:storeysAboveGround").SetText(strconv.Itoa(b.Storeys))

	switch w.point.Major() {
	case 0:
		w.planarElem(bld, m)
	case 1:
		w.solidElem(bld, "bldg:lod1Solid", m.Exterior)
	default:
		w.thematicElems(bld, b, m)
	}
}

// planarElem writes the flattened representation: a footprint for the
// ground reference, a roof edge otherwise.
func (w *Writer) planarElem(bld *etree.Element, m *solid.Model) {
	name := "bldg:lod0FootPrint"
	if m.Spec.Reference != solid.RefGround {
		name = "bldg:lod0RoofEdge"
	}
	ms := bld.CreateElement(name).CreateElement("gml:MultiSurface")
	for _, s := range m.Exterior.Surfaces {
		w.polygonElem(ms.CreateElement("gml:surfaceMember"), s)
	}
}

// thematicElems writes the semantic boundary surfaces for LOD 2 and 3:
// one merged MultiSurface per boundary, the part tree, the optional
// aggregate solid and the interior.
func (w *Writer) thematicElems(bld *etree.Element, b *params.Building, m *solid.Model) {
	lodN := fmt.Sprintf("lod%d", w.point.Major())

	w.boundaryElems(bld, lodN, m.Exterior.Surfaces, "")

	for _, idx := range partOwners(m) {
		pe := bld.CreateElement("bldg:consistsOfBuildingPart").CreateElement("bldg:BuildingPart")
		pe.CreateAttr("gml:id", fmt.Sprintf("%s-part-%s", b.ID, idx))
		if i, err := strconv.Atoi(idx); err == nil && i < len(b.Parts) {
			pe.CreateElement("bldg:function").SetText(string(b.Parts[i].Kind))
		}
		w.boundaryElems(pe, lodN, m.Exterior.Surfaces, idx)
	}

	if w.opts.Solids {
		w.solidElem(bld, "bldg:"+lodN+"Solid", m.Exterior)
	}

	if len(m.Interior) > 0 || len(m.Floors) > 0 {
		ms := bld.CreateElement("bldg:lod4MultiSurface").CreateElement("gml:MultiSurface")
		for _, sh := range m.Interior {
			for _, s := range sh.Surfaces {
				w.polygonElem(ms.CreateElement("gml:surfaceMember"), s)
			}
		}
		for _, s := range m.Floors {
			w.polygonElem(ms.CreateElement("gml:surfaceMember"), s)
		}
	}
}

// boundaryElems groups the owner's surfaces by role, one boundedBy
// element with a single merged MultiSurface per role present.
func (w *Writer) boundaryElems(parent *etree.Element, lodN string, surfaces []solid.Surface, owner string) {
	for _, role := range []solid.Role{solid.RoleGround, solid.RoleWall, solid.RoleRoof} {
		var members []solid.Surface
		for _, s := range surfaces {
			if s.Owner == owner && s.Role == role {
				members = append(members, s)
			}
		}
		if len(members) == 0 {
			continue
		}
		be := parent.CreateElement("bldg:boundedBy").CreateElement("bldg:" + string(role))
		ms := be.CreateElement("bldg:" + lodN + "MultiSurface").CreateElement("gml:MultiSurface")
		for _, s := range members {
			w.polygonElem(ms.CreateElement("gml:surfaceMember"), s)
		}
	}
}

func (w *Writer) solidElem(parent *etree.Element, name string, sh solid.Shell) {
	cs := parent.CreateElement(name).
		CreateElement("gml:Solid").
		CreateElement("gml:exterior").
		CreateElement("gml:CompositeSurface")
	for _, s := range sh.Surfaces {
		w.polygonElem(cs.CreateElement("gml:surfaceMember"), s)
	}
}

func (w *Writer) polygonElem(parent *etree.Element, s solid.Surface) {
	poly := parent.CreateElement("gml:Polygon")
	if w.opts.MintIDs {
		poly.CreateAttr("gml:id", "uuid-"+uuid.NewString())
	}
	ring := poly.CreateElement("gml:exterior").CreateElement("gml:LinearRing")
	pos := ring.CreateElement("gml:posList")
	pos.CreateAttr("srsDimension", "3")
	pos.SetText(posList(s.Ring))
}

// posList renders the ring closed: the first point is repeated last.
func posList(ring []geo.Point3) string {
	var sb strings.Builder
	for i := 0; i <= len(ring); i++ {
		p := ring[i%len(ring)]
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(ftoa(p.X))
		sb.WriteByte(' ')
		sb.WriteString(ftoa(p.Y))
		sb.WriteByte(' ')
		sb.WriteString(ftoa(p.Z))
	}
	return sb.String()
}

// partOwners returns the distinct part owners present in the model, in
// part order.
func partOwners(m *solid.Model) []string {
	seen := map[string]bool{}
	var owners []string
	for _, s := range m.Exterior.Surfaces {
		if s.Owner != "" && !seen[s.Owner] {
			seen[s.Owner] = true
			owners = append(owners, s.Owner)
		}
	}
	sort.Slice(owners, func(i, j int) bool {
		a, _ := strconv.Atoi(owners[i])
		b, _ := strconv.Atoi(owners[j])
		return a < b
	})
	return owners
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
