package params

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/cityforge/cityforge/pkg/geo"
)

// The parameter file is the sole coupling point between generation and
// geometry construction. Its layout must stay stable: Read(Write(c))
// returns c field for field, including part order.

// Write serializes the city to the parameter XML document.
func Write(w io.Writer, c *City) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	root := doc.CreateElement("specifications")

	for i := range c.Buildings {
		writeBuilding(root, &c.Buildings[i])
	}
	if c.Streets != nil {
		writeStreets(root, c.Streets)
	}
	if len(c.Parks) > 0 {
		parks := root.CreateElement("parks")
		for _, p := range c.Parks {
			park := parks.CreateElement("park")
			park.CreateElement("outline").SetText(rectText(p.Bounds))
			park.CreateElement("height").SetText(ftoa(p.Height))
		}
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("writing parameter XML: %w", err)
	}
	return nil
}

// WriteFile serializes the city to the given path.
func WriteFile(path string, c *City) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating parameter file: %w", err)
	}
	defer f.Close()
	if err := Write(f, c); err != nil {
		return err
	}
	return f.Close()
}

func writeBuilding(root *etree.Element, b *Building) {
	e := root.CreateElement("building")
	e.CreateAttr("ID", b.ID)

	e.CreateElement("origin").SetText(ftoa(b.Origin.X) + " " + ftoa(b.Origin.Y))
	e.CreateElement("rotation").SetText(ftoa(b.Rotation))

	fp := e.CreateElement("footprint")
	for _, v := range b.Footprint.Vertices {
		fp.CreateElement("pos").SetText(ftoa(v.X) + " " + ftoa(v.Y))
	}

	e.CreateElement("eaveHeight").SetText(ftoa(b.EaveHeight))
	e.CreateElement("ridgeHeight").SetText(ftoa(b.RidgeHeight))
	e.CreateElement("meanRoofHeight").SetText(ftoa(b.MeanRoofHeight))
	e.CreateElement("storeys").SetText(strconv.Itoa(b.Storeys))
	e.CreateElement("storeyHeight").SetText(ftoa(b.StoreyHeight))
	e.CreateElement("wallThickness").SetText(ftoa(b.WallThickness))
	e.CreateElement("joist").SetText(ftoa(b.Joist))

	roof := e.CreateElement("roof")
	roof.CreateElement("roofType").SetText(string(b.RoofType))
	if b.RoofType == RoofHipped || b.RoofType == RoofPyramidal {
		roof.CreateElement("setback").SetText(ftoa(b.RidgeSetback))
	}
	oh := roof.CreateElement("overhangs")
	oh.CreateElement("xlength").SetText(ftoa(b.OverhangX))
	oh.CreateElement("ylength").SetText(ftoa(b.OverhangY))

	for _, p := range b.Parts {
		pe := e.CreateElement("buildingPart")
		pe.CreateAttr("kind", string(p.Kind))
		pe.CreateAttr("edge", strconv.Itoa(p.Edge))
		pe.CreateElement("partOrigin").SetText(ftoa(p.Offset))
		pe.CreateElement("length").SetText(ftoa(p.Length))
		pe.CreateElement("width").SetText(ftoa(p.Width))
		pe.CreateElement("height").SetText(ftoa(p.Height))
		pe.CreateElement("roofType").SetText(string(p.RoofType))
	}
}

func writeStreets(root *etree.Element, s *StreetNetwork) {
	e := root.CreateElement("streets")
	e.CreateElement("outline").SetText(rectText(s.Outline))
	holes := e.CreateElement("holes")
	for _, h := range s.Holes {
		holes.CreateElement("hole").SetText(rectText(h))
	}
}

// Read parses a parameter XML document. Malformed content is reported
// as an *InputError.
func Read(r io.Reader) (*City, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, &InputError{Err: fmt.Errorf("parsing XML: %w", err)}
	}
	root := doc.SelectElement("specifications")
	if root == nil {
		return nil, &InputError{Err: fmt.Errorf("missing <specifications> root element")}
	}

	city := &City{}
	for _, be := range root.SelectElements("building") {
		b, err := readBuilding(be)
		if err != nil {
			return nil, &InputError{Err: err}
		}
		city.Buildings = append(city.Buildings, *b)
	}

	if se := root.SelectElement("streets"); se != nil {
		s, err := readStreets(se)
		if err != nil {
			return nil, &InputError{Err: err}
		}
		city.Streets = s
	}
	if pe := root.SelectElement("parks"); pe != nil {
		for _, park := range pe.SelectElements("park") {
			bounds, err := rectFrom(text(park, "outline"))
			if err != nil {
				return nil, &InputError{Err: fmt.Errorf("park outline: %w", err)}
			}
			h, err := floatChild(park, "height")
			if err != nil {
				return nil, &InputError{Err: err}
			}
			city.Parks = append(city.Parks, Park{Bounds: bounds, Height: h})
		}
	}
	return city, nil
}

// ReadFile parses the parameter file at the given path.
func ReadFile(path string) (*City, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	defer f.Close()
	c, err := Read(f)
	if err != nil {
		var ie *InputError
		if errors.As(err, &ie) {
			ie.Path = path
			return nil, ie
		}
		return nil, err
	}
	return c, nil
}

func readBuilding(e *etree.Element) (*Building, error) {
	b := &Building{ID: e.SelectAttrValue("ID", "")}
	if b.ID == "" {
		return nil, fmt.Errorf("building element without ID attribute")
	}
	wrap := func(err error) error {
		return fmt.Errorf("building %s: %w", b.ID, err)
	}

	origin, err := pointFrom(text(e, "origin"))
	if err != nil {
		return nil, wrap(fmt.Errorf("origin: %w", err))
	}
	b.Origin = origin

	if b.Rotation, err = floatChild(e, "rotation"); err != nil {
		return nil, wrap(err)
	}

	fpe := e.SelectElement("footprint")
	if fpe == nil {
		return nil, wrap(fmt.Errorf("missing footprint"))
	}
	for _, pos := range fpe.SelectElements("pos") {
		pt, err := pointFrom(pos.Text())
		if err != nil {
			return nil, wrap(fmt.Errorf("footprint pos: %w", err))
		}
		b.Footprint.Vertices = append(b.Footprint.Vertices, pt)
	}

	for name, dst := range map[string]*float64{
		"eaveHeight":     &b.EaveHeight,
		"ridgeHeight":    &b.RidgeHeight,
		"meanRoofHeight": &b.MeanRoofHeight,
		"storeyHeight":   &b.StoreyHeight,
		"wallThickness":  &b.WallThickness,
		"joist":          &b.Joist,
	} {
		if *dst, err = floatChild(e, name); err != nil {
			return nil, wrap(err)
		}
	}
	if b.Storeys, err = intChild(e, "storeys"); err != nil {
		return nil, wrap(err)
	}

	roof := e.SelectElement("roof")
	if roof == nil {
		return nil, wrap(fmt.Errorf("missing roof"))
	}
	if b.RoofType, err = ParseRoofType(text(roof, "roofType")); err != nil {
		return nil, wrap(err)
	}
	if roof.SelectElement("setback") != nil {
		if b.RidgeSetback, err = floatChild(roof, "setback"); err != nil {
			return nil, wrap(err)
		}
	}
	if oh := roof.SelectElement("overhangs"); oh != nil {
		if b.OverhangX, err = floatChild(oh, "xlength"); err != nil {
			return nil, wrap(err)
		}
		if b.OverhangY, err = floatChild(oh, "ylength"); err != nil {
			return nil, wrap(err)
		}
	}

	for _, pe := range e.SelectElements("buildingPart") {
		p := Part{
			ParentID: b.ID,
			Kind:     PartKind(pe.SelectAttrValue("kind", string(PartGarage))),
		}
		if p.Edge, err = strconv.Atoi(pe.SelectAttrValue("edge", "0")); err != nil {
			return nil, wrap(fmt.Errorf("part edge: %w", err))
		}
		if p.Offset, err = floatChild(pe, "partOrigin"); err != nil {
			return nil, wrap(err)
		}
		if p.Length, err = floatChild(pe, "length"); err != nil {
			return nil, wrap(err)
		}
		if p.Width, err = floatChild(pe, "width"); err != nil {
			return nil, wrap(err)
		}
		if p.Height, err = floatChild(pe, "height"); err != nil {
			return nil, wrap(err)
		}
		if p.RoofType, err = ParseRoofType(text(pe, "roofType")); err != nil {
			return nil, wrap(err)
		}
		b.Parts = append(b.Parts, p)
	}
	return b, nil
}

func readStreets(e *etree.Element) (*StreetNetwork, error) {
	outline, err := rectFrom(text(e, "outline"))
	if err != nil {
		return nil, fmt.Errorf("street outline: %w", err)
	}
	s := &StreetNetwork{Outline: outline}
	if he := e.SelectElement("holes"); he != nil {
		for _, hole := range he.SelectElements("hole") {
			r, err := rectFrom(hole.Text())
			if err != nil {
				return nil, fmt.Errorf("street hole: %w", err)
			}
			s.Holes = append(s.Holes, r)
		}
	}
	return s, nil
}

// ftoa formats a float with the shortest representation that parses back
// to the same value, which is what makes the round-trip law hold.
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func text(e *etree.Element, child string) string {
	c := e.SelectElement(child)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}

func floatChild(e *etree.Element, child string) (float64, error) {
	s := text(e, child)
	if s == "" {
		return 0, fmt.Errorf("missing <%s>", child)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("<%s>: %w", child, err)
	}
	return v, nil
}

func intChild(e *etree.Element, child string) (int, error) {
	s := text(e, child)
	if s == "" {
		return 0, fmt.Errorf("missing <%s>", child)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("<%s>: %w", child, err)
	}
	return v, nil
}

func pointFrom(s string) (geo.Point2, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return geo.Point2{}, fmt.Errorf("expected two coordinates, got %q", s)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return geo.Point2{}, err
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return geo.Point2{}, err
	}
	return geo.Pt(x, y), nil
}

func rectText(r Rect2) string {
	return ftoa(r.Min.X) + " " + ftoa(r.Min.Y) + " " + ftoa(r.Max.X) + " " + ftoa(r.Max.Y)
}

func rectFrom(s string) (Rect2, error) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return Rect2{}, fmt.Errorf("expected four coordinates, got %q", s)
	}
	vals := make([]float64, 4)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Rect2{}, err
		}
		vals[i] = v
	}
	return Rect2{Min: geo.Pt(vals[0], vals[1]), Max: geo.Pt(vals[2], vals[3])}, nil
}
