package ifcgeom

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/ifcscene/pkg/encoding"
	"github.com/Faultbox/ifcscene/pkg/math"
)

// StreamVersion is the element stream version written by Marshal.
const StreamVersion = 1

// Element stream errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported element stream version")
	ErrMalformedBuffer    = errors.New("malformed geometry buffer")
	ErrIndexOutOfRange    = errors.New("vertex index out of range")
	ErrMaterialCount      = errors.New("material id count does not match face count")
	ErrMalformedTransform = errors.New("transform must have 16 values")
	ErrMalformedColor     = errors.New("colour must have 3 components")
)

// Stream is a decoded element stream.
type Stream struct {
	Version  int
	Elements []Element
}

type streamDoc struct {
	Version  int          `yaml:"version"`
	Elements []elementDoc `yaml:"elements"`
}

type elementDoc struct {
	ID          int        `yaml:"id"`
	Type        string     `yaml:"type"`
	GUID        string     `yaml:"guid,omitempty"`
	Name        string     `yaml:"name,omitempty"`
	Transform   []float64  `yaml:"transform,flow,omitempty"`
	Vertices    []float64  `yaml:"vertices,flow"`
	Faces       []int      `yaml:"faces,flow"`
	Edges       []int      `yaml:"edges,flow,omitempty"`
	Styles      []styleDoc `yaml:"styles,omitempty"`
	MaterialIDs []int      `yaml:"material_ids,flow,omitempty"`
}

type styleDoc struct {
	Name         string    `yaml:"name"`
	Diffuse      []float64 `yaml:"diffuse,flow,omitempty"`
	Specular     []float64 `yaml:"specular,flow,omitempty"`
	Specularity  *float64  `yaml:"specularity,omitempty"`
	Transparency *float64  `yaml:"transparency,omitempty"`
}

// ParseStream parses an element stream from raw bytes. charset names the
// encoding the bytes were written in; empty means UTF-8.
func ParseStream(data []byte, charset string) (*Stream, error) {
	dec, err := encoding.Lookup(charset)
	if err != nil {
		return nil, err
	}
	text := dec.Decode(string(data))

	var doc streamDoc
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("decoding element stream: %w", err)
	}

	if doc.Version != StreamVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	s := &Stream{
		Version:  doc.Version,
		Elements: make([]Element, 0, len(doc.Elements)),
	}

	var errs error
	for i := range doc.Elements {
		el, err := doc.Elements[i].element()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("element %d (#%d): %w", i, doc.Elements[i].ID, err))
			continue
		}
		s.Elements = append(s.Elements, el)
	}
	if errs != nil {
		return nil, errs
	}

	return s, nil
}

// ParseStreamFile parses an element stream from disk.
func ParseStreamFile(path, charset string) (*Stream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading element stream: %w", err)
	}
	return ParseStream(data, charset)
}

// element validates the document entry and converts it.
func (d *elementDoc) element() (Element, error) {
	var errs error

	if len(d.Vertices)%3 != 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: %d vertex coordinates", ErrMalformedBuffer, len(d.Vertices)))
	}
	if len(d.Faces)%3 != 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: %d face indices", ErrMalformedBuffer, len(d.Faces)))
	}
	if len(d.Edges)%2 != 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: %d edge indices", ErrMalformedBuffer, len(d.Edges)))
	}

	numVerts := len(d.Vertices) / 3
	for i, v := range d.Faces {
		if v < 0 || v >= numVerts {
			errs = multierr.Append(errs, fmt.Errorf("%w: face index %d = %d", ErrIndexOutOfRange, i, v))
			break
		}
	}
	for i, v := range d.Edges {
		if v < 0 || v >= numVerts {
			errs = multierr.Append(errs, fmt.Errorf("%w: edge index %d = %d", ErrIndexOutOfRange, i, v))
			break
		}
	}

	numFaces := len(d.Faces) / 3
	if len(d.MaterialIDs) != 0 && len(d.MaterialIDs) != numFaces {
		errs = multierr.Append(errs, fmt.Errorf("%w: %d ids, %d faces", ErrMaterialCount, len(d.MaterialIDs), numFaces))
	}

	transform := math.Identity()
	switch len(d.Transform) {
	case 0:
	case 16:
		transform = math.FromRowMajor([16]float64(d.Transform))
	default:
		errs = multierr.Append(errs, fmt.Errorf("%w: got %d", ErrMalformedTransform, len(d.Transform)))
	}

	styles := make([]Style, 0, len(d.Styles))
	for _, sd := range d.Styles {
		st, err := sd.style()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("style %q: %w", sd.Name, err))
			continue
		}
		styles = append(styles, st)
	}

	if errs != nil {
		return Element{}, errs
	}

	// A missing material id list means every face uses the default.
	ids := make([]MaterialIndex, numFaces)
	for i := range d.MaterialIDs {
		ids[i] = FromWire(d.MaterialIDs[i])
	}

	return Element{
		ID:        d.ID,
		Type:      d.Type,
		GUID:      d.GUID,
		Name:      d.Name,
		Transform: transform,
		Geometry: Geometry{
			Vertices:    d.Vertices,
			Faces:       d.Faces,
			Edges:       d.Edges,
			Styles:      styles,
			MaterialIDs: ids,
		},
	}, nil
}

func (d *styleDoc) style() (Style, error) {
	st := Style{
		Name:         d.Name,
		Specularity:  d.Specularity,
		Transparency: d.Transparency,
	}
	var err error
	if st.Diffuse, err = colorOf(d.Diffuse); err != nil {
		return Style{}, fmt.Errorf("diffuse: %w", err)
	}
	if st.Specular, err = colorOf(d.Specular); err != nil {
		return Style{}, fmt.Errorf("specular: %w", err)
	}
	return st, nil
}

func colorOf(v []float64) (*Color, error) {
	switch len(v) {
	case 0:
		return nil, nil
	case 3:
		return &Color{R: v[0], G: v[1], B: v[2]}, nil
	default:
		return nil, fmt.Errorf("%w: got %d", ErrMalformedColor, len(v))
	}
}

// Marshal encodes the stream as YAML.
func (s *Stream) Marshal() ([]byte, error) {
	doc := streamDoc{
		Version:  StreamVersion,
		Elements: make([]elementDoc, len(s.Elements)),
	}
	for i := range s.Elements {
		doc.Elements[i] = docOf(&s.Elements[i])
	}
	return yaml.Marshal(&doc)
}

// WriteFile encodes the stream and writes it to path.
func (s *Stream) WriteFile(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func docOf(el *Element) elementDoc {
	d := elementDoc{
		ID:       el.ID,
		Type:     el.Type,
		GUID:     el.GUID,
		Name:     el.Name,
		Vertices: el.Geometry.Vertices,
		Faces:    el.Geometry.Faces,
		Edges:    el.Geometry.Edges,
	}

	if el.Transform != math.Identity() {
		d.Transform = make([]float64, 16)
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				d.Transform[row*4+col] = float64(el.Transform.At(row, col))
			}
		}
	}

	for _, st := range el.Geometry.Styles {
		sd := styleDoc{
			Name:         st.Name,
			Specularity:  st.Specularity,
			Transparency: st.Transparency,
		}
		if st.Diffuse != nil {
			sd.Diffuse = []float64{st.Diffuse.R, st.Diffuse.G, st.Diffuse.B}
		}
		if st.Specular != nil {
			sd.Specular = []float64{st.Specular.R, st.Specular.G, st.Specular.B}
		}
		d.Styles = append(d.Styles, sd)
	}

	if len(el.Geometry.MaterialIDs) > 0 {
		d.MaterialIDs = make([]int, len(el.Geometry.MaterialIDs))
		for i, id := range el.Geometry.MaterialIDs {
			d.MaterialIDs[i] = id.Wire()
		}
	}
	return d
}
