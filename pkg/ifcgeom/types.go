// Package ifcgeom defines the already-triangulated elements an upstream
// geometry library hands to the importer, and reads them from element
// streams.
package ifcgeom

import (
	"fmt"

	"github.com/Faultbox/ifcscene/pkg/math"
)

// Color is an RGB colour with components in [0, 1].
type Color struct {
	R, G, B float64
}

// RGB8 returns the colour as 8-bit channels.
func (c Color) RGB8() [3]uint8 {
	return [3]uint8{channel(c.R), channel(c.G), channel(c.B)}
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Style is a named surface appearance. Styles are values identified by
// Name; two styles with the same name are the same style to the importer
// even when their attributes differ.
type Style struct {
	Name         string
	Diffuse      *Color
	Specular     *Color
	Specularity  *float64
	Transparency *float64
}

// MaterialIndex selects the material of one triangle: either a position in
// the element's style list or the element's default material.
// The zero value is the default material.
type MaterialIndex struct {
	index int
	set   bool
}

// DefaultMaterial selects the element's default material.
var DefaultMaterial = MaterialIndex{}

// StyleIndex selects the style at position i of the element's style list.
func StyleIndex(i int) MaterialIndex {
	return MaterialIndex{index: i, set: true}
}

// Style returns the style position and true, or false for the default.
func (m MaterialIndex) Style() (int, bool) {
	return m.index, m.set
}

// IsDefault reports whether the index selects the default material.
func (m MaterialIndex) IsDefault() bool {
	return !m.set
}

// InRange reports whether the index is the default or a valid position in
// a style list of length n.
func (m MaterialIndex) InRange(n int) bool {
	return !m.set || (m.index >= 0 && m.index < n)
}

// String returns "default" or the style position.
func (m MaterialIndex) String() string {
	if !m.set {
		return "default"
	}
	return fmt.Sprintf("%d", m.index)
}

// Wire returns the stream representation, with -1 for the default.
func (m MaterialIndex) Wire() int {
	if !m.set {
		return -1
	}
	return m.index
}

// FromWire converts a stream index, where -1 means the default material.
func FromWire(v int) MaterialIndex {
	if v == -1 {
		return DefaultMaterial
	}
	return StyleIndex(v)
}

// Geometry holds the flat buffers of one triangulated element.
type Geometry struct {
	// Vertices are x, y, z coordinate triples.
	Vertices []float64
	// Faces are vertex index triples, 0-based into Vertices.
	Faces []int
	// Edges are vertex index pairs of the pre-triangulation shell outline.
	Edges []int
	// Styles used by the element, in first-seen order.
	Styles []Style
	// MaterialIDs holds one index per face.
	MaterialIDs []MaterialIndex
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Vertices) / 3
}

// FaceCount returns the number of triangles.
func (g *Geometry) FaceCount() int {
	return len(g.Faces) / 3
}

// Face returns the vertex indices of triangle i.
func (g *Geometry) Face(i int) [3]int {
	return [3]int{g.Faces[3*i], g.Faces[3*i+1], g.Faces[3*i+2]}
}

// Element is one triangulated product with its identity and placement.
type Element struct {
	ID        int
	Type      string
	GUID      string
	Name      string
	Transform math.Mat4
	Geometry  Geometry
}
