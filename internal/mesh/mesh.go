// Package mesh holds the triangle meshes handed to the scene host and the
// classification of their visible edges.
package mesh

import (
	"github.com/Faultbox/ifcscene/pkg/math"
)

// Face is one triangle of a mesh.
type Face struct {
	V [3]int
	// EdgeVisible flags the edges (V0,V1), (V1,V2), (V2,V0).
	EdgeVisible [3]bool
	// MaterialID selects a sub-material of the node's material.
	MaterialID int
}

// Edge is a unique undirected edge of the mesh with the faces sharing it.
type Edge struct {
	Key   EdgeKey
	Faces []int
	// Visible is true if any adjacent face shows the edge.
	Visible bool
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Union returns the smallest box containing both boxes.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Mesh is a triangle mesh in element-local coordinates.
// Vertices and Faces are the source data; everything else is derived by
// Rebuild and must be rebuilt after the source data changes.
type Mesh struct {
	Vertices []math.Vec3
	Faces    []Face

	FaceNormals   []math.Vec3
	VertexNormals []math.Vec3
	Edges         []Edge
	Bounds        Bounds
	// Degenerate counts faces with (near) zero area.
	Degenerate int
}

// New populates a mesh directly from flat coordinate and index buffers,
// in order and without transforming coordinates.
func New(vertices []float64, faces []int) *Mesh {
	m := &Mesh{
		Vertices: make([]math.Vec3, len(vertices)/3),
		Faces:    make([]Face, len(faces)/3),
	}
	for i := range m.Vertices {
		m.Vertices[i] = math.Vec3{
			X: float32(vertices[3*i]),
			Y: float32(vertices[3*i+1]),
			Z: float32(vertices[3*i+2]),
		}
	}
	for i := range m.Faces {
		m.Faces[i].V = [3]int{faces[3*i], faces[3*i+1], faces[3*i+2]}
	}
	return m
}

// SetEdgeVisibility assigns per-face edge flags, as returned by Classify.
func (m *Mesh) SetEdgeVisibility(flags [][3]bool) {
	for i := range m.Faces {
		if i < len(flags) {
			m.Faces[i].EdgeVisible = flags[i]
		}
	}
}

// SetMaterialIDs assigns per-face material ids.
func (m *Mesh) SetMaterialIDs(ids []int) {
	for i := range m.Faces {
		if i < len(ids) {
			m.Faces[i].MaterialID = ids[i]
		}
	}
}

// Rebuild recomputes normals, the edge list and bounds.
func (m *Mesh) Rebuild() {
	m.BuildNormals()
	m.BuildEdges()
	m.BuildBounds()
}

// BuildNormals computes unit face normals and area-weighted vertex normals.
func (m *Mesh) BuildNormals() {
	const epsilon float32 = 1e-12

	m.FaceNormals = make([]math.Vec3, len(m.Faces))
	m.VertexNormals = make([]math.Vec3, len(m.Vertices))
	m.Degenerate = 0

	for i, f := range m.Faces {
		v0 := m.Vertices[f.V[0]]
		v1 := m.Vertices[f.V[1]]
		v2 := m.Vertices[f.V[2]]

		// Cross product length is twice the area, so summing it unnormalized
		// weights vertex normals by area.
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		if n.Dot(n) < epsilon {
			m.Degenerate++
			continue
		}

		m.FaceNormals[i] = n.Normalize()
		for _, vi := range f.V {
			m.VertexNormals[vi] = m.VertexNormals[vi].Add(n)
		}
	}

	for i := range m.VertexNormals {
		m.VertexNormals[i] = m.VertexNormals[i].Normalize()
	}
}

// BuildEdges collects the unique undirected edges with their adjacent faces,
// in order of first appearance.
func (m *Mesh) BuildEdges() {
	index := make(map[EdgeKey]int, len(m.Faces)*3/2)
	m.Edges = m.Edges[:0]

	for fi, f := range m.Faces {
		for k := 0; k < 3; k++ {
			key := MakeEdgeKey(f.V[k], f.V[(k+1)%3])
			ei, ok := index[key]
			if !ok {
				ei = len(m.Edges)
				index[key] = ei
				m.Edges = append(m.Edges, Edge{Key: key})
			}
			m.Edges[ei].Faces = append(m.Edges[ei].Faces, fi)
			if f.EdgeVisible[k] {
				m.Edges[ei].Visible = true
			}
		}
	}
}

// BuildBounds computes the bounding box of the vertices.
func (m *Mesh) BuildBounds() {
	if len(m.Vertices) == 0 {
		m.Bounds = Bounds{}
		return
	}
	b := Bounds{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}
	m.Bounds = b
}

// VisibleEdges returns the edges shown by at least one face.
func (m *Mesh) VisibleEdges() []EdgeKey {
	var out []EdgeKey
	for _, e := range m.Edges {
		if e.Visible {
			out = append(out, e.Key)
		}
	}
	return out
}

// OpenEdges counts edges used by a single face. A closed shell has none.
func (m *Mesh) OpenEdges() int {
	n := 0
	for _, e := range m.Edges {
		if len(e.Faces) == 1 {
			n++
		}
	}
	return n
}
