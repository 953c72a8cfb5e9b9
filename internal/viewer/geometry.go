// Package viewer turns an imported scene into draw buffers and tracks the
// interactive view state. The window and OpenGL side lives in
// viewer/display.
package viewer

import (
	"github.com/Faultbox/ifcscene/internal/engine/picking"
	"github.com/Faultbox/ifcscene/internal/host/memscene"
	"github.com/Faultbox/ifcscene/internal/mesh"
	"github.com/Faultbox/ifcscene/pkg/ifcgeom"
	"github.com/Faultbox/ifcscene/pkg/math"
)

// Vertex layouts of the buffers in Geometry.
const (
	TriangleStride = 10 // position, normal, RGBA
	LineStride     = 3  // position
)

// Geometry holds world-space draw buffers for a scene.
type Geometry struct {
	Opaque      []float32
	Translucent []float32
	Edges       []float32

	// Nodes lists the drawn nodes; Boxes[i] is the world box of Nodes[i].
	Nodes []*memscene.Node
	Boxes []picking.AABB

	Bounds    mesh.Bounds
	HasBounds bool
}

// Options select what Build includes.
type Options struct {
	ShowHidden bool
}

// Build flattens the scene's nodes into world-space buffers. Faces take the
// colour and opacity of their sub-material; nodes without a material use
// their wire colour.
func Build(scene *memscene.Scene, opts Options) *Geometry {
	g := &Geometry{}

	for _, n := range scene.Nodes() {
		if n.Hidden && !opts.ShowHidden {
			continue
		}
		if len(n.Mesh.Faces) == 0 {
			continue
		}
		g.addNode(n)
	}
	return g
}

func (g *Geometry) addNode(n *memscene.Node) {
	m := n.Mesh
	world := make([]math.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		world[i] = n.Placement.Apply(v)
	}

	// A mirroring placement reverses the winding.
	mirrored := n.Placement.Determinant() < 0
	for _, f := range m.Faces {
		verts := [3]math.Vec3{world[f.V[0]], world[f.V[1]], world[f.V[2]]}
		if mirrored {
			verts[1], verts[2] = verts[2], verts[1]
		}
		normal := verts[1].Sub(verts[0]).Cross(verts[2].Sub(verts[0])).Normalize()

		c := faceColor(n, f.MaterialID)
		dst := &g.Opaque
		if c[3] < 1 {
			dst = &g.Translucent
		}
		for _, v := range verts {
			*dst = append(*dst,
				v.X, v.Y, v.Z,
				normal.X, normal.Y, normal.Z,
				c[0], c[1], c[2], c[3])
		}
	}

	for _, e := range m.VisibleEdges() {
		a, b := world[e.A], world[e.B]
		g.Edges = append(g.Edges, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	}

	box := n.WorldBounds()
	g.Nodes = append(g.Nodes, n)
	g.Boxes = append(g.Boxes, picking.AABB{Min: box.Min, Max: box.Max})
	if !g.HasBounds {
		g.Bounds, g.HasBounds = box, true
	} else {
		g.Bounds = g.Bounds.Union(box)
	}
}

func faceColor(n *memscene.Node, materialID int) [4]float32 {
	if n.Material == nil {
		return rgba(n.WireColor, 1)
	}
	sub := n.Material.Sub(materialID)
	return rgba(sub.Diffuse(), sub.Opacity)
}

func rgba(c ifcgeom.Color, opacity float64) [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(opacity)}
}

// TriangleCount returns the number of triangles in both face buffers.
func (g *Geometry) TriangleCount() int {
	return (len(g.Opaque) + len(g.Translucent)) / (3 * TriangleStride)
}

// EdgeCount returns the number of edge segments.
func (g *Geometry) EdgeCount() int {
	return len(g.Edges) / (2 * LineStride)
}
