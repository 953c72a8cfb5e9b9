package debug

import "github.com/Faultbox/ifcscene/pkg/math"

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// BBoxWireframe creates line vertices for a wireframe bounding box, as
// x, y, z triples with two endpoints per edge.
func BBoxWireframe(lo, hi math.Vec3) []float32 {
	return []float32{
		// Bottom face
		lo.X, lo.Y, lo.Z, hi.X, lo.Y, lo.Z,
		hi.X, lo.Y, lo.Z, hi.X, hi.Y, lo.Z,
		hi.X, hi.Y, lo.Z, lo.X, hi.Y, lo.Z,
		lo.X, hi.Y, lo.Z, lo.X, lo.Y, lo.Z,
		// Top face
		lo.X, lo.Y, hi.Z, hi.X, lo.Y, hi.Z,
		hi.X, lo.Y, hi.Z, hi.X, hi.Y, hi.Z,
		hi.X, hi.Y, hi.Z, lo.X, hi.Y, hi.Z,
		lo.X, hi.Y, hi.Z, lo.X, lo.Y, hi.Z,
		// Verticals
		lo.X, lo.Y, lo.Z, lo.X, lo.Y, hi.Z,
		hi.X, lo.Y, lo.Z, hi.X, lo.Y, hi.Z,
		hi.X, hi.Y, lo.Z, hi.X, hi.Y, hi.Z,
		lo.X, hi.Y, lo.Z, lo.X, hi.Y, hi.Z,
	}
}
