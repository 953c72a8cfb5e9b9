package mesh

// EdgeKey is an undirected edge between two vertex indices, stored as
// (min, max).
type EdgeKey struct {
	A, B int
}

// MakeEdgeKey canonicalizes the pair (v1, v2).
func MakeEdgeKey(v1, v2 int) EdgeKey {
	if v1 > v2 {
		v1, v2 = v2, v1
	}
	return EdgeKey{A: v1, B: v2}
}

// EdgeSet is a set of undirected edges. It is built once from an element's
// boundary edge buffer and only read afterwards.
type EdgeSet map[EdgeKey]struct{}

// NewEdgeSet builds a set from a flat buffer of vertex index pairs.
// A trailing unpaired index is ignored.
func NewEdgeSet(pairs []int) EdgeSet {
	set := make(EdgeSet, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		set[MakeEdgeKey(pairs[i], pairs[i+1])] = struct{}{}
	}
	return set
}

// Contains reports whether the edge (v1, v2) is in the set, in either order.
func (s EdgeSet) Contains(v1, v2 int) bool {
	_, ok := s[MakeEdgeKey(v1, v2)]
	return ok
}

// FaceEdges returns the visibility of the three edges of triangle
// (v1, v2, v3), in the order (v1,v2), (v2,v3), (v3,v1).
func (s EdgeSet) FaceEdges(v1, v2, v3 int) [3]bool {
	return [3]bool{
		s.Contains(v1, v2),
		s.Contains(v2, v3),
		s.Contains(v3, v1),
	}
}

// Classify decides for every triangle edge whether it lies on the original
// shell outline or was introduced by triangulating a polygon. boundary holds
// vertex index pairs, faces holds vertex index triples. Only outline edges
// are reported visible.
func Classify(boundary, faces []int) [][3]bool {
	set := NewEdgeSet(boundary)

	flags := make([][3]bool, len(faces)/3)
	for i := range flags {
		flags[i] = set.FaceEdges(faces[3*i], faces[3*i+1], faces[3*i+2])
	}
	return flags
}
