// Package memscene is an in-memory scene host. It keeps a material library,
// a fixed-size material editor and the list of added nodes, and is what the
// CLI reports on and the viewer renders.
package memscene

import (
	"fmt"
	"sync"

	"github.com/Faultbox/ifcscene/internal/host"
	"github.com/Faultbox/ifcscene/internal/mesh"
	"github.com/Faultbox/ifcscene/pkg/ifcgeom"
	"github.com/Faultbox/ifcscene/pkg/math"
)

// EditorSlots is the number of slots in the material editor.
const EditorSlots = 24

// DefaultDiffuse is the diffuse colour of a material with no diffuse set.
var DefaultDiffuse = ifcgeom.Color{R: 0.588, G: 0.588, B: 0.588}

// Material is a standard or multi material.
type Material struct {
	name      string
	diffuse   ifcgeom.Color
	Specular  ifcgeom.Color
	Shininess float64
	Opacity   float64
	// Subs is non-empty for multi materials.
	Subs []*Material
	// Slot is the editor slot, or -1.
	Slot int
}

// Name implements host.Material.
func (m *Material) Name() string { return m.name }

// Diffuse implements host.Material. A multi material reports the diffuse
// colour of its first sub-material.
func (m *Material) Diffuse() ifcgeom.Color {
	if len(m.Subs) > 0 {
		return m.Subs[0].Diffuse()
	}
	return m.diffuse
}

// IsMulti reports whether the material is a composite.
func (m *Material) IsMulti() bool {
	return len(m.Subs) > 0
}

// Sub returns the sub-material for a face material id. Ids wrap around the
// number of sub-materials; a standard material is its own sub-material.
func (m *Material) Sub(id int) *Material {
	if len(m.Subs) == 0 {
		return m
	}
	if id < 0 {
		id = 0
	}
	return m.Subs[id%len(m.Subs)]
}

// Node is a scene node.
type Node struct {
	Name      string
	Mesh      *mesh.Mesh
	Placement math.Placement
	Material  *Material
	Hidden    bool
	WireColor ifcgeom.Color
}

// SetName implements host.Node.
func (n *Node) SetName(name string) { n.Name = name }

// SetTransform implements host.Node.
func (n *Node) SetTransform(p math.Placement) { n.Placement = p }

// SetMaterial implements host.Node.
func (n *Node) SetMaterial(m host.Material) {
	if mat, ok := m.(*Material); ok {
		n.Material = mat
	}
}

// SetHidden implements host.Node.
func (n *Node) SetHidden(hidden bool) { n.Hidden = hidden }

// SetWireColor implements host.Node.
func (n *Node) SetWireColor(c ifcgeom.Color) { n.WireColor = c }

// WorldBounds returns the node's mesh bounds after placement.
func (n *Node) WorldBounds() mesh.Bounds {
	b := n.Mesh.Bounds
	var out mesh.Bounds
	for i := 0; i < 8; i++ {
		corner := math.Vec3{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}
		if i&1 != 0 {
			corner.X = b.Max.X
		}
		if i&2 != 0 {
			corner.Y = b.Max.Y
		}
		if i&4 != 0 {
			corner.Z = b.Max.Z
		}
		p := n.Placement.Apply(corner)
		if i == 0 {
			out = mesh.Bounds{Min: p, Max: p}
			continue
		}
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// Scene is an in-memory host.Scene. It is safe for concurrent use.
type Scene struct {
	mu        sync.Mutex
	materials []*Material
	byName    map[string]*Material
	editor    [EditorSlots]*Material
	nodes     []*Node
	multis    int
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		byName: make(map[string]*Material),
	}
}

var _ host.Scene = (*Scene)(nil)

// FindMaterial implements host.Scene. The first material registered under a
// name is the one found.
func (s *Scene) FindMaterial(name string) (host.Material, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return m, true
}

// NewStandardMaterial implements host.Scene.
func (s *Scene) NewStandardMaterial(name string, attrs host.StandardAttributes) host.Material {
	m := &Material{
		name:      name,
		diffuse:   DefaultDiffuse,
		Specular:  ifcgeom.Color{R: 0.9, G: 0.9, B: 0.9},
		Shininess: 0.1,
		Opacity:   1,
		Slot:      -1,
	}
	if attrs.Diffuse != nil {
		m.diffuse = *attrs.Diffuse
	}
	if attrs.Specular != nil {
		m.Specular = *attrs.Specular
	}
	if attrs.Shininess != nil {
		m.Shininess = *attrs.Shininess
	}
	if attrs.Opacity != nil {
		m.Opacity = *attrs.Opacity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.register(m)
	return m
}

// NewMultiMaterial implements host.Scene. Sub-materials that were not
// created by this scene are skipped.
func (s *Scene) NewMultiMaterial(subs []host.Material) host.Material {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.multis++
	m := &Material{
		name: fmt.Sprintf("Multi #%d", s.multis),
		Subs: make([]*Material, 0, len(subs)),
		Slot: -1,
	}
	for _, sub := range subs {
		if mat, ok := sub.(*Material); ok {
			m.Subs = append(m.Subs, mat)
		}
	}
	s.register(m)
	return m
}

func (s *Scene) register(m *Material) {
	s.materials = append(s.materials, m)
	if _, exists := s.byName[m.name]; !exists {
		s.byName[m.name] = m
	}
}

// MaterialCount implements host.Scene.
func (s *Scene) MaterialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.materials)
}

// PutToEditor implements host.Scene.
func (s *Scene) PutToEditor(m host.Material, slot int) {
	mat, ok := m.(*Material)
	if !ok || slot < 0 || slot >= EditorSlots {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev := s.editor[slot]; prev != nil {
		prev.Slot = -1
	}
	s.editor[slot] = mat
	mat.Slot = slot
}

// CreateNode implements host.Scene.
func (s *Scene) CreateNode(m *mesh.Mesh) host.Node {
	return &Node{
		Mesh:      m,
		Placement: math.IdentityPlacement(),
		WireColor: DefaultDiffuse,
	}
}

// AddNode implements host.Scene.
func (s *Scene) AddNode(n host.Node) {
	node, ok := n.(*Node)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, node)
}

// Materials returns the library in registration order.
func (s *Scene) Materials() []*Material {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Material(nil), s.materials...)
}

// Editor returns the editor slots; empty slots are nil.
func (s *Scene) Editor() [EditorSlots]*Material {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor
}

// Nodes returns the added nodes in order.
func (s *Scene) Nodes() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Node(nil), s.nodes...)
}

// Bounds returns the world bounds of all nodes, optionally skipping hidden
// ones. ok is false when no node contributes.
func (s *Scene) Bounds(includeHidden bool) (b mesh.Bounds, ok bool) {
	for _, n := range s.Nodes() {
		if n.Hidden && !includeHidden {
			continue
		}
		if len(n.Mesh.Vertices) == 0 {
			continue
		}
		nb := n.WorldBounds()
		if !ok {
			b, ok = nb, true
			continue
		}
		b = b.Union(nb)
	}
	return b, ok
}

// Reset removes all materials and nodes.
func (s *Scene) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials = nil
	s.byName = make(map[string]*Material)
	s.editor = [EditorSlots]*Material{}
	s.nodes = nil
	s.multis = 0
}
