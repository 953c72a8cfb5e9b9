package memscene

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ifcscene/internal/host"
	"github.com/Faultbox/ifcscene/internal/mesh"
	"github.com/Faultbox/ifcscene/pkg/ifcgeom"
	"github.com/Faultbox/ifcscene/pkg/math"
)

func TestStandardMaterialAttributes(t *testing.T) {
	s := New()
	red := ifcgeom.Color{R: 1}
	opacity := 0.4

	m := s.NewStandardMaterial("Red", host.StandardAttributes{Diffuse: &red, Opacity: &opacity}).(*Material)

	assert.Equal(t, "Red", m.Name())
	assert.Equal(t, red, m.Diffuse())
	assert.Equal(t, 0.4, m.Opacity)
	assert.Equal(t, 0.1, m.Shininess, "unset attributes keep the host default")
	assert.Equal(t, -1, m.Slot)

	plain := s.NewStandardMaterial("Plain", host.StandardAttributes{})
	assert.Equal(t, DefaultDiffuse, plain.Diffuse())
}

func TestFindMaterialFirstWins(t *testing.T) {
	s := New()
	first := s.NewStandardMaterial("Brick", host.StandardAttributes{})
	s.NewStandardMaterial("Brick", host.StandardAttributes{})

	found, ok := s.FindMaterial("Brick")
	require.True(t, ok)
	assert.Same(t, first, found)
	assert.Equal(t, 2, s.MaterialCount())

	_, ok = s.FindMaterial("Glass")
	assert.False(t, ok)
}

func TestMultiMaterial(t *testing.T) {
	s := New()
	blue := ifcgeom.Color{B: 1}
	a := s.NewStandardMaterial("A", host.StandardAttributes{Diffuse: &blue})
	b := s.NewStandardMaterial("B", host.StandardAttributes{})

	multi := s.NewMultiMaterial([]host.Material{a, b}).(*Material)

	assert.True(t, multi.IsMulti())
	assert.Equal(t, "Multi #1", multi.Name())
	assert.Equal(t, blue, multi.Diffuse(), "multi reports its first sub-material colour")
	assert.Same(t, b, multi.Sub(1))
	assert.Same(t, a, multi.Sub(2), "ids wrap around")
	assert.Same(t, a, multi.Sub(-3))

	std := a.(*Material)
	assert.Same(t, std, std.Sub(5))

	second := s.NewMultiMaterial([]host.Material{b, a})
	assert.Equal(t, "Multi #2", second.Name())
}

func TestPutToEditor(t *testing.T) {
	s := New()
	a := s.NewStandardMaterial("A", host.StandardAttributes{})
	b := s.NewStandardMaterial("B", host.StandardAttributes{})

	s.PutToEditor(a, 0)
	s.PutToEditor(b, EditorSlots) // past capacity: ignored
	s.PutToEditor(b, -1)

	editor := s.Editor()
	assert.Same(t, a, editor[0])
	assert.Equal(t, 0, a.(*Material).Slot)
	assert.Equal(t, -1, b.(*Material).Slot)

	// Replacing a slot clears the previous occupant.
	s.PutToEditor(b, 0)
	assert.Equal(t, -1, a.(*Material).Slot)
	assert.Equal(t, 0, b.(*Material).Slot)
}

func TestNodesAndBounds(t *testing.T) {
	s := New()

	_, ok := s.Bounds(false)
	assert.False(t, ok)

	m := mesh.New([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int{0, 1, 2})
	m.Rebuild()

	n := s.CreateNode(m)
	n.SetName("IfcWall/W/#1")
	n.SetTransform(math.PlacementOf(math.Translate(10, 0, 0)))
	s.AddNode(n)

	hidden := s.CreateNode(m)
	hidden.SetHidden(true)
	hidden.SetTransform(math.PlacementOf(math.Translate(-10, 0, 0)))
	s.AddNode(hidden)

	require.Len(t, s.Nodes(), 2)
	assert.Equal(t, "IfcWall/W/#1", s.Nodes()[0].Name)

	b, ok := s.Bounds(false)
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: 10}, b.Min)
	assert.Equal(t, math.Vec3{X: 11, Y: 1}, b.Max)

	b, ok = s.Bounds(true)
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: -10}, b.Min)

	s.Reset()
	assert.Empty(t, s.Nodes())
	assert.Zero(t, s.MaterialCount())
}

func TestReport(t *testing.T) {
	s := New()
	glassOpacity := 0.3
	glass := s.NewStandardMaterial("Glass", host.StandardAttributes{Opacity: &glassOpacity})
	frame := s.NewStandardMaterial("Frame", host.StandardAttributes{})
	multi := s.NewMultiMaterial([]host.Material{glass, frame})
	s.PutToEditor(glass, 0)

	m := mesh.New([]float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, []int{0, 1, 2, 0, 2, 3})
	m.SetEdgeVisibility(mesh.Classify([]int{0, 1, 1, 2, 2, 3, 3, 0}, []int{0, 1, 2, 0, 2, 3}))
	m.Rebuild()
	n := s.CreateNode(m)
	n.SetName("IfcWindow/Win/#7")
	n.SetMaterial(multi)
	n.SetTransform(math.PlacementOf(math.Scale(-1, 1, 1)))
	s.AddNode(n)

	r := s.Report()
	assert.Equal(t, ReportSummary{
		Nodes:          1,
		Materials:      3,
		MultiMaterials: 1,
		EditorSlots:    1,
		Faces:          2,
		VisibleEdges:   4,
	}, r.Summary)

	require.Len(t, r.Materials, 3)
	require.NotNil(t, r.Materials[0].Slot)
	assert.Equal(t, 0, *r.Materials[0].Slot)
	assert.Equal(t, 0.3, r.Materials[0].Opacity)
	assert.Equal(t, []string{"Glass", "Frame"}, r.Materials[2].Subs)

	require.Len(t, r.Nodes, 1)
	assert.Equal(t, "Multi #1", r.Nodes[0].Material)
	assert.True(t, r.Nodes[0].Mirrored)

	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, r.WriteFile(path))
	assert.FileExists(t, path)
}
