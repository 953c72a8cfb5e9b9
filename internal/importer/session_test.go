package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/ifcscene/internal/host"
	"github.com/Faultbox/ifcscene/internal/host/memscene"
	"github.com/Faultbox/ifcscene/pkg/ifcgeom"
	"github.com/Faultbox/ifcscene/pkg/math"
)

// quad is a unit square split along the (0,2) diagonal.
func quad(id int, typ, name string, styles []ifcgeom.Style, ids []ifcgeom.MaterialIndex) ifcgeom.Element {
	return ifcgeom.Element{
		ID:        id,
		Type:      typ,
		GUID:      fmt.Sprintf("guid-%d", id),
		Name:      name,
		Transform: math.Identity(),
		Geometry: ifcgeom.Geometry{
			Vertices:    []float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
			Faces:       []int{0, 1, 2, 0, 2, 3},
			Edges:       []int{0, 1, 1, 2, 2, 3, 3, 0},
			Styles:      styles,
			MaterialIDs: ids,
		},
	}
}

func iter(elements ...ifcgeom.Element) Iterator {
	return ifcgeom.NewStreamIterator(&ifcgeom.Stream{Version: ifcgeom.StreamVersion, Elements: elements})
}

type recorder struct {
	title   string
	updates []float64
	ended   bool
	onStep  func(n int)
}

func (r *recorder) Start(title string) { r.title = title }
func (r *recorder) Update(f float64) {
	r.updates = append(r.updates, f)
	if r.onStep != nil {
		r.onStep(len(r.updates))
	}
}
func (r *recorder) End() { r.ended = true }

var brick = ifcgeom.Style{Name: "Brick", Diffuse: &ifcgeom.Color{R: 0.6, G: 0.3, B: 0.2}}

func TestRunQuad(t *testing.T) {
	scene := memscene.New()
	s := NewSession(scene, Options{})
	prog := &recorder{}

	el := quad(42, "IfcWall", "Basic Wall", []ifcgeom.Style{brick},
		[]ifcgeom.MaterialIndex{ifcgeom.StyleIndex(0), ifcgeom.StyleIndex(0)})
	stats, err := s.Run(context.Background(), iter(el), prog)
	require.NoError(t, err)

	nodes := scene.Nodes()
	require.Len(t, nodes, 1)
	n := nodes[0]

	assert.Equal(t, "IfcWall/Basic Wall/#42", n.Name)
	assert.False(t, n.Hidden)
	require.Len(t, n.Mesh.Faces, 2)
	assert.Equal(t, [3]bool{true, true, false}, n.Mesh.Faces[0].EdgeVisible)
	assert.Equal(t, [3]bool{false, true, true}, n.Mesh.Faces[1].EdgeVisible)
	assert.Equal(t, math.Vec3{X: 1}, n.Mesh.Vertices[1], "vertices are copied untransformed")

	require.NotNil(t, n.Material)
	assert.Equal(t, "Brick", n.Material.Name())
	assert.Equal(t, *brick.Diffuse, n.WireColor)

	assert.Equal(t, ProgressTitle, prog.title)
	assert.Equal(t, []float64{1}, prog.updates)
	assert.True(t, prog.ended)

	assert.Equal(t, 1, stats.Elements)
	assert.Equal(t, 2, stats.Faces)
	assert.Equal(t, 4, stats.VisibleEdges)
	assert.Equal(t, 1, stats.Materials)
	assert.Equal(t, 1, stats.SlotsUsed)
	assert.Zero(t, stats.Composites)
}

func TestRunDefaultShift(t *testing.T) {
	scene := memscene.New()
	s := NewSession(scene, Options{})

	el := quad(1, "IfcDoor", "D", []ifcgeom.Style{brick},
		[]ifcgeom.MaterialIndex{ifcgeom.DefaultMaterial, ifcgeom.StyleIndex(0)})
	_, err := s.Run(context.Background(), iter(el), nil)
	require.NoError(t, err)

	n := scene.Nodes()[0]
	assert.Equal(t, 0, n.Mesh.Faces[0].MaterialID)
	assert.Equal(t, 1, n.Mesh.Faces[1].MaterialID)
	require.True(t, n.Material.IsMulti())
	assert.Equal(t, "IfcDoor", n.Material.Sub(n.Mesh.Faces[0].MaterialID).Name())
	assert.Equal(t, "Brick", n.Material.Sub(n.Mesh.Faces[1].MaterialID).Name())
	assert.Equal(t, memscene.DefaultDiffuse, n.WireColor, "multi wire colour comes from the default sub-material")
}

func TestRunWithoutMaterial(t *testing.T) {
	scene := memscene.New()
	s := NewSession(scene, Options{})

	el := quad(3, "IfcProxy", "P", nil, nil)
	_, err := s.Run(context.Background(), iter(el), nil)
	require.NoError(t, err)

	n := scene.Nodes()[0]
	assert.Nil(t, n.Material)
	assert.Equal(t, memscene.DefaultDiffuse, n.WireColor)
	assert.Zero(t, scene.MaterialCount())
}

func TestRunHiddenTypes(t *testing.T) {
	elements := []ifcgeom.Element{
		quad(1, "IfcWall", "W", nil, nil),
		quad(2, "IfcOpeningElement", "O", nil, nil),
		quad(3, "IfcSpace", "S", nil, nil),
		quad(4, "IfcSpaceHeater", "H", nil, nil),
	}

	scene := memscene.New()
	stats, err := NewSession(scene, Options{}).Run(context.Background(), iter(elements...), nil)
	require.NoError(t, err)

	var hidden []bool
	for _, n := range scene.Nodes() {
		hidden = append(hidden, n.Hidden)
	}
	assert.Equal(t, []bool{false, true, true, false}, hidden)
	assert.Equal(t, 2, stats.HiddenNodes)

	scene = memscene.New()
	_, err = NewSession(scene, Options{HiddenTypes: []string{"IfcWall"}}).Run(context.Background(), iter(elements...), nil)
	require.NoError(t, err)
	assert.True(t, scene.Nodes()[0].Hidden)
	assert.False(t, scene.Nodes()[1].Hidden)
}

func TestRunTransform(t *testing.T) {
	// Rotate a quarter turn about Z, then move to (5, 6, 7).
	transform := math.Translate(5, 6, 7).Mul(math.RotateZ(float32(3.14159265358979 / 2)))

	el := quad(1, "IfcSlab", "S", nil, nil)
	el.Transform = transform

	scene := memscene.New()
	_, err := NewSession(scene, Options{}).Run(context.Background(), iter(el), nil)
	require.NoError(t, err)

	p := scene.Nodes()[0].Placement
	assertVec(t, transform.Column(0), p.X)
	assertVec(t, transform.Column(1), p.Y)
	assertVec(t, transform.Column(2), p.Z)
	assertVec(t, math.Vec3{X: 5, Y: 6, Z: 7}, p.Translation)

	// Vertex (1,0,0) lands on (5,7,7).
	assertVec(t, math.Vec3{X: 5, Y: 7, Z: 7}, p.Apply(math.Vec3{X: 1}))
}

func assertVec(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5)
	assert.InDelta(t, want.Y, got.Y, 1e-5)
	assert.InDelta(t, want.Z, got.Z, 1e-5)
}

func TestRunInitializeFailure(t *testing.T) {
	scene := memscene.New()
	prog := &recorder{}

	_, err := NewSession(scene, Options{}).Run(context.Background(), iter(), prog)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInitialize)
	assert.ErrorIs(t, err, ifcgeom.ErrNoElements)
	assert.Empty(t, scene.Nodes())
	assert.Empty(t, prog.title, "progress never starts")

	_, err = NewSession(scene, Options{}).Run(context.Background(),
		ifcgeom.NewFileIterator("/nonexistent/model.yaml", ""), nil)
	assert.ErrorIs(t, err, ErrInitialize)
	assert.Empty(t, scene.Nodes())
}

func TestRunProgress(t *testing.T) {
	elements := make([]ifcgeom.Element, 4)
	for i := range elements {
		elements[i] = quad(i, "IfcWall", "W", nil, nil)
	}
	prog := &recorder{}

	_, err := NewSession(memscene.New(), Options{}).Run(context.Background(), iter(elements...), prog)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1}, prog.updates)
}

func TestRunCancelled(t *testing.T) {
	elements := make([]ifcgeom.Element, 5)
	for i := range elements {
		elements[i] = quad(i, "IfcWall", "W", nil, nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	prog := &recorder{onStep: func(n int) {
		if n == 2 {
			cancel()
		}
	}}

	scene := memscene.New()
	stats, err := NewSession(scene, Options{}).Run(ctx, iter(elements...), prog)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, scene.Nodes(), 2, "emitted nodes stay in the scene")
	assert.Equal(t, 2, stats.Elements)
	assert.True(t, prog.ended)
}

func TestRunOutOfRangeMaterial(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	scene := memscene.New()
	s := NewSession(scene, Options{Logger: zap.New(core)})

	el := quad(9, "IfcBeam", "B", []ifcgeom.Style{brick},
		[]ifcgeom.MaterialIndex{ifcgeom.StyleIndex(0), ifcgeom.StyleIndex(5)})
	stats, err := s.Run(context.Background(), iter(el), nil)
	require.NoError(t, err)

	n := scene.Nodes()[0]
	assert.Equal(t, 1, n.Mesh.Faces[0].MaterialID)
	assert.Equal(t, 0, n.Mesh.Faces[1].MaterialID)
	assert.Equal(t, "IfcBeam", n.Material.Sub(0).Name())
	assert.Equal(t, 1, stats.BadMaterialIDs)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(9), entries[0].ContextMap()["id"])
}

func TestRunSlotsContinueAfterLibrary(t *testing.T) {
	scene := memscene.New()
	for i := 0; i < 23; i++ {
		scene.NewStandardMaterial(fmt.Sprintf("existing %d", i), host.StandardAttributes{})
	}

	el := quad(1, "IfcWall", "W", []ifcgeom.Style{{Name: "A"}, {Name: "B"}},
		[]ifcgeom.MaterialIndex{ifcgeom.StyleIndex(0), ifcgeom.StyleIndex(1)})
	stats, err := NewSession(scene, Options{}).Run(context.Background(), iter(el), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.SlotsUsed)
	editor := scene.Editor()
	assert.Equal(t, "A", editor[23].Name())
	assert.Equal(t, 3, stats.Materials)
	assert.Equal(t, 1, stats.Composites)
}
