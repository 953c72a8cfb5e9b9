package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ifcscene/internal/host/memscene"
	"github.com/Faultbox/ifcscene/pkg/ifcgeom"
)

var (
	dflt = ifcgeom.DefaultMaterial
	s0   = ifcgeom.StyleIndex(0)
	s1   = ifcgeom.StyleIndex(1)
)

func newComposer() (*Composer, *memscene.Scene) {
	scene := memscene.New()
	return NewComposer(NewRegistry(scene, DefaultSlotLimit, nil), nil), scene
}

func styles(names ...string) []ifcgeom.Style {
	out := make([]ifcgeom.Style, len(names))
	for i, n := range names {
		out[i] = ifcgeom.Style{Name: n}
	}
	return out
}

func TestComposeNoNames(t *testing.T) {
	c, scene := newComposer()

	assert.Nil(t, c.Compose(nil, nil, "IfcWall"))
	assert.Zero(t, scene.MaterialCount())
}

func TestComposeDefaultOnly(t *testing.T) {
	c, scene := newComposer()

	m := c.Compose(nil, []ifcgeom.MaterialIndex{dflt, dflt}, "IfcSlab")
	require.NotNil(t, m)
	assert.Equal(t, "IfcSlab", m.Name())
	assert.False(t, m.(*memscene.Material).IsMulti())
	assert.Zero(t, c.Composites())
	assert.Equal(t, 1, scene.MaterialCount())
}

func TestComposeSingleStyle(t *testing.T) {
	c, scene := newComposer()

	m := c.Compose(styles("Brick"), []ifcgeom.MaterialIndex{s0, s0}, "IfcWall")
	require.NotNil(t, m)
	assert.Equal(t, "Brick", m.Name())
	assert.False(t, m.(*memscene.Material).IsMulti())
	assert.Zero(t, c.Composites())
	assert.Equal(t, 1, scene.MaterialCount())
}

func TestComposeDefaultAndStyle(t *testing.T) {
	c, scene := newComposer()
	ids := []ifcgeom.MaterialIndex{dflt, s0, s0}

	m := c.Compose(styles("Paint"), ids, "IfcDoor")
	require.NotNil(t, m)

	multi := m.(*memscene.Material)
	require.True(t, multi.IsMulti())
	require.Len(t, multi.Subs, 2)
	assert.Equal(t, "IfcDoor", multi.Subs[0].Name())
	assert.Equal(t, "Paint", multi.Subs[1].Name())

	faceIDs, bad := FaceMaterialIDs(ids, 1)
	assert.Equal(t, []int{0, 1, 1}, faceIDs)
	assert.Zero(t, bad)

	// default, style, multi
	assert.Equal(t, 3, scene.MaterialCount())
	editor := scene.Editor()
	assert.Equal(t, "IfcDoor", editor[0].Name())
	assert.Equal(t, "Paint", editor[1].Name())
	assert.Same(t, multi, editor[2])
}

func TestComposeUnusedStyleStillComposes(t *testing.T) {
	c, _ := newComposer()

	m := c.Compose(styles("Paint"), []ifcgeom.MaterialIndex{dflt}, "IfcDoor")
	assert.True(t, m.(*memscene.Material).IsMulti())
}

func TestComposeReusesSameSequence(t *testing.T) {
	c, scene := newComposer()
	ids := []ifcgeom.MaterialIndex{s0, s1}

	a := c.Compose(styles("Glass", "Frame"), ids, "IfcWindow")
	count := scene.MaterialCount()
	b := c.Compose(styles("Glass", "Frame"), ids, "IfcWindow")

	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Composites())
	assert.Equal(t, count, scene.MaterialCount())
}

func TestComposeOrderSensitive(t *testing.T) {
	c, scene := newComposer()
	ids := []ifcgeom.MaterialIndex{s0, s1}

	a := c.Compose(styles("Glass", "Frame"), ids, "IfcWindow")
	b := c.Compose(styles("Frame", "Glass"), ids, "IfcWindow")

	// The same style set in another order is a different multi material.
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, c.Composites())

	subs := b.(*memscene.Material).Subs
	assert.Equal(t, "Frame", subs[0].Name())
	assert.Equal(t, "Glass", subs[1].Name())
	// Glass, Frame and the two multi materials.
	assert.Equal(t, 4, scene.MaterialCount())
}

func TestComposeDefaultIsPartOfKey(t *testing.T) {
	c, _ := newComposer()

	a := c.Compose(styles("Glass", "Frame"), []ifcgeom.MaterialIndex{s0, s1}, "IfcWindow")
	b := c.Compose(styles("Glass", "Frame"), []ifcgeom.MaterialIndex{s0, dflt}, "IfcWindow")
	d := c.Compose(styles("Glass", "Frame"), []ifcgeom.MaterialIndex{s0, dflt}, "IfcDoor")

	assert.NotSame(t, a, b)
	assert.NotSame(t, b, d)
	assert.Len(t, b.(*memscene.Material).Subs, 3)
	assert.Equal(t, 3, c.Composites())
}

func TestComposeSharesSubMaterials(t *testing.T) {
	c, _ := newComposer()

	a := c.Compose(styles("Glass", "Frame"), []ifcgeom.MaterialIndex{s0, s1}, "IfcWindow")
	b := c.Compose(styles("Frame", "Glass"), []ifcgeom.MaterialIndex{s0, s1}, "IfcWindow")

	assert.Same(t, a.(*memscene.Material).Subs[0], b.(*memscene.Material).Subs[1])
}

func TestComposeOutOfRangeUsesDefault(t *testing.T) {
	c, _ := newComposer()
	ids := []ifcgeom.MaterialIndex{s0, ifcgeom.StyleIndex(7)}

	m := c.Compose(styles("Paint"), ids, "IfcBeam")
	multi := m.(*memscene.Material)
	require.Len(t, multi.Subs, 2)
	assert.Equal(t, "IfcBeam", multi.Subs[0].Name())

	faceIDs, bad := FaceMaterialIDs(ids, 1)
	assert.Equal(t, []int{1, 0}, faceIDs)
	assert.Equal(t, 1, bad)
}

func TestComposeSlotsAreShared(t *testing.T) {
	scene := memscene.New()
	c := NewComposer(NewRegistry(scene, 3, nil), nil)

	m := c.Compose(styles("A", "B", "C"), []ifcgeom.MaterialIndex{s0, s1, ifcgeom.StyleIndex(2)}, "IfcWall")

	// A, B and C take the three slots; the multi material gets none.
	assert.Equal(t, -1, m.(*memscene.Material).Slot)
	assert.True(t, c.Registry().Slots().Exhausted())
}

func TestNeedsDefault(t *testing.T) {
	tests := []struct {
		name string
		ids  []ifcgeom.MaterialIndex
		want bool
	}{
		{"empty", nil, false},
		{"styles only", []ifcgeom.MaterialIndex{s0, s1}, false},
		{"default", []ifcgeom.MaterialIndex{s0, dflt}, true},
		{"out of range", []ifcgeom.MaterialIndex{ifcgeom.StyleIndex(2)}, true},
		{"negative", []ifcgeom.MaterialIndex{ifcgeom.StyleIndex(-3)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsDefault(tt.ids, 2))
		})
	}
}

func TestFaceMaterialIDsWithoutDefault(t *testing.T) {
	ids, bad := FaceMaterialIDs([]ifcgeom.MaterialIndex{s1, s0, s1}, 2)
	assert.Equal(t, []int{1, 0, 1}, ids)
	assert.Zero(t, bad)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"IfcWall", "A", "B"}, Names(styles("A", "B"), true, "IfcWall"))
	assert.Equal(t, []string{"A", "B"}, Names(styles("A", "B"), false, "IfcWall"))
	assert.Empty(t, Names(nil, false, "IfcWall"))
}

func TestCacheKeyUnambiguous(t *testing.T) {
	assert.NotEqual(t, cacheKey([]string{"a:b"}), cacheKey([]string{"a", "b"}))
	assert.NotEqual(t, cacheKey([]string{"ab", "c"}), cacheKey([]string{"a", "bc"}))
	assert.Equal(t, cacheKey([]string{"x", "y"}), cacheKey([]string{"x", "y"}))
}
