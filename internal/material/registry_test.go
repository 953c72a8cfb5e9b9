package material

import (
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
)

func ptr[T any](v T) *T { return &v }

func TestSlots(t *testing.T) {
	s := NewSlots(22, 24)

	slot, ok := s.Take()
	require.True(t, ok)
	assert.Equal(t, 22, slot)

	slot, ok = s.Take()
	require.True(t, ok)
	assert.Equal(t, 23, slot)
	assert.True(t, s.Exhausted())

	_, ok = s.Take()
	assert.False(t, ok)
	assert.Equal(t, 24, s.Next(), "counter saturates")
}

func TestFindOrCreateAttributes(t *testing.T) {
	scene := memscene.New()
	reg := NewRegistry(scene, DefaultSlotLimit, nil)

	m := reg.FindOrCreate(ifcgeom.Style{
		Name:         "Glass",
		Diffuse:      &ifcgeom.Color{R: 0.2, G: 0.4, B: 0.6},
		Specular:     &ifcgeom.Color{R: 1, G: 1, B: 1},
		Specularity:  ptr(0.5),
		Transparency: ptr(0.75),
	})

	mat := m.(*memscene.Material)
	assert.Equal(t, "Glass", mat.Name())
	assert.Equal(t, ifcgeom.Color{R: 0.2, G: 0.4, B: 0.6}, mat.Diffuse())
	assert.Equal(t, ifcgeom.Color{R: 1, G: 1, B: 1}, mat.Specular)
	assert.Equal(t, 0.5, mat.Shininess)
	assert.InDelta(t, 0.25, mat.Opacity, 1e-9)
	assert.Equal(t, 0, mat.Slot)
}

func TestFindOrCreateLeavesUnsetAttributes(t *testing.T) {
	scene := memscene.New()
	reg := NewRegistry(scene, DefaultSlotLimit, nil)

	mat := reg.FindOrCreate(ifcgeom.Style{Name: "Bare"}).(*memscene.Material)
	ref := scene.NewStandardMaterial("reference", host.StandardAttributes{}).(*memscene.Material)

	assert.Equal(t, ref.Diffuse(), mat.Diffuse())
	assert.Equal(t, ref.Specular, mat.Specular)
	assert.Equal(t, ref.Shininess, mat.Shininess)
	assert.Equal(t, ref.Opacity, mat.Opacity)
}

func TestFindOrCreateFirstRegistrationWins(t *testing.T) {
	scene := memscene.New()
	reg := NewRegistry(scene, DefaultSlotLimit, nil)

	first := reg.FindOrCreate(ifcgeom.Style{Name: "Concrete", Diffuse: &ifcgeom.Color{R: 0.5, G: 0.5, B: 0.5}})
	second := reg.FindOrCreate(ifcgeom.Style{Name: "Concrete", Diffuse: &ifcgeom.Color{R: 1}})

	assert.Same(t, first, second)
	assert.Equal(t, ifcgeom.Color{R: 0.5, G: 0.5, B: 0.5}, second.Diffuse())
	assert.Equal(t, 1, scene.MaterialCount())
	assert.Equal(t, 1, reg.Created())
	assert.Equal(t, 1, reg.Slots().Next())
}

func TestFindOrCreateReusesExistingLibraryMaterial(t *testing.T) {
	scene := memscene.New()
	existing := scene.NewStandardMaterial("Steel", host.StandardAttributes{})
	scene.NewStandardMaterial("Timber", host.StandardAttributes{})

	reg := NewRegistry(scene, DefaultSlotLimit, nil)
	assert.Same(t, existing, reg.FindOrCreate(ifcgeom.Style{Name: "Steel"}))
	assert.Zero(t, reg.Created())

	// Slot numbering starts after the library's existing materials.
	m := reg.FindOrCreate(ifcgeom.Style{Name: "Brick"}).(*memscene.Material)
	assert.Equal(t, 2, m.Slot)
}

func TestSlotBoundSaturates(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	scene := memscene.New()
	reg := NewRegistry(scene, DefaultSlotLimit, zap.New(core))

	var handles []host.Material
	for i := 0; i < 30; i++ {
		handles = append(handles, reg.FindOrCreate(ifcgeom.Style{Name: fmt.Sprintf("Style %d", i)}))
	}

	for i, h := range handles {
		require.NotNil(t, h, "style %d", i)
		mat := h.(*memscene.Material)
		if i < DefaultSlotLimit {
			assert.Equal(t, i, mat.Slot, "style %d", i)
		} else {
			assert.Equal(t, -1, mat.Slot, "style %d should not get a slot", i)
		}
	}

	assert.Equal(t, 30, scene.MaterialCount())
	assert.Equal(t, DefaultSlotLimit, reg.Slots().Next())
	assert.Equal(t, 6, logs.FilterMessage("material editor full").Len())
}

func TestRegistryCustomSlotLimit(t *testing.T) {
	scene := memscene.New()
	reg := NewRegistry(scene, 2, nil)

	for i := 0; i < 4; i++ {
		reg.FindOrCreate(ifcgeom.Style{Name: fmt.Sprintf("S%d", i)})
	}

	editor := scene.Editor()
	assert.Equal(t, "S0", editor[0].Name())
	assert.Equal(t, "S1", editor[1].Name())
	assert.Nil(t, editor[2])
}

func TestDefaultMaterial(t *testing.T) {
	scene := memscene.New()
	reg := NewRegistry(scene, DefaultSlotLimit, nil)

	def := reg.Default("IfcWall")
	assert.Equal(t, "IfcWall", def.Name())
	assert.Equal(t, memscene.DefaultDiffuse, def.Diffuse())
	assert.Same(t, def, reg.Default("IfcWall"))

	// A style named like an element type resolves to the same material.
	assert.Same(t, def, reg.FindOrCreate(ifcgeom.Style{Name: "IfcWall", Diffuse: &ifcgeom.Color{G: 1}}))
}
