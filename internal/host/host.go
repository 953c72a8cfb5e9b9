// Package host defines the scene environment the importer drives: a shared
// material library with a bounded material editor, and a node factory.
package host

import (
	"github.com/Faultbox/ifcscene/internal/mesh"
	"github.com/Faultbox/ifcscene/pkg/ifcgeom"
	"github.com/Faultbox/ifcscene/pkg/math"
)

// StandardAttributes are the optional attributes of a standard material.
// Nil fields keep the host default.
type StandardAttributes struct {
	Diffuse   *ifcgeom.Color
	Specular  *ifcgeom.Color
	Shininess *float64
	Opacity   *float64
}

// Material is a handle to a material registered in the host library.
type Material interface {
	Name() string
	Diffuse() ifcgeom.Color
}

// Node is a scene node that has been created but not necessarily added.
type Node interface {
	SetName(name string)
	SetTransform(p math.Placement)
	SetMaterial(m Material)
	SetHidden(hidden bool)
	SetWireColor(c ifcgeom.Color)
}

// Scene is the host side of an import. Calls are assumed to succeed.
type Scene interface {
	// FindMaterial looks a material up by name in the library.
	FindMaterial(name string) (Material, bool)
	// NewStandardMaterial creates a material and registers it in the library.
	NewStandardMaterial(name string, attrs StandardAttributes) Material
	// NewMultiMaterial creates a composite whose sub-material i is subs[i]
	// and registers it in the library.
	NewMultiMaterial(subs []Material) Material
	// MaterialCount returns the number of materials in the library.
	MaterialCount() int
	// PutToEditor shows a material in an editor slot. Slots past the
	// editor's capacity are ignored.
	PutToEditor(m Material, slot int)

	CreateNode(m *mesh.Mesh) Node
	AddNode(n Node)
}

// Progress receives import progress.
type Progress interface {
	Start(title string)
	Update(fraction float64)
	End()
}

// NopProgress discards progress.
type NopProgress struct{}

// Start implements Progress.
func (NopProgress) Start(string) {}

// Update implements Progress.
func (NopProgress) Update(float64) {}

// End implements Progress.
func (NopProgress) End() {}
