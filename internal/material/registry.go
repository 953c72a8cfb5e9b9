// Package material turns element styles into host materials. A Registry
// creates at most one material per style name and hands out material
// editor slots until they run out; a Composer wraps the styles of one
// element into a cached multi material.
package material

import (
	"go.uber.org/zap"

	"github.com/Faultbox/ifcscene/internal/host"
	"github.com/Faultbox/ifcscene/pkg/ifcgeom"
)

// DefaultSlotLimit is the number of material editor slots an import fills.
const DefaultSlotLimit = 24

// Slots counts the editor slots consumed during one import. The counter
// saturates at the limit.
type Slots struct {
	next  int
	limit int
}

// NewSlots returns a counter whose next slot is start.
func NewSlots(start, limit int) *Slots {
	return &Slots{next: start, limit: limit}
}

// Take returns the next free slot, or false once the limit is reached.
func (s *Slots) Take() (int, bool) {
	if s.next >= s.limit {
		return 0, false
	}
	slot := s.next
	s.next++
	return slot, true
}

// Next returns the slot Take would hand out next.
func (s *Slots) Next() int { return s.next }

// Exhausted reports whether no slots are left.
func (s *Slots) Exhausted() bool { return s.next >= s.limit }

// Registry finds or creates the host material of a style, by name.
type Registry struct {
	scene   host.Scene
	slots   *Slots
	log     *zap.Logger
	created int
}

// NewRegistry creates a registry over the scene's material library. Slot
// numbering continues after the materials the library already holds.
func NewRegistry(scene host.Scene, slotLimit int, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	if slotLimit <= 0 {
		slotLimit = DefaultSlotLimit
	}
	return &Registry{
		scene: scene,
		slots: NewSlots(scene.MaterialCount(), slotLimit),
		log:   log,
	}
}

// FindOrCreate returns the library material named after the style. An
// existing material is returned as is, even if its attributes differ from
// the style's.
func (r *Registry) FindOrCreate(style ifcgeom.Style) host.Material {
	if m, ok := r.scene.FindMaterial(style.Name); ok {
		return m
	}

	var attrs host.StandardAttributes
	if style.Diffuse != nil {
		c := *style.Diffuse
		attrs.Diffuse = &c
	}
	if style.Specular != nil {
		c := *style.Specular
		attrs.Specular = &c
	}
	if style.Specularity != nil {
		v := *style.Specularity
		attrs.Shininess = &v
	}
	if style.Transparency != nil {
		opacity := 1 - *style.Transparency
		attrs.Opacity = &opacity
	}

	m := r.scene.NewStandardMaterial(style.Name, attrs)
	r.created++
	r.log.Debug("created material", zap.String("name", style.Name))
	r.Place(m)
	return m
}

// Default returns the attribute-less material named after an element
// type, creating it on first use.
func (r *Registry) Default(elementType string) host.Material {
	if m, ok := r.scene.FindMaterial(elementType); ok {
		return m
	}

	m := r.scene.NewStandardMaterial(elementType, host.StandardAttributes{})
	r.created++
	r.log.Debug("created default material", zap.String("type", elementType))
	r.Place(m)
	return m
}

// Place puts a newly created material into the next editor slot. Once the
// slots are used up the material stays in the library without one.
func (r *Registry) Place(m host.Material) {
	slot, ok := r.slots.Take()
	if !ok {
		r.log.Debug("material editor full", zap.String("material", m.Name()))
		return
	}
	r.scene.PutToEditor(m, slot)
}

// Slots returns the registry's slot counter.
func (r *Registry) Slots() *Slots { return r.slots }

// Created returns the number of materials this registry added to the
// library.
func (r *Registry) Created() int { return r.created }
