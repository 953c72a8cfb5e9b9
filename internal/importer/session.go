// Package importer drives an import: it pulls triangulated elements from an
// iterator and turns each into one host scene node with its mesh, edge
// visibility, composed material and placement.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/ifcscene/internal/host"
	"github.com/Faultbox/ifcscene/internal/material"
	"github.com/Faultbox/ifcscene/internal/mesh"
	"github.com/Faultbox/ifcscene/pkg/ifcgeom"
	"github.com/Faultbox/ifcscene/pkg/math"
)

// ProgressTitle is the title passed to Progress.Start.
const ProgressTitle = "Importing file..."

// ErrInitialize wraps iterator initialization failures.
var ErrInitialize = errors.New("import failed to start")

// Iterator is the pull cursor over the elements of an input.
type Iterator interface {
	// Initialize prepares the first element. An error aborts the import.
	Initialize() error
	// Current returns the element under the cursor.
	Current() *ifcgeom.Element
	// Next advances the cursor and reports whether an element is available.
	Next() bool
	// Progress returns the fraction of the input consumed, in [0, 1].
	Progress() float64
}

// DefaultHiddenTypes are the element types whose nodes start hidden.
func DefaultHiddenTypes() []string {
	return []string{"IfcOpeningElement", "IfcSpace"}
}

// Options configure a Session.
type Options struct {
	// SlotLimit bounds the material editor slots. Zero means
	// material.DefaultSlotLimit.
	SlotLimit int
	// HiddenTypes replaces DefaultHiddenTypes when non-nil.
	HiddenTypes []string
	Logger      *zap.Logger
}

// Stats summarize an import.
type Stats struct {
	Elements       int
	HiddenNodes    int
	Faces          int
	VisibleEdges   int
	Degenerate     int
	BadMaterialIDs int
	Materials      int
	Composites     int
	SlotsUsed      int
	Duration       time.Duration
}

// Session holds the state of one import: the material cache and slot
// counter, the hidden types and the running statistics. A session is not
// safe for concurrent use; RunPooled confines it to one goroutine.
type Session struct {
	scene     host.Scene
	composer  *material.Composer
	hidden    map[string]bool
	log       *zap.Logger
	slotStart int
	stats     Stats
}

// NewSession creates a session importing into scene.
func NewSession(scene host.Scene, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	hiddenTypes := opts.HiddenTypes
	if hiddenTypes == nil {
		hiddenTypes = DefaultHiddenTypes()
	}
	hidden := make(map[string]bool, len(hiddenTypes))
	for _, t := range hiddenTypes {
		hidden[t] = true
	}

	reg := material.NewRegistry(scene, opts.SlotLimit, log.Named("material"))
	return &Session{
		scene:     scene,
		composer:  material.NewComposer(reg, log.Named("material")),
		hidden:    hidden,
		log:       log,
		slotStart: reg.Slots().Next(),
	}
}

// Stats returns the statistics gathered so far.
func (s *Session) Stats() Stats {
	st := s.stats
	reg := s.composer.Registry()
	st.Materials = reg.Created()
	st.Composites = s.composer.Composites()
	st.SlotsUsed = reg.Slots().Next() - s.slotStart
	return st
}

// Hidden reports whether nodes of the element type start hidden.
func (s *Session) Hidden(elementType string) bool {
	return s.hidden[elementType]
}

// Run imports every element of it into the scene, one at a time. An
// initialization failure returns an error wrapping ErrInitialize before any
// node is created. Cancellation is checked between elements; nodes added
// before it stay in the scene.
func (s *Session) Run(ctx context.Context, it Iterator, progress host.Progress) (Stats, error) {
	if progress == nil {
		progress = host.NopProgress{}
	}
	if err := it.Initialize(); err != nil {
		return s.Stats(), fmt.Errorf("%w: %w", ErrInitialize, err)
	}

	start := time.Now()
	progress.Start(ProgressTitle)
	defer progress.End()

	for {
		if err := ctx.Err(); err != nil {
			s.stats.Duration = time.Since(start)
			return s.Stats(), fmt.Errorf("import cancelled after %d elements: %w", s.stats.Elements, err)
		}

		s.Build(it.Current())
		progress.Update(it.Progress())

		if !it.Next() {
			break
		}
	}

	s.stats.Duration = time.Since(start)
	return s.Stats(), nil
}

// Build creates, configures and adds the node of one element.
func (s *Session) Build(el *ifcgeom.Element) host.Node {
	return s.finish(s.prepare(el))
}

// prepared is an element whose mesh is complete. Preparing touches no
// session state, so it can run on any goroutine.
type prepared struct {
	seq      int
	el       *ifcgeom.Element
	mesh     *mesh.Mesh
	bad      int
	progress float64
}

func (s *Session) prepare(el *ifcgeom.Element) *prepared {
	g := &el.Geometry

	m := mesh.New(g.Vertices, g.Faces)
	m.SetEdgeVisibility(mesh.Classify(g.Edges, g.Faces))
	ids, bad := material.FaceMaterialIDs(g.MaterialIDs, len(g.Styles))
	m.SetMaterialIDs(ids)
	m.Rebuild()

	return &prepared{el: el, mesh: m, bad: bad}
}

// finish composes the element's material and hands the node to the host.
// It must run on the goroutine that owns the session.
func (s *Session) finish(p *prepared) host.Node {
	el := p.el
	g := &el.Geometry

	if p.bad > 0 {
		s.log.Warn("material index out of range, using default material",
			zap.Int("id", el.ID),
			zap.String("type", el.Type),
			zap.Int("faces", p.bad))
	}

	mat := s.composer.Compose(g.Styles, g.MaterialIDs, el.Type)

	node := s.scene.CreateNode(p.mesh)
	node.SetName(NodeName(el))
	hidden := s.hidden[el.Type]
	node.SetHidden(hidden)
	if mat != nil {
		node.SetMaterial(mat)
		node.SetWireColor(mat.Diffuse())
	}
	node.SetTransform(math.PlacementOf(el.Transform))
	s.scene.AddNode(node)

	s.stats.Elements++
	if hidden {
		s.stats.HiddenNodes++
	}
	s.stats.Faces += len(p.mesh.Faces)
	s.stats.VisibleEdges += len(p.mesh.VisibleEdges())
	s.stats.Degenerate += p.mesh.Degenerate
	s.stats.BadMaterialIDs += p.bad

	s.log.Debug("imported element",
		zap.Int("id", el.ID),
		zap.String("type", el.Type),
		zap.String("guid", el.GUID),
		zap.Int("faces", len(p.mesh.Faces)))
	return node
}

// NodeName returns the diagnostic node name "type/name/#id".
func NodeName(el *ifcgeom.Element) string {
	return el.Type + "/" + el.Name + "/#" + strconv.Itoa(el.ID)
}
