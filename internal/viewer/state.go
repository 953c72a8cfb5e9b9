package viewer

import (
	"fmt"

	"github.com/Faultbox/ifcscene/internal/engine/debug"
	"github.com/Faultbox/ifcscene/internal/engine/picking"
	"github.com/Faultbox/ifcscene/internal/host/memscene"
	"github.com/Faultbox/ifcscene/pkg/math"
)

// State holds the view toggles and the current selection.
type State struct {
	ShowHidden bool
	ShowEdges  bool
	ShowBounds bool
	ShowGrid   bool

	// Selected is an index into Geometry.Nodes, or -1.
	Selected int
}

// NewState returns the initial view state.
func NewState(showHidden, showEdges bool) State {
	return State{
		ShowHidden: showHidden,
		ShowEdges:  showEdges,
		ShowGrid:   true,
		Selected:   -1,
	}
}

// Pick selects the closest node hit by the ray and returns it, or nil.
func (s *State) Pick(g *Geometry, r picking.Ray) *memscene.Node {
	s.Selected = picking.Pick(r, g.Boxes)
	return s.SelectedNode(g)
}

// SelectedNode returns the selected node, or nil.
func (s *State) SelectedNode(g *Geometry) *memscene.Node {
	if s.Selected < 0 || s.Selected >= len(g.Nodes) {
		return nil
	}
	return g.Nodes[s.Selected]
}

// Overlay builds the line vertices drawn on top of the scene: the ground
// grid and the bounding box of the selection or of the whole scene.
func (s *State) Overlay(g *Geometry) (grid, box []float32) {
	if !g.HasBounds {
		return nil, nil
	}
	if s.ShowGrid {
		grid = debug.GroundGrid(g.Bounds.Min, g.Bounds.Max, debug.GridSpacing(g.Bounds.Min, g.Bounds.Max))
	}
	switch {
	case s.Selected >= 0 && s.Selected < len(g.Boxes):
		b := g.Boxes[s.Selected]
		box = debug.BBoxWireframe(b.Min, b.Max)
	case s.ShowBounds:
		box = debug.BBoxWireframe(g.Bounds.Min, g.Bounds.Max)
	}
	return grid, box
}

// Describe formats a node for the selection log.
func Describe(n *memscene.Node) string {
	material := "<none>"
	if n.Material != nil {
		material = n.Material.Name()
	}
	b := n.WorldBounds()
	return fmt.Sprintf("%s material=%s size=%s", n.Name, material, formatVec(b.Size()))
}

func formatVec(v math.Vec3) string {
	return fmt.Sprintf("(%.3g, %.3g, %.3g)", v.X, v.Y, v.Z)
}
