package memscene

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Report is a serializable summary of a scene.
type Report struct {
	Summary   ReportSummary    `yaml:"summary"`
	Materials []MaterialReport `yaml:"materials"`
	Nodes     []NodeReport     `yaml:"nodes"`
}

// ReportSummary holds scene-wide counts.
type ReportSummary struct {
	Nodes          int `yaml:"nodes"`
	HiddenNodes    int `yaml:"hidden_nodes"`
	Materials      int `yaml:"materials"`
	MultiMaterials int `yaml:"multi_materials"`
	EditorSlots    int `yaml:"editor_slots_used"`
	Faces          int `yaml:"faces"`
	VisibleEdges   int `yaml:"visible_edges"`
}

// MaterialReport describes one library material.
type MaterialReport struct {
	Name    string   `yaml:"name"`
	Slot    *int     `yaml:"slot,omitempty"`
	Diffuse []uint8  `yaml:"diffuse,flow"`
	Opacity float64  `yaml:"opacity,omitempty"`
	Subs    []string `yaml:"subs,omitempty"`
}

// NodeReport describes one node.
type NodeReport struct {
	Name     string     `yaml:"name"`
	Material string     `yaml:"material,omitempty"`
	Hidden   bool       `yaml:"hidden,omitempty"`
	Vertices int        `yaml:"vertices"`
	Faces    int        `yaml:"faces"`
	Visible  int        `yaml:"visible_edges"`
	Position [3]float32 `yaml:"position,flow"`
	Mirrored bool       `yaml:"mirrored,omitempty"`
}

// Report summarizes the scene.
func (s *Scene) Report() *Report {
	r := &Report{}

	for _, m := range s.Materials() {
		rgb := m.Diffuse().RGB8()
		mr := MaterialReport{
			Name:    m.Name(),
			Diffuse: rgb[:],
		}
		if m.Slot >= 0 {
			slot := m.Slot
			mr.Slot = &slot
			r.Summary.EditorSlots++
		}
		if m.IsMulti() {
			r.Summary.MultiMaterials++
			for _, sub := range m.Subs {
				mr.Subs = append(mr.Subs, sub.Name())
			}
		} else if m.Opacity < 1 {
			mr.Opacity = m.Opacity
		}
		r.Materials = append(r.Materials, mr)
	}
	r.Summary.Materials = len(r.Materials)

	for _, n := range s.Nodes() {
		nr := NodeReport{
			Name:     n.Name,
			Hidden:   n.Hidden,
			Vertices: len(n.Mesh.Vertices),
			Faces:    len(n.Mesh.Faces),
			Visible:  len(n.Mesh.VisibleEdges()),
			Position: n.Placement.Translation.Array(),
			Mirrored: n.Placement.Determinant() < 0,
		}
		if n.Material != nil {
			nr.Material = n.Material.Name()
		}
		if n.Hidden {
			r.Summary.HiddenNodes++
		}
		r.Summary.Faces += nr.Faces
		r.Summary.VisibleEdges += nr.Visible
		r.Nodes = append(r.Nodes, nr)
	}
	r.Summary.Nodes = len(r.Nodes)

	return r
}

// WriteFile writes the report as YAML.
func (r *Report) WriteFile(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
