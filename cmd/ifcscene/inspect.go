package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Faultbox/ifcscene/internal/material"
	"github.com/Faultbox/ifcscene/pkg/ifcgeom"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <stream>",
		Short: "Show element and style statistics of a stream without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ifcgeom.ParseStreamFile(args[0], a.cfg.Import.Charset)
			if err != nil {
				return err
			}
			printInspection(cmd.OutOrStdout(), args[0], inspect(s))
			return nil
		},
	}
}

// inspection summarizes a stream.
type inspection struct {
	Elements     int
	Vertices     int
	Faces        int
	BoundaryEdge int
	ByType       map[string]int
	// StyleUses counts the elements referencing each style name.
	StyleUses map[string]int
	// DefaultFaces counts faces using the default material, including
	// those whose style index is out of range.
	DefaultFaces  int
	BadFaces      int
	MultiElements int
}

func inspect(s *ifcgeom.Stream) inspection {
	in := inspection{
		ByType:    make(map[string]int),
		StyleUses: make(map[string]int),
	}
	for i := range s.Elements {
		el := &s.Elements[i]
		g := &el.Geometry

		in.Elements++
		in.Vertices += g.VertexCount()
		in.Faces += g.FaceCount()
		in.BoundaryEdge += len(g.Edges) / 2
		in.ByType[el.Type]++

		seen := make(map[string]bool, len(g.Styles))
		for _, st := range g.Styles {
			if !seen[st.Name] {
				seen[st.Name] = true
				in.StyleUses[st.Name]++
			}
		}

		needsDefault := material.NeedsDefault(g.MaterialIDs, len(g.Styles))
		if len(material.Names(g.Styles, needsDefault, el.Type)) > 1 {
			in.MultiElements++
		}
		for _, id := range g.MaterialIDs {
			switch {
			case id.IsDefault():
				in.DefaultFaces++
			case !id.InRange(len(g.Styles)):
				in.DefaultFaces++
				in.BadFaces++
			}
		}
	}
	return in
}

func printInspection(w io.Writer, path string, in inspection) {
	fmt.Fprintf(w, "File:           %s\n", path)
	fmt.Fprintf(w, "Elements:       %d\n", in.Elements)
	fmt.Fprintf(w, "Vertices:       %d\n", in.Vertices)
	fmt.Fprintf(w, "Faces:          %d\n", in.Faces)
	fmt.Fprintf(w, "Boundary edges: %d\n", in.BoundaryEdge)
	fmt.Fprintf(w, "Default faces:  %d\n", in.DefaultFaces)
	if in.BadFaces > 0 {
		fmt.Fprintf(w, "Bad ids:        %d\n", in.BadFaces)
	}
	fmt.Fprintf(w, "Multi-material: %d elements\n", in.MultiElements)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Elements by type:")
	for _, c := range sortedCounts(in.ByType) {
		fmt.Fprintf(w, "  %-24s %d\n", c.name, c.count)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styles:")
	for _, c := range sortedCounts(in.StyleUses) {
		fmt.Fprintf(w, "  %-24s %d\n", c.name, c.count)
	}
}

type count struct {
	name  string
	count int
}

// sortedCounts orders by count, then name.
func sortedCounts(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for name, n := range m {
		out = append(out, count{name, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}
