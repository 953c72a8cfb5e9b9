package debug

import (
	gomath "math"

	"github.com/Faultbox/ifcscene/pkg/math"
)

// GroundGrid generates grid lines on the plane z = lo.Z covering the XY
// extent of a bounding box, snapped outward to multiples of spacing.
// Returns x, y, z triples, two per line.
func GroundGrid(lo, hi math.Vec3, spacing float32) []float32 {
	if spacing <= 0 {
		return nil
	}

	snap := func(v float32, up bool) float32 {
		f := float64(v / spacing)
		if up {
			return float32(gomath.Ceil(f)) * spacing
		}
		return float32(gomath.Floor(f)) * spacing
	}
	x0, x1 := snap(lo.X, false), snap(hi.X, true)
	y0, y1 := snap(lo.Y, false), snap(hi.Y, true)
	z := lo.Z

	var out []float32
	for x := x0; x <= x1+spacing/2; x += spacing {
		out = append(out, x, y0, z, x, y1, z)
	}
	for y := y0; y <= y1+spacing/2; y += spacing {
		out = append(out, x0, y, z, x1, y, z)
	}
	return out
}

// GridSpacing picks a power-of-ten spacing giving roughly ten cells across
// the larger horizontal extent.
func GridSpacing(lo, hi math.Vec3) float32 {
	extent := hi.X - lo.X
	if dy := hi.Y - lo.Y; dy > extent {
		extent = dy
	}
	if extent <= 0 {
		return 1
	}
	return float32(gomath.Pow(10, gomath.Floor(gomath.Log10(float64(extent)/10)+0.5)))
}
