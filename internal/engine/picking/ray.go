// Package picking provides ray casting and object picking utilities.
package picking

import (
	gomath "math"

	"github.com/Faultbox/ifcscene/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// ScreenToRay converts pixel coordinates to a world-space ray for a
// perspective camera at eye looking at center with the given up vector.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, eye, center, up math.Vec3, fovY float32) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	forward := center.Sub(eye).Normalize()
	right := forward.Cross(up).Normalize()
	trueUp := right.Cross(forward)

	tanHalf := float32(gomath.Tan(float64(fovY) / 2))
	aspect := viewportW / viewportH

	dir := forward.
		Add(right.Scale(ndcX * tanHalf * aspect)).
		Add(trueUp.Scale(ndcY * tanHalf))

	return Ray{Origin: eye, Direction: dir.Normalize()}
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	origin := r.Origin.Array()
	dir := r.Direction.Array()
	lo := box.Min.Array()
	hi := box.Max.Array()

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Pick returns the index of the nearest box hit by the ray, or -1.
func Pick(r Ray, boxes []AABB) int {
	best := -1
	bestT := float32(gomath.MaxFloat32)
	for i, b := range boxes {
		if t, ok := r.IntersectAABB(b); ok && t < bestT {
			best, bestT = i, t
		}
	}
	return best
}
