// Package camera provides camera implementations for 3D rendering.
package camera

import (
	gomath "math"

	"github.com/Faultbox/ifcscene/pkg/math"
)

// OrbitCamera orbits around a center point in a Z-up world.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Elevation above the XY plane (radians)
	Yaw      float32 // Rotation about Z (radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	// FovY is the vertical field of view in radians.
	FovY float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        20,
		Pitch:           0.5,
		Yaw:             -gomath.Pi / 4,
		MinDistance:     0.1,
		MaxDistance:     10000,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FovY:            gomath.Pi / 4,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := gomath.Cos(float64(c.Pitch))
	offset := math.Vec3{
		X: float32(cp * gomath.Cos(float64(c.Yaw))),
		Y: float32(cp * gomath.Sin(float64(c.Yaw))),
		Z: float32(gomath.Sin(float64(c.Pitch))),
	}
	return c.Center.Add(offset.Scale(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Z: 1})
}

// ProjectionMatrix returns a perspective projection whose clip planes
// follow the orbit distance.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	near, far := c.ClipPlanes()
	return math.Perspective(c.FovY, aspect, near, far)
}

// ClipPlanes returns near and far distances for the current orbit.
func (c *OrbitCamera) ClipPlanes() (near, far float32) {
	near = c.Distance * 0.01
	if near < 0.001 {
		near = 0.001
	}
	return near, c.Distance * 100
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity

	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// HandlePan moves the center in the view plane by a mouse delta.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	speed := c.Distance * 0.002

	sy, cy := gomath.Sincos(float64(c.Yaw))
	sp, cp := gomath.Sincos(float64(c.Pitch))
	right := math.Vec3{X: float32(-sy), Y: float32(cy)}
	up := math.Vec3{
		X: float32(-sp * cy),
		Y: float32(-sp * sy),
		Z: float32(cp),
	}

	c.Center = c.Center.Add(right.Scale(-deltaX * speed)).Add(up.Scale(deltaY * speed))
}

// FitToBounds centers the camera on a bounding box and backs off until the
// whole box is in view.
func (c *OrbitCamera) FitToBounds(lo, hi math.Vec3) {
	c.Center = lo.Add(hi).Scale(0.5)

	radius := hi.Sub(lo).Length() / 2
	if radius < 0.01 {
		radius = 0.01
	}

	c.Distance = radius / float32(gomath.Sin(float64(c.FovY)/2)) * 1.1
	c.MinDistance = radius * 0.01
	c.MaxDistance = c.Distance * 20
	c.Pitch = 0.5
	c.Yaw = -gomath.Pi / 4
}
