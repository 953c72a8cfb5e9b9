package math

import "math"

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// FromRowMajor builds a matrix from 16 values listed row by row, the order
// used by element streams. A translation ends up in values 3, 7 and 11.
func FromRowMajor(v [16]float64) Mat4 {
	var m Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			m[col*4+row] = float32(v[row*4+col])
		}
	}
	return m
}

// At returns the element at (row, col).
func (m Mat4) At(row, col int) float32 {
	return m[col*4+row]
}

// Column returns the first three components of column col.
func (m Mat4) Column(col int) Vec3 {
	return Vec3{m[col*4], m[col*4+1], m[col*4+2]}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			t[row*4+col] = m[col*4+row]
		}
	}
	return t
}

// Perspective returns a perspective projection matrix.
// fovY is in radians, aspect is width/height.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := float32(1.0 / math.Tan(float64(fovY)/2.0))
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// LookAt returns a view matrix looking from eye to center with up direction.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// RotateZ returns a rotation matrix around the Z axis.
// angle is in radians.
func RotateZ(angle float32) Mat4 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))

	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a 3D point by this matrix (assumes w=1).
func (m Mat4) TransformPoint(p [3]float32) [3]float32 {
	x := m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12]
	y := m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13]
	z := m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14]
	w := m[3]*p[0] + m[7]*p[1] + m[11]*p[2] + m[15]
	if w != 0 && w != 1 {
		return [3]float32{x / w, y / w, z / w}
	}
	return [3]float32{x, y, z}
}

// TransformVec3 transforms a Vec3 point by this matrix.
func (m Mat4) TransformVec3(v Vec3) Vec3 {
	p := m.TransformPoint([3]float32{v.X, v.Y, v.Z})
	return Vec3{p[0], p[1], p[2]}
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}

// Placement is an affine transform stored as three basis rows and a
// translation row, the row-vector layout of the scene host
// (p' = p.X*Row0 + p.Y*Row1 + p.Z*Row2 + Translation).
type Placement struct {
	X, Y, Z     Vec3
	Translation Vec3
}

// IdentityPlacement returns the placement that leaves points unchanged.
func IdentityPlacement() Placement {
	return Placement{
		X: Vec3{1, 0, 0},
		Y: Vec3{0, 1, 0},
		Z: Vec3{0, 0, 1},
	}
}

// PlacementOf converts a column-vector matrix into a row-vector placement.
// Column i of m becomes row i of the placement; the projective row is dropped.
func PlacementOf(m Mat4) Placement {
	return Placement{
		X:           m.Column(0),
		Y:           m.Column(1),
		Z:           m.Column(2),
		Translation: m.Column(3),
	}
}

// Apply transforms a point by the placement.
func (p Placement) Apply(v Vec3) Vec3 {
	return p.X.Scale(v.X).Add(p.Y.Scale(v.Y)).Add(p.Z.Scale(v.Z)).Add(p.Translation)
}

// Mat4 converts the placement back to a column-major matrix.
func (p Placement) Mat4() Mat4 {
	return Mat4{
		p.X.X, p.X.Y, p.X.Z, 0,
		p.Y.X, p.Y.Y, p.Y.Z, 0,
		p.Z.X, p.Z.Y, p.Z.Z, 0,
		p.Translation.X, p.Translation.Y, p.Translation.Z, 1,
	}
}

// Determinant returns the determinant of the 3x3 basis. A negative value
// means the placement mirrors geometry.
func (p Placement) Determinant() float32 {
	return p.X.Dot(p.Y.Cross(p.Z))
}
