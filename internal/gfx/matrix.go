package gfx

import "github.com/chewxy/math32"

// Matrix is a 4x4 column-major matrix for column vectors: element (row r,
// column c) lives at index c*4+r, translation at 12, 13, 14. The layout
// matches OpenGL and raylib.
type Matrix [16]float32

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// At returns the element at row r, column c.
func (m Matrix) At(r, c int) float32 { return m[c*4+r] }

// Mul returns m*n; applied to a vector, n acts first.
func (m Matrix) Mul(n Matrix) Matrix {
	var out Matrix
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+r] * n[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// Apply transforms a point (w = 1).
func (m Matrix) Apply(v Vector3) Vector3 {
	x := m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]
	y := m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]
	z := m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w != 0 && w != 1 {
		x, y, z = x/w, y/w, z/w
	}
	return Vector3{X: x, Y: y, Z: z}
}

func Scaling(s Vector3) Matrix {
	m := Identity()
	m[0], m[5], m[10] = s.X, s.Y, s.Z
	return m
}

func Translation(t Vector3) Matrix {
	m := Identity()
	m[12], m[13], m[14] = t.X, t.Y, t.Z
	return m
}

func RotationX(angle float32) Matrix {
	s, c := math32.Sin(angle), math32.Cos(angle)
	m := Identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

func RotationY(angle float32) Matrix {
	s, c := math32.Sin(angle), math32.Cos(angle)
	m := Identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

func RotationZ(angle float32) Matrix {
	s, c := math32.Sin(angle), math32.Cos(angle)
	m := Identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// RotationRollPitchYaw rotates by roll around Z, then pitch around X, then
// yaw around Y. Angles are radians.
func RotationRollPitchYaw(roll, pitch, yaw float32) Matrix {
	return RotationY(yaw).Mul(RotationX(pitch)).Mul(RotationZ(roll))
}

// RotationQuaternion builds a rotation from a quaternion (X, Y, Z, W). The
// quaternion is normalized first; a zero quaternion yields the identity.
func RotationQuaternion(q Vector4) Matrix {
	n := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if n == 0 {
		return Identity()
	}
	x, y, z, w := q.X/n, q.Y/n, q.Z/n, q.W/n
	m := Identity()
	m[0] = 1 - 2*(y*y+z*z)
	m[1] = 2 * (x*y + z*w)
	m[2] = 2 * (x*z - y*w)
	m[4] = 2 * (x*y - z*w)
	m[5] = 1 - 2*(x*x+z*z)
	m[6] = 2 * (y*z + x*w)
	m[8] = 2 * (x*z + y*w)
	m[9] = 2 * (y*z - x*w)
	m[10] = 1 - 2*(x*x+y*y)
	return m
}

// Ortho maps the box to clip space, MinZ to -1 and MaxZ to 1.
func Ortho(b Box) Matrix {
	rl := b.MaxX - b.MinX
	tb := b.MaxY - b.MinY
	fn := b.MaxZ - b.MinZ
	m := Identity()
	m[0] = 2 / rl
	m[5] = 2 / tb
	m[10] = 2 / fn
	m[12] = -(b.MaxX + b.MinX) / rl
	m[13] = -(b.MaxY + b.MinY) / tb
	m[14] = -(b.MaxZ + b.MinZ) / fn
	return m
}

// Perspective is a right-handed projection; fovy is radians.
func Perspective(fovy, aspect, near, far float32) Matrix {
	f := 1 / math32.Tan(fovy/2)
	var m Matrix
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) / (near - far)
	m[11] = -1
	m[14] = 2 * far * near / (near - far)
	return m
}

// LookAt is a right-handed view matrix.
func LookAt(eye, target, up Vector3) Matrix {
	f := normalize(sub(target, eye))
	s := normalize(cross(f, up))
	u := cross(s, f)
	m := Identity()
	m[0], m[4], m[8] = s.X, s.Y, s.Z
	m[1], m[5], m[9] = u.X, u.Y, u.Z
	m[2], m[6], m[10] = -f.X, -f.Y, -f.Z
	m[12] = -dot(s, eye)
	m[13] = -dot(u, eye)
	m[14] = dot(f, eye)
	return m
}

func sub(a, b Vector3) Vector3 { return Vector3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z} }

func dot(a, b Vector3) float32 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func cross(a, b Vector3) Vector3 {
	return Vector3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func normalize(v Vector3) Vector3 {
	l := math32.Sqrt(dot(v, v))
	if l == 0 {
		return v
	}
	return Vector3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}
}
