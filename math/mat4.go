package math

import "math"

// Mat4 uses the row-vector convention: p' = p * M, translation in row 3.
type Mat4 [4][4]float32

func Mat4Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				result[i][j] += m[i][k] * other[k][j]
			}
		}
	}
	return result
}

func (m Mat4) MulVec(v Vec4) Vec4 {
	return v.MulMat(m)
}

// MulPoint transforms a point (w=1) and performs the perspective divide.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return m.MulVec(v.ToVec4(1.0)).ToVec3DivW()
}

// MulDirection transforms a direction (w=0).
func (m Mat4) MulDirection(v Vec3) Vec3 {
	return m.MulVec(v.ToVec4(0)).ToVec3()
}

func Mat4Translation(translation Vec3) Mat4 {
	m := Mat4Identity()
	m[3][0] = translation.X
	m[3][1] = translation.Y
	m[3][2] = translation.Z
	return m
}

func Mat4Scale(scale Vec3) Mat4 {
	m := Mat4Identity()
	m[0][0] = scale.X
	m[1][1] = scale.Y
	m[2][2] = scale.Z
	return m
}

// Mat4Perspective builds an OpenGL-style projection (NDC z in [-1,1]).
func Mat4Perspective(fovY, aspect, near, far float32) Mat4 {
	tanHalfFovy := float32(math.Tan(float64(fovY) / 2))

	var m Mat4
	m[0][0] = 1 / (aspect * tanHalfFovy)
	m[1][1] = 1 / tanHalfFovy
	m[2][2] = -(far + near) / (far - near)
	m[2][3] = -1
	m[3][2] = -(2 * far * near) / (far - near)
	return m
}

func Mat4Orthographic(left, right, bottom, top, near, far float32) Mat4 {
	m := Mat4Identity()
	m[0][0] = 2 / (right - left)
	m[1][1] = 2 / (top - bottom)
	m[2][2] = -2 / (far - near)
	m[3][0] = -(right + left) / (right - left)
	m[3][1] = -(top + bottom) / (top - bottom)
	m[3][2] = -(far + near) / (far - near)
	return m
}

func Mat4LookAt(eye, target, up Vec3) Mat4 {
	zAxis := eye.Sub(target).Normalize()
	xAxis := up.Cross(zAxis).Normalize()
	yAxis := zAxis.Cross(xAxis)

	return Mat4{
		{xAxis.X, yAxis.X, zAxis.X, 0},
		{xAxis.Y, yAxis.Y, zAxis.Y, 0},
		{xAxis.Z, yAxis.Z, zAxis.Z, 0},
		{-xAxis.Dot(eye), -yAxis.Dot(eye), -zAxis.Dot(eye), 1},
	}
}

// Inverse returns the inverse of m, or the identity when m is singular.
// Computed in float64 through 2x2 sub-determinants.
func (m Mat4) Inverse() Mat4 {
	var a [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			a[i][j] = float64(m[i][j])
		}
	}

	s0 := a[0][0]*a[1][1] - a[1][0]*a[0][1]
	s1 := a[0][0]*a[1][2] - a[1][0]*a[0][2]
	s2 := a[0][0]*a[1][3] - a[1][0]*a[0][3]
	s3 := a[0][1]*a[1][2] - a[1][1]*a[0][2]
	s4 := a[0][1]*a[1][3] - a[1][1]*a[0][3]
	s5 := a[0][2]*a[1][3] - a[1][2]*a[0][3]

	c5 := a[2][2]*a[3][3] - a[3][2]*a[2][3]
	c4 := a[2][1]*a[3][3] - a[3][1]*a[2][3]
	c3 := a[2][1]*a[3][2] - a[3][1]*a[2][2]
	c2 := a[2][0]*a[3][3] - a[3][0]*a[2][3]
	c1 := a[2][0]*a[3][2] - a[3][0]*a[2][2]
	c0 := a[2][0]*a[3][1] - a[3][0]*a[2][1]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return Mat4Identity()
	}
	inv := 1 / det

	r := [4][4]float64{
		{
			(a[1][1]*c5 - a[1][2]*c4 + a[1][3]*c3) * inv,
			(-a[0][1]*c5 + a[0][2]*c4 - a[0][3]*c3) * inv,
			(a[3][1]*s5 - a[3][2]*s4 + a[3][3]*s3) * inv,
			(-a[2][1]*s5 + a[2][2]*s4 - a[2][3]*s3) * inv,
		},
		{
			(-a[1][0]*c5 + a[1][2]*c2 - a[1][3]*c1) * inv,
			(a[0][0]*c5 - a[0][2]*c2 + a[0][3]*c1) * inv,
			(-a[3][0]*s5 + a[3][2]*s2 - a[3][3]*s1) * inv,
			(a[2][0]*s5 - a[2][2]*s2 + a[2][3]*s1) * inv,
		},
		{
			(a[1][0]*c4 - a[1][1]*c2 + a[1][3]*c0) * inv,
			(-a[0][0]*c4 + a[0][1]*c2 - a[0][3]*c0) * inv,
			(a[3][0]*s4 - a[3][1]*s2 + a[3][3]*s0) * inv,
			(-a[2][0]*s4 + a[2][1]*s2 - a[2][3]*s0) * inv,
		},
		{
			(-a[1][0]*c3 + a[1][1]*c1 - a[1][2]*c0) * inv,
			(a[0][0]*c3 - a[0][1]*c1 + a[0][2]*c0) * inv,
			(-a[3][0]*s3 + a[3][1]*s1 - a[3][2]*s0) * inv,
			(a[2][0]*s3 - a[2][1]*s1 + a[2][2]*s0) * inv,
		},
	}

	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = float32(r[i][j])
		}
	}
	return out
}
