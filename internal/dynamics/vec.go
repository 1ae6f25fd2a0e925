package dynamics

import "math"

// Minimal fixed-size 3-vector and rotation helpers for the recursive
// Newton-Euler pass. Quantities are expressed per link frame, so only
// 3-vectors ever appear.

type vec3 [3]float64

func (a vec3) add(b vec3) vec3 {
	return vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func (a vec3) scale(s float64) vec3 {
	return vec3{a[0] * s, a[1] * s, a[2] * s}
}

func (a vec3) cross(b vec3) vec3 {
	return vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// mat3 is a rotation matrix, rows-major.
type mat3 [3][3]float64

// mul applies R to v.
func (m mat3) mul(v vec3) vec3 {
	return vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// mulT applies the transpose (inverse rotation) to v.
func (m mat3) mulT(v vec3) vec3 {
	return vec3{
		m[0][0]*v[0] + m[1][0]*v[1] + m[2][0]*v[2],
		m[0][1]*v[0] + m[1][1]*v[1] + m[2][1]*v[2],
		m[0][2]*v[0] + m[1][2]*v[1] + m[2][2]*v[2],
	}
}

// linkRotation builds the rotation of link frame i expressed in frame
// i-1 for the modified-DH convention: RotX(alpha) * RotZ(theta).
func linkRotation(alpha, theta float64) mat3 {
	ca, sa := math.Cos(alpha), math.Sin(alpha)
	ct, st := math.Cos(theta), math.Sin(theta)
	return mat3{
		{ct, -st, 0},
		{ca * st, ca * ct, -sa},
		{sa * st, sa * ct, ca},
	}
}

// linkOrigin is the position of frame i's origin in frame i-1 for the
// modified-DH convention.
func linkOrigin(a, alpha, d float64) vec3 {
	return vec3{a, -math.Sin(alpha) * d, math.Cos(alpha) * d}
}
