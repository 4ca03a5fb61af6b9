package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// RotateVector rotates v by the unit quaternion q.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	vq := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, vq), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Normalize scales q to unit length. The zero quaternion normalizes to the
// identity rather than producing NaNs.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

// RotationAngle returns the rotation angle of q in radians, in [0, pi]. The
// magnitude of the scalar component is used so that both quaternion covers of
// the same rotation report the same angle.
func RotationAngle(q quat.Number) float64 {
	w := math.Abs(q.Real)
	if w > 1 {
		w = 1
	}
	return 2 * math.Acos(w)
}

// QuaternionAlmostEqual will return a bool describing whether two quaternions
// represent approximately the same rotation, accounting for double cover.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return quat.Abs(quat.Sub(a, b)) < tol || quat.Abs(quat.Add(a, b)) < tol
}

// slerp spherically interpolates between two unit quaternions. The shorter
// arc is always taken; nearly parallel inputs fall back to normalized linear
// interpolation to avoid dividing by a vanishing sine.
func slerp(a, b quat.Number, amt float64) quat.Number {
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	if dot < 0 {
		b = quat.Scale(-1, b)
		dot = -dot
	}
	if dot > 0.9995 {
		return Normalize(quat.Add(quat.Scale(1-amt, a), quat.Scale(amt, b)))
	}
	theta0 := math.Acos(dot)
	sinTheta0 := math.Sin(theta0)
	theta := theta0 * amt
	s0 := math.Cos(theta) - dot*math.Sin(theta)/sinTheta0
	s1 := math.Sin(theta) / sinTheta0
	return Normalize(quat.Add(quat.Scale(s0, a), quat.Scale(s1, b)))
}
