// Package spatialmath defines the spatial mathematical operations used by the
// scan pipeline: rigid SE3 poses, relative transforms, and interpolation.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a rigid transform in 3D Euclidean space: a translation
// paired with a unit rotation quaternion. The zero value is not a valid pose;
// use NewZeroPose for the identity.
type Pose struct {
	translation r3.Vector
	rotation    quat.Number
}

// NewZeroPose returns the identity pose.
func NewZeroPose() Pose {
	return Pose{rotation: quat.Number{Real: 1}}
}

// NewPose returns a pose with the given translation and rotation. The rotation
// is normalized on the way in so the unit-quaternion invariant holds for every
// pose constructed through this package.
func NewPose(translation r3.Vector, rotation quat.Number) Pose {
	return Pose{translation, Normalize(rotation)}
}

// NewPoseFromPoint returns a pose with the given translation and no rotation.
func NewPoseFromPoint(translation r3.Vector) Pose {
	return Pose{translation, quat.Number{Real: 1}}
}

// NewPoseFromAxisAngle returns a pose rotated by theta radians about the given
// axis, with the given translation.
func NewPoseFromAxisAngle(translation, axis r3.Vector, theta float64) Pose {
	if axis.Norm() == 0 {
		return NewPoseFromPoint(translation)
	}
	u := axis.Normalize()
	s := math.Sin(theta / 2)
	return Pose{translation, quat.Number{
		Real: math.Cos(theta / 2),
		Imag: u.X * s,
		Jmag: u.Y * s,
		Kmag: u.Z * s,
	}}
}

// Point returns the translation component.
func (p Pose) Point() r3.Vector {
	return p.translation
}

// Rotation returns the rotation component.
func (p Pose) Rotation() quat.Number {
	return p.rotation
}

// TransformPoint applies the pose to a point.
func (p Pose) TransformPoint(v r3.Vector) r3.Vector {
	return p.translation.Add(RotateVector(p.rotation, v))
}

// Compose returns the pose equivalent to applying a, then b in a's frame.
func Compose(a, b Pose) Pose {
	return Pose{
		translation: a.TransformPoint(b.translation),
		rotation:    Normalize(quat.Mul(a.rotation, b.rotation)),
	}
}

// Invert returns the pose which composed with p yields the identity.
func Invert(p Pose) Pose {
	rInv := quat.Conj(p.rotation)
	return Pose{RotateVector(rInv, p.translation.Mul(-1)), rInv}
}

// PoseBetween returns the relative pose taking a to b, inverse(a) composed
// with b. PoseBetween(p, p) is the identity for any p.
func PoseBetween(a, b Pose) Pose {
	return Compose(Invert(a), b)
}

// Interpolate returns the pose located amt of the way from a to b, amt in
// [0, 1]. Translation interpolates linearly and rotation spherically.
func Interpolate(a, b Pose, amt float64) Pose {
	t := a.translation.Add(b.translation.Sub(a.translation).Mul(amt))
	return Pose{t, slerp(a.rotation, b.rotation, amt)}
}

// PoseAlmostEqual will return a bool describing whether two poses represent
// approximately the same transform.
func PoseAlmostEqual(a, b Pose) bool {
	return a.translation.Sub(b.translation).Norm() < 1e-8 &&
		QuaternionAlmostEqual(a.rotation, b.rotation, 1e-8)
}
