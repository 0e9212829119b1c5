package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/constraints"
)

// ZeroEpsilon is the length below which a vector is treated as zero (no usable direction).
const ZeroEpsilon = 1e-9

var (
	Zero  = mgl64.Vec3{0, 0, 0}
	UnitX = mgl64.Vec3{1, 0, 0}
	UnitY = mgl64.Vec3{0, 1, 0}
	UnitZ = mgl64.Vec3{0, 0, 1}
	Down  = mgl64.Vec3{0, -1, 0}
)

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Unit returns v scaled to length 1. ok is false (and v is returned unchanged) when v is
// too short to have a direction.
func Unit(v mgl64.Vec3) (u mgl64.Vec3, ok bool) {
	l := v.Len()
	if l < ZeroEpsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return v, false
	}
	return v.Mul(1 / l), true
}

// Reject returns the part of v perpendicular to the unit vector n.
func Reject(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(v.Dot(n)))
}

// Finite reports whether every component of v is a finite number.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Euler builds an orientation from rotations (radians) about X, then Y, then Z.
func Euler(x, y, z float64) mgl64.Quat {
	return mgl64.AnglesToQuat(x, y, z, mgl64.XYZ).Normalize()
}

// IntegrateQuat advances orientation q by angular velocity w (world frame, rad/s) over h seconds.
// The result is renormalized so drift does not accumulate.
func IntegrateQuat(q mgl64.Quat, w mgl64.Vec3, h float64) mgl64.Quat {
	if w.LenSqr() == 0 {
		return q
	}
	spin := mgl64.Quat{W: 0, V: w}.Mul(q).Scale(0.5 * h)
	return q.Add(spin).Normalize()
}
