package vmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"inside", 0.5, 0, 1, 0.5},
		{"below", -2, 0, 1, 0},
		{"above", 3, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
	if got := Clamp(float32(2), 0, 1); got != 1 {
		t.Errorf("Clamp float32 = %v, want 1", got)
	}
}

func TestUnit(t *testing.T) {
	u, ok := Unit(mgl64.Vec3{3, 0, 4})
	if !ok {
		t.Fatal("Unit reported no direction for (3,0,4)")
	}
	if !almostEqual(u.Len(), 1, 1e-12) || !almostEqual(u[0], 0.6, 1e-12) {
		t.Errorf("Unit = %v, want (0.6, 0, 0.8)", u)
	}
	if _, ok := Unit(mgl64.Vec3{1e-12, 0, 0}); ok {
		t.Error("Unit of a near-zero vector should report ok=false")
	}
	if _, ok := Unit(mgl64.Vec3{math.NaN(), 0, 0}); ok {
		t.Error("Unit of NaN vector should report ok=false")
	}
}

func TestReject(t *testing.T) {
	got := Reject(mgl64.Vec3{1, 2, 3}, UnitY)
	if got != (mgl64.Vec3{1, 0, 3}) {
		t.Errorf("Reject = %v, want (1,0,3)", got)
	}
}

func TestIntegrateQuat(t *testing.T) {
	q := mgl64.QuatIdent()
	w := mgl64.Vec3{0, 0, 1}
	for i := 0; i < 1000; i++ {
		q = IntegrateQuat(q, w, 0.001)
	}
	if !almostEqual(q.Len(), 1, 1e-9) {
		t.Errorf("quaternion length = %v, want 1", q.Len())
	}
	// one radian about +Z
	if got, want := q.Rotate(UnitX), (mgl64.Vec3{math.Cos(1), math.Sin(1), 0}); !almostEqual(got.Sub(want).Len(), 0, 1e-3) {
		t.Errorf("rotated +X = %v, want %v", got, want)
	}
	if IntegrateQuat(q, Zero, 1) != q {
		t.Error("zero angular velocity should not change orientation")
	}
}

func TestFinite(t *testing.T) {
	if !Finite(mgl64.Vec3{1, 2, 3}) {
		t.Error("finite vector reported as non-finite")
	}
	if Finite(mgl64.Vec3{math.Inf(1), 0, 0}) {
		t.Error("Inf vector reported as finite")
	}
}
