package primitives

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/physics"
)

func near(a rl.Vector3, b mgl64.Vec3) bool {
	const tol = 1e-5
	return math.Abs(float64(a.X)-b[0]) < tol && math.Abs(float64(a.Y)-b[1]) < tol && math.Abs(float64(a.Z)-b[2]) < tol
}

func TestForShape(t *testing.T) {
	coin := ForShape(physics.Cylinder(0.2, 0.04))
	if coin.Mesh != Cylinder || coin.Scale != (mgl64.Vec3{0.4, 0.04, 0.4}) || coin.Offset != (mgl64.Vec3{0, -0.5, 0}) {
		t.Errorf("coin placement = %+v", coin)
	}
	box := ForShape(physics.Box(1, 2, 3))
	if box.Mesh != Cube || box.Scale != (mgl64.Vec3{1, 2, 3}) || box.Offset != (mgl64.Vec3{}) {
		t.Errorf("box placement = %+v", box)
	}
	floor := ForSurface(physics.NewSurface("floor", physics.RoleFloor, mgl64.Vec3{}, mgl64.QuatIdent(), 1, 2))
	if floor.Mesh != Plane || floor.Scale != (mgl64.Vec3{2, 1, 4}) {
		t.Errorf("floor placement = %+v", floor)
	}
}

func TestTransform(t *testing.T) {
	pos := mgl64.Vec3{1, 2, 3}
	tests := []struct {
		name  string
		p     Placement
		rot   mgl64.Quat
		local rl.Vector3
		want  mgl64.Vec3
	}{
		// the unit cylinder spans Y in [0,1]; its top lands at half the coin height above pos
		{"coin top", ForShape(physics.Cylinder(0.2, 0.04)), mgl64.QuatIdent(), rl.NewVector3(0, 1, 0), mgl64.Vec3{1, 2.02, 3}},
		{"coin rim", ForShape(physics.Cylinder(0.2, 0.04)), mgl64.QuatIdent(), rl.NewVector3(0.5, 0.5, 0), mgl64.Vec3{1.2, 2, 3}},
		{"box corner", ForShape(physics.Box(2, 4, 6)), mgl64.QuatIdent(), rl.NewVector3(0.5, 0.5, 0.5), mgl64.Vec3{2, 4, 6}},
		{"rotated box", ForShape(physics.Box(2, 1, 1)), mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}), rl.NewVector3(0.5, 0, 0), mgl64.Vec3{1, 3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.p.Transform(pos, tt.rot)
			if got := rl.Vector3Transform(tt.local, m); !near(got, tt.want) {
				t.Errorf("transformed %v = %v, want %v", tt.local, got, tt.want)
			}
		})
	}
}

func TestMatrixLayout(t *testing.T) {
	m := Matrix(mgl64.Translate3D(4, 5, 6))
	if m.M12 != 4 || m.M13 != 5 || m.M14 != 6 || m.M15 != 1 {
		t.Errorf("translation not in M12..M14: %+v", m)
	}
}
