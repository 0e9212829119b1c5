package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/vmath"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func vec3AlmostEqual(a, b mgl64.Vec3, tol float64) bool {
	return almostEqual(a[0], b[0], tol) && almostEqual(a[1], b[1], tol) && almostEqual(a[2], b[2], tol)
}

func coinDef(pos mgl64.Vec3) BodyDef {
	return BodyDef{
		Kind:     Dynamic,
		Shape:    Cylinder(0.2, 0.04),
		Mass:     1,
		Material: DefaultMaterial(),
		Position: pos,
	}
}

func mustBody(t *testing.T, def BodyDef) *Body {
	t.Helper()
	b, err := NewBody(def)
	if err != nil {
		t.Fatalf("NewBody: %v", err)
	}
	return b
}

func mustAdd(t *testing.T, w *World, b *Body) BodyID {
	t.Helper()
	id, err := w.AddBody(b)
	if err != nil {
		t.Fatalf("AddBody: %v", err)
	}
	return id
}

// floorWorld returns a world with a single 20x20 floor at y=0 and the given gravity strength.
func floorWorld(t *testing.T, cfg Config, gravity float64) *World {
	t.Helper()
	bd, err := NewBoundary(NewSurface("floor", RoleFloor, vmath.Zero, mgl64.QuatIdent(), 10, 10))
	if err != nil {
		t.Fatalf("NewBoundary: %v", err)
	}
	w, err := NewWorld(cfg, bd, NewGravityField(vmath.Down, gravity, math.Max(gravity, 1), 1), nil)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func stepFor(t *testing.T, w *World, seconds, dt float64) {
	t.Helper()
	for n := int(math.Round(seconds / dt)); n > 0; n-- {
		if err := w.Step(dt); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
}
