package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/vmath"
)

func TestCollideBoxes(t *testing.T) {
	tests := []struct {
		name      string
		offset    mgl64.Vec3
		wantHit   bool
		wantDepth float64
		wantN     mgl64.Vec3
	}{
		{"overlap on x", mgl64.Vec3{0.9, 0, 0}, true, 0.1, mgl64.Vec3{1, 0, 0}},
		{"overlap on -z", mgl64.Vec3{0, 0.2, -0.75}, true, 0.25, mgl64.Vec3{0, 0, -1}},
		{"touching", mgl64.Vec3{1, 0, 0}, false, 0, vmath.Zero},
		{"apart", mgl64.Vec3{1.5, 0, 0}, false, 0, vmath.Zero},
		{"far", mgl64.Vec3{10, 10, 10}, false, 0, vmath.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustBody(t, BodyDef{Shape: Box(1, 1, 1)})
			b := mustBody(t, BodyDef{Shape: Box(1, 1, 1), Position: tt.offset})
			c, hit := Collide(a, b)
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v (contact %+v)", hit, tt.wantHit, c)
			}
			if !hit {
				return
			}
			if !almostEqual(c.Depth, tt.wantDepth, 1e-5) {
				t.Errorf("Depth = %v, want %v", c.Depth, tt.wantDepth)
			}
			if !vec3AlmostEqual(c.Normal, tt.wantN, 1e-4) {
				t.Errorf("Normal = %v, want %v", c.Normal, tt.wantN)
			}
		})
	}
}

func TestCollideStackedCoins(t *testing.T) {
	a := mustBody(t, coinDef(vmath.Zero))
	b := mustBody(t, coinDef(mgl64.Vec3{0.05, 0.03, 0}))
	c, hit := Collide(a, b)
	if !hit {
		t.Fatal("stacked coins do not collide")
	}
	if !almostEqual(c.Depth, 0.01, 1e-5) {
		t.Errorf("Depth = %v, want 0.01", c.Depth)
	}
	if !vec3AlmostEqual(c.Normal, vmath.UnitY, 1e-4) {
		t.Errorf("Normal = %v, want +Y", c.Normal)
	}
}

func TestCollideCoinEdgeOn(t *testing.T) {
	// a coin standing on its rim, pressed sideways into a flat one
	def := coinDef(mgl64.Vec3{0.21, 0, 0})
	def.Orientation = mgl64.QuatRotate(math.Pi/2, vmath.UnitZ)
	a := mustBody(t, coinDef(vmath.Zero))
	b := mustBody(t, def)
	c, hit := Collide(a, b)
	if !hit {
		t.Fatal("edge-on coin does not collide")
	}
	if !almostEqual(c.Depth, 0.01, 1e-4) {
		t.Errorf("Depth = %v, want 0.01", c.Depth)
	}
	if !vec3AlmostEqual(c.Normal, vmath.UnitX, 1e-3) {
		t.Errorf("Normal = %v, want +X", c.Normal)
	}
}

func TestNarrowPhaseReusesBuffers(t *testing.T) {
	np := newNarrowPhase(DefaultConfig().Epsilon)
	def := coinDef(mgl64.Vec3{0.15, 0.01, 0.03})
	def.Orientation = vmath.Euler(0.3, 0.2, math.Pi/2)
	a := mustBody(t, coinDef(vmath.Zero))
	b := mustBody(t, def)
	want, hit := np.collide(a, b)
	if !hit {
		t.Fatal("tilted coins do not collide")
	}
	if c, _ := Collide(a, b); c != want {
		t.Errorf("Collide = %+v, narrow phase = %+v", c, want)
	}
	allocs := testing.AllocsPerRun(20, func() {
		if c, _ := np.collide(a, b); c != want {
			t.Errorf("repeat contact = %+v, want %+v", c, want)
		}
	})
	if allocs != 0 {
		t.Errorf("collide allocates %v times per call", allocs)
	}
}

func TestCollideIdenticalPose(t *testing.T) {
	a := mustBody(t, coinDef(mgl64.Vec3{0, 5, 0}))
	b := mustBody(t, coinDef(mgl64.Vec3{0, 5, 0}))
	c, hit := Collide(a, b)
	if !hit {
		t.Fatal("coincident coins do not collide")
	}
	if !(c.Depth > 0) || !almostEqual(c.Normal.Len(), 1, 1e-9) {
		t.Fatalf("contact = %+v, want a unit normal and positive depth", c)
	}
	separate(a, b, c)
	if c2, hit := Collide(a, b); hit && c2.Depth > 1e-4 {
		t.Errorf("still overlapping by %v after separation", c2.Depth)
	}
}

func TestSeparateByInverseMass(t *testing.T) {
	a := mustBody(t, BodyDef{Shape: Box(1, 1, 1), Mass: 1})
	b := mustBody(t, BodyDef{Shape: Box(1, 1, 1), Mass: 3, Position: mgl64.Vec3{0.6, 0, 0}})
	separate(a, b, Contact{Normal: vmath.UnitX, Depth: 0.4})
	if !almostEqual(a.Position[0], -0.3, 1e-12) || !almostEqual(b.Position[0], 0.7, 1e-12) {
		t.Errorf("positions = %v %v, want -0.3 and 0.7", a.Position, b.Position)
	}

	a.Kind = Static
	b.Position = mgl64.Vec3{0.6, 0, 0}
	before := a.Position
	separate(a, b, Contact{Normal: vmath.UnitX, Depth: 0.4})
	if a.Position != before || !almostEqual(b.Position[0], 1.0, 1e-12) {
		t.Errorf("static split = %v %v, want static untouched", a.Position, b.Position)
	}
}

func TestRespondHeadOn(t *testing.T) {
	a := mustBody(t, BodyDef{Shape: Box(1, 1, 1), LinearVelocity: mgl64.Vec3{1, 0, 0}})
	b := mustBody(t, BodyDef{Shape: Box(1, 1, 1), Position: mgl64.Vec3{1, 0, 0}, LinearVelocity: mgl64.Vec3{-1, 0, 0}})
	c := coefficients{friction: 0.5, restitution: 1}
	if !respond(a, b, vmath.UnitX, mgl64.Vec3{0.5, 0, 0}, c, testParams()) {
		t.Fatal("approaching bodies reported no contact")
	}
	if !vec3AlmostEqual(a.LinearVelocity, mgl64.Vec3{-1, 0, 0}, 1e-9) || !vec3AlmostEqual(b.LinearVelocity, mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("elastic swap gave %v %v", a.LinearVelocity, b.LinearVelocity)
	}
	if respond(a, b, vmath.UnitX, mgl64.Vec3{0.5, 0, 0}, c, testParams()) {
		t.Error("separating bodies reported a contact")
	}
}

func TestRespondFrictionLimit(t *testing.T) {
	bd, _ := NewBoundary(NewSurface("floor", RoleFloor, vmath.Zero, mgl64.QuatIdent(), 5, 5))
	def := BodyDef{
		Shape:          Box(0.2, 0.2, 0.2),
		Position:       mgl64.Vec3{0, 0.1, 0},
		Material:       Material{Friction: 0.5},
		LinearVelocity: mgl64.Vec3{5, -1, 0},
	}
	b := mustBody(t, def)
	bd.Resolve(b, testParams())
	// the normal impulse is 1 per unit mass, so sliding loses at most 0.5
	if vx := b.LinearVelocity[0]; vx < 4.5-1e-9 || vx >= 5 {
		t.Errorf("sliding velocity = %v, want in [4.5, 5)", vx)
	}
}
