package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/vmath"
)

// SurfaceRole tags a boundary surface. Every boundary needs at least one floor.
type SurfaceRole int

const (
	RoleFloor SurfaceRole = iota
	RoleWall
	RoleCeiling
)

func (r SurfaceRole) String() string {
	switch r {
	case RoleFloor:
		return "floor"
	case RoleWall:
		return "wall"
	case RoleCeiling:
		return "ceiling"
	}
	return "unknown"
}

// Surface is a finite static plane. Its normal is the local +Y axis rotated by Orientation and
// points into the enclosure; HalfExtents are measured along the rotated local X and Z axes.
// Friction scales the body's own friction and Restitution is combined with the body's by max.
type Surface struct {
	Name        string
	Role        SurfaceRole
	Center      mgl64.Vec3
	Orientation mgl64.Quat
	HalfExtents [2]float64
	Friction    float64
	Restitution float64
}

// NewSurface returns a surface with friction multiplier 1 and no restitution.
func NewSurface(name string, role SurfaceRole, center mgl64.Vec3, orientation mgl64.Quat, halfX, halfZ float64) Surface {
	return Surface{
		Name:        name,
		Role:        role,
		Center:      center,
		Orientation: orientation.Normalize(),
		HalfExtents: [2]float64{halfX, halfZ},
		Friction:    1,
	}
}

// Normal returns the unit normal pointing away from the surface into the enclosure.
func (s Surface) Normal() mgl64.Vec3 { return s.Orientation.Rotate(vmath.UnitY) }

// penetration returns how far b's lowest point along -normal lies behind the plane and that point.
// ok is false when b is outside the surface's extent (padded by the bounding radius), fully behind
// the plane, or too far in front of it to touch.
func (s Surface) penetration(b *Body) (depth float64, point mgl64.Vec3, ok bool) {
	n := s.Normal()
	rel := b.Position.Sub(s.Center)
	r := b.BoundingRadius()
	dist := rel.Dot(n)
	if dist < -r || dist > r {
		return 0, point, false
	}
	u := rel.Dot(s.Orientation.Rotate(vmath.UnitX))
	v := rel.Dot(s.Orientation.Rotate(vmath.UnitZ))
	if math.Abs(u) > s.HalfExtents[0]+r || math.Abs(v) > s.HalfExtents[1]+r {
		return 0, point, false
	}
	point = b.Support(n.Mul(-1))
	return -point.Sub(s.Center).Dot(n), point, true
}

// Boundary is the ordered, immutable set of static surfaces confining dynamic bodies.
type Boundary struct {
	surfaces []Surface
}

// NewBoundary validates the surfaces and keeps them in the given order, which is also the
// resolution order. At least one RoleFloor surface is required.
func NewBoundary(surfaces ...Surface) (*Boundary, error) {
	hasFloor := false
	out := make([]Surface, len(surfaces))
	for i, s := range surfaces {
		for j, h := range s.HalfExtents {
			if !(h > 0) || math.IsInf(h, 0) {
				return nil, fmt.Errorf("physics: surface %q half extent %d must be positive, got %g", s.Name, j, h)
			}
		}
		if !vmath.Finite(s.Center) {
			return nil, fmt.Errorf("physics: surface %q has non-finite center", s.Name)
		}
		if s.Orientation == (mgl64.Quat{}) {
			s.Orientation = mgl64.QuatIdent()
		}
		s.Orientation = s.Orientation.Normalize()
		s.Friction = math.Max(s.Friction, 0)
		s.Restitution = vmath.Clamp(s.Restitution, 0, 1)
		if s.Role == RoleFloor {
			hasFloor = true
		}
		out[i] = s
	}
	if !hasFloor {
		return nil, ErrNoFloor
	}
	return &Boundary{surfaces: out}, nil
}

// Surfaces returns a copy of the surfaces in resolution order.
func (bd *Boundary) Surfaces() []Surface {
	out := make([]Surface, len(bd.surfaces))
	copy(out, bd.surfaces)
	return out
}

// ContactParams tunes contact resolution.
type ContactParams struct {
	// Epsilon is the overlap below which no positional correction is applied.
	Epsilon float64
	// MaxIterations caps the passes over all surfaces for one body.
	MaxIterations int
	// SettleSpeed is the approach speed under which contacts are restitution-free and
	// rolling friction damps spin.
	SettleSpeed float64
	// H is the substep length, used to scale rolling damping.
	H float64
}

// CollisionResponse summarizes the boundary contacts of one body in one substep.
type CollisionResponse struct {
	Contacts   int
	Iterations int
	MaxDepth   float64
}

// Resolve pushes a dynamic body out of every surface it penetrates and corrects its velocity.
// Surfaces are visited in insertion order and the pass repeats until no surface needs a push or
// p.MaxIterations passes have run. Hitting the cap with overlap left is reported, not fatal.
func (bd *Boundary) Resolve(b *Body, p ContactParams) (CollisionResponse, *UnresolvedPenetrationWarning) {
	var resp CollisionResponse
	if !b.IsDynamic() {
		return resp, nil
	}
	maxIter := max(p.MaxIterations, 1)
	for iter := 1; iter <= maxIter; iter++ {
		resp.Iterations = iter
		pushed := false
		for _, s := range bd.surfaces {
			depth, point, ok := s.penetration(b)
			if !ok || depth <= -p.Epsilon {
				continue
			}
			n := s.Normal()
			if depth > p.Epsilon {
				b.Position = b.Position.Add(n.Mul(depth))
				point = point.Add(n.Mul(depth))
				resp.MaxDepth = math.Max(resp.MaxDepth, depth)
				pushed = true
			}
			c := coefficients{
				friction:    b.Material.Friction * s.Friction,
				restitution: math.Max(b.Material.Restitution, s.Restitution),
				rolling:     b.Material.RollingFriction,
			}
			if respond(nil, b, n, point, c, p) {
				resp.Contacts++
			}
		}
		if !pushed {
			return resp, nil
		}
	}

	var worst *UnresolvedPenetrationWarning
	for _, s := range bd.surfaces {
		depth, _, ok := s.penetration(b)
		if ok && depth > p.Epsilon && (worst == nil || depth > worst.Depth) {
			worst = &UnresolvedPenetrationWarning{Body: b.id, Surface: s.Name, Depth: depth, Iterations: maxIter}
		}
	}
	return resp, worst
}

// BoxEnclosure builds the surfaces of a box of the given inner size whose floor is centered on
// the origin, then rotates everything by tilt about the origin. Without closed the ceiling is
// omitted; walls are omitted when wallHeight is zero, leaving only the floor.
func BoxEnclosure(width, depth, wallHeight float64, closed bool, tilt mgl64.Quat) []Surface {
	if tilt == (mgl64.Quat{}) {
		tilt = mgl64.QuatIdent()
	}
	hw, hd, hh := width/2, depth/2, wallHeight/2
	quarter := math.Pi / 2
	local := []Surface{NewSurface("floor", RoleFloor, vmath.Zero, mgl64.QuatIdent(), hw, hd)}
	if wallHeight > 0 {
		local = append(local,
			NewSurface("left", RoleWall, mgl64.Vec3{-hw, hh, 0}, mgl64.QuatRotate(-quarter, vmath.UnitZ), hh, hd),
			NewSurface("right", RoleWall, mgl64.Vec3{hw, hh, 0}, mgl64.QuatRotate(quarter, vmath.UnitZ), hh, hd),
			NewSurface("back", RoleWall, mgl64.Vec3{0, hh, -hd}, mgl64.QuatRotate(quarter, vmath.UnitX), hw, hh),
			NewSurface("front", RoleWall, mgl64.Vec3{0, hh, hd}, mgl64.QuatRotate(-quarter, vmath.UnitX), hw, hh),
		)
		if closed {
			local = append(local, NewSurface("ceiling", RoleCeiling, mgl64.Vec3{0, wallHeight, 0}, mgl64.QuatRotate(math.Pi, vmath.UnitX), hw, hd))
		}
	}
	for i := range local {
		local[i].Center = tilt.Rotate(local[i].Center)
		local[i].Orientation = tilt.Mul(local[i].Orientation).Normalize()
	}
	return local
}
