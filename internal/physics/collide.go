package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/vmath"
)

const (
	gjkMaxIterations = 64
	epaMaxIterations = 48
	// epaRelTolerance is the EPA depth error allowed relative to the depth itself.
	epaRelTolerance = 1e-3
	// rollingDampRate is the fraction of spin removed per second per unit of rolling friction
	// while a body settles on a contact.
	rollingDampRate = 10.0
)

// Contact is the result of a narrow-phase test between two bodies.
// Normal points from A to B; moving B by Normal*Depth (or A by the opposite) separates them.
type Contact struct {
	A, B   BodyID
	Normal mgl64.Vec3
	Depth  float64
	Point  mgl64.Vec3
}

// Collide tests two bodies. The bounding spheres are compared first, then the exact shapes
// with GJK, and EPA supplies the penetration normal and depth. Touching bodies do not collide.
// Depth is exact to a quarter of the default epsilon.
func Collide(a, b *Body) (Contact, bool) {
	return newNarrowPhase(DefaultConfig().Epsilon).collide(a, b)
}

// narrowPhase runs GJK and EPA with reusable polytope buffers. EPA stops once the depth is
// known to within tol, or to within epaRelTolerance of the depth when that is larger.
type narrowPhase struct {
	tol     float64
	verts   []minkowskiPoint
	faces   []epaFace
	horizon []epaEdge
}

func newNarrowPhase(epsilon float64) *narrowPhase {
	return &narrowPhase{
		tol:     epsilon / 4,
		verts:   make([]minkowskiPoint, 0, 32),
		faces:   make([]epaFace, 0, 64),
		horizon: make([]epaEdge, 0, 16),
	}
}

func (np *narrowPhase) collide(a, b *Body) (Contact, bool) {
	reach := a.BoundingRadius() + b.BoundingRadius()
	if b.Position.Sub(a.Position).LenSqr() >= reach*reach {
		return Contact{}, false
	}
	s, hit := gjk(a, b)
	if !hit {
		return Contact{}, false
	}
	n, depth, ok := np.epa(a, b, s)
	if !ok {
		return Contact{}, false
	}
	pa := a.Support(n)
	pb := b.Support(n.Mul(-1))
	return Contact{
		A:      a.id,
		B:      b.id,
		Normal: n,
		Depth:  depth,
		Point:  pa.Add(pb).Mul(0.5),
	}, true
}

// minkowskiPoint is a vertex of the Minkowski difference A - B.
type minkowskiPoint = mgl64.Vec3

func supportAB(a, b *Body, d mgl64.Vec3) minkowskiPoint {
	return a.Support(d).Sub(b.Support(d.Mul(-1)))
}

// simplex keeps the newest point at index 0.
type simplex struct {
	pts [4]minkowskiPoint
	n   int
}

func (s *simplex) pushFront(p minkowskiPoint) {
	s.pts[3], s.pts[2], s.pts[1], s.pts[0] = s.pts[2], s.pts[1], s.pts[0], p
	s.n = min(s.n+1, 4)
}

func (s *simplex) set(pts ...minkowskiPoint) {
	s.n = copy(s.pts[:], pts)
}

func sameDirection(d, ao mgl64.Vec3) bool { return d.Dot(ao) > 0 }

// gjk reports whether the origin is inside the Minkowski difference of a and b.
func gjk(a, b *Body) (simplex, bool) {
	var s simplex
	d := b.Position.Sub(a.Position)
	if d.LenSqr() < 1e-18 {
		d = vmath.UnitX
	}
	p := supportAB(a, b, d)
	if p.Dot(d) <= 0 {
		return s, false
	}
	s.pushFront(p)
	d = p.Mul(-1)
	for i := 0; i < gjkMaxIterations; i++ {
		if d.LenSqr() < 1e-24 {
			// origin lies on the current simplex feature
			return s, true
		}
		p = supportAB(a, b, d)
		if p.Dot(d) <= 0 {
			return s, false
		}
		s.pushFront(p)
		if s.next(&d) {
			return s, true
		}
	}
	return s, false
}

func (s *simplex) next(d *mgl64.Vec3) bool {
	switch s.n {
	case 2:
		return s.line(d)
	case 3:
		return s.triangle(d)
	case 4:
		return s.tetrahedron(d)
	}
	return false
}

func (s *simplex) line(d *mgl64.Vec3) bool {
	a, b := s.pts[0], s.pts[1]
	ab, ao := b.Sub(a), a.Mul(-1)
	if sameDirection(ab, ao) {
		*d = ab.Cross(ao).Cross(ab)
	} else {
		s.set(a)
		*d = ao
	}
	return false
}

func (s *simplex) triangle(d *mgl64.Vec3) bool {
	a, b, c := s.pts[0], s.pts[1], s.pts[2]
	ab, ac, ao := b.Sub(a), c.Sub(a), a.Mul(-1)
	abc := ab.Cross(ac)
	if sameDirection(abc.Cross(ac), ao) {
		if sameDirection(ac, ao) {
			s.set(a, c)
			*d = ac.Cross(ao).Cross(ac)
			return false
		}
		s.set(a, b)
		return s.line(d)
	}
	if sameDirection(ab.Cross(abc), ao) {
		s.set(a, b)
		return s.line(d)
	}
	if sameDirection(abc, ao) {
		*d = abc
	} else {
		s.set(a, c, b)
		*d = abc.Mul(-1)
	}
	return false
}

func (s *simplex) tetrahedron(d *mgl64.Vec3) bool {
	a, b, c, dd := s.pts[0], s.pts[1], s.pts[2], s.pts[3]
	ab, ac, ad, ao := b.Sub(a), c.Sub(a), dd.Sub(a), a.Mul(-1)
	if abc := ab.Cross(ac); sameDirection(abc, ao) {
		s.set(a, b, c)
		return s.triangle(d)
	}
	if acd := ac.Cross(ad); sameDirection(acd, ao) {
		s.set(a, c, dd)
		return s.triangle(d)
	}
	if adb := ad.Cross(ab); sameDirection(adb, ao) {
		s.set(a, dd, b)
		return s.triangle(d)
	}
	return true
}

var searchDirections = [...]mgl64.Vec3{
	{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
}

// fill grows a degenerate GJK result into a tetrahedron with non-zero volume.
func (s *simplex) fill(a, b *Body) bool {
	const tiny = 1e-12
	for s.n < 4 {
		grown := false
		var buf [len(searchDirections) + 2]mgl64.Vec3
		dirs := buf[:0]
		if s.n == 3 {
			normal := s.pts[1].Sub(s.pts[0]).Cross(s.pts[2].Sub(s.pts[0]))
			dirs = append(dirs, normal, normal.Mul(-1))
		}
		dirs = append(dirs, searchDirections[:]...)
		for _, d := range dirs {
			p := supportAB(a, b, d)
			if s.extends(p, tiny) {
				s.pushFront(p)
				grown = true
				break
			}
		}
		if !grown {
			return false
		}
	}
	return true
}

// extends reports whether p raises the affine dimension of the simplex.
func (s *simplex) extends(p minkowskiPoint, tiny float64) bool {
	switch s.n {
	case 1:
		return p.Sub(s.pts[0]).LenSqr() > tiny
	case 2:
		return p.Sub(s.pts[0]).Cross(s.pts[1].Sub(s.pts[0])).LenSqr() > tiny*tiny
	case 3:
		normal := s.pts[1].Sub(s.pts[0]).Cross(s.pts[2].Sub(s.pts[0]))
		return math.Abs(p.Sub(s.pts[0]).Dot(normal)) > tiny*tiny
	}
	return false
}

type epaFace struct {
	a, b, c int
	normal  mgl64.Vec3
	dist    float64
}

type epaEdge struct{ a, b int }

func newFace(verts []minkowskiPoint, a, b, c int) (epaFace, bool) {
	n, ok := vmath.Unit(verts[b].Sub(verts[a]).Cross(verts[c].Sub(verts[a])))
	if !ok {
		return epaFace{}, false
	}
	return epaFace{a: a, b: b, c: c, normal: n, dist: n.Dot(verts[a])}, true
}

// epa expands the GJK simplex into a polytope until the face closest to the origin lies on
// the Minkowski boundary. It returns the normal (from a to b) and the penetration depth.
func (np *narrowPhase) epa(a, b *Body, s simplex) (mgl64.Vec3, float64, bool) {
	if s.n < 4 && !s.fill(a, b) {
		return vmath.Zero, 0, false
	}
	if s.n == 4 {
		vol := s.pts[1].Sub(s.pts[0]).Cross(s.pts[2].Sub(s.pts[0])).Dot(s.pts[3].Sub(s.pts[0]))
		if math.Abs(vol) < 1e-18 {
			s.n = 3
			if !s.fill(a, b) {
				return vmath.Zero, 0, false
			}
		}
	}

	np.verts = append(np.verts[:0], s.pts[0], s.pts[1], s.pts[2], s.pts[3])
	np.faces = np.faces[:0]
	for _, t := range [4][4]int{{0, 1, 2, 3}, {0, 3, 1, 2}, {0, 2, 3, 1}, {1, 3, 2, 0}} {
		i, j, k, opp := t[0], t[1], t[2], t[3]
		f, ok := newFace(np.verts, i, j, k)
		if !ok {
			return vmath.Zero, 0, false
		}
		if f.normal.Dot(np.verts[opp].Sub(np.verts[i])) > 0 {
			f, _ = newFace(np.verts, i, k, j)
		}
		np.faces = append(np.faces, f)
	}

	best := np.faces[0]
	for iter := 0; iter < epaMaxIterations && len(np.faces) > 0; iter++ {
		best = np.faces[0]
		for _, f := range np.faces[1:] {
			if f.dist < best.dist {
				best = f
			}
		}
		p := supportAB(a, b, best.normal)
		if p.Dot(best.normal)-best.dist <= max(np.tol, epaRelTolerance*best.dist) {
			break
		}

		// faces seeing p go; their unshared edges form the horizon
		np.horizon = np.horizon[:0]
		kept := np.faces[:0]
		for _, f := range np.faces {
			if f.normal.Dot(p.Sub(np.verts[f.a])) > 0 {
				np.addEdge(f.a, f.b)
				np.addEdge(f.b, f.c)
				np.addEdge(f.c, f.a)
			} else {
				kept = append(kept, f)
			}
		}
		idx := len(np.verts)
		np.verts = append(np.verts, p)
		for _, e := range np.horizon {
			if f, ok := newFace(np.verts, e.a, e.b, idx); ok {
				kept = append(kept, f)
			}
		}
		np.faces = kept
	}
	return best.normal, math.Max(best.dist, 0), true
}

func (np *narrowPhase) addEdge(i, j int) {
	for k, e := range np.horizon {
		if e.a == j && e.b == i {
			np.horizon = append(np.horizon[:k], np.horizon[k+1:]...)
			return
		}
	}
	np.horizon = append(np.horizon, epaEdge{i, j})
}

// coefficients are the combined material values of one contact.
type coefficients struct {
	friction    float64
	restitution float64
	rolling     float64
}

// respond applies a normal impulse with restitution and a Coulomb friction impulse at point.
// n points from a to b; a is nil for a static surface. It returns false when the bodies are
// already separating at the contact.
func respond(a, b *Body, n, point mgl64.Vec3, c coefficients, p ContactParams) bool {
	var ra, va mgl64.Vec3
	if a != nil {
		ra = point.Sub(a.Position)
		va = a.velocityAt(ra)
	}
	rb := point.Sub(b.Position)
	rel := b.velocityAt(rb).Sub(va)
	vn := rel.Dot(n)
	if vn >= 0 {
		return false
	}
	k := effectiveMass(a, b, ra, rb, n)
	if k <= 0 {
		return false
	}
	settling := -vn < p.SettleSpeed
	e := c.restitution
	if settling {
		e = 0
	}
	jn := -(1 + e) * vn / k
	applyPair(a, b, n.Mul(jn), ra, rb)

	if a != nil {
		va = a.velocityAt(ra)
	}
	rel = b.velocityAt(rb).Sub(va)
	if t, ok := vmath.Unit(vmath.Reject(rel, n)); ok {
		if kt := effectiveMass(a, b, ra, rb, t); kt > 0 {
			limit := c.friction * jn
			jt := vmath.Clamp(-rel.Dot(t)/kt, -limit, limit)
			applyPair(a, b, t.Mul(jt), ra, rb)
		}
	}

	if settling && c.rolling > 0 {
		damp := dampFactor(c.rolling*rollingDampRate, p.H)
		for _, body := range [2]*Body{a, b} {
			if body != nil && body.IsDynamic() {
				body.AngularVelocity = body.AngularVelocity.Mul(damp)
			}
		}
	}
	return true
}

// effectiveMass is the inverse of the mass felt by an impulse along n at the contact.
func effectiveMass(a, b *Body, ra, rb, n mgl64.Vec3) float64 {
	k := b.inverseMass() + b.invInertiaWorld(rb.Cross(n)).Cross(rb).Dot(n)
	if a != nil {
		k += a.inverseMass() + a.invInertiaWorld(ra.Cross(n)).Cross(ra).Dot(n)
	}
	return k
}

func applyPair(a, b *Body, j, ra, rb mgl64.Vec3) {
	if a != nil {
		a.ApplyImpulse(j.Mul(-1), ra)
	}
	b.ApplyImpulse(j, rb)
}

// separate splits the positional correction between two bodies by inverse mass.
func separate(a, b *Body, c Contact) {
	ia, ib := a.inverseMass(), b.inverseMass()
	total := ia + ib
	if total == 0 {
		return
	}
	a.Position = a.Position.Sub(c.Normal.Mul(c.Depth * ia / total))
	b.Position = b.Position.Add(c.Normal.Mul(c.Depth * ib / total))
}
