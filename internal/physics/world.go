package physics

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/logger"
	"coinpile/internal/vmath"
)

// StepMode selects how a frame delta is split into substeps.
type StepMode int

const (
	// StepFixed accumulates frame time and runs whole FixedStep substeps; leftovers carry over.
	StepFixed StepMode = iota
	// StepAdaptive splits every frame delta into equal substeps no longer than FixedStep.
	StepAdaptive
)

// State is the stepping state of a World.
type State int

const (
	Idle State = iota
	Stepping
)

const stepSlack = 1e-9

// AABB is an axis-aligned box.
type AABB struct {
	Min, Max mgl64.Vec3
}

// Contains reports whether p lies inside the box (inclusive).
func (b AABB) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Config tunes a World. Zero fields take the DefaultConfig value, except FreezeAfter (0 disables
// freezing) and Despawn (nil keeps bodies forever).
type Config struct {
	Mode StepMode
	// FixedStep is the longest substep in seconds.
	FixedStep float64
	// MaxFrameDelta caps the frame delta handed to Step, bounding work after a hitch.
	MaxFrameDelta float64
	// Epsilon is the penetration depth below which no positional correction happens.
	Epsilon float64
	// BoundaryIterations caps the passes over the boundary surfaces per body per substep.
	BoundaryIterations int
	// SolverIterations caps the solver passes per substep. Each pass resolves the body pairs and
	// then the boundary.
	SolverIterations int
	// SettleSpeed is the approach speed below which contacts lose restitution.
	SettleSpeed float64
	// FreezeAfter turns dynamic bodies older than this many seconds into Frozen ones.
	FreezeAfter float64
	// Despawn removes dynamic bodies whose center leaves the box.
	Despawn *AABB
}

// DefaultConfig returns the default tuning: 120 Hz fixed substeps, 0.25 s frame cap,
// 1e-4 epsilon, 4 boundary and 8 solver iterations.
func DefaultConfig() Config {
	return Config{
		Mode:               StepFixed,
		FixedStep:          1.0 / 120,
		MaxFrameDelta:      0.25,
		Epsilon:            1e-4,
		BoundaryIterations: 4,
		SolverIterations:   8,
		SettleSpeed:        0.2,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if !(c.FixedStep > 0) {
		c.FixedStep = d.FixedStep
	}
	if !(c.MaxFrameDelta > 0) {
		c.MaxFrameDelta = d.MaxFrameDelta
	}
	c.MaxFrameDelta = math.Max(c.MaxFrameDelta, c.FixedStep)
	if !(c.Epsilon > 0) {
		c.Epsilon = d.Epsilon
	}
	if c.BoundaryIterations <= 0 {
		c.BoundaryIterations = d.BoundaryIterations
	}
	if c.SolverIterations <= 0 {
		c.SolverIterations = d.SolverIterations
	}
	if c.SettleSpeed < 0 {
		c.SettleSpeed = 0
	}
	if c.FreezeAfter < 0 {
		c.FreezeAfter = 0
	}
	return c
}

// StepStats describes what the last Step call did.
type StepStats struct {
	Substeps  int
	Contacts  int
	Frozen    []BodyID
	Despawned []BodyID
	Warnings  []UnresolvedPenetrationWarning
}

// Census counts live bodies by kind.
type Census struct {
	Dynamic, Static, Kinematic, Frozen int
}

// Total returns the number of live bodies.
func (c Census) Total() int { return c.Dynamic + c.Static + c.Kinematic + c.Frozen }

// World owns the bodies, the boundary and the gravity field and advances them in time.
// It is not safe for concurrent use; callers may read snapshots between steps.
type World struct {
	cfg      Config
	boundary *Boundary
	gravity  *GravityField
	bodies   map[BodyID]*Body
	order    []*Body // ascending id
	nextID   BodyID
	time     float64
	accum    float64
	state    State
	grid     *spatialGrid
	narrow   *narrowPhase
	stats    StepStats
	log      *logger.Logger

	// per-body solver scratch, indexed like order
	movedPrev, movedNow []bool
	warned              []*UnresolvedPenetrationWarning
}

// NewWorld returns a world confined by boundary. A nil gravity field means 9.81 m/s² straight
// down; log may be nil.
func NewWorld(cfg Config, boundary *Boundary, gravity *GravityField, log *logger.Logger) (*World, error) {
	if boundary == nil {
		return nil, errors.New("physics: world needs a boundary")
	}
	if gravity == nil {
		gravity = NewGravityField(vmath.Down, 9.81, 9.81, 1)
	}
	cfg = cfg.withDefaults()
	return &World{
		cfg:      cfg,
		boundary: boundary,
		gravity:  gravity,
		bodies:   make(map[BodyID]*Body),
		nextID:   1,
		grid:     newSpatialGrid(),
		narrow:   newNarrowPhase(cfg.Epsilon),
		log:      log,
	}, nil
}

// AddBody registers b, stamps its creation time and returns its new id.
func (w *World) AddBody(b *Body) (BodyID, error) {
	if b == nil {
		return 0, errors.New("physics: nil body")
	}
	if b.id != 0 {
		return b.id, fmt.Errorf("physics: body %d already added", b.id)
	}
	if !vmath.Finite(b.Position) || !vmath.Finite(b.LinearVelocity) || !vmath.Finite(b.AngularVelocity) {
		return 0, errors.New("physics: body state is not finite")
	}
	b.id = w.nextID
	w.nextID++
	b.CreatedAt = w.time
	w.bodies[b.id] = b
	w.order = append(w.order, b)
	return b.id, nil
}

// RemoveBody drops a body. Its id is never handed out again.
func (w *World) RemoveBody(id BodyID) bool {
	if _, ok := w.bodies[id]; !ok {
		return false
	}
	delete(w.bodies, id)
	w.compact()
	return true
}

func (w *World) compact() {
	kept := w.order[:0]
	for _, b := range w.order {
		if _, ok := w.bodies[b.id]; ok {
			kept = append(kept, b)
		}
	}
	clear(w.order[len(kept):])
	w.order = kept
}

// Body returns a view of one body.
func (w *World) Body(id BodyID) (BodyView, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return BodyView{}, false
	}
	return b.view(), true
}

// Len returns the number of live bodies.
func (w *World) Len() int { return len(w.order) }

// Time returns the simulated time in seconds.
func (w *World) Time() float64 { return w.time }

// Gravity returns the world's gravity field.
func (w *World) Gravity() *GravityField { return w.gravity }

// Boundary returns the world's boundary.
func (w *World) Boundary() *Boundary { return w.boundary }

// Config returns the effective configuration.
func (w *World) Config() Config { return w.cfg }

// State reports whether a step is running.
func (w *World) State() State { return w.state }

// LastStats returns what the last successful Step did.
func (w *World) LastStats() StepStats { return w.stats }

// Census counts the live bodies by kind.
func (w *World) Census() Census {
	var c Census
	for _, b := range w.order {
		switch b.Kind {
		case Dynamic:
			c.Dynamic++
		case Static:
			c.Static++
		case Kinematic:
			c.Kinematic++
		case Frozen:
			c.Frozen++
		}
	}
	return c
}

// Snapshot returns views of all live bodies in ascending id order.
func (w *World) Snapshot() []BodyView {
	return w.AppendSnapshot(make([]BodyView, 0, len(w.order)))
}

// AppendSnapshot appends views of all live bodies in ascending id order to dst.
func (w *World) AppendSnapshot(dst []BodyView) []BodyView {
	for _, b := range w.order {
		dst = append(dst, b.view())
	}
	return dst
}

// Step advances the simulation by dt seconds. dt <= 0 is logged and ignored with a
// *DegenerateStepError. Large deltas are capped at MaxFrameDelta and split into substeps of at
// most FixedStep. Each substep runs gravity and integration, then collisions, then the freeze
// and despawn checks, always in that order.
func (w *World) Step(dt float64) error {
	if w.state == Stepping {
		return ErrStepInProgress
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		err := &DegenerateStepError{Dt: dt}
		w.log.Log(err.Error())
		return err
	}
	w.state = Stepping
	defer func() { w.state = Idle }()

	w.stats = StepStats{}
	if dt > w.cfg.MaxFrameDelta {
		w.log.Logf("physics: frame dt %.3fs clamped to %.3fs", dt, w.cfg.MaxFrameDelta)
		dt = w.cfg.MaxFrameDelta
	}

	h := w.cfg.FixedStep
	switch w.cfg.Mode {
	case StepAdaptive:
		n := max(int(math.Ceil(dt/h-stepSlack)), 1)
		sub := dt / float64(n)
		for range n {
			w.substep(sub)
		}
	default:
		w.accum += dt
		for w.accum >= h-stepSlack {
			w.substep(h)
			w.accum -= h
		}
		w.accum = math.Max(w.accum, 0)
	}

	if n := len(w.stats.Warnings); n > 0 {
		worst := w.stats.Warnings[0]
		for _, wr := range w.stats.Warnings[1:] {
			if wr.Depth > worst.Depth {
				worst = wr
			}
		}
		w.log.Logf("physics: %d unresolved boundary contacts, worst: %v", n, &worst)
	}
	return nil
}

func (w *World) substep(h float64) {
	w.stats.Substeps++
	g := w.gravity.Vector()
	for _, b := range w.order {
		b.integrate(g, h)
	}
	w.time += h

	w.collide(h)
	w.freeze()
	w.despawn()
}

func (w *World) params(h float64) ContactParams {
	return ContactParams{
		Epsilon:       w.cfg.Epsilon,
		MaxIterations: w.cfg.BoundaryIterations,
		SettleSpeed:   w.cfg.SettleSpeed,
		H:             h,
	}
}

// collide alternates a pass over the candidate pairs with a pass over the boundary until no
// body is pushed by more than the epsilon or SolverIterations passes have run. Pairs are
// resolved one at a time in ascending id order. After the first pass a pair is tested again
// only when one of its bodies moved in the previous pass, and a body goes back to the boundary
// only when a pair moved it.
func (w *World) collide(h float64) {
	p := w.params(h)
	pairs := w.grid.candidates(w.order)
	n := len(w.order)
	w.movedPrev = resetFlags(w.movedPrev, n)
	w.movedNow = resetFlags(w.movedNow, n)
	w.warned = slices.Grow(w.warned[:0], n)[:n]
	clear(w.warned)

	for it := 0; it < w.cfg.SolverIterations; it++ {
		first := it == 0
		pushed := false
		for _, pr := range pairs {
			if !first && !w.movedPrev[pr.i] && !w.movedPrev[pr.j] {
				continue
			}
			a, b := w.order[pr.i], w.order[pr.j]
			c, ok := w.narrow.collide(a, b)
			if !ok {
				continue
			}
			if c.Depth > w.cfg.Epsilon {
				separate(a, b, c)
				w.movedNow[pr.i] = w.movedNow[pr.i] || a.IsDynamic()
				w.movedNow[pr.j] = w.movedNow[pr.j] || b.IsDynamic()
				pushed = true
			}
			coeff := coefficients{
				friction:    math.Sqrt(a.Material.Friction * b.Material.Friction),
				restitution: a.Material.Restitution * b.Material.Restitution,
				rolling:     math.Max(a.Material.RollingFriction, b.Material.RollingFriction),
			}
			if respond(a, b, c.Normal, c.Point, coeff, p) {
				w.stats.Contacts++
			}
		}

		for i, b := range w.order {
			if !b.IsDynamic() || !first && !w.movedNow[i] {
				continue
			}
			resp, warn := w.boundary.Resolve(b, p)
			w.stats.Contacts += resp.Contacts
			w.warned[i] = warn
			if resp.MaxDepth > 0 {
				w.movedNow[i] = true
				pushed = true
			}
		}

		if !pushed {
			break
		}
		w.movedPrev, w.movedNow = w.movedNow, w.movedPrev
		clear(w.movedNow)
	}

	for _, warn := range w.warned {
		if warn != nil {
			w.stats.Warnings = append(w.stats.Warnings, *warn)
		}
	}
}

func resetFlags(flags []bool, n int) []bool {
	flags = slices.Grow(flags[:0], n)[:n]
	clear(flags)
	return flags
}

func (w *World) freeze() {
	ttl := w.cfg.FreezeAfter
	if ttl <= 0 {
		return
	}
	for _, b := range w.order {
		if b.IsDynamic() && w.time-b.CreatedAt > ttl {
			b.freeze()
			w.stats.Frozen = append(w.stats.Frozen, b.id)
		}
	}
}

func (w *World) despawn() {
	box := w.cfg.Despawn
	if box == nil {
		return
	}
	removed := false
	for _, b := range w.order {
		if b.IsDynamic() && !box.Contains(b.Position) {
			delete(w.bodies, b.id)
			w.stats.Despawned = append(w.stats.Despawned, b.id)
			w.log.Logf("physics: body %d left the world at %v", b.id, b.Position)
			removed = true
		}
	}
	if removed {
		w.compact()
	}
}
