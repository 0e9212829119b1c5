package spawn

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/logger"
	"coinpile/internal/physics"
	"coinpile/internal/vmath"
)

// Mode selects how a Scheduler decides when to stop.
type Mode int

const (
	// Bounded spawns until a count budget or a duration is used up, then stops for good.
	Bounded Mode = iota
	// Toggle spawns while active; Toggle flips it on and off.
	Toggle
)

func (m Mode) String() string {
	switch m {
	case Bounded:
		return "bounded"
	case Toggle:
		return "toggle"
	}
	return "unknown"
}

// timeSlack absorbs float error when comparing tick times against the spawn timeline.
const timeSlack = 1e-9

// Spawner receives the bodies a Scheduler creates. *physics.World implements it.
type Spawner interface {
	AddBody(b *physics.Body) (physics.BodyID, error)
}

// Config describes what to spawn and when.
type Config struct {
	Mode Mode
	// Interval is the time between spawns in seconds.
	Interval float64
	// Count caps the total number of spawns (0 = no cap). Applies to both modes.
	Count int
	// Duration ends a Bounded scheduler once Interval*k reaches it (0 = no limit).
	Duration float64
	// StartActive makes a Toggle scheduler spawn before the first Toggle. Bounded schedulers
	// are always active until done.
	StartActive bool
	// MaxPerTick limits catch-up spawns after a long frame (default 1).
	MaxPerTick int

	Position       mgl64.Vec3
	PositionJitter float64 // uniform ± on X and Z
	TiltJitter     float64 // fraction of π for the random Euler tilt on each axis
	SpinImpulse    float64 // uniform ± angular impulse on each axis
	Seed           uint64

	// Body is the template for every spawned body. Kind is forced to Dynamic.
	Body physics.BodyDef
}

// Validate checks the timing parameters and the body template.
func (c Config) Validate() error {
	if !(c.Interval > 0) || math.IsInf(c.Interval, 0) {
		return fmt.Errorf("spawn: interval must be positive, got %g", c.Interval)
	}
	if c.Count < 0 {
		return fmt.Errorf("spawn: count must not be negative, got %d", c.Count)
	}
	if c.Duration < 0 || math.IsNaN(c.Duration) {
		return fmt.Errorf("spawn: duration must not be negative, got %g", c.Duration)
	}
	if c.Mode == Bounded && c.Count == 0 && c.Duration == 0 {
		return errors.New("spawn: bounded mode needs a count or a duration")
	}
	if c.Mode != Bounded && c.Mode != Toggle {
		return fmt.Errorf("spawn: unknown mode %d", c.Mode)
	}
	if !vmath.Finite(c.Position) {
		return errors.New("spawn: position is not finite")
	}
	if err := c.Body.Shape.Validate(); err != nil {
		return fmt.Errorf("spawn: body template: %w", err)
	}
	return nil
}

// Scheduler creates bodies on an externally pumped clock. Spawn k after an anchor happens at
// anchor + k*Interval, so timing never drifts with the tick rate.
type Scheduler struct {
	cfg     Config
	spawner Spawner
	rng     *rand.Rand
	log     *logger.Logger

	active   bool
	done     bool
	anchored bool
	start    float64
	index    int
	spawned  int

	ticks   int
	offTick int
}

// New validates cfg and returns a scheduler feeding spawner. log may be nil.
func New(cfg Config, spawner Spawner, log *logger.Logger) (*Scheduler, error) {
	if spawner == nil {
		return nil, errors.New("spawn: nil spawner")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxPerTick <= 0 {
		cfg.MaxPerTick = 1
	}
	return &Scheduler{
		cfg:     cfg,
		spawner: spawner,
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		log:     log,
		active:  cfg.Mode == Bounded || cfg.StartActive,
		offTick: -1,
	}, nil
}

// Active reports whether the scheduler would spawn on a due tick.
func (s *Scheduler) Active() bool { return s.active && !s.done }

// Done reports whether the scheduler has stopped for good.
func (s *Scheduler) Done() bool { return s.done }

// Spawned returns the number of bodies created so far.
func (s *Scheduler) Spawned() int { return s.spawned }

// Mode returns the scheduler mode.
func (s *Scheduler) Mode() Mode { return s.cfg.Mode }

// Toggle flips a Toggle scheduler between spawning and idle and returns the new state.
// Turning it back on re-anchors the timeline at the next tick, unless no tick happened while it
// was off. Bounded and finished schedulers ignore it.
func (s *Scheduler) Toggle() bool {
	if s.done || s.cfg.Mode != Toggle {
		return s.Active()
	}
	if s.active {
		s.active = false
		s.offTick = s.ticks
	} else {
		s.active = true
		if s.offTick != s.ticks {
			s.anchored = false
		}
	}
	return s.active
}

// Stop cancels the scheduler permanently. Bodies already spawned are left alone.
func (s *Scheduler) Stop() {
	if s.done {
		return
	}
	s.finish("stopped")
}

func (s *Scheduler) finish(reason string) {
	s.done = true
	s.active = false
	s.log.Logf("spawn: scheduler %s after %d bodies", reason, s.spawned)
}

func (s *Scheduler) exhausted() bool {
	if s.cfg.Count > 0 && s.spawned >= s.cfg.Count {
		return true
	}
	return s.cfg.Mode == Bounded && s.cfg.Duration > 0 &&
		float64(s.index)*s.cfg.Interval >= s.cfg.Duration-timeSlack
}

// OnTick spawns every body that is due at time now, at most MaxPerTick of them, and returns
// their ids. A failed AddBody stops the tick and returns the error; the slot is skipped.
func (s *Scheduler) OnTick(now float64) ([]physics.BodyID, error) {
	s.ticks++
	if s.done || !s.active || math.IsNaN(now) {
		return nil, nil
	}
	if !s.anchored {
		s.start, s.index, s.anchored = now, 0, true
	}
	var ids []physics.BodyID
	for range s.cfg.MaxPerTick {
		if s.exhausted() {
			break
		}
		due := s.start + float64(s.index)*s.cfg.Interval
		if now < due-timeSlack {
			break
		}
		s.index++
		id, err := s.spawnOne()
		if err != nil {
			return ids, fmt.Errorf("spawn: add body: %w", err)
		}
		s.spawned++
		ids = append(ids, id)
	}
	if s.exhausted() {
		s.finish("finished")
	}
	return ids, nil
}

func (s *Scheduler) spread(a float64) float64 {
	if a == 0 {
		return 0
	}
	return (2*s.rng.Float64() - 1) * a
}

func (s *Scheduler) spawnOne() (physics.BodyID, error) {
	def := s.cfg.Body
	def.Kind = physics.Dynamic
	j := s.cfg.PositionJitter
	def.Position = s.cfg.Position.Add(mgl64.Vec3{s.spread(j), 0, s.spread(j)})

	if tilt := s.cfg.TiltJitter * math.Pi; tilt != 0 {
		rot := vmath.Euler(s.spread(tilt), s.spread(tilt), s.spread(tilt))
		base := def.Orientation
		if base == (mgl64.Quat{}) {
			base = mgl64.QuatIdent()
		}
		def.Orientation = rot.Mul(base)
	}

	b, err := physics.NewBody(def)
	if err != nil {
		return 0, err
	}
	if w := s.cfg.SpinImpulse; w != 0 {
		b.ApplyAngularImpulse(mgl64.Vec3{s.spread(w), s.spread(w), s.spread(w)})
	}
	return s.spawner.AddBody(b)
}
