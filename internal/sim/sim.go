// Package sim drives one physics world and one spawn scheduler from an external frame clock.
//
// Each Tick applies the most recent motion sample to gravity, lets the scheduler spawn what is
// due at the current simulation time, then steps the world. Callers read poses between ticks
// with Snapshot.
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/logger"
	"coinpile/internal/physics"
	"coinpile/internal/spawn"
)

// Stats is what a renderer or runner shows after a tick.
type Stats struct {
	Time     float64
	Census   physics.Census
	Spawned  int
	Spawning bool
	Last     physics.StepStats
}

// Lines formats the stats for an overlay or a console report.
func (st Stats) Lines() []string {
	c := st.Census
	lines := []string{
		fmt.Sprintf("t %.2fs  substeps %d  contacts %d", st.Time, st.Last.Substeps, st.Last.Contacts),
		fmt.Sprintf("bodies %d  dynamic %d  frozen %d  static %d  kinematic %d",
			c.Total(), c.Dynamic, c.Frozen, c.Static, c.Kinematic),
		fmt.Sprintf("spawned %d  spawning %s", st.Spawned, onOff(st.Spawning)),
	}
	if n := len(st.Last.Warnings); n > 0 {
		lines = append(lines, fmt.Sprintf("unresolved penetrations %d", n))
	}
	return lines
}

// Simulation is the single-threaded core: motion sample in, body poses out.
type Simulation struct {
	world       *physics.World
	scheduler   *spawn.Scheduler
	maxStrength float64
	log         *logger.Logger

	sample  mgl64.Vec3
	pending bool
}

// New wraps a world and an optional scheduler. maxStrength is the gravity clamp used when
// motion samples arrive.
func New(world *physics.World, scheduler *spawn.Scheduler, maxStrength float64, log *logger.Logger) (*Simulation, error) {
	if world == nil {
		return nil, errors.New("sim: nil world")
	}
	return &Simulation{world: world, scheduler: scheduler, maxStrength: maxStrength, log: log}, nil
}

// SubmitMotion records the latest motion sample. Only the newest sample before a Tick is used;
// without any, gravity keeps its previous value.
func (s *Simulation) SubmitMotion(sample mgl64.Vec3) {
	s.sample = sample
	s.pending = true
}

// Tick advances the simulation by one frame of dt seconds and returns the ids spawned in it.
// A spawn failure is logged and does not stop the step. A dt that is not positive and finite
// changes nothing: the pending motion sample and the spawn timeline wait for the next tick.
func (s *Simulation) Tick(dt float64) ([]physics.BodyID, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		// the world logs and rejects it without touching its state
		return nil, s.world.Step(dt)
	}
	if s.pending {
		s.world.Gravity().Update(s.sample, s.maxStrength)
		s.pending = false
	}
	var ids []physics.BodyID
	if s.scheduler != nil {
		var err error
		ids, err = s.scheduler.OnTick(s.world.Time())
		if err != nil {
			s.log.Logf("sim: %v", err)
		}
	}
	if err := s.world.Step(dt); err != nil {
		return ids, err
	}
	return ids, nil
}

// ToggleSpawning flips a toggle-mode scheduler and reports whether it is now spawning.
func (s *Simulation) ToggleSpawning() bool {
	if s.scheduler == nil {
		return false
	}
	on := s.scheduler.Toggle()
	s.log.Logf("sim: spawning %s", onOff(on))
	return on
}

// StopSpawning cancels the scheduler for good; spawned bodies keep simulating.
func (s *Simulation) StopSpawning() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Spawning reports whether the scheduler is active.
func (s *Simulation) Spawning() bool {
	return s.scheduler != nil && s.scheduler.Active()
}

// Snapshot returns the live bodies in id order.
func (s *Simulation) Snapshot() []physics.BodyView { return s.world.Snapshot() }

// AppendSnapshot is Snapshot without the allocation, for per-frame use.
func (s *Simulation) AppendSnapshot(dst []physics.BodyView) []physics.BodyView {
	return s.world.AppendSnapshot(dst)
}

// Stats summarizes the simulation after the last tick.
func (s *Simulation) Stats() Stats {
	st := Stats{
		Time:     s.world.Time(),
		Census:   s.world.Census(),
		Spawning: s.Spawning(),
		Last:     s.world.LastStats(),
	}
	if s.scheduler != nil {
		st.Spawned = s.scheduler.Spawned()
	}
	return st
}

// World exposes the underlying world for read access (boundary, gravity, config).
func (s *Simulation) World() *physics.World { return s.world }

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
