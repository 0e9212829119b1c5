// Command coinpile opens a window onto a coin-pile variant. Space or a left click starts and
// stops the pour, the arrow keys tilt the world, L levels it, R rebuilds the variant.
// G toggles the grid, F1 the stats overlay, F2 the FPS counter. Hold the right mouse button to fly the camera.
// TAB opens a console; type "help" there for its commands.
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/debug"
	"coinpile/internal/engineconfig"
	"coinpile/internal/graphics"
	"coinpile/internal/logger"
	"coinpile/internal/motion"
	"coinpile/internal/physics"
	"coinpile/internal/scene"
	"coinpile/internal/sim"
	"coinpile/internal/terminal"
	"coinpile/internal/variant"
)

type app struct {
	prefs   engineconfig.ViewerPrefs
	log     *logger.Logger
	ref     string
	variant *variant.Variant
	sim     *sim.Simulation
	scn     *scene.Scene
	dbg     *debug.Debug
	term    *terminal.Terminal
	tilt    motion.Tilt
	bodies  []physics.BodyView
}

func main() {
	prefs, prefsErr := engineconfig.Load()
	ref := flag.String("variant", prefs.Variant, "built-in variant name or path to a .yaml file")
	seed := flag.Uint64("seed", 0, "override the spawn seed (0 keeps the variant's)")
	logPath := flag.String("log", logger.DefaultPath, "log file (empty keeps the log in memory)")
	list := flag.Bool("list", false, "list built-in variants and exit")
	flag.Parse()

	if *list {
		for _, n := range variant.Names() {
			fmt.Println(n)
		}
		return
	}

	log := logger.New(*logPath)
	if prefsErr != nil {
		log.Logf("coinpile: using default prefs: %v", prefsErr)
	}
	v, err := load(*ref, *seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "coinpile:", err)
		os.Exit(1)
	}
	a := &app{prefs: prefs, log: log, ref: *ref, variant: v, dbg: debug.New()}
	if err := a.rebuild(); err != nil {
		fmt.Fprintln(os.Stderr, "coinpile:", err)
		os.Exit(1)
	}
	a.dbg.SetShowFPS(prefs.ShowFPS)
	a.dbg.SetShowMemAlloc(prefs.ShowMemAlloc)
	a.dbg.SetShowStats(prefs.ShowStats)

	a.scn = scene.New(frame(a.sim.World().Boundary()))
	a.scn.SetGridVisible(prefs.GridVisible)
	a.term = terminal.New(log, a.commands())

	graphics.Run(graphics.Window{
		Title:  "coinpile - " + v.Name,
		Width:  prefs.WindowWidth,
		Height: prefs.WindowHeight,
	}, a.update, a.draw)
	a.scn.Unload()

	a.prefs.Variant = a.ref
	a.prefs.GridVisible = a.scn.GridVisible
	a.prefs.ShowFPS = a.dbg.ShowFPS
	a.prefs.ShowStats = a.dbg.ShowStats
	if err := engineconfig.Save(a.prefs); err != nil {
		log.Logf("coinpile: save prefs: %v", err)
	}
}

// load resolves ref and applies command-line overrides to a private copy.
func load(ref string, seed uint64) (*variant.Variant, error) {
	v, err := variant.Open(ref)
	if err != nil {
		return nil, err
	}
	if seed == 0 || v.Spawn == nil {
		return v, nil
	}
	v, err = v.Clone()
	if err != nil {
		return nil, err
	}
	v.Spawn.Seed = seed
	return v, nil
}

func (a *app) rebuild() error {
	s, err := variant.Build(a.variant, a.log)
	if err != nil {
		return err
	}
	a.sim = s
	a.tilt.Level()
	return nil
}

// reframe points a fresh camera at the current boundary, keeping the grid setting.
func (a *app) reframe() {
	grid := a.scn.GridVisible
	a.scn.Unload()
	a.scn = scene.New(frame(a.sim.World().Boundary()))
	a.scn.SetGridVisible(grid)
}

func (a *app) update(dt float32) {
	a.term.Update()
	if !a.term.IsOpen() {
		a.hotkeys(dt)
	}
	a.scn.Update()
	if _, err := a.sim.Tick(float64(dt)); err != nil {
		a.log.Logf("coinpile: tick: %v", err)
	}
	a.bodies = a.sim.AppendSnapshot(a.bodies[:0])
}

func (a *app) hotkeys(dt float32) {
	if rl.IsKeyPressed(rl.KeySpace) || rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		a.sim.ToggleSpawning()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := a.rebuild(); err != nil {
			a.log.Logf("coinpile: rebuild: %v", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyG) {
		a.scn.SetGridVisible(!a.scn.GridVisible)
	}
	if rl.IsKeyPressed(rl.KeyF1) {
		a.dbg.SetShowStats(!a.dbg.ShowStats)
	}
	if rl.IsKeyPressed(rl.KeyF2) {
		a.dbg.SetShowFPS(!a.dbg.ShowFPS)
	}
	a.updateTilt(dt)
}

// updateTilt submits a motion sample only when the tilt changes, so a variant's own gravity
// holds until the user first leans the world.
func (a *app) updateTilt(dt float32) {
	step := a.prefs.TiltStep * dt
	var dPitch, dRoll float32
	if rl.IsKeyDown(rl.KeyUp) {
		dPitch -= step
	}
	if rl.IsKeyDown(rl.KeyDown) {
		dPitch += step
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		dRoll -= step
	}
	if rl.IsKeyDown(rl.KeyRight) {
		dRoll += step
	}
	switch {
	case rl.IsKeyPressed(rl.KeyL):
		a.tilt.Level()
	case dPitch != 0 || dRoll != 0:
		a.tilt.Nudge(dPitch, dRoll)
	default:
		return
	}
	a.sim.SubmitMotion(a.tilt.Sample())
}

func (a *app) draw() {
	w := a.sim.World()
	a.scn.Draw(a.bodies, w.Boundary().Surfaces(), w.Gravity().Vector())
	if a.term.IsOpen() {
		a.dbg.Draw(a.sim.Stats(), nil)
	} else {
		a.dbg.Draw(a.sim.Stats(), a.log.Tail(6))
	}
	a.term.Draw()
}

// frame returns a camera target and distance that fit the floor surfaces.
func frame(bd *physics.Boundary) (mgl64.Vec3, float64) {
	var center mgl64.Vec3
	radius, n := 1.0, 0
	for _, s := range bd.Surfaces() {
		if s.Role != physics.RoleFloor {
			continue
		}
		center = center.Add(s.Center)
		n++
		radius = max(radius, s.HalfExtents[0], s.HalfExtents[1])
	}
	if n > 0 {
		center = center.Mul(1 / float64(n))
	}
	return center.Add(mgl64.Vec3{0, radius / 3, 0}), radius * 3
}
