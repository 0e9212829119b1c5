package scene

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/physics"
	"coinpile/internal/primitives"
)

const (
	gridCells      = 40 // per side of the origin
	gridMinorStep  = 0.1
	gridMajorEvery = 10
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
	gravityScale   = 0.05 // arrow length per m/s²
)

var (
	dynamicColor   = rl.NewColor(212, 175, 55, 255)
	frozenColor    = rl.NewColor(140, 112, 40, 255)
	staticColor    = rl.NewColor(128, 128, 128, 255)
	kinematicColor = rl.NewColor(70, 170, 180, 255)
	floorColor     = rl.NewColor(90, 96, 110, 255)
	wallColor      = rl.NewColor(150, 180, 210, 70)
	gravityColor   = rl.NewColor(230, 90, 60, 255)
)

// Scene holds a 3D camera and draws the simulation: boundary surfaces, body poses and the gravity vector.
// Update runs camera logic; Draw renders between BeginMode3D and EndMode3D.
type Scene struct {
	Camera      rl.Camera3D
	GridVisible bool
	prims       *primitives.Registry
	orbiting    bool
}

// New returns a scene with a perspective camera looking at target from distance along the (1, 0.8, 1) diagonal.
// Grid is visible by default.
func New(target mgl64.Vec3, distance float64) *Scene {
	s := &Scene{prims: primitives.NewRegistry(), GridVisible: true}
	eye := target.Add(mgl64.Vec3{1, 0.8, 1}.Normalize().Mul(distance))
	s.Camera.Position = primitives.Vec3(eye)
	s.Camera.Target = primitives.Vec3(target)
	s.Camera.Up = rl.NewVector3(0, 1, 0)
	s.Camera.Fovy = 45
	s.Camera.Projection = rl.CameraPerspective
	return s
}

// SetGridVisible sets whether the editor grid is drawn.
func (s *Scene) SetGridVisible(visible bool) {
	s.GridVisible = visible
}

// Update runs once per frame. While the right mouse button is held the cursor is captured and
// raylib's free camera moves with mouse and keyboard; otherwise the cursor stays free for clicks.
func (s *Scene) Update() {
	held := rl.IsMouseButtonDown(rl.MouseButtonRight)
	switch {
	case held && !s.orbiting:
		rl.DisableCursor()
	case !held && s.orbiting:
		rl.EnableCursor()
	}
	s.orbiting = held
	if held {
		rl.UpdateCamera(&s.Camera, rl.CameraFree)
	}
}

// Draw renders the 3D scene. Call after ClearBackground and before 2D overlays.
// Opaque bodies are drawn before the translucent walls.
func (s *Scene) Draw(bodies []physics.BodyView, surfaces []physics.Surface, gravity mgl64.Vec3) {
	cam := s.Camera.Position
	s.prims.SetView([3]float32{cam.X, cam.Y, cam.Z}, [3]float32{0.4, 1, 0.3})

	rl.BeginMode3D(s.Camera)
	if s.GridVisible {
		drawEditorGrid()
	}
	for _, sf := range surfaces {
		if sf.Role == physics.RoleFloor {
			s.drawSurface(sf, floorColor)
		}
	}
	for _, b := range bodies {
		p := primitives.ForShape(b.Shape)
		s.prims.Draw(p.Mesh, p.Transform(b.Position, b.Orientation), bodyColor(b.Kind))
	}
	for _, sf := range surfaces {
		if sf.Role != physics.RoleFloor {
			s.drawSurface(sf, wallColor)
		}
	}
	if gravity.Len() > 0 {
		rl.DrawLine3D(rl.NewVector3(0, 0, 0), primitives.Vec3(gravity.Mul(gravityScale)), gravityColor)
	}
	rl.EndMode3D()
}

// Unload frees GPU resources. Call before the window closes.
func (s *Scene) Unload() {
	s.prims.Unload()
}

func (s *Scene) drawSurface(sf physics.Surface, c rl.Color) {
	p := primitives.ForSurface(sf)
	s.prims.Draw(p.Mesh, p.Transform(sf.Center, sf.Orientation), c)
}

func bodyColor(k physics.Kind) rl.Color {
	switch k {
	case physics.Frozen:
		return frozenColor
	case physics.Static:
		return staticColor
	case physics.Kinematic:
		return kinematicColor
	}
	return dynamicColor
}

// drawEditorGrid draws a grid on the XZ plane with major/minor lines and axis lines, sized for coins.
// Reuses start/end vectors to avoid per-frame allocations in the hot loop.
func drawEditorGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisY := rl.NewColor(80, 220, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	const extent = float32(gridCells * gridMinorStep)
	var start, end rl.Vector3
	for i := -gridCells; i <= gridCells; i++ {
		c := major
		if i%gridMajorEvery != 0 {
			c = minor
		}
		v := float32(i) * gridMinorStep
		start.X, start.Y, start.Z = v, 0, -extent
		end.X, end.Y, end.Z = v, 0, extent
		rl.DrawLine3D(start, end, c)
		start.X, start.Y, start.Z = -extent, 0, v
		end.X, end.Y, end.Z = extent, 0, v
		rl.DrawLine3D(start, end, c)
	}

	// Axis lines through origin (X=red, Y=green, Z=blue)
	rl.DrawLine3D(rl.NewVector3(-extent, 0, 0), rl.NewVector3(extent, 0, 0), axisX)
	rl.DrawLine3D(rl.NewVector3(0, -extent, 0), rl.NewVector3(0, extent, 0), axisY)
	rl.DrawLine3D(rl.NewVector3(0, 0, -extent), rl.NewVector3(0, 0, extent), axisZ)
}
