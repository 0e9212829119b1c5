package primitives

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/physics"
)

// Placement maps a unit mesh onto a shape: the mesh to draw, the scale to apply, and the
// offset (in unit mesh space) that moves the mesh center to the origin.
type Placement struct {
	Mesh   Mesh
	Scale  mgl64.Vec3
	Offset mgl64.Vec3
}

// ForShape returns how to draw a body shape with the unit meshes.
// Raylib's cylinder has its base at Y=0, so it is shifted down by half its height.
func ForShape(s physics.Shape) Placement {
	switch s.Kind {
	case physics.ShapeBox:
		return Placement{Mesh: Cube, Scale: mgl64.Vec3{s.Width, s.Height, s.Depth}}
	default:
		d := 2 * s.Radius
		return Placement{Mesh: Cylinder, Scale: mgl64.Vec3{d, s.Height, d}, Offset: mgl64.Vec3{0, -0.5, 0}}
	}
}

// ForSurface returns how to draw a boundary surface: a plane of its full extents.
func ForSurface(s physics.Surface) Placement {
	return Placement{Mesh: Plane, Scale: mgl64.Vec3{2 * s.HalfExtents[0], 1, 2 * s.HalfExtents[1]}}
}

// Transform composes translate · rotate · scale · offset into a raylib model matrix.
func (p Placement) Transform(pos mgl64.Vec3, rot mgl64.Quat) rl.Matrix {
	m := mgl64.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(rot.Mat4()).
		Mul4(mgl64.Scale3D(p.Scale[0], p.Scale[1], p.Scale[2])).
		Mul4(mgl64.Translate3D(p.Offset[0], p.Offset[1], p.Offset[2]))
	return Matrix(m)
}

// Matrix converts a column-major mgl64 matrix to raylib's layout (also column-major: M0..M3
// is the first column).
func Matrix(m mgl64.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: float32(m[0]), M1: float32(m[1]), M2: float32(m[2]), M3: float32(m[3]),
		M4: float32(m[4]), M5: float32(m[5]), M6: float32(m[6]), M7: float32(m[7]),
		M8: float32(m[8]), M9: float32(m[9]), M10: float32(m[10]), M11: float32(m[11]),
		M12: float32(m[12]), M13: float32(m[13]), M14: float32(m[14]), M15: float32(m[15]),
	}
}

// Vec3 converts to a raylib vector.
func Vec3(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v[0]), float32(v[1]), float32(v[2]))
}
