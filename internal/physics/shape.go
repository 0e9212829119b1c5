package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"coinpile/internal/vmath"
)

// ShapeKind selects the collision geometry of a body.
type ShapeKind int

const (
	ShapeCylinder ShapeKind = iota
	ShapeBox
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCylinder:
		return "cylinder"
	case ShapeBox:
		return "box"
	}
	return "unknown"
}

// Shape is the local-space geometry of a body, centered on the body position.
// Cylinders have their axis along local Y (a coin lying flat). Boxes use Width on X,
// Height on Y and Depth on Z.
type Shape struct {
	Kind   ShapeKind
	Radius float64
	Height float64
	Width  float64
	Depth  float64
}

// Cylinder returns a cylinder shape. Parameters are checked by Validate / NewBody.
func Cylinder(radius, height float64) Shape {
	return Shape{Kind: ShapeCylinder, Radius: radius, Height: height}
}

// Box returns a box shape with full side lengths.
func Box(width, height, depth float64) Shape {
	return Shape{Kind: ShapeBox, Width: width, Height: height, Depth: depth}
}

// Validate returns an *InvalidShapeError for any zero, negative or non-finite dimension.
func (s Shape) Validate() error {
	check := func(param string, v float64) error {
		if !(v > 0) || math.IsInf(v, 0) {
			return &InvalidShapeError{Shape: s.Kind.String(), Param: param, Value: v}
		}
		return nil
	}
	switch s.Kind {
	case ShapeCylinder:
		if err := check("radius", s.Radius); err != nil {
			return err
		}
		return check("height", s.Height)
	case ShapeBox:
		if err := check("width", s.Width); err != nil {
			return err
		}
		if err := check("height", s.Height); err != nil {
			return err
		}
		return check("depth", s.Depth)
	}
	return &InvalidShapeError{Shape: s.Kind.String(), Param: "kind", Value: float64(s.Kind)}
}

// BoundingRadius is the radius of the sphere around the center that contains the shape.
func (s Shape) BoundingRadius() float64 {
	switch s.Kind {
	case ShapeCylinder:
		return math.Hypot(s.Radius, s.Height/2)
	case ShapeBox:
		return mgl64.Vec3{s.Width, s.Height, s.Depth}.Len() / 2
	}
	return 0
}

// inertia returns the principal moments of inertia in the local frame for mass m.
func (s Shape) inertia(m float64) mgl64.Vec3 {
	switch s.Kind {
	case ShapeCylinder:
		side := m * (3*s.Radius*s.Radius + s.Height*s.Height) / 12
		return mgl64.Vec3{side, m * s.Radius * s.Radius / 2, side}
	case ShapeBox:
		w2, h2, d2 := s.Width*s.Width, s.Height*s.Height, s.Depth*s.Depth
		return mgl64.Vec3{m * (h2 + d2) / 12, m * (w2 + d2) / 12, m * (w2 + h2) / 12}
	}
	return mgl64.Vec3{m, m, m}
}

// support returns the farthest point of the shape posed at (pos, rot) along dir.
// Cylinder: axial cap chosen by the sign of dir along the axis, plus the rim point in the
// direction of dir's radial part. Box: the corner selected by the signs along each axis.
// Axes perpendicular to dir contribute their midpoint, so a flat face reports its center.
func (s Shape) support(pos mgl64.Vec3, rot mgl64.Quat, dir mgl64.Vec3) mgl64.Vec3 {
	scale := dir.Len()
	switch s.Kind {
	case ShapeCylinder:
		axis := rot.Rotate(vmath.UnitY)
		along := dir.Dot(axis)
		p := pos.Add(axis.Mul(side(along, scale) * s.Height / 2))
		radial := dir.Sub(axis.Mul(along))
		if l := radial.Len(); l > 1e-9*scale {
			p = p.Add(radial.Mul(s.Radius / l))
		}
		return p
	case ShapeBox:
		half := [3]float64{s.Width / 2, s.Height / 2, s.Depth / 2}
		axes := [3]mgl64.Vec3{rot.Rotate(vmath.UnitX), rot.Rotate(vmath.UnitY), rot.Rotate(vmath.UnitZ)}
		p := pos
		for i, a := range axes {
			p = p.Add(a.Mul(side(dir.Dot(a), scale) * half[i]))
		}
		return p
	}
	return pos
}

// side is the sign of v, or 0 when v is negligible next to scale.
func side(v, scale float64) float64 {
	switch {
	case v > 1e-9*scale:
		return 1
	case v < -1e-9*scale:
		return -1
	}
	return 0
}
