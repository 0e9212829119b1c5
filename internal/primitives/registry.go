package primitives

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Mesh names a unit mesh in the registry.
type Mesh int

const (
	Cube     Mesh = iota // 1×1×1, centered
	Cylinder             // radius 0.5, height 1, base at Y=0
	Plane                // 1×1 in XZ, facing +Y
	meshCount
)

const cylinderSlices = 24

// Registry holds one unit mesh per Mesh and a shared lit material. Meshes are created on first use
// so that GPU resources are allocated after the window/OpenGL context exists.
type Registry struct {
	meshes [meshCount]rl.Mesh
	loaded [meshCount]bool
	mtl    rl.Material
	locs   shaderLocs
	ready  bool
}

// NewRegistry returns a registry with no meshes loaded.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) ensureMaterial() {
	if r.ready {
		return
	}
	r.mtl = rl.LoadMaterialDefault()
	sh, locs := loadLitShader()
	if rl.IsShaderValid(sh) {
		r.mtl.Shader = sh
		r.locs = locs
	}
	r.ready = true
}

func (r *Registry) ensure(m Mesh) {
	if r.loaded[m] {
		return
	}
	switch m {
	case Cube:
		r.meshes[m] = rl.GenMeshCube(1, 1, 1)
	case Cylinder:
		r.meshes[m] = rl.GenMeshCylinder(0.5, 1, cylinderSlices)
	case Plane:
		r.meshes[m] = rl.GenMeshPlane(1, 1, 1, 1)
	}
	r.loaded[m] = true
}

// SetView sets camera position and direction-to-light for this frame. Call once per frame
// before drawing so lit meshes get correct shading.
func (r *Registry) SetView(viewPos, lightDir [3]float32) {
	r.ensureMaterial()
	if rl.IsShaderValid(r.mtl.Shader) {
		setUniforms(r.mtl.Shader, r.locs, viewPos, lightDir)
	}
}

// Draw draws mesh m with the given model transform and tint.
// Must be called between BeginMode3D and EndMode3D.
func (r *Registry) Draw(m Mesh, transform rl.Matrix, tint rl.Color) {
	if m < 0 || m >= meshCount {
		return
	}
	r.ensureMaterial()
	r.ensure(m)
	if albedo := r.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = tint
	}
	rl.DrawMesh(r.meshes[m], r.mtl, transform)
}

// Unload frees the GPU meshes. The default material's shader is unloaded with the window.
func (r *Registry) Unload() {
	for m := range meshCount {
		if r.loaded[m] {
			rl.UnloadMesh(&r.meshes[m])
			r.loaded[m] = false
		}
	}
}
