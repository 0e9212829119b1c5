package primitives

import rl "github.com/gen2brain/raylib-go/raylib"

// Lit shader: one directional light, hemisphere ambient (sky above, ground below) and
// Blinn-Phong highlights so stacked coins stay readable. Attributes match raylib meshes.
const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
uniform mat4 matNormal;
out vec3 fragPosition;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragNormal = mat3(matNormal) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec3 skyColor;
uniform vec3 groundColor;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float specularPower;
uniform float specularStrength;
out vec4 finalColor;
void main() {
  vec4 tint = colDiffuse;
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = tint.rgb * NdotL * lightColor * lightIntensity;
  vec3 amb = mix(groundColor, skyColor, 0.5 + 0.5 * N.y) * tint.rgb;
  vec3 H = normalize(L + V);
  float spec = pow(max(dot(N, H), 0.0), specularPower) * specularStrength;
  vec3 specular = lightColor * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  finalColor = vec4(amb + diffuse + specular, tint.a);
}
`
)

var (
	skyColor    = [3]float32{0.30, 0.32, 0.38}
	groundColor = [3]float32{0.12, 0.10, 0.08}
	lightColor  = [3]float32{1.0, 0.98, 0.95}
)

const (
	lightIntensity   = float32(0.8)
	specularPower    = float32(64)
	specularStrength = float32(0.5)
)

// shaderLocs caches uniform locations; -1 means the uniform was optimized out.
type shaderLocs struct {
	viewPos, lightDir, sky, ground, lightColor, intensity, specPower, specStrength int32
}

func loadLitShader() (rl.Shader, shaderLocs) {
	sh := rl.LoadShaderFromMemory(litVS, litFS)
	if !rl.IsShaderValid(sh) {
		return sh, shaderLocs{}
	}
	return sh, shaderLocs{
		viewPos:      rl.GetShaderLocation(sh, "viewPos"),
		lightDir:     rl.GetShaderLocation(sh, "lightDir"),
		sky:          rl.GetShaderLocation(sh, "skyColor"),
		ground:       rl.GetShaderLocation(sh, "groundColor"),
		lightColor:   rl.GetShaderLocation(sh, "lightColor"),
		intensity:    rl.GetShaderLocation(sh, "lightIntensity"),
		specPower:    rl.GetShaderLocation(sh, "specularPower"),
		specStrength: rl.GetShaderLocation(sh, "specularStrength"),
	}
}

// setUniforms uploads the per-frame light setup (cgo-safe: local arrays).
func setUniforms(sh rl.Shader, l shaderLocs, viewPos, lightDir [3]float32) {
	vec3 := func(loc int32, v [3]float32) {
		if loc >= 0 {
			rl.SetShaderValueV(sh, loc, v[:], rl.ShaderUniformVec3, 1)
		}
	}
	scalar := func(loc int32, v float32) {
		if loc >= 0 {
			rl.SetShaderValue(sh, loc, []float32{v}, rl.ShaderUniformFloat)
		}
	}
	vec3(l.viewPos, viewPos)
	vec3(l.lightDir, lightDir)
	vec3(l.sky, skyColor)
	vec3(l.ground, groundColor)
	vec3(l.lightColor, lightColor)
	scalar(l.intensity, lightIntensity)
	scalar(l.specPower, specularPower)
	scalar(l.specStrength, specularStrength)
}
