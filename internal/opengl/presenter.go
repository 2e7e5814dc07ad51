package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"volumetric-fog/fog"
	"volumetric-fog/internal/gpu"
	"volumetric-fog/internal/output"
)

// View selects how the presented texture is interpreted.
type View int32

const (
	// ViewColor tone maps linear radiance.
	ViewColor View = iota
	// ViewDepth shows device depth in the red channel as grey.
	ViewDepth
	// ViewMotion shows the magnitude of uv motion in red and green.
	ViewMotion
)

func (v View) String() string {
	switch v {
	case ViewDepth:
		return "depth"
	case ViewMotion:
		return "motion"
	default:
		return "color"
	}
}

// Presenter uploads a software rendered texture each frame and draws it to
// the default framebuffer with a fullscreen triangle. Tone mapping matches
// output.Tonemap so the window and saved PNGs agree.
type Presenter struct {
	ToneMapping output.ToneMapping
	View        View

	prog     uint32
	tex      uint32
	vao      uint32
	texLoc   int32
	expLoc   int32
	gammaLoc int32
	viewLoc  int32

	width, height int32
	pixels        []float32
}

// ── Shaders ───────────────────────────────────────────────────────────────────

// presentVertSrc is a fullscreen triangle via gl_VertexID (no VBO needed).
const presentVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

// presentFragSrc applies exposure, Reinhard and gamma, or a debug view.
const presentFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D image;
uniform float     exposure;
uniform float     gamma;
uniform int       view;

void main() {
    vec4 texel = texture(image, fragUV);
    if (view == 1) {
        outColor = vec4(vec3(1.0 - pow(texel.r, 64.0)), 1.0);
        return;
    }
    if (view == 2) {
        outColor = vec4(clamp(abs(texel.rg) * 50.0, 0.0, 1.0), 0.0, 1.0);
        return;
    }
    vec3 hdr = max(texel.rgb * exposure, vec3(0.0));
    vec3 mapped = hdr / (vec3(1.0) + hdr);
    if (gamma > 0.0) {
        mapped = pow(mapped, vec3(1.0 / gamma));
    }
    outColor = vec4(mapped, 1.0);
}
` + "\x00"

// ── Constructor ───────────────────────────────────────────────────────────────

// NewPresenter initialises OpenGL. Must be called after the GLFW window
// context is made current.
func NewPresenter() (*Presenter, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	fog.Logger().Info("opengl: context ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	prog, err := newProgram(presentVertSrc, presentFragSrc)
	if err != nil {
		return nil, fmt.Errorf("present shader: %w", err)
	}
	p := &Presenter{ToneMapping: output.DefaultToneMapping(), prog: prog}
	p.texLoc = gl.GetUniformLocation(prog, gl.Str("image\x00"))
	p.expLoc = gl.GetUniformLocation(prog, gl.Str("exposure\x00"))
	p.gammaLoc = gl.GetUniformLocation(prog, gl.Str("gamma\x00"))
	p.viewLoc = gl.GetUniformLocation(prog, gl.Str("view\x00"))

	gl.UseProgram(prog)
	gl.Uniform1i(p.texLoc, 0)
	gl.GenVertexArrays(1, &p.vao)

	gl.GenTextures(1, &p.tex)
	gl.BindTexture(gl.TEXTURE_2D, p.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return p, nil
}

// Upload copies tex into the GL texture, flipping rows since GL textures
// start at the bottom.
func (p *Presenter) Upload(tex *gpu.Texture) {
	w, h := tex.Width(), tex.Height()
	if n := w * h * 4; len(p.pixels) != n {
		p.pixels = make([]float32, n)
	}
	gpu.Dispatch(1, h, func(_, y int) {
		row := p.pixels[(h-1-y)*w*4:]
		for x := 0; x < w; x++ {
			c := tex.Load(x, y)
			row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = c.X, c.Y, c.Z, c.W
		}
	})

	gl.BindTexture(gl.TEXTURE_2D, p.tex)
	if int32(w) != p.width || int32(h) != p.height {
		p.width, p.height = int32(w), int32(h)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, p.width, p.height, 0, gl.RGBA, gl.FLOAT, gl.Ptr(p.pixels))
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, p.width, p.height, gl.RGBA, gl.FLOAT, gl.Ptr(p.pixels))
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Draw stretches the last upload over a viewport of the given size in the
// default framebuffer.
func (p *Presenter) Draw(viewportWidth, viewportHeight int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(viewportWidth), int32(viewportHeight))
	gl.Disable(gl.DEPTH_TEST)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if p.width == 0 {
		return
	}

	gl.UseProgram(p.prog)
	gl.Uniform1f(p.expLoc, p.ToneMapping.Exposure)
	gl.Uniform1f(p.gammaLoc, p.ToneMapping.Gamma)
	gl.Uniform1i(p.viewLoc, int32(p.View))
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.tex)
	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

// Destroy frees all GPU resources owned by the presenter.
func (p *Presenter) Destroy() {
	if p.tex != 0 {
		gl.DeleteTextures(1, &p.tex)
		p.tex = 0
	}
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.prog != 0 {
		gl.DeleteProgram(p.prog)
		p.prog = 0
	}
}
