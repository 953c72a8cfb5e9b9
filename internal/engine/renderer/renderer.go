// Package renderer draws imported scenes with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcscene/internal/engine/shader"
	"github.com/Faultbox/ifcscene/internal/logger"
	"github.com/Faultbox/ifcscene/pkg/math"
)

// Vertex strides in floats.
const (
	meshStride = 10 // position, normal, RGBA
	lineStride = 3
)

const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec4 aColor;

uniform mat4 uViewProj;

out vec3 vNormal;
out vec3 vPos;
out vec4 vColor;

void main() {
	vNormal = aNormal;
	vPos = aPos;
	vColor = aColor;
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

// Headlight shading: light comes from the eye, both sides lit.
const meshFragmentShader = `
#version 410 core

in vec3 vNormal;
in vec3 vPos;
in vec4 vColor;

uniform vec3 uEye;
uniform float uAmbient;

out vec4 FragColor;

void main() {
	vec3 toEye = normalize(uEye - vPos);
	float diffuse = abs(dot(normalize(vNormal), toEye));
	vec3 rgb = vColor.rgb * (uAmbient + (1.0 - uAmbient) * diffuse);
	FragColor = vec4(rgb, vColor.a);
}
`

const lineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const lineFragmentShader = `
#version 410 core

uniform vec3 uColor;

out vec4 FragColor;

void main() {
	FragColor = vec4(uColor, 1.0);
}
`

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	// EdgeColor is the colour of visible mesh edges.
	EdgeColor math.Vec3
}

// buffer is a vertex array with its vertex count.
type buffer struct {
	vao, vbo uint32
	count    int32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	mesh  *shader.Program
	lines *shader.Program

	opaque      buffer
	translucent buffer
	edges       buffer
	grid        buffer
	box         buffer
}

// Frame is what one Draw call renders.
type Frame struct {
	ViewProj math.Mat4
	Eye      math.Vec3

	ShowEdges bool
}

// New creates a new renderer.
// Must be called after the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	var err error
	if r.mesh, err = shader.New(meshVertexShader, meshFragmentShader); err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	if r.lines, err = shader.New(lineVertexShader, lineFragmentShader); err != nil {
		r.mesh.Delete()
		return nil, fmt.Errorf("line shader: %w", err)
	}

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for _, b := range []*buffer{&r.opaque, &r.translucent, &r.edges, &r.grid, &r.box} {
		b.release()
	}
	r.mesh.Delete()
	r.lines.Delete()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetScene uploads the face and edge buffers of a scene.
func (r *Renderer) SetScene(opaque, translucent, edges []float32) {
	r.opaque.upload(opaque, meshStride, meshAttributes)
	r.translucent.upload(translucent, meshStride, meshAttributes)
	r.edges.upload(edges, lineStride, lineAttributes)
	r.log.Debug("scene uploaded",
		zap.Int32("opaque", r.opaque.count/3),
		zap.Int32("translucent", r.translucent.count/3),
		zap.Int32("edges", r.edges.count/2),
	)
}

// SetOverlay uploads the grid and bounding box lines.
func (r *Renderer) SetOverlay(grid, box []float32) {
	r.grid.upload(grid, lineStride, lineAttributes)
	r.box.upload(box, lineStride, lineAttributes)
}

// Draw renders one frame.
func (r *Renderer) Draw(f Frame) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.lines.Use()
	r.lines.SetMat4("uViewProj", f.ViewProj)
	r.lines.SetVec3("uColor", math.Vec3{X: 0.3, Y: 0.3, Z: 0.35})
	r.grid.draw(gl.LINES)

	// Pull faces back so edges on them pass the depth test.
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(1, 1)

	r.mesh.Use()
	r.mesh.SetMat4("uViewProj", f.ViewProj)
	r.mesh.SetVec3("uEye", f.Eye)
	r.mesh.SetFloat("uAmbient", 0.35)
	r.opaque.draw(gl.TRIANGLES)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	r.translucent.draw(gl.TRIANGLES)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.Disable(gl.POLYGON_OFFSET_FILL)

	r.lines.Use()
	if f.ShowEdges {
		r.lines.SetVec3("uColor", r.config.EdgeColor)
		r.edges.draw(gl.LINES)
	}
	r.lines.SetVec3("uColor", math.Vec3{X: 1, Y: 0.8, Z: 0.1})
	r.box.draw(gl.LINES)
}

// ReadPixels returns the RGBA contents of the framebuffer, bottom row first.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels, width, height
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, width, height
}

func meshAttributes() {
	const stride = meshStride * 4
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(6*4)))
	gl.EnableVertexAttribArray(2)
}

func lineAttributes() {
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, lineStride*4, nil)
	gl.EnableVertexAttribArray(0)
}

func (b *buffer) upload(data []float32, stride int, attributes func()) {
	b.count = int32(len(data) / stride)
	if b.count == 0 {
		return
	}
	if b.vao == 0 {
		gl.GenVertexArrays(1, &b.vao)
		gl.GenBuffers(1, &b.vbo)
	}
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	attributes()
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

func (b *buffer) draw(mode uint32) {
	if b.count == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(mode, 0, b.count)
	gl.BindVertexArray(0)
}

func (b *buffer) release() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		gl.DeleteBuffers(1, &b.vbo)
		b.vao, b.vbo, b.count = 0, 0, 0
	}
}
