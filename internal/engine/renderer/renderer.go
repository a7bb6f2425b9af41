// Package renderer provides OpenGL rendering for the point cloud and the
// annotation raster overlay.
package renderer

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pcview/cutaway/internal/cloud"
	"github.com/pcview/cutaway/internal/engine/shader"
	"github.com/pcview/cutaway/internal/logger"
	"github.com/pcview/cutaway/internal/raster"
	"github.com/pcview/cutaway/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// CloudParams are the per-draw uniforms for the point program.
type CloudParams struct {
	Clipping   bool
	ShowSlice  bool
	SliceWidth float32
	// ZoomPixels is pixels per world unit at the current zoom, used to
	// size points on screen.
	ZoomPixels float32
	PointSize  float32
}

// chunk is one uploaded batch of vertices. Chunks are append-only; the
// cloud never changes once a batch is uploaded.
type chunk struct {
	vao   uint32
	vbo   uint32
	count int32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	pointProgram *shader.Program
	chunks       []chunk
	pointCount   int

	quadProgram   *shader.Program
	quadVAO       uint32
	quadVBO       uint32
	rasterTexture uint32
	rasterW       int32
	rasterH       int32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	// Setup default OpenGL state
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	var err error
	r.pointProgram, err = shader.NewProgram(pointVertexSrc, pointFragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to create point program: %w", err)
	}

	r.quadProgram, err = shader.NewProgram(quadVertexSrc, quadFragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to create quad program: %w", err)
	}

	if err := r.createQuad(); err != nil {
		return nil, fmt.Errorf("failed to create raster quad: %w", err)
	}

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for _, c := range r.chunks {
		gl.DeleteVertexArrays(1, &c.vao)
		gl.DeleteBuffers(1, &c.vbo)
	}
	r.chunks = nil
	if r.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &r.quadVAO)
	}
	if r.quadVBO != 0 {
		gl.DeleteBuffers(1, &r.quadVBO)
	}
	if r.rasterTexture != 0 {
		gl.DeleteTextures(1, &r.rasterTexture)
	}
	if r.pointProgram != nil {
		r.pointProgram.Delete()
	}
	if r.quadProgram != nil {
		r.quadProgram.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the current render target dimensions.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Clear clears the current render target to a sky blue background.
func (r *Renderer) Clear() {
	gl.ClearColor(135.0/255.0, 206.0/255.0, 235.0/255.0, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// AddChunk uploads one converted batch as an immutable vertex buffer.
func (r *Renderer) AddChunk(verts []cloud.Vertex) {
	if len(verts) == 0 {
		return
	}

	var c chunk
	c.count = int32(len(verts))

	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)

	gl.GenBuffers(1, &c.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)

	stride := int32(unsafe.Sizeof(verts[0]))
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*int(stride), gl.Ptr(verts), gl.STATIC_DRAW)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)

	// Color attribute (location = 1), normalized bytes
	gl.VertexAttribPointer(1, 3, gl.UNSIGNED_BYTE, true, stride, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	r.chunks = append(r.chunks, c)
	r.pointCount += len(verts)

	logger.Debug("chunk uploaded",
		zap.Int("vertices", len(verts)),
		zap.Int("chunks", len(r.chunks)),
		zap.Int("total_points", r.pointCount),
	)
}

// PointCount returns the number of vertices uploaded so far.
func (r *Renderer) PointCount() int {
	return r.pointCount
}

// DrawCloud renders every uploaded chunk with the given transforms.
func (r *Renderer) DrawCloud(modelview, projection math.Mat4, p CloudParams) {
	if len(r.chunks) == 0 {
		return
	}

	r.pointProgram.Use()
	r.pointProgram.SetMat4("u_modelview", modelview.Ptr())
	r.pointProgram.SetMat4("u_projection", projection.Ptr())
	r.pointProgram.SetBool("u_clipping", p.Clipping)
	r.pointProgram.SetBool("u_slice", p.ShowSlice)
	r.pointProgram.SetFloat("u_slice_width", p.SliceWidth)
	r.pointProgram.SetFloat("u_zoom", p.ZoomPixels)
	r.pointProgram.SetFloat("u_size", p.PointSize)

	for _, c := range r.chunks {
		gl.BindVertexArray(c.vao)
		gl.DrawArrays(gl.POINTS, 0, c.count)
	}
	gl.BindVertexArray(0)
}

// UpdateRaster uploads the annotation raster, reallocating the texture
// when its dimensions change.
func (r *Renderer) UpdateRaster(img *raster.Raster) {
	if r.rasterTexture == 0 {
		gl.GenTextures(1, &r.rasterTexture)
		gl.BindTexture(gl.TEXTURE_2D, r.rasterTexture)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	} else {
		gl.BindTexture(gl.TEXTURE_2D, r.rasterTexture)
	}

	w, h := int32(img.W), int32(img.H)
	if w != r.rasterW || h != r.rasterH {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
		r.rasterW, r.rasterH = w, h
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, w, h, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	}
}

// DrawRaster blits the annotation raster over the full viewport.
func (r *Renderer) DrawRaster() {
	if r.rasterTexture == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	defer gl.Enable(gl.DEPTH_TEST)

	r.quadProgram.Use()
	r.quadProgram.SetInt("u_raster", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.rasterTexture)

	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

// createQuad creates the fullscreen quad geometry for raster display.
func (r *Renderer) createQuad() error {
	// Position (x, y) + texcoord (u, v). Texture row 0 is the top of the
	// annotation raster, so v flips.
	vertices := []float32{
		-1.0, -1.0, 0.0, 1.0,
		1.0, -1.0, 1.0, 1.0,
		-1.0, 1.0, 0.0, 0.0,
		1.0, 1.0, 1.0, 0.0,
	}

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.BindVertexArray(r.quadVAO)

	gl.GenBuffers(1, &r.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, nil)
	gl.EnableVertexAttribArray(0)

	// Texcoord attribute (location = 1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, unsafe.Pointer(uintptr(2*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return nil
}
