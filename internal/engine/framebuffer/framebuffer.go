// Package framebuffer provides OpenGL framebuffer utilities for offscreen rendering.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/pcview/cutaway/internal/raster"
)

// Cutaway manages an offscreen render target with two color attachments
// from the same render pass: the lit point colors and the slice mask whose
// alpha marks pixels on the cutting plane. Reading both from one pass
// keeps them spatially aligned.
type Cutaway struct {
	fbo          uint32
	colorTexture uint32
	sliceTexture uint32
	depthRBO     uint32
	width        int32
	height       int32
}

// New creates a cutaway render target with the specified dimensions.
func New(width, height int32) (*Cutaway, error) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	fb := &Cutaway{
		width:  width,
		height: height,
	}

	if err := fb.create(); err != nil {
		return nil, fmt.Errorf("creating cutaway framebuffer: %w", err)
	}

	return fb, nil
}

func (fb *Cutaway) create() error {
	// Create framebuffer object
	gl.GenFramebuffers(1, &fb.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)

	// Color attachment 0: rendered point colors
	fb.colorTexture = fb.createTexture()
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.colorTexture, 0)

	// Color attachment 1: slice mask (alpha > 128 marks the cutting plane)
	fb.sliceTexture = fb.createTexture()
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT1, gl.TEXTURE_2D, fb.sliceTexture, 0)

	// Fragment shaders write to both attachments in one pass
	drawBuffers := [2]uint32{gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1}
	gl.DrawBuffers(2, &drawBuffers[0])

	// Create depth renderbuffer attachment
	gl.GenRenderbuffers(1, &fb.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depthRBO)

	// Check framebuffer completeness
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (fb *Cutaway) createTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, fb.width, fb.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	return tex
}

// Bind makes this framebuffer the current render target.
func (fb *Cutaway) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.Viewport(0, 0, fb.width, fb.height)
}

// Unbind restores the default framebuffer.
func (fb *Cutaway) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// BindWithViewport binds and sets viewport, saving previous state.
// Returns a restore function to restore the previous framebuffer and viewport.
func (fb *Cutaway) BindWithViewport() func() {
	var prevFBO int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.Viewport(0, 0, fb.width, fb.height)

	return func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	}
}

// Clear clears both color attachments and depth with the specified color.
// The slice attachment clears to fully transparent regardless of the color.
func (fb *Cutaway) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	color := [4]float32{r, g, b, a}
	gl.ClearBufferfv(gl.COLOR, 0, &color[0])
	transparent := [4]float32{0, 0, 0, 0}
	gl.ClearBufferfv(gl.COLOR, 1, &transparent[0])
}

// ColorTexture returns the color attachment texture ID.
func (fb *Cutaway) ColorTexture() uint32 {
	return fb.colorTexture
}

// SliceTexture returns the slice mask attachment texture ID.
func (fb *Cutaway) SliceTexture() uint32 {
	return fb.sliceTexture
}

// Size returns the framebuffer dimensions.
func (fb *Cutaway) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize updates the framebuffer dimensions if they have changed.
func (fb *Cutaway) Resize(width, height int32) {
	if width == fb.width && height == fb.height {
		return
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	fb.width = width
	fb.height = height

	gl.BindTexture(gl.TEXTURE_2D, fb.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, fb.width, fb.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	gl.BindTexture(gl.TEXTURE_2D, fb.sliceTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, fb.width, fb.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
}

// Snapshot reads both attachments into rasters oriented top-down. The pair
// comes from the same pass, so pixel (x, y) in the slice mask corresponds
// to the same point fragment in the color raster.
func (fb *Cutaway) Snapshot() (color, slice *raster.Raster, err error) {
	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return nil, nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	colorPix := fb.readAttachment(gl.COLOR_ATTACHMENT0)
	slicePix := fb.readAttachment(gl.COLOR_ATTACHMENT1)

	w, h := int(fb.width), int(fb.height)
	// OpenGL reads rows bottom-up; flip so row 0 is the top of the image.
	return raster.FromPixels(colorPix, w, h, true), raster.FromPixels(slicePix, w, h, true), nil
}

func (fb *Cutaway) readAttachment(attachment uint32) []uint8 {
	pixels := make([]uint8, fb.width*fb.height*4)
	gl.ReadBuffer(attachment)
	gl.ReadPixels(0, 0, fb.width, fb.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

// Destroy releases all OpenGL resources.
func (fb *Cutaway) Destroy() {
	if fb.fbo != 0 {
		gl.DeleteFramebuffers(1, &fb.fbo)
		fb.fbo = 0
	}
	if fb.colorTexture != 0 {
		gl.DeleteTextures(1, &fb.colorTexture)
		fb.colorTexture = 0
	}
	if fb.sliceTexture != 0 {
		gl.DeleteTextures(1, &fb.sliceTexture)
		fb.sliceTexture = 0
	}
	if fb.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &fb.depthRBO)
		fb.depthRBO = 0
	}
}
