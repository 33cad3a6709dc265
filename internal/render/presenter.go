package render

import (
	"fmt"
	"image"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// floatsPerVertex is x, y, u, v.
const floatsPerVertex = 4

// Presenter puts painted frames on screen. It needs a current OpenGL context
// for every call, including NewPresenter.
type Presenter struct {
	shader *frameShader
	vao    uint32
	vbo    uint32
	tex    uint32

	texW, texH int
	stats      Stats
}

// NewPresenter creates the quad buffers, the frame texture and the shader.
func NewPresenter() (*Presenter, error) {
	sh, err := newFrameShader()
	if err != nil {
		return nil, fmt.Errorf("frame shader: %w", err)
	}
	p := &Presenter{shader: sh}

	gl.GenVertexArrays(1, &p.vao)
	gl.GenBuffers(1, &p.vbo)
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 6*floatsPerVertex*4, nil, gl.DYNAMIC_DRAW)

	// Position attribute (location 0): 2 floats at offset 0.
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, floatsPerVertex*4, gl.PtrOffset(0))
	// Texture coordinate attribute (location 1): 2 floats at offset 8.
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, floatsPerVertex*4, gl.PtrOffset(2*4))

	gl.GenTextures(1, &p.tex)
	gl.BindTexture(gl.TEXTURE_2D, p.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.BindVertexArray(0)
	return p, nil
}

// Upload copies a painted frame into the texture, reallocating it when the
// frame size changes.
func (p *Presenter) Upload(img *image.RGBA) {
	start := time.Now()

	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, p.tex)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	if w != p.texW || h != p.texH {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
		p.texW, p.texH = w, h
		renderLogger.Printf("frame texture resized to %dx%d", w, h)
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	p.stats.UploadedBytes = len(img.Pix)
	p.stats.LastUploadTimeUs = float64(time.Since(start).Nanoseconds()) / 1000.0
}

// Draw covers a w×h framebuffer with the last uploaded frame.
func (p *Presenter) Draw(w, h int) {
	if p.texW == 0 || w <= 0 || h <= 0 {
		return
	}
	start := time.Now()

	vertices := quadVertices(float64(p.texW), float64(p.texH))
	p.shader.use(affineToMatrix4(screenToNDC(w, h)))

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.tex)
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(vertices)/floatsPerVertex))
	gl.BindVertexArray(0)

	p.stats.LastDrawTimeUs = float64(time.Since(start).Nanoseconds()) / 1000.0
}

// Stats returns upload and draw timings.
func (p *Presenter) Stats() Stats { return p.stats }

// Delete releases the GL objects.
func (p *Presenter) Delete() {
	gl.DeleteTextures(1, &p.tex)
	gl.DeleteBuffers(1, &p.vbo)
	gl.DeleteVertexArrays(1, &p.vao)
	p.shader.delete()
	p.texW, p.texH = 0, 0
}

// quadVertices returns two triangles covering (0,0)-(w,h) in framebuffer
// pixels. Texture row 0 is the top of the frame.
func quadVertices(w, h float64) []float32 {
	fw, fh := float32(w), float32(h)
	return []float32{
		0, 0, 0, 0,
		fw, 0, 1, 0,
		fw, fh, 1, 1,

		0, 0, 0, 0,
		fw, fh, 1, 1,
		0, fh, 0, 1,
	}
}
