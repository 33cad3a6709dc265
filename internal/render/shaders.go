package render

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Textured quad: positions in framebuffer pixels mapped by uTransform, the
// frame sampled from texture unit 0.
const (
	frameVertexSource = `
#version 330 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
uniform mat4 uTransform;
out vec2 vUV;

void main() {
    vUV = aUV;
    gl_Position = uTransform * vec4(aPos, 0.0, 1.0);
}
` + "\x00"

	frameFragmentSource = `
#version 330 core
in vec2 vUV;
uniform sampler2D uFrame;
out vec4 FragColor;

void main() {
    FragColor = texture(uFrame, vUV);
}
` + "\x00"
)

// frameShader is the linked program the Presenter draws with.
type frameShader struct {
	program    uint32
	uTransform int32
}

func newFrameShader() (*frameShader, error) {
	vs, err := compileStage(frameVertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compileStage(frameFragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	var ok int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &ok)
	if ok == gl.FALSE {
		msg := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("link: %s", msg)
	}

	sh := &frameShader{
		program:    program,
		uTransform: gl.GetUniformLocation(program, gl.Str("uTransform\x00")),
	}
	gl.UseProgram(program)
	gl.Uniform1i(gl.GetUniformLocation(program, gl.Str("uFrame\x00")), 0)
	return sh, nil
}

func (sh *frameShader) use(transform [16]float32) {
	gl.UseProgram(sh.program)
	gl.UniformMatrix4fv(sh.uTransform, 1, false, &transform[0])
}

func (sh *frameShader) delete() { gl.DeleteProgram(sh.program) }

func compileStage(source string, kind uint32) (uint32, error) {
	shader := gl.CreateShader(kind)
	src, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, src, nil)
	free()
	gl.CompileShader(shader)

	var ok int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &ok)
	if ok == gl.FALSE {
		msg := infoLog(shader, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile: %s", msg)
	}
	return shader, nil
}

// infoLog reads the compile or link log of a shader or program object.
func infoLog(
	obj uint32,
	param func(uint32, uint32, *int32),
	read func(uint32, int32, *int32, *uint8),
) string {
	var n int32
	param(obj, gl.INFO_LOG_LENGTH, &n)
	buf := strings.Repeat("\x00", int(n+1))
	read(obj, n, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00\n")
}
