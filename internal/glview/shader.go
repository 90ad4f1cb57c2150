package glview

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Shader is an OpenGL shader program.
type Shader struct {
	ID uint32
}

// NewShader compiles and links a vertex/fragment shader pair.
func NewShader(vertexSource, fragmentSource string) (*Shader, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		return nil, fmt.Errorf("link error: %s", programInfoLog(program))
	}

	return &Shader{ID: program}, nil
}

func programInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return log
}

// Use activates the shader program.
func (s *Shader) Use() { gl.UseProgram(s.ID) }

// Delete releases the shader program.
func (s *Shader) Delete() { gl.DeleteProgram(s.ID) }

// SetMat4 sets a mat4 uniform.
func (s *Shader) SetMat4(name string, value mgl32.Mat4) {
	gl.UniformMatrix4fv(s.getUniformLocation(name), 1, false, &value[0])
}

// SetVec3 sets a vec3 uniform.
func (s *Shader) SetVec3(name string, value mgl32.Vec3) {
	gl.Uniform3fv(s.getUniformLocation(name), 1, &value[0])
}

// SetFloat sets a float uniform.
func (s *Shader) SetFloat(name string, value float32) {
	gl.Uniform1f(s.getUniformLocation(name), value)
}

func (s *Shader) getUniformLocation(name string) int32 {
	return gl.GetUniformLocation(s.ID, gl.Str(name+"\x00"))
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("compile error: %s", log)
	}

	return shader, nil
}

// DefaultVertexShader is a minimal position/normal/color passthrough,
// matching AvatarMesh's vertex layout.
const DefaultVertexShader = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec3 aColor;

uniform mat4 view;
uniform mat4 projection;

out vec3 vNormal;
out vec3 vColor;

void main() {
    gl_Position = projection * view * vec4(aPos, 1.0);
    vNormal = aNormal;
    vColor = aColor;
}
`

// DefaultFragmentShader applies a single directional light against the
// baked per-vertex color. ambient is a uniform rather than a baked-in
// floor so the host can dim it — avatarview lowers it while the avatar
// is mid-blink, via Shader.SetFloat.
const DefaultFragmentShader = `
#version 410 core
in vec3 vNormal;
in vec3 vColor;

uniform vec3 lightDir;
uniform float ambient;

out vec4 FragColor;

void main() {
    float diffuse = max(dot(normalize(vNormal), normalize(-lightDir)), ambient);
    FragColor = vec4(vColor * diffuse, 1.0);
}
`
