package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"voxelavatar/internal/animation"
	"voxelavatar/internal/avatar"
	"voxelavatar/internal/glview"
	"voxelavatar/internal/skeleton"
)

const (
	windowWidth  = 1280
	windowHeight = 720
)

func main() {
	runtime.LockOSThread()

	fmt.Println("avatarview - voxel humanoid demo viewer")
	fmt.Println("Controls:")
	fmt.Println("  Mouse drag (LMB) - orbit camera")
	fmt.Println("  Scroll           - zoom")
	fmt.Println("  1/2/3/4          - idle/walk/run/jump")
	fmt.Println("  E                - trigger smile")
	fmt.Println("  ESC              - quit")

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "avatarview: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "avatarview", nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.Enable(gl.MULTISAMPLE)
	gl.ClearColor(0.1, 0.12, 0.16, 1.0)

	shader, err := glview.NewShader(glview.DefaultVertexShader, glview.DefaultFragmentShader)
	if err != nil {
		return fmt.Errorf("compile shader: %w", err)
	}
	defer shader.Delete()

	body, err := buildDemoBody()
	if err != nil {
		return fmt.Errorf("build demo body: %w", err)
	}
	av := avatar.New(body, 1)
	renderer := glview.NewAvatarRenderer()
	defer renderer.Cleanup()

	cam := glview.NewOrbitCamera(mgl32.Vec3{16, 32, 16}, 60)

	input := newViewerInput(window)
	window.SetCursorPosCallback(input.cursorPosCallback)
	window.SetMouseButtonCallback(input.mouseButtonCallback)
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		cam.ProcessScroll(float32(yoff))
	})

	lastFrame := glfw.GetTime()
	for !window.ShouldClose() {
		current := glfw.GetTime()
		dt := float32(current - lastFrame)
		lastFrame = current
		if dt > 0.1 {
			dt = 0.1
		}

		glfw.PollEvents()
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
		}
		handleLocomotionKeys(window, av)
		handleEmotionKeys(window, av)

		if input.dragging {
			dx, dy := input.consumeDelta()
			cam.ProcessMouseMovement(float32(dx), float32(-dy))
		}

		av.Update(dt, nil)

		for _, bone := range skeleton.BoneOrder {
			renderer.UpdateBone(string(bone), av.PosedGeometry(bone))
		}

		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		width, height := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(width), int32(height))

		shader.Use()
		shader.SetMat4("view", cam.GetViewMatrix())
		projection := mgl32.Perspective(mgl32.DegToRad(cam.FOV), float32(width)/float32(height), 0.1, 1000.0)
		shader.SetMat4("projection", projection)
		shader.SetVec3("lightDir", mgl32.Vec3{-0.4, -1.0, -0.3})
		ambient := float32(0.2)
		if av.Expr.IsBlinking() {
			ambient = 0.08
		}
		shader.SetFloat("ambient", ambient)

		renderer.Draw()

		window.SwapBuffers()
	}
	return nil
}

// handleLocomotionKeys maps number keys to the mixer's locomotion
// states, standing in for the actual movement-speed input a host
// application would feed to Avatar.Mixer.SetMovementSpeed.
func handleLocomotionKeys(window *glfw.Window, av *avatar.Avatar) {
	switch {
	case window.GetKey(glfw.Key1) == glfw.Press:
		av.Mixer.SetState(animation.Idle, animation.SetStateOptions{})
	case window.GetKey(glfw.Key2) == glfw.Press:
		av.Mixer.SetState(animation.Walk, animation.SetStateOptions{})
	case window.GetKey(glfw.Key3) == glfw.Press:
		av.Mixer.SetState(animation.Run, animation.SetStateOptions{})
	case window.GetKey(glfw.Key4) == glfw.Press:
		av.Mixer.SetState(animation.Jump, animation.SetStateOptions{})
	}
}

func handleEmotionKeys(window *glfw.Window, av *avatar.Avatar) {
	if window.GetKey(glfw.KeyE) == glfw.Press {
		av.Expr.SetExpression("smile")
	}
}

// viewerInput tracks left-mouse-drag state for orbit camera control,
// mirroring the teacher's callback-driven Input but scoped to just what
// the orbit camera needs.
type viewerInput struct {
	window       *glfw.Window
	dragging     bool
	lastX, lastY float64
	deltaX, deltaY float64
}

func newViewerInput(window *glfw.Window) *viewerInput {
	return &viewerInput{window: window}
}

func (v *viewerInput) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	if v.dragging {
		v.deltaX += xpos - v.lastX
		v.deltaY += ypos - v.lastY
	}
	v.lastX = xpos
	v.lastY = ypos
}

func (v *viewerInput) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	v.dragging = action == glfw.Press
}

func (v *viewerInput) consumeDelta() (dx, dy float64) {
	dx, dy = v.deltaX, v.deltaY
	v.deltaX, v.deltaY = 0, 0
	return
}
