package glview

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera circles a fixed target at a configurable distance, adapted
// from the teacher's FPS camera: the same yaw/pitch-to-direction vector
// math, but the camera position is derived from the target instead of
// integrating movement input.
type OrbitCamera struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
	FOV      float32
}

// NewOrbitCamera creates a camera looking at target from the given
// distance.
func NewOrbitCamera(target mgl32.Vec3, distance float32) *OrbitCamera {
	return &OrbitCamera{
		Target:   target,
		Distance: distance,
		Yaw:      -90.0,
		Pitch:    15.0,
		FOV:      45.0,
	}
}

// Position computes the camera's world position from Target/Distance/
// Yaw/Pitch.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	yawRad := float64(c.Yaw) * math.Pi / 180.0
	pitchRad := float64(c.Pitch) * math.Pi / 180.0

	offset := mgl32.Vec3{
		float32(math.Cos(yawRad) * math.Cos(pitchRad)),
		float32(math.Sin(pitchRad)),
		float32(math.Sin(yawRad) * math.Cos(pitchRad)),
	}
	return c.Target.Sub(offset.Mul(c.Distance))
}

// GetViewMatrix returns the view matrix looking from Position() at Target.
func (c *OrbitCamera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// ProcessMouseMovement rotates the camera around the target.
func (c *OrbitCamera) ProcessMouseMovement(xoffset, yoffset float32) {
	const sensitivity = 0.2
	c.Yaw += xoffset * sensitivity
	c.Pitch += yoffset * sensitivity
	if c.Pitch > 89.0 {
		c.Pitch = 89.0
	}
	if c.Pitch < -89.0 {
		c.Pitch = -89.0
	}
}

// ProcessScroll adjusts orbit distance.
func (c *OrbitCamera) ProcessScroll(yoffset float32) {
	c.Distance -= yoffset
	if c.Distance < 1.0 {
		c.Distance = 1.0
	}
	if c.Distance > 500.0 {
		c.Distance = 500.0
	}
}
