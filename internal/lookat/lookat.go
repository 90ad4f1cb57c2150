// Package lookat implements LookAt: manual and automatic gaze targeting,
// clamped head/eye rotation, and neck follow-through (spec.md §4.10).
package lookat

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelavatar/internal/mathutil"
	"voxelavatar/internal/skeleton"
)

const (
	defaultAutoLookRadius  = 10.0
	defaultAutoLookMinWait = 2.0
	defaultAutoLookMaxWait = 5.0
	defaultHeadYawLimit    = 60.0
	defaultHeadPitchLimit  = 45.0
	defaultEyeYawLimit     = 30.0
	defaultEyePitchLimit   = 22.5
	defaultApproachSpeed   = 8.0
)

// Config tunes gaze limits and timing. Degrees throughout, matching the
// teacher's Camera.Yaw/Pitch convention.
type Config struct {
	AutoLookRadius     float32
	AutoLookMinWait    float32
	AutoLookMaxWait    float32
	HeadYawLimit       float32
	HeadPitchLimit     float32
	EyeYawLimit        float32
	EyePitchLimit      float32
	ApproachSpeed      float32
	EyeOffsetMultiplier float32
}

// DefaultConfig returns the spec.md §4.10 defaults.
func DefaultConfig() Config {
	return Config{
		AutoLookRadius:      defaultAutoLookRadius,
		AutoLookMinWait:     defaultAutoLookMinWait,
		AutoLookMaxWait:     defaultAutoLookMaxWait,
		HeadYawLimit:        defaultHeadYawLimit,
		HeadPitchLimit:      defaultHeadPitchLimit,
		EyeYawLimit:         defaultEyeYawLimit,
		EyePitchLimit:       defaultEyePitchLimit,
		ApproachSpeed:       defaultApproachSpeed,
		EyeOffsetMultiplier: 2.0,
	}
}

// LookAt owns the gaze state machine: a manual target (with optional
// expiry), an auto-look fallback, and the current/target yaw-pitch pair
// for head and eyes.
type LookAt struct {
	cfg Config
	rng *mathutil.SeededRNG

	manualTarget   mgl32.Vec3
	hasManual      bool
	manualRemaining float32 // 0 means indefinite
	manualIndefinite bool

	autoTimer  float32
	autoWaitAt float32
	autoTarget mgl32.Vec3

	headYaw, headPitch float32
	eyeYaw, eyePitch   float32
}

// New builds a LookAt seeded deterministically for reproducible
// auto-look target sampling.
func New(seed int64) *LookAt {
	l := &LookAt{
		cfg: DefaultConfig(),
		rng: mathutil.NewSeededRNG(seed),
	}
	l.autoWaitAt = l.sampleAutoWait()
	return l
}

// SetConfig overrides gaze limits/timing.
func (l *LookAt) SetConfig(cfg Config) { l.cfg = cfg }

func (l *LookAt) sampleAutoWait() float32 {
	return float32(l.rng.NextFloat(float64(l.cfg.AutoLookMinWait), float64(l.cfg.AutoLookMaxWait)))
}

// SetTarget sets a manual gaze target. duration<=0 means indefinite
// (held until overridden or cleared).
func (l *LookAt) SetTarget(target mgl32.Vec3, duration float32) {
	l.manualTarget = target
	l.hasManual = true
	l.manualIndefinite = duration <= 0
	l.manualRemaining = duration
}

// ClearTarget drops the manual target, reverting to auto-look.
func (l *LookAt) ClearTarget() {
	l.hasManual = false
}

// Update advances the gaze state by dt and applies the resulting
// rotation to the skeleton's head bone (plus 30% follow-through to the
// neck), per spec.md §4.10.
func (l *LookAt) Update(dt float32, skel *skeleton.Skeleton, headWorldPosition mgl32.Vec3) {
	if l.hasManual && !l.manualIndefinite {
		l.manualRemaining -= dt
		if l.manualRemaining <= 0 {
			l.hasManual = false
		}
	}

	target := l.resolveTarget(dt, headWorldPosition)

	d := target.Sub(headWorldPosition)
	yaw := float32(math.Atan2(float64(d[0]), float64(d[2]))) * 180 / float32(math.Pi)
	horizontalDist := float32(math.Sqrt(float64(d[0]*d[0] + d[2]*d[2])))
	pitch := -float32(math.Atan2(float64(d[1]), float64(horizontalDist))) * 180 / float32(math.Pi)

	clampedYaw := mathutil.Clamp32(yaw, -l.cfg.HeadYawLimit, l.cfg.HeadYawLimit)
	clampedPitch := mathutil.Clamp32(pitch, -l.cfg.HeadPitchLimit, l.cfg.HeadPitchLimit)
	remainderYaw := (yaw - clampedYaw) * l.cfg.EyeOffsetMultiplier
	remainderPitch := (pitch - clampedPitch) * l.cfg.EyeOffsetMultiplier

	targetEyeYaw := mathutil.Clamp32(remainderYaw, -l.cfg.EyeYawLimit, l.cfg.EyeYawLimit)
	targetEyePitch := mathutil.Clamp32(remainderPitch, -l.cfg.EyePitchLimit, l.cfg.EyePitchLimit)

	approach := mathutil.Clamp32(l.cfg.ApproachSpeed*dt, 0, 1)
	l.headYaw += (clampedYaw - l.headYaw) * approach
	l.headPitch += (clampedPitch - l.headPitch) * approach
	l.eyeYaw += (targetEyeYaw - l.eyeYaw) * approach
	l.eyePitch += (targetEyePitch - l.eyePitch) * approach

	headRotation := yawPitchToQuat(l.headYaw, l.headPitch)
	skel.SetLocalRotation(skeleton.Head, headRotation)
	skel.SetLocalRotation(skeleton.Neck, yawPitchToQuat(l.headYaw*0.3, l.headPitch*0.3))
}

// resolveTarget returns the manual target if active, otherwise advances
// (and samples, when due) an auto-look ring target around
// headWorldPosition.
func (l *LookAt) resolveTarget(dt float32, headWorldPosition mgl32.Vec3) mgl32.Vec3 {
	if l.hasManual {
		return l.manualTarget
	}

	l.autoTimer += dt
	if l.autoTimer < l.autoWaitAt {
		return l.lastAutoTarget(headWorldPosition)
	}
	l.autoTimer = 0
	l.autoWaitAt = l.sampleAutoWait()
	l.autoTarget = sampleRingTarget(l.rng, headWorldPosition, l.cfg.AutoLookRadius)
	return l.autoTarget
}

func (l *LookAt) lastAutoTarget(headWorldPosition mgl32.Vec3) mgl32.Vec3 {
	if l.autoTarget == (mgl32.Vec3{}) {
		l.autoTarget = sampleRingTarget(l.rng, headWorldPosition, l.cfg.AutoLookRadius)
	}
	return l.autoTarget
}

func sampleRingTarget(rng *mathutil.SeededRNG, center mgl32.Vec3, radius float32) mgl32.Vec3 {
	angle := rng.NextFloat(0, 2*math.Pi)
	dx := float32(math.Cos(angle)) * radius
	dz := float32(math.Sin(angle)) * radius
	return center.Add(mgl32.Vec3{dx, 0, dz})
}

func yawPitchToQuat(yawDeg, pitchDeg float32) mgl32.Quat {
	yawRad := yawDeg * float32(math.Pi) / 180
	pitchRad := pitchDeg * float32(math.Pi) / 180
	yawQuat := mgl32.QuatRotate(yawRad, mgl32.Vec3{0, 1, 0})
	pitchQuat := mgl32.QuatRotate(pitchRad, mgl32.Vec3{1, 0, 0})
	return yawQuat.Mul(pitchQuat).Normalize()
}
