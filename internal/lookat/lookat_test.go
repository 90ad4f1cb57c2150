package lookat

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"voxelavatar/internal/skeleton"
)

// Invariant 9: head yaw/pitch never exceed their configured limits, even
// when the look target is far outside the clampable range and the
// approach speed is high enough to reach steady state quickly.
func TestLookAtClampsToHeadLimitsInvariant9(t *testing.T) {
	l := New(1)
	l.SetConfig(Config{
		AutoLookRadius: 10, AutoLookMinWait: 2, AutoLookMaxWait: 5,
		HeadYawLimit: 60, HeadPitchLimit: 45,
		EyeYawLimit: 30, EyePitchLimit: 22.5,
		ApproachSpeed: 50, EyeOffsetMultiplier: 2.0,
	})
	skel := skeleton.New()
	headPos := skel.Bone(skeleton.Head).WorldPosition

	// directly to the side and far above: yaw and pitch both want to
	// exceed their limits.
	l.SetTarget(headPos.Add(mgl32.Vec3{100, 100, 0}), 0)

	for i := 0; i < 300; i++ {
		l.Update(1.0/60.0, skel, headPos)
	}

	require.LessOrEqual(t, l.headYaw, float32(60.01))
	require.GreaterOrEqual(t, l.headYaw, float32(-60.01))
	require.LessOrEqual(t, l.headPitch, float32(45.01))
	require.GreaterOrEqual(t, l.headPitch, float32(-45.01))
}

func TestLookAtEyeOffsetClampedToEyeLimits(t *testing.T) {
	l := New(2)
	cfg := DefaultConfig()
	cfg.ApproachSpeed = 50
	l.SetConfig(cfg)
	skel := skeleton.New()
	headPos := skel.Bone(skeleton.Head).WorldPosition

	l.SetTarget(headPos.Add(mgl32.Vec3{100, 0, 1}), 0)
	for i := 0; i < 300; i++ {
		l.Update(1.0/60.0, skel, headPos)
	}

	require.LessOrEqual(t, l.eyeYaw, cfg.EyeYawLimit+0.01)
	require.GreaterOrEqual(t, l.eyeYaw, -cfg.EyeYawLimit-0.01)
}

func TestManualTargetExpiresAfterDuration(t *testing.T) {
	l := New(3)
	skel := skeleton.New()
	headPos := skel.Bone(skeleton.Head).WorldPosition
	l.SetTarget(headPos.Add(mgl32.Vec3{5, 0, 5}), 0.1)
	require.True(t, l.hasManual)

	for i := 0; i < 10; i++ {
		l.Update(1.0/60.0, skel, headPos)
	}
	require.False(t, l.hasManual)
}

func TestClearTargetRevertsToAutoLook(t *testing.T) {
	l := New(4)
	skel := skeleton.New()
	headPos := skel.Bone(skeleton.Head).WorldPosition
	l.SetTarget(headPos.Add(mgl32.Vec3{5, 0, 5}), 0)
	require.True(t, l.hasManual)
	l.ClearTarget()
	require.False(t, l.hasManual)

	require.NotPanics(t, func() {
		l.Update(1.0/60.0, skel, headPos)
	})
}

func TestNeckFollowThroughIsFractionOfHead(t *testing.T) {
	l := New(5)
	cfg := DefaultConfig()
	cfg.ApproachSpeed = 50
	l.SetConfig(cfg)
	skel := skeleton.New()
	headPos := skel.Bone(skeleton.Head).WorldPosition
	l.SetTarget(headPos.Add(mgl32.Vec3{20, 0, 20}), 0)

	for i := 0; i < 120; i++ {
		l.Update(1.0/60.0, skel, headPos)
	}

	require.NotEqual(t, float32(0), l.headYaw)
	expectedNeck := yawPitchToQuat(l.headYaw*0.3, l.headPitch*0.3)
	actualNeck := skel.Bone(skeleton.Neck).LocalRotation
	require.InDelta(t, expectedNeck.W, actualNeck.W, 1e-5)
	require.InDelta(t, expectedNeck.V[1], actualNeck.V[1], 1e-5)
}
