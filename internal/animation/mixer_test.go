package animation

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"voxelavatar/internal/skeleton"
)

func quarterTurnZ() mgl32.Quat {
	return rotateZ(float32(math.Pi) / 2)
}

func TestSampleLerpsWithinClip(t *testing.T) {
	c := &Clip{
		Duration: 2.0,
		Loop:     Loop,
		QuatTracks: map[skeleton.BoneName]*QuatTrack{
			skeleton.Head: {
				Times:  []float32{0, 2},
				Values: []mgl32.Quat{mgl32.QuatIdent(), quarterTurnZ()},
			},
		},
	}
	pose := c.Sample(1.0)
	entry, ok := pose[skeleton.Head]
	require.True(t, ok)
	require.True(t, entry.HasRotation)
	// halfway between identity and a 90 degree rotation, componentwise
	// lerp then renormalize should land near 45 degrees about Z.
	expected := rotateZ(float32(math.Pi) / 4)
	require.InDelta(t, expected.W, entry.Rotation.W, 0.05)
	require.InDelta(t, expected.V[2], entry.Rotation.V[2], 0.05)
}

func TestSampleLoopWraps(t *testing.T) {
	c := &Clip{
		Duration: 2.0,
		Loop:     Loop,
		PosTracks: map[skeleton.BoneName]*Vec3Track{
			skeleton.Hips: {
				Times:  []float32{0, 1, 2},
				Values: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 0}},
			},
		},
	}
	atZero := c.Sample(0)
	wrapped := c.Sample(2.5) // wraps to 0.5, halfway to the t=1 peak
	require.InDelta(t, 0, atZero[skeleton.Hips].PositionOffset[0], 1e-6)
	require.InDelta(t, 0.5, wrapped[skeleton.Hips].PositionOffset[0], 1e-5)
}

func TestSampleOnceClampsAtEnd(t *testing.T) {
	c := &Clip{
		Duration: 1.0,
		Loop:     Once,
		PosTracks: map[skeleton.BoneName]*Vec3Track{
			skeleton.Hips: {
				Times:  []float32{0, 1},
				Values: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}},
			},
		},
	}
	past := c.Sample(5.0)
	require.InDelta(t, 1.0, past[skeleton.Hips].PositionOffset[0], 1e-6)
}

func TestMixerDefaultClipsRegistered(t *testing.T) {
	m := NewMixer()
	require.Equal(t, Idle, m.CurrentState())
	for _, s := range []State{Idle, Walk, Run, Jump} {
		_, ok := m.clips[s]
		require.True(t, ok, s.String())
	}
}

func TestSetStateSameStateIsNoopWithoutForce(t *testing.T) {
	m := NewMixer()
	m.Update(0.1, skeleton.New())
	before := m.clipTime
	m.SetState(Idle, SetStateOptions{})
	require.False(t, m.IsTransitioning())
	require.Equal(t, before, m.clipTime)
}

func TestSetStateBeginsTransition(t *testing.T) {
	m := NewMixer()
	skel := skeleton.New()
	m.Update(0.1, skel)
	m.SetState(Walk, SetStateOptions{})
	require.True(t, m.IsTransitioning())
	require.Equal(t, Walk, m.CurrentState())
}

func TestTransitionCompletesAfterDuration(t *testing.T) {
	m := NewMixer()
	skel := skeleton.New()
	m.SetState(Walk, SetStateOptions{TransitionDuration: 0.2})
	for i := 0; i < 30; i++ {
		m.Update(1.0/60.0, skel)
	}
	require.False(t, m.IsTransitioning())
}

func TestSetMovementSpeedMapsToStates(t *testing.T) {
	m := NewMixer()
	m.SetMovementSpeed(0.05)
	require.Equal(t, Idle, m.CurrentState())

	m.SetMovementSpeed(3.0)
	require.Equal(t, Walk, m.CurrentState())
	require.InDelta(t, 1.0, m.timeScale, 1e-6)

	m.SetMovementSpeed(10.0)
	require.Equal(t, Run, m.CurrentState())
	require.InDelta(t, 1.25, m.timeScale, 1e-6)
}

func TestOnceLoopClipAutoTransitionsToIdleAndFiresCallback(t *testing.T) {
	m := NewMixer()
	skel := skeleton.New()

	var completed State
	var fired bool
	m.OnComplete(func(s State) {
		fired = true
		completed = s
	})

	m.SetState(Jump, SetStateOptions{TransitionDuration: 0})
	jumpClip := m.clips[Jump]
	steps := int(jumpClip.Duration/(1.0/60.0)) + 5
	for i := 0; i < steps; i++ {
		m.Update(1.0/60.0, skel)
	}

	require.True(t, fired)
	require.Equal(t, Jump, completed)
	require.Equal(t, Idle, m.CurrentState())
}

func TestRegisterCustomClipAndSetCustomState(t *testing.T) {
	m := NewMixer()
	custom := &Clip{Name: "wave", Duration: 1, Loop: Once}
	m.RegisterCustomClip("wave", custom)
	m.SetCustomState("wave", SetStateOptions{})
	require.Equal(t, Custom, m.CurrentState())
}

func TestProceduralClipsCoverExpectedBones(t *testing.T) {
	idle := GenerateIdleClip()
	require.NotEmpty(t, idle.QuatTracks)

	walk := GenerateWalkClip()
	require.Contains(t, walk.QuatTracks, skeleton.LeftUpperLeg)
	require.Contains(t, walk.QuatTracks, skeleton.RightUpperLeg)

	run := GenerateRunClip()
	require.Contains(t, run.QuatTracks, skeleton.LeftLowerLeg)

	jump := GenerateJumpClip()
	require.Equal(t, Once, jump.Loop)
	require.Contains(t, jump.PosTracks, skeleton.Hips)
}
