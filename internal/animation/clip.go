// Package animation implements AnimationMixer: a state machine over
// keyframe clips, cross-fade blending, movement-driven locomotion, and
// procedural clip generators for the common locomotion states.
package animation

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelavatar/internal/mathutil"
	"voxelavatar/internal/skeleton"
)

// LoopMode selects whether a clip wraps or clamps at its end.
type LoopMode int

const (
	Loop LoopMode = iota
	Once
)

// QuatTrack is a quaternion channel: parallel times/values arrays,
// sampled by linear interpolation within the clip (spec.md §4.8 — lerp,
// not slerp, within a clip; cross-fade slerps separately).
type QuatTrack struct {
	Times  []float32
	Values []mgl32.Quat
}

// Vec3Track is a position-offset channel, same sampling convention as
// QuatTrack.
type Vec3Track struct {
	Times  []float32
	Values []mgl32.Vec3
}

// Clip is a named set of per-bone tracks plus loop/transition behavior.
type Clip struct {
	Name               string
	Duration           float32
	Loop               LoopMode
	QuatTracks         map[skeleton.BoneName]*QuatTrack
	PosTracks          map[skeleton.BoneName]*Vec3Track
	TransitionDuration float32 // 0 means use the mixer's default
}

// Sample evaluates every track at t (wrapped modulo Duration for Loop
// clips, clamped to [0,Duration] for Once clips) and returns the
// resulting pose.
func (c *Clip) Sample(t float32) map[skeleton.BoneName]skeleton.PoseEntry {
	if c.Duration > 0 {
		if c.Loop == Loop {
			t = mathutil.ModFloat32(t, c.Duration)
		} else {
			t = mathutil.Clamp32(t, 0, c.Duration)
		}
	}

	pose := make(map[skeleton.BoneName]skeleton.PoseEntry, len(c.QuatTracks)+len(c.PosTracks))
	for bone, track := range c.QuatTracks {
		entry := pose[bone]
		entry.Rotation = sampleQuatTrack(track, t)
		entry.HasRotation = true
		pose[bone] = entry
	}
	for bone, track := range c.PosTracks {
		entry := pose[bone]
		entry.PositionOffset = sampleVec3Track(track, t)
		entry.HasOffset = true
		pose[bone] = entry
	}
	return pose
}

func sampleQuatTrack(track *QuatTrack, t float32) mgl32.Quat {
	if len(track.Times) == 0 {
		return mgl32.QuatIdent()
	}
	if len(track.Times) == 1 || t <= track.Times[0] {
		return track.Values[0]
	}
	last := len(track.Times) - 1
	if t >= track.Times[last] {
		return track.Values[last]
	}
	i := findSegment(track.Times, t)
	t0, t1 := track.Times[i], track.Times[i+1]
	factor := (t - t0) / (t1 - t0)
	q0, q1 := track.Values[i], track.Values[i+1]
	return mgl32.Quat{
		W: mathutil.Lerp32(q0.W, q1.W, factor),
		V: mgl32.Vec3{
			mathutil.Lerp32(q0.V[0], q1.V[0], factor),
			mathutil.Lerp32(q0.V[1], q1.V[1], factor),
			mathutil.Lerp32(q0.V[2], q1.V[2], factor),
		},
	}.Normalize()
}

func sampleVec3Track(track *Vec3Track, t float32) mgl32.Vec3 {
	if len(track.Times) == 0 {
		return mgl32.Vec3{}
	}
	if len(track.Times) == 1 || t <= track.Times[0] {
		return track.Values[0]
	}
	last := len(track.Times) - 1
	if t >= track.Times[last] {
		return track.Values[last]
	}
	i := findSegment(track.Times, t)
	t0, t1 := track.Times[i], track.Times[i+1]
	factor := (t - t0) / (t1 - t0)
	return lerpVec3(track.Values[i], track.Values[i+1], factor)
}

func lerpVec3(a, b mgl32.Vec3, factor float32) mgl32.Vec3 {
	return mgl32.Vec3{
		mathutil.Lerp32(a[0], b[0], factor),
		mathutil.Lerp32(a[1], b[1], factor),
		mathutil.Lerp32(a[2], b[2], factor),
	}
}

// findSegment returns the index i such that times[i] <= t < times[i+1],
// via linear scan (clip keyframe counts are small, spec.md §4.8).
func findSegment(times []float32, t float32) int {
	for i := 0; i < len(times)-1; i++ {
		if t >= times[i] && t < times[i+1] {
			return i
		}
	}
	return len(times) - 2
}
