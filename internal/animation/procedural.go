package animation

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelavatar/internal/skeleton"
)

// bakeSamples is the keyframe count used for every baked procedural
// track. The teacher evaluates its sine swings live every frame
// (internal/render/creature.go); here the same functions are sampled at
// a fixed resolution once, up front, and the general Clip.Sample
// machinery interpolates between the baked points at runtime.
const bakeSamples = 24

// bakeQuatTrack samples fn at bakeSamples+1 evenly spaced points across
// [0,duration], both ends included. The final value is fn(duration),
// which for every generator in this file equals fn(0), so a Loop clip
// wraps without a seam.
func bakeQuatTrack(duration float32, fn func(t float32) mgl32.Quat) *QuatTrack {
	times := make([]float32, bakeSamples+1)
	values := make([]mgl32.Quat, bakeSamples+1)
	for i := 0; i <= bakeSamples; i++ {
		t := duration * float32(i) / float32(bakeSamples)
		times[i] = t
		values[i] = fn(t)
	}
	return &QuatTrack{Times: times, Values: values}
}

func bakeVec3Track(duration float32, fn func(t float32) mgl32.Vec3) *Vec3Track {
	times := make([]float32, bakeSamples+1)
	values := make([]mgl32.Vec3, bakeSamples+1)
	for i := 0; i <= bakeSamples; i++ {
		t := duration * float32(i) / float32(bakeSamples)
		times[i] = t
		values[i] = fn(t)
	}
	return &Vec3Track{Times: times, Values: values}
}

func rotateX(angle float32) mgl32.Quat { return mgl32.QuatRotate(angle, mgl32.Vec3{1, 0, 0}) }
func rotateY(angle float32) mgl32.Quat { return mgl32.QuatRotate(angle, mgl32.Vec3{0, 1, 0}) }
func rotateZ(angle float32) mgl32.Quat { return mgl32.QuatRotate(angle, mgl32.Vec3{0, 0, 1}) }

func sin32(x float32) float32 { return float32(math.Sin(float64(x))) }

// GenerateIdleClip builds a slow breathing cycle on the chest (0.02 rad)
// and a head sway at half the chest's frequency (0.03 rad), grounded on
// creature.go's idleBreath sine swing.
func GenerateIdleClip() *Clip {
	const duration float32 = 3.0
	return &Clip{
		Name:     "idle",
		Duration: duration,
		Loop:     Loop,
		QuatTracks: map[skeleton.BoneName]*QuatTrack{
			skeleton.Chest: bakeQuatTrack(duration, func(t float32) mgl32.Quat {
				return rotateX(sin32(t*2.0*float32(math.Pi)/duration) * 0.02)
			}),
			skeleton.Head: bakeQuatTrack(duration, func(t float32) mgl32.Quat {
				return rotateY(sin32(t*2.0*float32(math.Pi)/duration*0.5) * 0.03)
			}),
		},
	}
}

// GenerateWalkClip builds one stride cycle: opposite-phase upper leg and
// arm swings plus a small counter-rotating hip sway, grounded on
// creature.go's legSwing/armSwing sine pattern (phase-offset by π
// between left and right limbs).
func GenerateWalkClip() *Clip {
	const duration float32 = 1.0
	const twoPi = 2.0 * float32(math.Pi)

	legSwing := func(phaseOffset float32) func(float32) mgl32.Quat {
		return func(t float32) mgl32.Quat {
			return rotateX(sin32(t*twoPi/duration+phaseOffset) * 0.5)
		}
	}
	armSwing := func(phaseOffset float32) func(float32) mgl32.Quat {
		return func(t float32) mgl32.Quat {
			return rotateX(sin32(t*twoPi/duration+phaseOffset) * 0.4)
		}
	}

	return &Clip{
		Name:     "walk",
		Duration: duration,
		Loop:     Loop,
		QuatTracks: map[skeleton.BoneName]*QuatTrack{
			skeleton.LeftUpperLeg:  bakeQuatTrack(duration, legSwing(0)),
			skeleton.RightUpperLeg: bakeQuatTrack(duration, legSwing(float32(math.Pi))),
			skeleton.LeftUpperArm:  bakeQuatTrack(duration, armSwing(float32(math.Pi))),
			skeleton.RightUpperArm: bakeQuatTrack(duration, armSwing(0)),
			skeleton.Hips: bakeQuatTrack(duration, func(t float32) mgl32.Quat {
				return rotateY(sin32(t*twoPi/duration) * 0.08)
			}),
		},
		PosTracks: map[skeleton.BoneName]*Vec3Track{
			skeleton.Hips: bakeVec3Track(duration, func(t float32) mgl32.Vec3 {
				bob := float32(math.Abs(float64(sin32(t*twoPi/duration*2.0)))) * 0.3
				return mgl32.Vec3{0, bob, 0}
			}),
		},
	}
}

// GenerateRunClip is GenerateWalkClip's faster, wider-amplitude sibling
// plus a forward chest lean, same sine construction as the teacher's
// opposite-limb swing but with a shorter cycle and larger amplitude.
func GenerateRunClip() *Clip {
	const duration float32 = 0.55
	const twoPi = 2.0 * float32(math.Pi)

	legSwing := func(phaseOffset float32) func(float32) mgl32.Quat {
		return func(t float32) mgl32.Quat {
			return rotateX(sin32(t*twoPi/duration+phaseOffset) * 0.9)
		}
	}
	armSwing := func(phaseOffset float32) func(float32) mgl32.Quat {
		return func(t float32) mgl32.Quat {
			return rotateX(sin32(t*twoPi/duration+phaseOffset) * 0.7)
		}
	}
	kneeBend := func(phaseOffset float32) func(float32) mgl32.Quat {
		return func(t float32) mgl32.Quat {
			bend := float32(math.Max(0, float64(sin32(t*twoPi/duration+phaseOffset)))) * 0.6
			return rotateX(bend)
		}
	}

	return &Clip{
		Name:     "run",
		Duration: duration,
		Loop:     Loop,
		QuatTracks: map[skeleton.BoneName]*QuatTrack{
			skeleton.LeftUpperLeg:  bakeQuatTrack(duration, legSwing(0)),
			skeleton.RightUpperLeg: bakeQuatTrack(duration, legSwing(float32(math.Pi))),
			skeleton.LeftLowerLeg:  bakeQuatTrack(duration, kneeBend(float32(math.Pi))),
			skeleton.RightLowerLeg: bakeQuatTrack(duration, kneeBend(0)),
			skeleton.LeftUpperArm:  bakeQuatTrack(duration, armSwing(float32(math.Pi))),
			skeleton.RightUpperArm: bakeQuatTrack(duration, armSwing(0)),
			skeleton.Chest: bakeQuatTrack(duration, func(t float32) mgl32.Quat {
				return rotateX(0.15)
			}),
		},
		PosTracks: map[skeleton.BoneName]*Vec3Track{
			skeleton.Hips: bakeVec3Track(duration, func(t float32) mgl32.Vec3 {
				bob := float32(math.Abs(float64(sin32(t*twoPi/duration*2.0)))) * 0.6
				return mgl32.Vec3{0, bob, 0}
			}),
		},
	}
}

// GenerateJumpClip is a one-shot clip: the hips rise and fall back while
// both upper arms raise, grounded on creature.go's SwingPhase-driven
// sin(swingProgress*π) envelope (a single half-sine pulse, not a
// repeating cycle). The hip track's dip term is smaller than its rise
// term at every sample, so the hips never drop below their rest height:
// the clip has no crouch before the rise.
func GenerateJumpClip() *Clip {
	const duration float32 = 0.6
	envelope := func(t float32) float32 {
		progress := t / duration
		return sin32(progress * float32(math.Pi))
	}

	return &Clip{
		Name:     "jump",
		Duration: duration,
		Loop:     Once,
		QuatTracks: map[skeleton.BoneName]*QuatTrack{
			skeleton.LeftUpperArm:  bakeQuatTrack(duration, func(t float32) mgl32.Quat { return rotateX(-envelope(t) * 1.8) }),
			skeleton.RightUpperArm: bakeQuatTrack(duration, func(t float32) mgl32.Quat { return rotateX(-envelope(t) * 1.8) }),
			skeleton.LeftUpperLeg:  bakeQuatTrack(duration, func(t float32) mgl32.Quat { return rotateX(envelope(t) * 0.6) }),
			skeleton.RightUpperLeg: bakeQuatTrack(duration, func(t float32) mgl32.Quat { return rotateX(envelope(t) * 0.6) }),
		},
		PosTracks: map[skeleton.BoneName]*Vec3Track{
			skeleton.Hips: bakeVec3Track(duration, func(t float32) mgl32.Vec3 {
				progress := t / duration
				dip := -float32(math.Max(0, float64(sin32(progress*2*float32(math.Pi))))) * 0.4
				rise := envelope(t) * 2.0
				return mgl32.Vec3{0, dip + rise, 0}
			}),
		},
	}
}
