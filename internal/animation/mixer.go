package animation

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelavatar/internal/mathutil"
	"voxelavatar/internal/skeleton"
)

// State is a locomotion state (spec.md §4.8).
type State int

const (
	Idle State = iota
	Walk
	Run
	Jump
	Fall
	Land
	Crouch
	Emote
	Custom
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Walk:
		return "walk"
	case Run:
		return "run"
	case Jump:
		return "jump"
	case Fall:
		return "fall"
	case Land:
		return "land"
	case Crouch:
		return "crouch"
	case Emote:
		return "emote"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

const defaultTransitionDuration float32 = 0.3

// SetStateOptions configures a state transition.
type SetStateOptions struct {
	Force              bool
	TransitionDuration float32 // 0 means use the target clip's own override, or the mixer default
}

// Mixer is the AnimationMixer: a state machine over registered clips with
// cross-fade blending (spec.md §4.8).
type Mixer struct {
	clips       map[State]*Clip
	customClips map[string]*Clip

	current     State
	customName  string
	currentClip *Clip
	clipTime    float32
	timeScale   float32

	transitioning      bool
	transitionProgress float32
	transitionDuration float32
	basePose           map[skeleton.BoneName]skeleton.PoseEntry

	onComplete func(State)
}

// NewMixer builds a Mixer pre-registered with the standard procedural
// locomotion clips (Idle, Walk, Run, Jump); Fall/Land/Crouch/Emote/Custom
// have no default clip and must be registered via RegisterClip /
// RegisterCustomClip before use.
func NewMixer() *Mixer {
	m := &Mixer{
		clips:       make(map[State]*Clip),
		customClips: make(map[string]*Clip),
		timeScale:   1,
	}
	m.RegisterClip(Idle, GenerateIdleClip())
	m.RegisterClip(Walk, GenerateWalkClip())
	m.RegisterClip(Run, GenerateRunClip())
	m.RegisterClip(Jump, GenerateJumpClip())
	m.current = Idle
	m.currentClip = m.clips[Idle]
	return m
}

// RegisterClip assigns the clip played for state.
func (m *Mixer) RegisterClip(state State, clip *Clip) {
	m.clips[state] = clip
	if m.currentClip == nil {
		m.current = state
		m.currentClip = clip
	}
}

// RegisterCustomClip assigns a named clip reachable via SetCustomState.
func (m *Mixer) RegisterCustomClip(name string, clip *Clip) {
	m.customClips[name] = clip
}

// OnComplete registers the callback invoked when a Once-loop clip
// finishes and the mixer auto-transitions back to Idle.
func (m *Mixer) OnComplete(fn func(State)) {
	m.onComplete = fn
}

// CurrentState returns the active locomotion state.
func (m *Mixer) CurrentState() State { return m.current }

// IsTransitioning reports whether a cross-fade is in progress.
func (m *Mixer) IsTransitioning() bool { return m.transitioning }

// SetState begins a transition to a new state's registered clip. A
// request for the already-active state is a no-op unless opts.Force is
// set (spec.md §4.8).
func (m *Mixer) SetState(state State, opts SetStateOptions) {
	if state == m.current && !opts.Force {
		return
	}
	clip, ok := m.clips[state]
	if !ok {
		return
	}
	m.beginTransition(clip, opts.TransitionDuration)
	m.current = state
	m.customName = ""
}

// SetCustomState begins a transition to a clip registered under name via
// RegisterCustomClip, entering the Custom state.
func (m *Mixer) SetCustomState(name string, opts SetStateOptions) {
	clip, ok := m.customClips[name]
	if !ok {
		return
	}
	if m.current == Custom && m.customName == name && !opts.Force {
		return
	}
	m.beginTransition(clip, opts.TransitionDuration)
	m.current = Custom
	m.customName = name
}

func (m *Mixer) beginTransition(clip *Clip, requestedDuration float32) {
	m.basePose = m.currentClip.Sample(m.clipTime)

	duration := requestedDuration
	if duration <= 0 {
		duration = clip.TransitionDuration
	}
	if duration <= 0 {
		duration = defaultTransitionDuration
	}

	m.currentClip = clip
	m.clipTime = 0
	m.transitioning = duration > 0
	m.transitionProgress = 0
	m.transitionDuration = duration
}

// SetMovementSpeed maps a movement speed (voxels/second) onto a
// locomotion state per spec.md §4.8: below 0.1 is Idle, below 5 is Walk
// (timeScale = v/3), otherwise Run (timeScale = v/8).
func (m *Mixer) SetMovementSpeed(v float32) {
	switch {
	case v < 0.1:
		m.SetState(Idle, SetStateOptions{})
		m.timeScale = 1
	case v < 5:
		m.SetState(Walk, SetStateOptions{})
		m.timeScale = v / 3
	default:
		m.SetState(Run, SetStateOptions{})
		m.timeScale = v / 8
	}
}

// Update advances clip/transition time by dt and applies the resulting
// pose to skel.
func (m *Mixer) Update(dt float32, skel *skeleton.Skeleton) {
	if m.currentClip == nil {
		return
	}
	advance := dt * m.timeScale
	m.clipTime += advance

	finished := m.currentClip.Loop == Once && m.clipTime >= m.currentClip.Duration
	pose := m.currentClip.Sample(m.clipTime)

	if m.transitioning {
		if m.transitionDuration > 0 {
			m.transitionProgress += advance / m.transitionDuration
		} else {
			m.transitionProgress = 1
		}
		if m.transitionProgress >= 1 {
			m.transitionProgress = 1
			m.transitioning = false
		}
		blend := mathutil.Smoothstep01(float64(m.transitionProgress))
		pose = blendPoses(m.basePose, pose, float32(blend))
	}

	skel.ApplyPose(pose)

	if finished {
		completed := m.current
		m.SetState(Idle, SetStateOptions{Force: true})
		if m.onComplete != nil {
			m.onComplete(completed)
		}
	}
}

// blendPoses slerps rotations and lerps position offsets from base
// toward target by factor, per spec.md §4.8 cross-fade semantics. A bone
// present in only one of the two poses blends against its rest value
// (identity rotation, zero offset).
func blendPoses(base, target map[skeleton.BoneName]skeleton.PoseEntry, factor float32) map[skeleton.BoneName]skeleton.PoseEntry {
	out := make(map[skeleton.BoneName]skeleton.PoseEntry, len(base)+len(target))
	seen := make(map[skeleton.BoneName]struct{}, len(base)+len(target))

	blendOne := func(name skeleton.BoneName) skeleton.PoseEntry {
		b, hasB := base[name]
		tg, hasT := target[name]
		var entry skeleton.PoseEntry
		if (hasB && b.HasRotation) || (hasT && tg.HasRotation) {
			br := mgl32.QuatIdent()
			if b.HasRotation {
				br = b.Rotation
			}
			tr := mgl32.QuatIdent()
			if tg.HasRotation {
				tr = tg.Rotation
			}
			entry.Rotation = quatSlerp(br, tr, factor)
			entry.HasRotation = true
		}
		if (hasB && b.HasOffset) || (hasT && tg.HasOffset) {
			bo := mgl32.Vec3{}
			if hasB && b.HasOffset {
				bo = b.PositionOffset
			}
			to := mgl32.Vec3{}
			if hasT && tg.HasOffset {
				to = tg.PositionOffset
			}
			entry.PositionOffset = lerpVec3(bo, to, factor)
			entry.HasOffset = true
		}
		return entry
	}

	for name := range base {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out[name] = blendOne(name)
	}
	for name := range target {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out[name] = blendOne(name)
	}
	return out
}

// quatSlerp spherically interpolates a to b by t.
func quatSlerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	return mgl32.QuatSlerp(a, b, t)
}
