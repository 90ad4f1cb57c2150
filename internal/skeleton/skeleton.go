package skeleton

import (
	"github.com/go-gl/mathgl/mgl32"
)

// State is a bone's pose state machine value (spec.md §4.5).
type State int

const (
	Resting State = iota
	Posed
)

// Bone is one node in the 21-bone hierarchy (spec.md §3).
type Bone struct {
	Name                BoneName
	Parent              BoneName // zero value "" for the root
	HasParent           bool
	Children            []BoneName
	RestPosition        mgl32.Vec3
	LocalRotation       mgl32.Quat
	LocalPositionOffset mgl32.Vec3
	WorldPosition       mgl32.Vec3
	WorldRotation       mgl32.Quat
	Length              float32

	state State
}

// Skeleton owns the fixed 21-bone tree, its rest pose, and the live pose
// state. It exclusively owns its Bone structures (spec.md §3 Ownership).
type Skeleton struct {
	bones map[BoneName]*Bone
	root  BoneName
}

// New builds a Skeleton at its rest (T-pose) configuration.
func New() *Skeleton {
	s := &Skeleton{
		bones: make(map[BoneName]*Bone, len(BoneOrder)),
		root:  Hips,
	}
	for _, name := range BoneOrder {
		rest := restPositions[name]
		parent, hasParent := parentOf[name]
		b := &Bone{
			Name:          name,
			Parent:        parent,
			HasParent:     hasParent,
			RestPosition:  mgl32.Vec3{rest[0], rest[1], rest[2]},
			LocalRotation: mgl32.QuatIdent(),
			WorldRotation: mgl32.QuatIdent(),
		}
		s.bones[name] = b
	}
	for _, name := range BoneOrder {
		b := s.bones[name]
		if b.HasParent {
			parent := s.bones[b.Parent]
			parent.Children = append(parent.Children, name)
			b.Length = b.RestPosition.Sub(parent.RestPosition).Len()
		}
	}
	s.UpdateWorldTransforms()
	return s
}

// Bone returns the named bone, or nil if it does not exist (the bone set
// is fixed, spec.md §3).
func (s *Skeleton) Bone(name BoneName) *Bone {
	return s.bones[name]
}

// RootBone returns the hips bone, the fallback target when a weight
// computation's primary bone is unknown (spec.md §4.5).
func (s *Skeleton) RootBone() *Bone {
	return s.bones[s.root]
}

// SetLocalRotation sets a bone's local rotation, normalizing the input
// quaternion to guard against caller drift (spec.md §9). Pose operations
// on unknown bone names are silently ignored (spec.md §4.5, §7).
func (s *Skeleton) SetLocalRotation(name BoneName, q mgl32.Quat) {
	b, ok := s.bones[name]
	if !ok {
		return
	}
	b.LocalRotation = q.Normalize()
	b.state = Posed
}

// SetLocalPositionOffset sets a bone's authored local position offset
// from rest.
func (s *Skeleton) SetLocalPositionOffset(name BoneName, offset mgl32.Vec3) {
	b, ok := s.bones[name]
	if !ok {
		return
	}
	b.LocalPositionOffset = offset
	b.state = Posed
}

// PoseEntry is one bone's authored pose, applied atomically via ApplyPose.
type PoseEntry struct {
	Rotation        mgl32.Quat
	PositionOffset  mgl32.Vec3
	HasRotation     bool
	HasOffset       bool
}

// ApplyPose applies a batch of bone poses in one call. Unknown bone names
// in the map are silently ignored.
func (s *Skeleton) ApplyPose(pose map[BoneName]PoseEntry) {
	for name, entry := range pose {
		if entry.HasRotation {
			s.SetLocalRotation(name, entry.Rotation)
		}
		if entry.HasOffset {
			s.SetLocalPositionOffset(name, entry.PositionOffset)
		}
	}
}

// ResetToTPose moves every bone back to Resting with identity rotation
// and zero position offset.
func (s *Skeleton) ResetToTPose() {
	for _, b := range s.bones {
		b.LocalRotation = mgl32.QuatIdent()
		b.LocalPositionOffset = mgl32.Vec3{}
		b.state = Resting
	}
	s.UpdateWorldTransforms()
}

// UpdateWorldTransforms propagates rest offsets and local poses through
// the hierarchy depth-first from the root (spec.md §4.5). For the root,
// world = local. For a child with parent world transform P:
//
//	δ = childRest - parentRest
//	child.WorldPosition = P.WorldPosition + P.WorldRotation.Rotate(δ + localOffset)
//	child.WorldRotation = P.WorldRotation * child.LocalRotation
func (s *Skeleton) UpdateWorldTransforms() {
	root := s.bones[s.root]
	root.WorldPosition = root.RestPosition.Add(root.LocalPositionOffset)
	root.WorldRotation = root.LocalRotation

	var visit func(name BoneName)
	visit = func(name BoneName) {
		b := s.bones[name]
		for _, childName := range b.Children {
			child := s.bones[childName]
			delta := child.RestPosition.Sub(b.RestPosition)
			offset := delta.Add(child.LocalPositionOffset)
			rotated := b.WorldRotation.Rotate(offset)
			child.WorldPosition = b.WorldPosition.Add(rotated)
			child.WorldRotation = b.WorldRotation.Mul(child.LocalRotation)
			visit(childName)
		}
	}
	visit(s.root)
}

// TransformVoxel computes the posed world position of a voxel given its
// bone weights. For a single-bone weight list, it uses the fast path:
// translate to the bone's local frame, rotate by the bone's world
// rotation, and add the bone's world position. For multiple bones it
// weight-averages each bone's transformed point (spec.md §4.5).
func (s *Skeleton) TransformVoxel(x, y, z int, weights []BoneWeight) mgl32.Vec3 {
	local := mgl32.Vec3{float32(x), float32(y), float32(z)}

	if len(weights) == 1 {
		b := s.boneOrRoot(weights[0].Bone)
		return b.WorldRotation.Rotate(local.Sub(b.RestPosition)).Add(b.WorldPosition)
	}

	var out mgl32.Vec3
	for _, w := range weights {
		b := s.boneOrRoot(w.Bone)
		p := b.WorldRotation.Rotate(local.Sub(b.RestPosition)).Add(b.WorldPosition)
		out = out.Add(p.Mul(w.Weight))
	}
	return out
}

// boneOrRoot falls back to the skeleton's root bone when name does not
// name a known bone (spec.md §4.5 failure semantics).
func (s *Skeleton) boneOrRoot(name BoneName) *Bone {
	if b, ok := s.bones[name]; ok {
		return b
	}
	return s.RootBone()
}
