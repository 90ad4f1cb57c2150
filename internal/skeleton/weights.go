package skeleton

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"voxelavatar/internal/mathutil"
)

// BoneWeight is one (bone, weight) pair in a voxel's skinning weight list.
type BoneWeight struct {
	Bone   BoneName
	Weight float32
}

// blendableJoints lists the symmetric pairs of bones whose shared joint
// may blend skinning weight across the boundary (spec.md §6).
var blendableJoints = map[BoneName][]BoneName{
	Hips:          {Spine, LeftUpperLeg, RightUpperLeg},
	Spine:         {Hips, Chest},
	Chest:         {Spine, Neck, LeftShoulder, RightShoulder},
	Neck:          {Chest, Head},
	Head:          {Neck},
	LeftShoulder:  {Chest, LeftUpperArm},
	LeftUpperArm:  {LeftShoulder, LeftLowerArm},
	LeftLowerArm:  {LeftUpperArm, LeftHand},
	LeftHand:      {LeftLowerArm},
	RightShoulder: {Chest, RightUpperArm},
	RightUpperArm: {RightShoulder, RightLowerArm},
	RightLowerArm: {RightUpperArm, RightHand},
	RightHand:     {RightLowerArm},
	LeftUpperLeg:  {Hips, LeftLowerLeg},
	LeftLowerLeg:  {LeftUpperLeg, LeftFoot},
	LeftFoot:      {LeftLowerLeg, LeftToes},
	LeftToes:      {LeftFoot},
	RightUpperLeg: {Hips, RightLowerLeg},
	RightLowerLeg: {RightUpperLeg, RightFoot},
	RightFoot:     {RightLowerLeg, RightToes},
	RightToes:     {RightFoot},
}

// WeightConfig tunes the falloff used by WeightCalculator, grouped the way
// the teacher groups tunables into a Config struct with a
// Default...Config constructor (chunk.ManagerConfig).
type WeightConfig struct {
	MaxBones      int
	BlendDistance float32
	MinWeight     float32
}

// DefaultWeightConfig returns spec.md §4.4's defaults.
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		MaxBones:      4,
		BlendDistance: 3,
		MinWeight:     0.01,
	}
}

// WeightCalculator computes bone-weight pairs for a voxel given its
// primary bone (from RegionMapper) and the skeleton's rest positions.
type WeightCalculator struct {
	config   WeightConfig
	skeleton *Skeleton
}

// NewWeightCalculator builds a calculator bound to a skeleton's rest
// positions, using the default config.
func NewWeightCalculator(s *Skeleton) *WeightCalculator {
	return &WeightCalculator{config: DefaultWeightConfig(), skeleton: s}
}

// SetConfig replaces the falloff configuration.
func (w *WeightCalculator) SetConfig(cfg WeightConfig) {
	w.config = cfg
}

// Compute returns up to config.MaxBones (bone, weight) pairs for the
// voxel at (x,y,z) whose primary bone is `primary`, per spec.md §4.4:
// start at {primary: 1.0}; for each bone adjacent to primary by a known
// joint, contribute smoothstep(1 - d/blendDistance) when the voxel is
// within blendDistance of the adjacent bone's rest position, subtracting
// half that weight from primary; drop weights below minWeight; truncate
// to the top K; renormalize to sum 1.
func (w *WeightCalculator) Compute(primary BoneName, x, y, z int) []BoneWeight {
	pos := mgl32.Vec3{float32(x), float32(y), float32(z)}

	weights := map[BoneName]float32{primary: 1.0}

	primaryBone := w.skeleton.Bone(primary)
	if primaryBone == nil {
		// Unknown primary bone: fall back to hips with weight 1
		// (spec.md §4.5 failure semantics, applied here since
		// WeightCalculator is the first consumer of RegionMapper's
		// output).
		return []BoneWeight{{Bone: w.skeleton.RootBone().Name, Weight: 1}}
	}

	for _, adjacent := range blendableJoints[primary] {
		adjBone := w.skeleton.Bone(adjacent)
		if adjBone == nil {
			continue
		}
		d := pos.Sub(adjBone.RestPosition).Len()
		if d >= w.config.BlendDistance {
			continue
		}
		ww := float32(mathutil.Smoothstep01(float64(1 - d/w.config.BlendDistance)))
		weights[adjacent] += ww
		weights[primary] -= 0.5 * ww
	}

	// Drop sub-threshold weights.
	for name, ww := range weights {
		if ww < w.config.MinWeight {
			delete(weights, name)
		}
	}
	if len(weights) == 0 {
		weights[primary] = 1
	}

	type kv struct {
		name BoneName
		w    float32
	}
	list := make([]kv, 0, len(weights))
	for name, ww := range weights {
		list = append(list, kv{name, ww})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].w > list[j].w })
	if len(list) > w.config.MaxBones {
		list = list[:w.config.MaxBones]
	}

	var total float32
	for _, e := range list {
		total += e.w
	}
	out := make([]BoneWeight, len(list))
	for i, e := range list {
		if total > 0 {
			out[i] = BoneWeight{Bone: e.name, Weight: e.w / total}
		} else {
			out[i] = BoneWeight{Bone: e.name, Weight: 0}
		}
	}
	return out
}
