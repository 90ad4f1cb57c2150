// Package skeleton implements the 21-bone VRM-compatible hierarchy: rest
// pose, the pose state machine, forward-kinematic world transforms, voxel
// skinning, the region mapper and weight calculator that drive skinning,
// and a VRM-shaped glTF export.
package skeleton

// BoneName identifies one of the fixed 21 bones, spec.md §6.
type BoneName string

// The fixed bone set, exactly as spec.md §6 names them.
const (
	Hips           BoneName = "hips"
	Spine          BoneName = "spine"
	Chest          BoneName = "chest"
	Neck           BoneName = "neck"
	Head           BoneName = "head"
	LeftShoulder   BoneName = "leftShoulder"
	LeftUpperArm   BoneName = "leftUpperArm"
	LeftLowerArm   BoneName = "leftLowerArm"
	LeftHand       BoneName = "leftHand"
	RightShoulder  BoneName = "rightShoulder"
	RightUpperArm  BoneName = "rightUpperArm"
	RightLowerArm  BoneName = "rightLowerArm"
	RightHand      BoneName = "rightHand"
	LeftUpperLeg   BoneName = "leftUpperLeg"
	LeftLowerLeg   BoneName = "leftLowerLeg"
	LeftFoot       BoneName = "leftFoot"
	LeftToes       BoneName = "leftToes"
	RightUpperLeg  BoneName = "rightUpperLeg"
	RightLowerLeg  BoneName = "rightLowerLeg"
	RightFoot      BoneName = "rightFoot"
	RightToes      BoneName = "rightToes"
)

// BoneOrder lists all 21 bones in a fixed, deterministic order — parents
// before children — used for export and for world-transform traversal.
var BoneOrder = []BoneName{
	Hips, Spine, Chest, Neck, Head,
	LeftShoulder, LeftUpperArm, LeftLowerArm, LeftHand,
	RightShoulder, RightUpperArm, RightLowerArm, RightHand,
	LeftUpperLeg, LeftLowerLeg, LeftFoot, LeftToes,
	RightUpperLeg, RightLowerLeg, RightFoot, RightToes,
}

// parentOf is the fixed parent for every bone but the root (Hips).
var parentOf = map[BoneName]BoneName{
	Spine:         Hips,
	Chest:         Spine,
	Neck:          Chest,
	Head:          Neck,
	LeftShoulder:  Chest,
	LeftUpperArm:  LeftShoulder,
	LeftLowerArm:  LeftUpperArm,
	LeftHand:      LeftLowerArm,
	RightShoulder: Chest,
	RightUpperArm: RightShoulder,
	RightLowerArm: RightUpperArm,
	RightHand:     RightLowerArm,
	LeftUpperLeg:  Hips,
	LeftLowerLeg:  LeftUpperLeg,
	LeftFoot:      LeftLowerLeg,
	LeftToes:      LeftFoot,
	RightUpperLeg: Hips,
	RightLowerLeg: RightUpperLeg,
	RightFoot:     RightLowerLeg,
	RightToes:     RightFoot,
}

// restPositions gives each bone's rest position in voxel coordinates,
// derived from the region bands (spec.md §6) — one representative point
// per bone, roughly centered in its band.
var restPositions = map[BoneName][3]float32{
	Hips:          {16, 36, 16},
	Spine:         {16, 41, 16},
	Chest:         {16, 48, 16},
	Neck:          {16, 54, 16},
	Head:          {16, 60, 16},
	LeftShoulder:  {20, 50, 16},
	LeftUpperArm:  {24, 48, 16},
	LeftLowerArm:  {28, 46, 16},
	LeftHand:      {30, 45, 16},
	RightShoulder: {12, 50, 16},
	RightUpperArm: {8, 48, 16},
	RightLowerArm: {4, 46, 16},
	RightHand:     {2, 45, 16},
	LeftUpperLeg:  {20, 27, 16},
	LeftLowerLeg:  {20, 13, 16},
	LeftFoot:      {20, 4, 16},
	LeftToes:      {20, 1, 18},
	RightUpperLeg: {12, 27, 16},
	RightLowerLeg: {12, 13, 16},
	RightFoot:     {12, 4, 16},
	RightToes:     {12, 1, 18},
}
