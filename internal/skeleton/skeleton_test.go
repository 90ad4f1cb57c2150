package skeleton

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestResetToTPoseMatchesRest(t *testing.T) {
	s := New()
	s.SetLocalRotation(LeftShoulder, mgl32.Quat{W: 0.7, V: mgl32.Vec3{0, 0, 0.7}})
	s.UpdateWorldTransforms()
	s.ResetToTPose()

	for _, name := range BoneOrder {
		b := s.Bone(name)
		require.InDelta(t, b.RestPosition[0], b.WorldPosition[0], 1e-5)
		require.InDelta(t, b.RestPosition[1], b.WorldPosition[1], 1e-5)
		require.InDelta(t, b.RestPosition[2], b.WorldPosition[2], 1e-5)
		require.InDelta(t, float64(1), float64(b.WorldRotation.W), 1e-5)
	}
}

// S4: rotating leftShoulder 90 degrees about +Z moves leftHand's world
// position to the analytically rotated rest offset from leftShoulder.
func TestSkeletonFKRotateShoulderS4(t *testing.T) {
	s := New()
	half := float32(math.Pi / 4)
	q := mgl32.Quat{W: float32(math.Cos(float64(half))), V: mgl32.Vec3{0, 0, float32(math.Sin(float64(half)))}}
	s.SetLocalRotation(LeftShoulder, q)
	s.UpdateWorldTransforms()

	shoulder := s.Bone(LeftShoulder)
	hand := s.Bone(LeftHand)

	restOffset := hand.RestPosition.Sub(shoulder.RestPosition)
	expected := shoulder.WorldPosition.Add(q.Rotate(restOffset))

	require.InDelta(t, float64(expected[0]), float64(hand.WorldPosition[0]), 1e-4)
	require.InDelta(t, float64(expected[1]), float64(hand.WorldPosition[1]), 1e-4)
	require.InDelta(t, float64(expected[2]), float64(hand.WorldPosition[2]), 1e-4)
}

func TestUnknownBonePoseIsIgnored(t *testing.T) {
	s := New()
	s.SetLocalRotation(BoneName("not-a-bone"), mgl32.QuatIdent())
	s.SetLocalPositionOffset(BoneName("not-a-bone"), mgl32.Vec3{1, 2, 3})
	// Should not panic and should not alter any known bone.
	require.NotPanics(t, func() { s.UpdateWorldTransforms() })
	for _, name := range BoneOrder {
		b := s.Bone(name)
		require.Equal(t, mgl32.QuatIdent(), b.LocalRotation)
		require.Equal(t, mgl32.Vec3{}, b.LocalPositionOffset)
	}
}

func TestRegionMapperArmBands(t *testing.T) {
	m := NewRegionMapper()
	require.Equal(t, RightHand, m.Assign(0, 50, 16))
	require.Equal(t, RightShoulder, m.Assign(5, 51, 16))
	require.Equal(t, LeftHand, m.Assign(31, 50, 16))
	require.Equal(t, LeftShoulder, m.Assign(26, 51, 16))
}

func TestRegionMapperYBandsAndMidline(t *testing.T) {
	m := NewRegionMapper()
	require.Equal(t, Head, m.Assign(16, 60, 16))
	require.Equal(t, RightUpperLeg, m.Assign(10, 25, 16))
	require.Equal(t, LeftUpperLeg, m.Assign(20, 25, 16))
	require.Equal(t, RightToes, m.Assign(10, 1, 18))
	require.Equal(t, LeftToes, m.Assign(20, 1, 18))
}

func TestRegionMapperCaches(t *testing.T) {
	m := NewRegionMapper()
	first := m.Assign(16, 60, 16)
	second := m.Assign(16, 60, 16)
	require.Equal(t, first, second)

	m.SetBandConfig(DefaultBandConfig())
	third := m.Assign(16, 60, 16)
	require.Equal(t, first, third)
}

func TestWeightCalculatorNormalizes(t *testing.T) {
	s := New()
	w := NewWeightCalculator(s)
	chest := s.Bone(Chest).RestPosition
	weights := w.Compute(Chest, int(chest[0]), int(chest[1]), int(chest[2]))
	require.NotEmpty(t, weights)

	var total float32
	for _, bw := range weights {
		total += bw.Weight
	}
	require.InDelta(t, float64(1), float64(total), 1e-5)
	require.LessOrEqual(t, len(weights), DefaultWeightConfig().MaxBones)
}

func TestWeightCalculatorUnknownPrimaryFallsBackToRoot(t *testing.T) {
	s := New()
	w := NewWeightCalculator(s)
	weights := w.Compute(BoneName("not-a-bone"), 16, 36, 16)
	require.Len(t, weights, 1)
	require.Equal(t, s.RootBone().Name, weights[0].Bone)
	require.Equal(t, float32(1), weights[0].Weight)
}

func TestExportVRMProducesJointsMatchingBoneOrder(t *testing.T) {
	s := New()
	doc := s.ExportVRM()
	require.Len(t, doc.Skins, 1)
	require.Len(t, doc.Skins[0].Joints, len(BoneOrder))
	require.Len(t, doc.Nodes, len(BoneOrder))
	require.NotNil(t, doc.Skins[0].InverseBindMatrices)
}
