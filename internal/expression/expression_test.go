package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelavatar/internal/voxel"
)

func bodyWithExpressions(t *testing.T) *voxel.VoxelBody {
	t.Helper()
	b := voxel.New("test")
	require.NoError(t, b.SetExpression(Neutral, map[voxel.Key]uint8{voxel.Encode(1, 1, 1): 0}))
	require.NoError(t, b.SetExpression("smile", map[voxel.Key]uint8{voxel.Encode(2, 2, 2): 1}))
	require.NoError(t, b.SetExpression(DefaultBlinkName, map[voxel.Key]uint8{voxel.Encode(3, 3, 3): 2}))
	return b
}

func TestBlinkCurveEndpointsAndContinuity(t *testing.T) {
	require.InDelta(t, 0, BlinkCurve(0), 1e-6)
	require.InDelta(t, 1, BlinkCurve(0.3), 1e-4)
	require.InDelta(t, 0, BlinkCurve(1), 1e-6)

	// C0 continuity at the p=0.3 seam: left and right limits agree.
	left := BlinkCurve(0.2999)
	right := BlinkCurve(0.3001)
	require.InDelta(t, left, right, 1e-2)
}

func TestSetExpressionCrossFadesThenSettles(t *testing.T) {
	c := New(bodyWithExpressions(t), 1)
	c.SetExpression("smile")
	require.Equal(t, float32(0), c.blendProgress)

	// partway through the cross-fade, both the outgoing and incoming
	// expression deltas should contribute.
	c.Update(0.1)
	out := c.Apply()
	_, hasNeutral := out[voxel.Encode(1, 1, 1)]
	_, hasSmile := out[voxel.Encode(2, 2, 2)]
	require.True(t, hasNeutral)
	require.True(t, hasSmile)

	for i := 0; i < 60; i++ {
		c.Update(1.0 / 60.0)
	}
	require.Equal(t, float32(1), c.blendProgress)
	out = c.Apply()
	entry, ok := out[voxel.Encode(2, 2, 2)]
	require.True(t, ok)
	require.Equal(t, float32(1), entry.Weight)
}

func TestTriggerEmotionQueueReturnsToNeutral(t *testing.T) {
	c := New(bodyWithExpressions(t), 2)
	c.RegisterEmotion("happy", "smile", 0.5)
	c.TriggerEmotion("happy")

	c.Update(1.0 / 60.0)
	require.Equal(t, "smile", c.targetExpression)

	steps := int(0.5/(1.0/60.0)) + 2
	for i := 0; i < steps; i++ {
		c.Update(1.0 / 60.0)
	}
	require.Equal(t, Neutral, c.targetExpression)
	require.Empty(t, c.queue)
}

func TestTriggerEmotionUnknownNameIgnored(t *testing.T) {
	c := New(bodyWithExpressions(t), 3)
	c.TriggerEmotion("nonexistent")
	require.Empty(t, c.queue)
}

// S5: with a fixed seed and blinkInterval/blinkDuration overrides,
// simulating 20s at Δt=1/60 produces a deterministic sequence of blink
// starts. This test pins the controller's own config to the scenario's
// parameters and records the tick index of each blink start, asserting
// the sequence is stable and strictly increasing.
func TestBlinkScheduleDeterminismS5(t *testing.T) {
	run := func(seed int64) []int {
		c := New(bodyWithExpressions(t), seed)
		c.SetConfig(Config{BlendDuration: 0.2, BlinkInterval: 4, BlinkVariance: 2, BlinkDuration: 0.15})
		c.blinkInterval = 4 // first interval uses the scenario's fixed initial value, not the sampled one

		const dt = 1.0 / 60.0
		ticks := int(20.0 / dt)

		var starts []int
		wasBlinking := false
		for i := 0; i < ticks; i++ {
			c.Update(dt)
			if c.isBlinking && !wasBlinking {
				starts = append(starts, i)
			}
			wasBlinking = c.isBlinking
		}
		return starts
	}

	first := run(42)
	second := run(42)
	require.Equal(t, first, second)
	require.NotEmpty(t, first)

	for i := 1; i < len(first); i++ {
		require.Greater(t, first[i], first[i-1])
	}

	differentSeed := run(99)
	require.NotEqual(t, first, differentSeed)
}
