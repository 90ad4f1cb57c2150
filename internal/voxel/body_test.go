package voxel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelavatar/internal/avatarerr"
)

func newTestBody(t *testing.T) *VoxelBody {
	t.Helper()
	b := New("test")
	_, err := b.Palette().Add(255, 0, 0, Solid)
	require.NoError(t, err)
	_, err = b.Palette().Add(0, 255, 0, Solid)
	require.NoError(t, err)
	return b
}

func TestVoxelBodySetGetRemove(t *testing.T) {
	b := newTestBody(t)
	require.NoError(t, b.Set(1, 2, 3, 0))
	v, ok := b.Get(1, 2, 3)
	require.True(t, ok)
	require.Equal(t, uint8(0), v)

	b.Remove(1, 2, 3)
	_, ok = b.Get(1, 2, 3)
	require.False(t, ok)
}

func TestVoxelBodyInvalidPositionAndPalette(t *testing.T) {
	b := newTestBody(t)
	require.ErrorIs(t, b.Set(32, 0, 0, 0), avatarerr.ErrInvalidPosition)
	require.ErrorIs(t, b.Set(0, 0, 0, 99), avatarerr.ErrInvalidPaletteIndex)
}

func TestVoxelBodyBounds(t *testing.T) {
	b := newTestBody(t)
	if _, ok := b.Bounds(); ok {
		t.Fatal("empty body should report no bounds")
	}
	require.NoError(t, b.Set(1, 2, 3, 0))
	require.NoError(t, b.Set(5, 1, 2, 0))
	box, ok := b.Bounds()
	require.True(t, ok)
	require.Equal(t, AABB{MinX: 1, MinY: 1, MinZ: 2, MaxX: 5, MaxY: 2, MaxZ: 3}, box)
}

func TestVoxelBodyMirrorXTwiceIsIdentity(t *testing.T) {
	b := newTestBody(t)
	require.NoError(t, b.Set(0, 0, 0, 0))
	require.NoError(t, b.Set(10, 20, 5, 1))

	before := snapshot(b)
	b.MirrorX()
	b.MirrorX()
	after := snapshot(b)

	require.Equal(t, before, after)
}

func TestVoxelBodyForEachSortedOrder(t *testing.T) {
	b := newTestBody(t)
	require.NoError(t, b.Set(5, 1, 0, 0))
	require.NoError(t, b.Set(0, 0, 0, 0))
	require.NoError(t, b.Set(3, 0, 2, 0))

	var ys, xs, zs []int
	b.ForEachSorted(func(k Key, x, y, z int, idx uint8) {
		ys = append(ys, y)
		xs = append(xs, x)
		zs = append(zs, z)
	})

	require.Equal(t, []int{0, 0, 1}, ys)
	// within y=0: x=0 before x=3
	require.Equal(t, 0, xs[0])
	require.Equal(t, 3, xs[1])
	_ = zs
}

func TestVoxelBodyExpressionCRUD(t *testing.T) {
	b := newTestBody(t)
	delta := map[Key]uint8{Encode(1, 1, 1): 1}
	require.NoError(t, b.SetExpression("smile", delta))

	got, ok := b.GetExpression("smile")
	require.True(t, ok)
	require.Equal(t, delta, got)

	b.RemoveExpression("smile")
	_, ok = b.GetExpression("smile")
	require.False(t, ok)
}

func TestVoxelBodySpringRegionConflict(t *testing.T) {
	b := newTestBody(t)
	r1 := &SpringRegion{Name: "tail", VoxelKeys: map[Key]struct{}{Encode(1, 1, 1): {}}}
	require.NoError(t, b.AddSpringRegion(r1))

	r2 := &SpringRegion{Name: "hair", VoxelKeys: map[Key]struct{}{Encode(1, 1, 1): {}}}
	require.Error(t, b.AddSpringRegion(r2))
}

func TestVoxelBodyValidate(t *testing.T) {
	b := newTestBody(t)
	violations := b.Validate()
	require.Empty(t, violations)
}

func snapshot(b *VoxelBody) map[Key]uint8 {
	out := make(map[Key]uint8)
	b.ForEachSorted(func(k Key, x, y, z int, idx uint8) {
		out[k] = idx
	})
	return out
}
