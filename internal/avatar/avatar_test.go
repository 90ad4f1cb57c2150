package avatar

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelavatar/internal/skeleton"
	"voxelavatar/internal/voxel"
)

func buildTestBody(t *testing.T) *voxel.VoxelBody {
	t.Helper()
	b := voxel.New("test-avatar")
	p := b.Palette()
	_, err := p.Add(200, 150, 120, voxel.Solid)
	require.NoError(t, err)

	// a couple of head voxels and a couple of hip voxels, so the avatar
	// has at least two distinct per-bone geometry groups.
	require.NoError(t, b.Set(16, 60, 16, 0))
	require.NoError(t, b.Set(17, 60, 16, 0))
	require.NoError(t, b.Set(16, 36, 16, 0))
	require.NoError(t, b.Set(17, 36, 16, 0))
	return b
}

func TestNewAvatarBuildsRestPoseSkeleton(t *testing.T) {
	a := New(buildTestBody(t), 1)
	require.NotNil(t, a.Skeleton.Bone(skeleton.Head))
}

func TestUpdateRebuildsDirtyGeometryOnce(t *testing.T) {
	a := New(buildTestBody(t), 1)
	require.True(t, a.geometryDirty)

	a.Update(1.0/60.0, nil)
	require.False(t, a.geometryDirty)
	require.NotNil(t, a.Geometry(skeleton.Head))
	require.NotNil(t, a.Geometry(skeleton.Hips))

	a.Update(1.0/60.0, nil)
	require.False(t, a.geometryDirty)
}

func TestMarkGeometryDirtyForcesRebuild(t *testing.T) {
	a := New(buildTestBody(t), 1)
	a.Update(1.0/60.0, nil)
	a.MarkGeometryDirty()
	require.True(t, a.geometryDirty)
	a.Update(1.0/60.0, nil)
	require.False(t, a.geometryDirty)
}

func TestPosedGeometryTransformsVertices(t *testing.T) {
	a := New(buildTestBody(t), 1)
	a.Update(1.0/60.0, nil)

	local := a.Geometry(skeleton.Head)
	require.NotNil(t, local)
	posed := a.PosedGeometry(skeleton.Head)
	require.NotNil(t, posed)
	require.Equal(t, local.VertexCount, posed.VertexCount)
	require.Equal(t, local.IndexCount, posed.IndexCount)
}

func TestPosedGeometryBoneWithNoVoxelsIsNil(t *testing.T) {
	a := New(buildTestBody(t), 1)
	a.Update(1.0/60.0, nil)
	require.Nil(t, a.PosedGeometry(skeleton.LeftToes))
}

func TestDisposeIsIdempotent(t *testing.T) {
	a := New(buildTestBody(t), 1)
	a.Update(1.0/60.0, nil)
	a.Dispose()
	require.Empty(t, a.geometries)
	a.Dispose()
	require.Empty(t, a.geometries)
}
