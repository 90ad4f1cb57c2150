package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelavatar/internal/voxel"
)

func bodyWithPalette(t *testing.T, colors ...voxel.Color) *voxel.VoxelBody {
	t.Helper()
	b := voxel.New("scenario")
	for _, c := range colors {
		_, err := b.Palette().Add(c.R, c.G, c.B, c.Type)
		require.NoError(t, err)
	}
	return b
}

// S1: two voxels with distinct palette indices serialize as two
// length-1 runs, and deserialize recovers both.
func TestSerializeS1TwoVoxelsDistinctIndices(t *testing.T) {
	b := bodyWithPalette(t,
		voxel.Color{R: 255, G: 0, B: 0, Type: voxel.Solid},
		voxel.Color{R: 0, G: 255, B: 0, Type: voxel.Solid},
	)
	require.NoError(t, b.Set(0, 0, 0, 0))
	require.NoError(t, b.Set(1, 0, 0, 1))

	runs := buildRuns(b)
	require.Len(t, runs, 2)
	require.Equal(t, run{startKey: 0, paletteIndex: 0, length: 1}, runs[0])
	require.Equal(t, run{startKey: 1, paletteIndex: 1, length: 1}, runs[1])

	data, err := Serialize(b, Options{})
	require.NoError(t, err)
	got, err := Deserialize(data)
	require.NoError(t, err)

	v0, ok := got.GetKey(0)
	require.True(t, ok)
	require.Equal(t, uint8(0), v0)
	v1, ok := got.GetKey(1)
	require.True(t, ok)
	require.Equal(t, uint8(1), v1)
}

// S2: four contiguous same-index keys merge into a single run.
func TestSerializeS2RLEMerge(t *testing.T) {
	b := bodyWithPalette(t, voxel.Color{R: 1, G: 1, B: 1, Type: voxel.Solid})
	for _, k := range []voxel.Key{5, 6, 7, 8} {
		x, y, z := voxel.Decode(k)
		require.NoError(t, b.Set(x, y, z, 0))
	}
	runs := buildRuns(b)
	require.Len(t, runs, 1)
	require.Equal(t, run{startKey: 5, paletteIndex: 0, length: 4}, runs[0])
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	b := bodyWithPalette(t,
		voxel.Color{R: 10, G: 20, B: 30, Type: voxel.Solid},
		voxel.Color{R: 40, G: 50, B: 60, Type: voxel.Emissive},
	)
	require.NoError(t, b.Set(0, 0, 0, 0))
	require.NoError(t, b.Set(1, 0, 0, 0))
	require.NoError(t, b.Set(5, 10, 2, 1))
	require.NoError(t, b.SetMetadata("Avatar", "creator-1"))
	require.NoError(t, b.SetExpression("smile", map[voxel.Key]uint8{voxel.Encode(2, 2, 2): 1}))
	require.NoError(t, b.AddSpringRegion(&voxel.SpringRegion{
		Name:      "tail",
		VoxelKeys: map[voxel.Key]struct{}{voxel.Encode(3, 3, 3): {}},
		Params:    voxel.SpringParams{Stiffness: 0.5, Damping: 0.2, GravityFactor: 1.0},
	}))

	for _, useGzip := range []bool{false, true} {
		data, err := Serialize(b, Options{Gzip: useGzip})
		require.NoError(t, err)
		got, err := Deserialize(data)
		require.NoError(t, err)

		require.Equal(t, b.Metadata().Name, got.Metadata().Name)
		require.Equal(t, b.Metadata().CreatorID, got.Metadata().CreatorID)
		require.Equal(t, b.Palette().All(), got.Palette().All())

		origExp, _ := b.GetExpression("smile")
		gotExp, ok := got.GetExpression("smile")
		require.True(t, ok)
		require.Equal(t, origExp, gotExp)

		origRegion, _ := b.GetSpringRegion("tail")
		gotRegion, ok := got.GetSpringRegion("tail")
		require.True(t, ok)
		require.Equal(t, origRegion.Params, gotRegion.Params)
		require.Equal(t, origRegion.VoxelKeys, gotRegion.VoxelKeys)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	b := bodyWithPalette(t, voxel.Color{R: 5, G: 5, B: 5, Type: voxel.Solid})
	require.NoError(t, b.Set(0, 0, 0, 0))
	require.NoError(t, b.Set(31, 63, 31, 0))

	data, err := ToJSON(b)
	require.NoError(t, err)
	got, err := FromJSON(data)
	require.NoError(t, err)

	require.Equal(t, b.Len(), got.Len())
	v, ok := got.Get(31, 63, 31)
	require.True(t, ok)
	require.Equal(t, uint8(0), v)
}

func TestDeserializeBadMagic(t *testing.T) {
	_, err := Deserialize(append([]byte{0x00}, []byte("XXXX")...))
	require.Error(t, err)
}

func TestDeserializeTruncated(t *testing.T) {
	_, err := Deserialize([]byte{0x00, 'P', 'V'})
	require.Error(t, err)
}
