package mesher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelavatar/internal/voxel"
)

func slabInput(t *testing.T) Input {
	t.Helper()
	p := voxel.NewPalette()
	_, err := p.Add(200, 50, 50, voxel.Solid)
	require.NoError(t, err)

	voxels := map[voxel.Key]uint8{
		voxel.Encode(0, 0, 0): 0,
		voxel.Encode(1, 0, 0): 0,
		voxel.Encode(0, 1, 0): 0,
		voxel.Encode(1, 1, 0): 0,
	}
	return Input{Voxels: voxels, Palette: p}
}

func quadArea(q quad) int {
	return q.Width * q.Height
}

// S3: a 2x2x1 slab's total exposed surface splits into two 2x2 caps (the
// faces perpendicular to the thin Z axis) and four 2x1 sides, six quads
// with total area 16.
func TestGreedyMeshSlabS3(t *testing.T) {
	input := slabInput(t)
	faces := cullFaces(input, Options{})
	quads := greedyMerge(faces)

	require.Len(t, quads, 6)

	var totalArea int
	var capCount, sideCount int
	for _, q := range quads {
		totalArea += quadArea(q)
		if q.Dir == PosZ || q.Dir == NegZ {
			require.Equal(t, 4, quadArea(q))
			capCount++
		} else {
			require.Equal(t, 2, quadArea(q))
			sideCount++
		}
	}
	require.Equal(t, 2, capCount)
	require.Equal(t, 4, sideCount)
	require.Equal(t, 16, totalArea)
}

// Invariant 5: the set of quads tessellated back into unit faces equals
// the set of exposed faces culling produced, regardless of merge grouping.
func TestGreedyMeshConservesFaceCount(t *testing.T) {
	input := slabInput(t)
	faces := cullFaces(input, Options{})
	quads := greedyMerge(faces)

	var unitFacesFromQuads int
	for _, q := range quads {
		unitFacesFromQuads += quadArea(q)
	}
	require.Equal(t, len(faces), unitFacesFromQuads)
}

func TestMeshReturnsGeometryWithIndexedQuads(t *testing.T) {
	input := slabInput(t)
	g := Mesh(input, DefaultOptions())
	require.NotNil(t, g)
	require.Equal(t, 6*4, g.VertexCount)
	require.Equal(t, 6*6, g.IndexCount)
	require.Len(t, g.Vertices, g.VertexCount*VertexSize)
}

func TestMeshEmptyInputReturnsNil(t *testing.T) {
	g := Mesh(Input{Voxels: map[voxel.Key]uint8{}}, DefaultOptions())
	require.Nil(t, g)
}

func TestMeshSingleVoxelProducesSixUnitQuads(t *testing.T) {
	p := voxel.NewPalette()
	_, err := p.Add(10, 10, 10, voxel.Solid)
	require.NoError(t, err)
	input := Input{
		Voxels:  map[voxel.Key]uint8{voxel.Encode(5, 5, 5): 0},
		Palette: p,
	}
	g := Mesh(input, DefaultOptions())
	require.NotNil(t, g)
	require.Equal(t, 24, g.VertexCount)
	require.Equal(t, 36, g.IndexCount)
}

func TestNeighborLookupSuppressesBoundaryFace(t *testing.T) {
	p := voxel.NewPalette()
	_, err := p.Add(1, 2, 3, voxel.Solid)
	require.NoError(t, err)
	input := Input{
		Voxels:  map[voxel.Key]uint8{voxel.Encode(31, 0, 0): 0},
		Palette: p,
		NeighborLookup: func(x, y, z int) (uint8, bool) {
			if x == 32 && y == 0 && z == 0 {
				return 0, true
			}
			return 0, false
		},
	}
	faces := cullFaces(input, Options{})
	for _, f := range faces {
		require.NotEqual(t, PosX, f.Dir)
	}
}

func TestFastImpostorPicksMostCommonColor(t *testing.T) {
	p := voxel.NewPalette()
	_, err := p.Add(255, 0, 0, voxel.Solid)
	require.NoError(t, err)
	_, err = p.Add(0, 255, 0, voxel.Solid)
	require.NoError(t, err)

	input := Input{
		Voxels: map[voxel.Key]uint8{
			voxel.Encode(0, 0, 0): 0,
			voxel.Encode(1, 0, 0): 0,
			voxel.Encode(2, 0, 0): 1,
		},
		Palette: p,
	}
	g := Mesh(input, Options{FastImpostor: true, VoxelSize: 1, ChunkSize: 4})
	require.NotNil(t, g)
	require.Equal(t, 24, g.VertexCount)
	require.Equal(t, 36, g.IndexCount)
	require.InDelta(t, float32(1), g.Vertices[6], 1e-6)
}
