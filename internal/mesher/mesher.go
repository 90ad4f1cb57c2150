// Package mesher implements the unified greedy mesher: face culling plus
// 2D greedy rectangle merging, used identically regardless of voxel scale,
// producing indexed triangle geometry. It also provides a fast impostor
// path that emits a single colored cube for distant LOD.
package mesher

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"voxelavatar/internal/voxel"
)

// Direction is one of the six cardinal face directions.
type Direction int

const (
	PosX Direction = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

var directionNormals = [6]mgl32.Vec3{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

var neighborOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// normalAxis and tangentAxes are the normative axis assignment of spec.md
// §4.7: ±X → (Y,Z), ±Y → (X,Z), ±Z → (X,Y).
var normalAxis = [6]int{0, 0, 1, 1, 2, 2}
var tangentAxis1 = [6]int{1, 1, 0, 0, 0, 0}
var tangentAxis2 = [6]int{2, 2, 2, 2, 1, 1}

// VertexSize is the float stride per vertex: position(3) + normal(3) +
// color(3).
const VertexSize = 9

// NeighborLookup resolves a voxel outside the primary input's bounds, used
// at chunk boundaries. The second return is false when the position is
// empty (and thus a face against it is exposed).
type NeighborLookup func(x, y, z int) (paletteIndex uint8, ok bool)

// Input is the voxel data the mesher reads; Palette resolves each palette
// index to a color for grouping and vertex color output.
type Input struct {
	Voxels         map[voxel.Key]uint8
	Palette        *voxel.Palette
	NeighborLookup NeighborLookup
}

// Options tunes how Mesh builds geometry (spec.md §4.7).
type Options struct {
	UseTextureID  bool
	VoxelSize     float32
	WorldAbsolute bool
	Origin        mgl32.Vec3
	FastImpostor  bool
	ChunkSize     float32
}

// DefaultOptions returns a unit-scale, batch-relative, non-impostor config.
func DefaultOptions() Options {
	return Options{VoxelSize: 1, ChunkSize: 1}
}

// Geometry is indexed triangle data: 4 vertices and 6 indices per quad.
type Geometry struct {
	Vertices    []float32
	Indices     []uint32
	VertexCount int
	IndexCount  int
}

type face struct {
	X, Y, Z      int
	Dir          Direction
	PaletteIndex uint8
	GroupKey     uint32
}

// Mesh builds geometry for the given voxel input, or returns nil for
// empty input (spec.md §4.7 failure semantics).
func Mesh(input Input, opts Options) *Geometry {
	if opts.FastImpostor {
		return impostorCube(input, opts)
	}
	if len(input.Voxels) == 0 {
		return nil
	}

	faces := cullFaces(input, opts)
	if len(faces) == 0 {
		return nil
	}

	g := &Geometry{}
	for _, quad := range greedyMerge(faces) {
		appendQuad(g, quad, input, opts)
	}
	g.VertexCount = len(g.Vertices) / VertexSize
	g.IndexCount = len(g.Indices)
	return g
}

func groupKeyFor(idx uint8, palette *voxel.Palette, useTextureID bool) uint32 {
	if useTextureID {
		return uint32(idx)
	}
	if palette == nil {
		return uint32(idx)
	}
	c, err := palette.Get(int(idx))
	if err != nil {
		return uint32(idx)
	}
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// cullFaces is the O(n) exposed-face pass: for every voxel and each of the
// six directions, a face is exposed iff the neighbor key is absent.
func cullFaces(input Input, opts Options) []face {
	var faces []face
	for key, idx := range input.Voxels {
		x, y, z := voxel.Decode(key)
		for d := 0; d < 6; d++ {
			off := neighborOffsets[d]
			nx, ny, nz := x+off[0], y+off[1], z+off[2]

			exposed := false
			if voxel.InBounds(nx, ny, nz) {
				nk := voxel.Encode(nx, ny, nz)
				if _, occupied := input.Voxels[nk]; !occupied {
					exposed = true
				}
			} else if input.NeighborLookup != nil {
				if _, ok := input.NeighborLookup(nx, ny, nz); !ok {
					exposed = true
				}
			} else {
				exposed = true
			}

			if exposed {
				faces = append(faces, face{
					X: x, Y: y, Z: z,
					Dir:          Direction(d),
					PaletteIndex: idx,
					GroupKey:     groupKeyFor(idx, input.Palette, opts.UseTextureID),
				})
			}
		}
	}
	return faces
}

func axisValue(f face, axis int) int {
	switch axis {
	case 0:
		return f.X
	case 1:
		return f.Y
	default:
		return f.Z
	}
}

type quad struct {
	Dir          Direction
	Depth        int
	U0, V0       int
	Width, Height int
	PaletteIndex uint8
}

type bucketKey struct {
	Dir   Direction
	Group uint32
	Depth int
}

// greedyMerge partitions faces by (direction, groupKey, depth-along-normal)
// and, within each partition, performs the 2D greedy rectangle merge of
// spec.md §4.7: expand width along the first tangent axis, then expand
// height a full row at a time, claiming covered cells as it goes.
func greedyMerge(faces []face) []quad {
	buckets := make(map[bucketKey][]face)
	for _, f := range faces {
		depth := axisValue(f, normalAxis[f.Dir])
		key := bucketKey{Dir: f.Dir, Group: f.GroupKey, Depth: depth}
		buckets[key] = append(buckets[key], f)
	}

	var quads []quad
	for key, bucketFaces := range buckets {
		t1, t2 := tangentAxis1[key.Dir], tangentAxis2[key.Dir]

		cellMap := make(map[[2]int]face, len(bucketFaces))
		for _, f := range bucketFaces {
			cellMap[[2]int{axisValue(f, t1), axisValue(f, t2)}] = f
		}

		order := make([][2]int, 0, len(cellMap))
		for uv := range cellMap {
			order = append(order, uv)
		}
		sort.Slice(order, func(i, j int) bool {
			if order[i][1] != order[j][1] {
				return order[i][1] < order[j][1]
			}
			return order[i][0] < order[j][0]
		})

		claimed := make(map[[2]int]bool, len(cellMap))
		for _, uv := range order {
			if claimed[uv] {
				continue
			}
			u0, v0 := uv[0], uv[1]
			f0 := cellMap[uv]

			width := 1
			for {
				cand := [2]int{u0 + width, v0}
				cf, ok := cellMap[cand]
				if !ok || claimed[cand] || cf.PaletteIndex != f0.PaletteIndex {
					break
				}
				width++
			}

			height := 1
		rows:
			for {
				for w := 0; w < width; w++ {
					cand := [2]int{u0 + w, v0 + height}
					cf, ok := cellMap[cand]
					if !ok || claimed[cand] || cf.PaletteIndex != f0.PaletteIndex {
						break rows
					}
				}
				height++
			}

			for h := 0; h < height; h++ {
				for w := 0; w < width; w++ {
					claimed[[2]int{u0 + w, v0 + h}] = true
				}
			}

			quads = append(quads, quad{
				Dir:          key.Dir,
				Depth:        key.Depth,
				U0:           u0,
				V0:           v0,
				Width:        width,
				Height:       height,
				PaletteIndex: f0.PaletteIndex,
			})
		}
	}
	return quads
}

func planeCoord(dir Direction, depth int) float32 {
	switch dir {
	case PosX, PosY, PosZ:
		return float32(depth + 1)
	default:
		return float32(depth)
	}
}

func point3(normal, t1, t2 int, n, u, v float32) mgl32.Vec3 {
	var p mgl32.Vec3
	p[normal] = n
	p[t1] = u
	p[t2] = v
	return p
}

// appendQuad emits one quad's 4 vertices and 6 indices, flipping winding
// order when the geometric cross product doesn't match the intended
// face normal (spec.md §4.7's "winding flipped for negative-direction
// faces", generalized to avoid a hand-maintained per-direction table).
func appendQuad(g *Geometry, q quad, input Input, opts Options) {
	n := normalAxis[q.Dir]
	t1, t2 := tangentAxis1[q.Dir], tangentAxis2[q.Dir]
	plane := planeCoord(q.Dir, q.Depth)

	corners := [4]mgl32.Vec3{
		point3(n, t1, t2, plane, float32(q.U0), float32(q.V0)),
		point3(n, t1, t2, plane, float32(q.U0+q.Width), float32(q.V0)),
		point3(n, t1, t2, plane, float32(q.U0+q.Width), float32(q.V0+q.Height)),
		point3(n, t1, t2, plane, float32(q.U0), float32(q.V0+q.Height)),
	}

	desired := directionNormals[q.Dir]
	edge1 := corners[1].Sub(corners[0])
	edge2 := corners[3].Sub(corners[0])
	computed := edge1.Cross(edge2)
	if computed.Dot(desired) < 0 {
		corners[1], corners[3] = corners[3], corners[1]
	}

	color := colorOf(q.PaletteIndex, input.Palette)
	voxelSize := opts.VoxelSize
	if voxelSize == 0 {
		voxelSize = 1
	}

	baseIndex := uint32(len(g.Vertices) / VertexSize)
	for _, c := range corners {
		p := c.Mul(voxelSize)
		if opts.WorldAbsolute {
			p = p.Add(opts.Origin)
		}
		g.Vertices = append(g.Vertices,
			p[0], p[1], p[2],
			desired[0], desired[1], desired[2],
			color[0], color[1], color[2],
		)
	}
	g.Indices = append(g.Indices,
		baseIndex, baseIndex+1, baseIndex+2,
		baseIndex, baseIndex+2, baseIndex+3,
	)
}

func colorOf(idx uint8, palette *voxel.Palette) [3]float32 {
	if palette == nil {
		return [3]float32{1, 1, 1}
	}
	c, err := palette.Get(int(idx))
	if err != nil {
		return [3]float32{1, 1, 1}
	}
	return [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

// impostorCube implements the fast O(n) LOD path: skip culling and
// merging, find the most common palette index, and emit a single cube
// sized chunkSize×voxelSize in that color (spec.md §4.7).
func impostorCube(input Input, opts Options) *Geometry {
	if len(input.Voxels) == 0 {
		return nil
	}

	counts := make(map[uint8]int)
	for _, idx := range input.Voxels {
		counts[idx]++
	}
	var best uint8
	bestCount := -1
	for idx, count := range counts {
		if count > bestCount || (count == bestCount && idx < best) {
			best = idx
			bestCount = count
		}
	}

	size := opts.ChunkSize * opts.VoxelSize
	if size == 0 {
		size = 1
	}
	color := colorOf(best, input.Palette)

	g := &Geometry{}
	for d := 0; d < 6; d++ {
		n := normalAxis[d]
		t1, t2 := tangentAxis1[d], tangentAxis2[d]
		plane := float32(0)
		if d == int(PosX) || d == int(PosY) || d == int(PosZ) {
			plane = size
		}
		corners := [4]mgl32.Vec3{
			point3(n, t1, t2, plane, 0, 0),
			point3(n, t1, t2, plane, size, 0),
			point3(n, t1, t2, plane, size, size),
			point3(n, t1, t2, plane, 0, size),
		}
		desired := directionNormals[d]
		edge1 := corners[1].Sub(corners[0])
		edge2 := corners[3].Sub(corners[0])
		if edge1.Cross(edge2).Dot(desired) < 0 {
			corners[1], corners[3] = corners[3], corners[1]
		}

		baseIndex := uint32(len(g.Vertices) / VertexSize)
		for _, c := range corners {
			p := c
			if opts.WorldAbsolute {
				p = p.Add(opts.Origin)
			}
			g.Vertices = append(g.Vertices,
				p[0], p[1], p[2],
				desired[0], desired[1], desired[2],
				color[0], color[1], color[2],
			)
		}
		g.Indices = append(g.Indices,
			baseIndex, baseIndex+1, baseIndex+2,
			baseIndex, baseIndex+2, baseIndex+3,
		)
	}
	g.VertexCount = len(g.Vertices) / VertexSize
	g.IndexCount = len(g.Indices)
	return g
}
