package voxel

// Box dimensions, fixed by spec.md §3: voxel coordinates live in
// [0,32) x [0,64) x [0,32).
const (
	SizeX = 32
	SizeY = 64
	SizeZ = 32

	// MaxVoxels is the maximum number of distinct positions in the box,
	// and the upper bound on VoxelBody.Len().
	MaxVoxels = SizeX * SizeY * SizeZ
)

// Key is the normative on-disk/runtime position key: a single uint16
// (0..65535) computed as x + y*32 + z*32*64. It doubles as the RLE run key
// and the expression-delta key (spec.md §3).
type Key = uint16

// InBounds reports whether (x,y,z) falls inside the fixed voxel box.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < SizeX && y >= 0 && y < SizeY && z >= 0 && z < SizeZ
}

// Encode packs an in-bounds coordinate into its position key. The caller
// must check InBounds first; Encode does not validate.
func Encode(x, y, z int) Key {
	return Key(x + y*SizeX + z*SizeX*SizeY)
}

// TryEncode validates bounds before encoding.
func TryEncode(x, y, z int) (Key, bool) {
	if !InBounds(x, y, z) {
		return 0, false
	}
	return Encode(x, y, z), true
}

// Decode is the inverse modular decomposition of Encode.
func Decode(k Key) (x, y, z int) {
	v := int(k)
	x = v % SizeX
	v /= SizeX
	y = v % SizeY
	z = v / SizeY
	return
}
