// Package voxel implements the sparse voxel data model: the indexed
// Palette, the VoxelBody store with its expression deltas and spring
// regions, and the position-key codec shared with the binary container.
package voxel

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"voxelavatar/internal/avatarerr"
)

// MaxNameLength is the metadata name cap, per spec.md §3.
const MaxNameLength = 64

// MaxExpressionNameLength is the expression-name cap, per spec.md §3.
const MaxExpressionNameLength = 32

// MaxSpringRegionNameLength is the spring-region-name cap, per spec.md §3.
const MaxSpringRegionNameLength = 32

// RenderMode selects how a renderer should interpret voxel faces.
type RenderMode uint8

const (
	RenderAuto RenderMode = iota
	RenderCube
	RenderSmooth
)

// String names a RenderMode, falling back to "unknown" for out-of-range
// values (mirrors block.Type.String()'s fallback shape).
func (m RenderMode) String() string {
	switch m {
	case RenderAuto:
		return "auto"
	case RenderCube:
		return "cube"
	case RenderSmooth:
		return "smooth"
	default:
		return "unknown"
	}
}

// Metadata describes the owning avatar body.
type Metadata struct {
	ID         string
	Name       string
	CreatorID  string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// SpringParams are the physical parameters of a spring region (spec.md §3).
type SpringParams struct {
	Stiffness     float32 // [0,1]
	Damping       float32 // [0,1]
	GravityFactor float32 // [0,2]
}

// SpringRegion is a named set of voxel keys participating in secondary
// motion, plus its physical parameters.
type SpringRegion struct {
	Name      string
	VoxelKeys map[Key]struct{}
	Params    SpringParams
}

// VoxelBody is the sparse voxel store: a position-key -> palette-index
// mapping plus the palette, metadata, render mode, expression deltas, and
// spring regions it owns (spec.md §3). Compare
// internal/core/chunk/chunk.go's dense Data []block.Type array — VoxelBody
// is sparse by construction since most of a humanoid's 32x64x32 box is
// empty.
type VoxelBody struct {
	voxels      map[Key]uint8
	palette     *Palette
	metadata    Metadata
	renderMode  RenderMode
	expressions map[string]map[Key]uint8
	// expressionOrder preserves insertion order for serialization,
	// mirroring springOrder below — Go map iteration order is not stable
	// and spec.md §4.3 requires expressions emitted "in insertion order".
	expressionOrder []string
	// springOrder preserves insertion order for serialization, since Go
	// map iteration order is not stable (spec.md §4.3 emits regions "in
	// insertion order").
	springOrder []string
	springs     map[string]*SpringRegion
	// springKeyOwner tracks which region currently owns a given voxel
	// key, enforcing the "at most one spring region" invariant.
	springKeyOwner map[Key]string

	boundsCache    *AABB
	boundsComputed bool
}

// AABB is an axis-aligned bounding box in voxel coordinates, inclusive on
// both ends.
type AABB struct {
	MinX, MinY, MinZ int
	MaxX, MaxY, MaxZ int
}

// New creates an empty VoxelBody with a freshly minted UUID and the given
// display name.
func New(name string) *VoxelBody {
	now := time.Now()
	return &VoxelBody{
		voxels:      make(map[Key]uint8),
		palette:     NewPalette(),
		expressions: make(map[string]map[Key]uint8),
		springs:     make(map[string]*SpringRegion),
		springKeyOwner: make(map[Key]string),
		metadata: Metadata{
			ID:         uuid.NewString(),
			Name:       name,
			CreatedAt:  now,
			ModifiedAt: now,
		},
	}
}

// Palette returns the body's owned palette.
func (b *VoxelBody) Palette() *Palette { return b.palette }

// Metadata returns a copy of the body's metadata.
func (b *VoxelBody) Metadata() Metadata { return b.metadata }

// SetMetadata replaces name/creator, respecting the name length cap.
func (b *VoxelBody) SetMetadata(name, creatorID string) error {
	if len(name) > MaxNameLength {
		return avatarerr.ErrNameTooLong
	}
	b.metadata.Name = name
	b.metadata.CreatorID = creatorID
	b.touch()
	return nil
}

// SetTimestamps overwrites CreatedAt/ModifiedAt directly, bypassing the
// touch() bump — used by the codec to restore exact timestamps on
// deserialize.
func (b *VoxelBody) SetTimestamps(createdAt, modifiedAt time.Time) {
	b.metadata.CreatedAt = createdAt
	b.metadata.ModifiedAt = modifiedAt
}

// RenderMode returns the current render mode.
func (b *VoxelBody) RenderMode() RenderMode { return b.renderMode }

// SetRenderMode sets the render mode.
func (b *VoxelBody) SetRenderMode(m RenderMode) {
	b.renderMode = m
	b.touch()
}

func (b *VoxelBody) touch() {
	b.metadata.ModifiedAt = time.Now()
	b.boundsComputed = false
	b.boundsCache = nil
}

// Len returns the number of populated voxels.
func (b *VoxelBody) Len() int { return len(b.voxels) }

// Set writes a palette index at (x,y,z). Returns ErrInvalidPosition if out
// of bounds, ErrInvalidPaletteIndex if the index does not name a palette
// slot.
func (b *VoxelBody) Set(x, y, z int, paletteIndex uint8) error {
	k, ok := TryEncode(x, y, z)
	if !ok {
		return avatarerr.ErrInvalidPosition
	}
	if int(paletteIndex) >= b.palette.Size() {
		return avatarerr.ErrInvalidPaletteIndex
	}
	b.voxels[k] = paletteIndex
	b.touch()
	return nil
}

// SetKey is Set addressed directly by position key (used by the codec when
// expanding RLE runs).
func (b *VoxelBody) SetKey(k Key, paletteIndex uint8) error {
	if int(paletteIndex) >= b.palette.Size() {
		return avatarerr.ErrInvalidPaletteIndex
	}
	b.voxels[k] = paletteIndex
	b.touch()
	return nil
}

// Get returns the palette index at (x,y,z), and whether a voxel is present.
func (b *VoxelBody) Get(x, y, z int) (uint8, bool) {
	k, ok := TryEncode(x, y, z)
	if !ok {
		return 0, false
	}
	v, present := b.voxels[k]
	return v, present
}

// GetKey is Get addressed directly by position key.
func (b *VoxelBody) GetKey(k Key) (uint8, bool) {
	v, present := b.voxels[k]
	return v, present
}

// Has reports whether a voxel is present at (x,y,z).
func (b *VoxelBody) Has(x, y, z int) bool {
	_, ok := b.Get(x, y, z)
	return ok
}

// Remove deletes the voxel at (x,y,z), if present.
func (b *VoxelBody) Remove(x, y, z int) {
	k, ok := TryEncode(x, y, z)
	if !ok {
		return
	}
	if _, present := b.voxels[k]; present {
		delete(b.voxels, k)
		b.touch()
	}
}

// Clear removes every voxel.
func (b *VoxelBody) Clear() {
	b.voxels = make(map[Key]uint8)
	b.touch()
}

// Bounds returns the tight AABB over populated voxels, or (AABB{}, false)
// if the body is empty. The result is cached until the next mutation.
func (b *VoxelBody) Bounds() (AABB, bool) {
	if b.boundsComputed {
		if b.boundsCache == nil {
			return AABB{}, false
		}
		return *b.boundsCache, true
	}
	if len(b.voxels) == 0 {
		b.boundsComputed = true
		b.boundsCache = nil
		return AABB{}, false
	}
	first := true
	var box AABB
	for k := range b.voxels {
		x, y, z := Decode(k)
		if first {
			box = AABB{MinX: x, MinY: y, MinZ: z, MaxX: x, MaxY: y, MaxZ: z}
			first = false
			continue
		}
		if x < box.MinX {
			box.MinX = x
		}
		if y < box.MinY {
			box.MinY = y
		}
		if z < box.MinZ {
			box.MinZ = z
		}
		if x > box.MaxX {
			box.MaxX = x
		}
		if y > box.MaxY {
			box.MaxY = y
		}
		if z > box.MaxZ {
			box.MaxZ = z
		}
	}
	b.boundsComputed = true
	b.boundsCache = &box
	return box, true
}

// MirrorX reflects every voxel across the X axis (x -> 31-x), in place.
// Applying MirrorX twice restores the original voxel set (spec.md §8
// invariant 4).
func (b *VoxelBody) MirrorX() {
	mirrored := make(map[Key]uint8, len(b.voxels))
	for k, idx := range b.voxels {
		x, y, z := Decode(k)
		mirrored[Encode(SizeX-1-x, y, z)] = idx
	}
	b.voxels = mirrored
	b.touch()
}

// SymmetryDirection selects which half of the body is authoritative when
// applying bilateral symmetry.
type SymmetryDirection int

const (
	LeftToRight SymmetryDirection = iota
	RightToLeft
)

// ApplySymmetry copies one half of the body onto the other across the X
// axis midline (x=16).
func (b *VoxelBody) ApplySymmetry(dir SymmetryDirection) {
	updates := make(map[Key]uint8)
	for k, idx := range b.voxels {
		x, y, z := Decode(k)
		isSource := (dir == LeftToRight && x < SizeX/2) || (dir == RightToLeft && x >= SizeX/2)
		if !isSource {
			continue
		}
		mirroredX := SizeX - 1 - x
		updates[Encode(mirroredX, y, z)] = idx
	}
	for k, idx := range updates {
		b.voxels[k] = idx
	}
	b.touch()
}

// ForEachSorted iterates voxels in (y, x, z) ascending order — the
// normative order for RLE run-length maximization (spec.md §4.2).
func (b *VoxelBody) ForEachSorted(fn func(k Key, x, y, z int, paletteIndex uint8)) {
	keys := make([]Key, 0, len(b.voxels))
	for k := range b.voxels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		xi, yi, zi := Decode(keys[i])
		xj, yj, zj := Decode(keys[j])
		if yi != yj {
			return yi < yj
		}
		if xi != xj {
			return xi < xj
		}
		return zi < zj
	})
	for _, k := range keys {
		x, y, z := Decode(k)
		fn(k, x, y, z, b.voxels[k])
	}
}

// SetExpression stores a delta (position key -> palette index) under name.
func (b *VoxelBody) SetExpression(name string, delta map[Key]uint8) error {
	if len(name) > MaxExpressionNameLength {
		return avatarerr.ErrNameTooLong
	}
	cp := make(map[Key]uint8, len(delta))
	for k, v := range delta {
		cp[k] = v
	}
	if _, exists := b.expressions[name]; !exists {
		b.expressionOrder = append(b.expressionOrder, name)
	}
	b.expressions[name] = cp
	b.touch()
	return nil
}

// GetExpression returns the delta stored under name, if any.
func (b *VoxelBody) GetExpression(name string) (map[Key]uint8, bool) {
	d, ok := b.expressions[name]
	return d, ok
}

// RemoveExpression deletes the delta stored under name.
func (b *VoxelBody) RemoveExpression(name string) {
	if _, ok := b.expressions[name]; ok {
		delete(b.expressions, name)
		for i, n := range b.expressionOrder {
			if n == name {
				b.expressionOrder = append(b.expressionOrder[:i], b.expressionOrder[i+1:]...)
				break
			}
		}
		b.touch()
	}
}

// ExpressionNames returns the set of stored expression names, in no
// particular order; callers needing stable output should sort it.
func (b *VoxelBody) ExpressionNames() []string {
	names := make([]string, 0, len(b.expressions))
	for n := range b.expressions {
		names = append(names, n)
	}
	return names
}

// ExpressionNamesInOrder returns every stored expression name in
// insertion order — the order spec.md §4.3 requires the binary codec to
// emit expressions in, mirroring SpringRegionsInOrder.
func (b *VoxelBody) ExpressionNamesInOrder() []string {
	out := make([]string, len(b.expressionOrder))
	copy(out, b.expressionOrder)
	return out
}

// AddSpringRegion registers a new spring region. Returns
// ErrSpringKeyConflict if any of its keys already belong to another
// region (spec.md §3: "a given voxel-key belongs to at most one spring
// region, enforced on edit").
func (b *VoxelBody) AddSpringRegion(r *SpringRegion) error {
	if len(r.Name) > MaxSpringRegionNameLength {
		return avatarerr.ErrNameTooLong
	}
	for k := range r.VoxelKeys {
		if owner, ok := b.springKeyOwner[k]; ok && owner != r.Name {
			return avatarerr.ErrSpringKeyConflict
		}
	}
	if _, exists := b.springs[r.Name]; !exists {
		b.springOrder = append(b.springOrder, r.Name)
	}
	b.springs[r.Name] = r
	for k := range r.VoxelKeys {
		b.springKeyOwner[k] = r.Name
	}
	b.touch()
	return nil
}

// GetSpringRegion returns the region stored under name, if any.
func (b *VoxelBody) GetSpringRegion(name string) (*SpringRegion, bool) {
	r, ok := b.springs[name]
	return r, ok
}

// SpringRegionsInOrder returns all spring regions in insertion order —
// the order spec.md §4.3 requires the binary codec to emit them in.
func (b *VoxelBody) SpringRegionsInOrder() []*SpringRegion {
	out := make([]*SpringRegion, 0, len(b.springOrder))
	for _, name := range b.springOrder {
		out = append(out, b.springs[name])
	}
	return out
}

// Violation describes one validate() finding.
type Violation struct {
	Kind string
	Key  Key
	Note string
}

// Validate enumerates every issue without short-circuiting, to support
// editor-side surfacing of all problems at once (spec.md §4.2, §7).
func (b *VoxelBody) Validate() []Violation {
	var out []Violation
	if len(b.metadata.Name) > MaxNameLength {
		out = append(out, Violation{Kind: "name_too_long", Note: b.metadata.Name})
	}
	if len(b.voxels) > MaxVoxels {
		out = append(out, Violation{Kind: "overflow", Note: "voxel count exceeds box capacity"})
	}
	for k, idx := range b.voxels {
		if int(idx) >= b.palette.Size() {
			out = append(out, Violation{Kind: "invalid_palette_index", Key: k})
		}
	}
	for name, delta := range b.expressions {
		if len(name) > MaxExpressionNameLength {
			out = append(out, Violation{Kind: "expression_name_too_long", Note: name})
		}
		for k, idx := range delta {
			if int(idx) >= b.palette.Size() {
				out = append(out, Violation{Kind: "invalid_expression_palette_index", Key: k, Note: name})
			}
		}
	}
	for name := range b.springs {
		if len(name) > MaxSpringRegionNameLength {
			out = append(out, Violation{Kind: "spring_name_too_long", Note: name})
		}
	}
	return out
}
