// Package avatar wires VoxelBody, Skeleton, SpringBones, AnimationMixer,
// ExpressionController, LookAt, and the unified mesher together into one
// per-tick update, in the fixed order spec.md §2's data-flow diagram
// specifies.
package avatar

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelavatar/internal/animation"
	"voxelavatar/internal/expression"
	"voxelavatar/internal/lookat"
	"voxelavatar/internal/mesher"
	"voxelavatar/internal/skeleton"
	"voxelavatar/internal/spring"
	"voxelavatar/internal/voxel"
)

// Avatar is the top-level orchestrator. It holds non-owning references
// to the subsystems for the duration of a frame but exclusively owns the
// VoxelBody and Skeleton it was built with (spec.md §3 Ownership).
type Avatar struct {
	Body     *voxel.VoxelBody
	Skeleton *skeleton.Skeleton
	Springs  *spring.SpringBones
	Mixer    *animation.Mixer
	Expr     *expression.Controller
	Look     *lookat.LookAt

	regions *skeleton.RegionMapper
	weights *skeleton.WeightCalculator

	geometryDirty bool
	geometries    map[skeleton.BoneName]*mesher.Geometry
}

// New builds an Avatar around body, with a fresh rest-pose skeleton and
// default-configured subsystems.
func New(body *voxel.VoxelBody, seed int64) *Avatar {
	skel := skeleton.New()
	a := &Avatar{
		Body:          body,
		Skeleton:      skel,
		Springs:       spring.New(),
		Mixer:         animation.NewMixer(),
		Expr:          expression.New(body, seed),
		Look:          lookat.New(seed),
		regions:       skeleton.NewRegionMapper(),
		weights:       skeleton.NewWeightCalculator(skel),
		geometryDirty: true,
		geometries:    make(map[skeleton.BoneName]*mesher.Geometry),
	}
	for _, region := range body.SpringRegionsInOrder() {
		bone := a.regions.Assign(decodeFirst(region))
		restBone := skel.Bone(bone)
		a.Springs.BindRegion(region, string(bone), restBone.RestPosition)
	}
	return a
}

func decodeFirst(region *voxel.SpringRegion) (int, int, int) {
	for k := range region.VoxelKeys {
		return voxel.Decode(k)
	}
	return 0, 0, 0
}

// MarkGeometryDirty forces the next Update to rebuild per-bone geometry,
// e.g. after an edit to Body's voxels.
func (a *Avatar) MarkGeometryDirty() { a.geometryDirty = true }

// Update advances every subsystem by dt, following spec.md §2's fixed
// per-tick order:
//
//  1. AnimationMixer samples its active clip and applies rotations to Skeleton.
//  2. Skeleton recomputes world transforms so SpringBones sees the posed rig.
//  3. ExpressionController advances blend/blink bookkeeping.
//  4. SpringBones integrates chains using the skeleton's world transforms.
//  5. LookAt overrides the head/neck rotation every tick; a supplied
//     lookTarget becomes its manual target, and without one it keeps
//     tracking its current (manual or auto-look) target.
//  6. Skeleton recomputes world transforms a final time.
//  7. Mesher rebuilds per-bone geometry if voxel data is dirty.
func (a *Avatar) Update(dt float32, lookTarget *mgl32.Vec3) {
	a.Mixer.Update(dt, a.Skeleton)
	a.Skeleton.UpdateWorldTransforms()

	a.Expr.Update(dt)

	boneWorldPosition := make(map[string]mgl32.Vec3, len(skeleton.BoneOrder))
	boneWorldRotation := make(map[string]mgl32.Quat, len(skeleton.BoneOrder))
	for _, name := range skeleton.BoneOrder {
		b := a.Skeleton.Bone(name)
		boneWorldPosition[string(name)] = b.WorldPosition
		boneWorldRotation[string(name)] = b.WorldRotation
	}
	a.Springs.Integrate(dt, boneWorldPosition, boneWorldRotation)

	if lookTarget != nil {
		a.Look.SetTarget(*lookTarget, 0)
	}
	headPos := a.Skeleton.Bone(skeleton.Head).WorldPosition
	a.Look.Update(dt, a.Skeleton, headPos)

	a.Skeleton.UpdateWorldTransforms()

	if a.geometryDirty {
		a.rebuildGeometry()
		a.geometryDirty = false
	}
}

// rebuildGeometry groups the body's voxels by assigned bone and meshes
// each group independently, producing one Geometry per bone in
// bone-local grid space (spec.md §2: "rebuilds indexed geometry per
// bone"). Final posed vertex positions are produced on demand by
// PosedGeometry, which applies the bone's current world transform —
// re-meshing on every geometry dirty flag is cheap relative to
// re-skinning every vertex every frame, so topology rebuild and pose
// application are kept as separate steps.
func (a *Avatar) rebuildGeometry() {
	perBone := make(map[skeleton.BoneName]map[voxel.Key]uint8, len(skeleton.BoneOrder))
	palette := a.Body.Palette()
	overrides := a.Expr.Apply()

	a.Body.ForEachSorted(func(k voxel.Key, x, y, z int, paletteIndex uint8) {
		bone := a.regions.Assign(x, y, z)
		group, ok := perBone[bone]
		if !ok {
			group = make(map[voxel.Key]uint8)
			perBone[bone] = group
		}
		group[k] = resolvedPaletteIndex(overrides, k, paletteIndex)
	})

	// Expression keys with no base voxel are additive: once their weight
	// crosses the halfway point they render as a new voxel.
	for k, vw := range overrides {
		if _, present := a.Body.GetKey(k); present || vw.Weight < 0.5 {
			continue
		}
		x, y, z := voxel.Decode(k)
		bone := a.regions.Assign(x, y, z)
		group, ok := perBone[bone]
		if !ok {
			group = make(map[voxel.Key]uint8)
			perBone[bone] = group
		}
		group[k] = vw.PaletteIndex
	}

	neighborLookup := func(x, y, z int) (uint8, bool) {
		key, ok := voxel.TryEncode(x, y, z)
		if !ok {
			return 0, false
		}
		idx, present := a.Body.GetKey(key)
		if !present {
			return 0, false
		}
		return resolvedPaletteIndex(overrides, key, idx), true
	}

	geometries := make(map[skeleton.BoneName]*mesher.Geometry, len(perBone))
	for bone, voxels := range perBone {
		g := mesher.Mesh(mesher.Input{
			Voxels:         voxels,
			Palette:        palette,
			NeighborLookup: neighborLookup,
		}, mesher.DefaultOptions())
		if g != nil {
			geometries[bone] = g
		}
	}
	a.geometries = geometries
}

// resolvedPaletteIndex applies the ExpressionController's interpolated
// voxel overrides: a key whose cross-fade/blink weight has crossed the
// halfway point renders with the expression's palette index instead of
// the voxel's own.
func resolvedPaletteIndex(overrides map[voxel.Key]expression.VoxelWeight, k voxel.Key, base uint8) uint8 {
	if vw, ok := overrides[k]; ok && vw.Weight >= 0.5 {
		return vw.PaletteIndex
	}
	return base
}

// Geometry returns the last-built local-space geometry for a bone, or
// nil if that bone has no voxels.
func (a *Avatar) Geometry(bone skeleton.BoneName) *mesher.Geometry {
	return a.geometries[bone]
}

// PosedGeometry returns a copy of bone's geometry with every vertex
// position and normal transformed by the bone's current world rotation
// and position, ready for the host to upload and draw.
func (a *Avatar) PosedGeometry(bone skeleton.BoneName) *mesher.Geometry {
	g := a.geometries[bone]
	if g == nil {
		return nil
	}
	b := a.Skeleton.Bone(bone)
	posed := &mesher.Geometry{
		Vertices:    make([]float32, len(g.Vertices)),
		Indices:     g.Indices,
		VertexCount: g.VertexCount,
		IndexCount:  g.IndexCount,
	}
	copy(posed.Vertices, g.Vertices)
	for i := 0; i < g.VertexCount; i++ {
		base := i * mesher.VertexSize
		pos := mgl32.Vec3{posed.Vertices[base], posed.Vertices[base+1], posed.Vertices[base+2]}
		worldPos := b.WorldRotation.Rotate(pos.Sub(b.RestPosition)).Add(b.WorldPosition)
		posed.Vertices[base] = worldPos[0]
		posed.Vertices[base+1] = worldPos[1]
		posed.Vertices[base+2] = worldPos[2]

		normal := mgl32.Vec3{posed.Vertices[base+3], posed.Vertices[base+4], posed.Vertices[base+5]}
		rotatedNormal := b.WorldRotation.Rotate(normal)
		posed.Vertices[base+3] = rotatedNormal[0]
		posed.Vertices[base+4] = rotatedNormal[1]
		posed.Vertices[base+5] = rotatedNormal[2]
	}
	return posed
}

// Dispose releases the avatar's built geometry. Idempotent: calling it
// more than once, or on an already-empty Avatar, is a no-op.
func (a *Avatar) Dispose() {
	a.geometries = make(map[skeleton.BoneName]*mesher.Geometry)
	a.geometryDirty = true
}
