// Package spring implements SpringBones: per-region Verlet-integrated
// physics chains that drive secondary motion (hair, tails, cloth) from
// a set of voxel keys, without skeletal skinning.
package spring

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"voxelavatar/internal/voxel"
)

const defaultTimeStep = 1.0 / 60.0

// Config tunes a Chain's global behavior, grouped the way the teacher
// groups tunables on EnhancedMovement.
type Config struct {
	TimeStep float32
	Gravity  mgl32.Vec3
}

// DefaultConfig returns spec.md §4.6's defaults.
func DefaultConfig() Config {
	return Config{
		TimeStep: defaultTimeStep,
		Gravity:  mgl32.Vec3{0, -9.8, 0},
	}
}

// Node is one chain segment (spec.md §3's SpringNode).
type Node struct {
	RestPosition     mgl32.Vec3
	CurrentPosition  mgl32.Vec3
	PreviousPosition mgl32.Vec3
	VoxelKeys        []voxel.Key
}

// Chain is one region's physics chain: a root anchored to a skeleton
// bone plus a sequence of integrated nodes.
type Chain struct {
	Name          string
	AttachedBone  string
	RootRest      mgl32.Vec3
	Nodes         []*Node
	Params        voxel.SpringParams
	keyToNodeIdx  map[voxel.Key]int
}

// SpringBones owns every region's chain and the shared wind vector
// (spec.md §4.6, §3 Ownership).
type SpringBones struct {
	config Config
	wind   mgl32.Vec3
	order  []string
	chains map[string]*Chain
}

// New builds an empty SpringBones simulation with the default config.
func New() *SpringBones {
	return &SpringBones{
		config: DefaultConfig(),
		chains: make(map[string]*Chain),
	}
}

// SetConfig replaces the global timestep/gravity configuration.
func (s *SpringBones) SetConfig(cfg Config) {
	s.config = cfg
}

// SetWind updates the global wind vector used by every chain's force
// term (spec.md §4.6).
func (s *SpringBones) SetWind(x, y, z float32) {
	s.wind = mgl32.Vec3{x, y, z}
}

// BindRegion constructs a chain from a spring region's voxel keys and an
// attachment bone's rest position, per spec.md §4.6's chain-construction
// algorithm: sort keys by Y descending, then split into a new segment
// whenever consecutive keys differ in Y by more than 2 voxels. Each
// segment's node position is its key centroid. The result replaces any
// existing chain of the same name.
func (s *SpringBones) BindRegion(region *voxel.SpringRegion, attachedBone string, boneRestPosition mgl32.Vec3) {
	keys := make([]voxel.Key, 0, len(region.VoxelKeys))
	for k := range region.VoxelKeys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		_, yi, _ := voxel.Decode(keys[i])
		_, yj, _ := voxel.Decode(keys[j])
		if yi != yj {
			return yi > yj
		}
		return keys[i] < keys[j]
	})

	var segments [][]voxel.Key
	var current []voxel.Key
	var lastY int
	for i, k := range keys {
		_, y, _ := voxel.Decode(k)
		if i == 0 {
			current = []voxel.Key{k}
			lastY = y
			continue
		}
		if lastY-y > 2 {
			segments = append(segments, current)
			current = nil
		}
		current = append(current, k)
		lastY = y
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}

	chain := &Chain{
		Name:         region.Name,
		AttachedBone: attachedBone,
		RootRest:     boneRestPosition,
		Params:       region.Params,
		keyToNodeIdx: make(map[voxel.Key]int, len(keys)),
	}
	for i, seg := range segments {
		centroid := centroidOf(seg)
		node := &Node{
			RestPosition:     centroid,
			CurrentPosition:  centroid,
			PreviousPosition: centroid,
			VoxelKeys:        seg,
		}
		chain.Nodes = append(chain.Nodes, node)
		for _, k := range seg {
			chain.keyToNodeIdx[k] = i
		}
	}

	if _, exists := s.chains[region.Name]; !exists {
		s.order = append(s.order, region.Name)
	}
	s.chains[region.Name] = chain
}

func centroidOf(keys []voxel.Key) mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, k := range keys {
		x, y, z := voxel.Decode(k)
		sum = sum.Add(mgl32.Vec3{float32(x), float32(y), float32(z)})
	}
	return sum.Mul(1.0 / float32(len(keys)))
}

// Integrate advances every chain by dt, given the current world
// transform of each chain's attachment bone. Chains with no nodes are
// silently skipped (spec.md §4.6 failure semantics).
func (s *SpringBones) Integrate(dt float32, boneWorldPosition map[string]mgl32.Vec3, boneWorldRotation map[string]mgl32.Quat) {
	maxDt := 3 * s.config.TimeStep
	if dt > maxDt {
		dt = maxDt
	}

	for _, name := range s.order {
		chain := s.chains[name]
		if len(chain.Nodes) == 0 {
			continue
		}

		boneWorldPos := boneWorldPosition[chain.AttachedBone]
		boneWorldRot := boneWorldRotation[chain.AttachedBone]

		rootOffset := boneWorldRot.Rotate(chain.Nodes[0].RestPosition.Sub(chain.RootRest))
		root := chain.Nodes[0]
		rootTarget := boneWorldPos.Add(rootOffset)
		root.PreviousPosition = root.CurrentPosition
		root.CurrentPosition = rootTarget

		force := s.config.Gravity.Mul(chain.Params.GravityFactor).Add(s.wind)

		for i := 1; i < len(chain.Nodes); i++ {
			node := chain.Nodes[i]
			parent := chain.Nodes[i-1]

			velocity := node.CurrentPosition.Sub(node.PreviousPosition).Mul(1 - chain.Params.Damping)
			previous := node.CurrentPosition
			node.CurrentPosition = node.CurrentPosition.Add(velocity).Add(force.Mul(dt * dt))
			node.PreviousPosition = previous

			target := node.RestPosition.Sub(parent.RestPosition).Len()
			delta := node.CurrentPosition.Sub(parent.CurrentPosition)
			actual := delta.Len()
			const epsilon = 1e-6
			if actual > epsilon {
				correctionMag := (actual - target) / actual * chain.Params.Stiffness
				node.CurrentPosition = node.CurrentPosition.Sub(delta.Mul(correctionMag))
			}
		}
	}
}

// Reset snaps every chain's nodes back to rest position with zero
// implicit velocity.
func (s *SpringBones) Reset() {
	for _, chain := range s.chains {
		for _, node := range chain.Nodes {
			node.CurrentPosition = node.RestPosition
			node.PreviousPosition = node.RestPosition
		}
	}
}

// TransformedVoxelPosition returns the world position of the voxel at
// key, computed from the node that owns it: node.currentPosition plus
// the voxel's rest offset from that node's rest position (spec.md
// §4.6's skinned readout). The second return is false if no chain owns
// the key.
func (s *SpringBones) TransformedVoxelPosition(key voxel.Key) (mgl32.Vec3, bool) {
	for _, name := range s.order {
		chain := s.chains[name]
		idx, ok := chain.keyToNodeIdx[key]
		if !ok {
			continue
		}
		node := chain.Nodes[idx]
		x, y, z := voxel.Decode(key)
		voxelRest := mgl32.Vec3{float32(x), float32(y), float32(z)}
		return node.CurrentPosition.Add(voxelRest.Sub(node.RestPosition)), true
	}
	return mgl32.Vec3{}, false
}

// Chain returns the named chain, or nil if no region of that name is
// bound.
func (s *SpringBones) Chain(name string) *Chain {
	return s.chains[name]
}
