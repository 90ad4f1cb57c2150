package skeleton

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ExportVRM builds a minimal VRM-shaped glTF document containing only the
// skeleton's node hierarchy and skin: one node per bone (named after its
// BoneName, parented per the bone tree, positioned at its rest offset from
// its parent) plus one Skin whose joints list is BoneOrder and whose
// inverse bind matrices are the rest-pose inverse world transforms. Callers
// that also need geometry attach meshes to these nodes themselves; this
// function only establishes the humanoid rig, which is what a VRM consumer
// keys off of (spec.md §4.5's VRM-compatible bone naming).
func (s *Skeleton) ExportVRM() *gltf.Document {
	doc := gltf.NewDocument()
	doc.Scenes = []*gltf.Scene{{}}
	doc.Scene = gltf.Index(0)

	nodeIndex := make(map[BoneName]uint32, len(BoneOrder))
	for i, name := range BoneOrder {
		b := s.bones[name]
		translation := [3]float32{0, 0, 0}
		if b.HasParent {
			parent := s.bones[b.Parent]
			delta := b.RestPosition.Sub(parent.RestPosition)
			translation = [3]float32{delta[0], delta[1], delta[2]}
		} else {
			translation = [3]float32{b.RestPosition[0], b.RestPosition[1], b.RestPosition[2]}
		}
		node := &gltf.Node{
			Name:        string(name),
			Translation: translation,
			Rotation:    [4]float32{0, 0, 0, 1},
			Scale:       [3]float32{1, 1, 1},
		}
		idx := uint32(i)
		nodeIndex[name] = idx
		doc.Nodes = append(doc.Nodes, node)
	}

	for _, name := range BoneOrder {
		b := s.bones[name]
		if !b.HasParent {
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, nodeIndex[name])
			continue
		}
		parentNode := doc.Nodes[nodeIndex[b.Parent]]
		parentNode.Children = append(parentNode.Children, nodeIndex[name])
	}

	joints := make([]uint32, len(BoneOrder))
	ibms := make([]float32, 0, 16*len(BoneOrder))
	for i, name := range BoneOrder {
		joints[i] = nodeIndex[name]
		ibms = append(ibms, inverseBindMatrix(s.bones[name].RestPosition)...)
	}
	ibmAccessor := modeler.WriteAccessor(doc, gltf.TargetNone, ibms)
	doc.Accessors[ibmAccessor].Type = gltf.AccessorMat4

	doc.Skins = append(doc.Skins, &gltf.Skin{
		Name:                "humanoidSkin",
		Joints:              joints,
		InverseBindMatrices: gltf.Index(ibmAccessor),
	})

	return doc
}

// inverseBindMatrix builds the inverse of a bone's rest-pose world
// translation matrix (rotation is identity at rest, spec.md §4.5), as 16
// column-major floats, the flattened form modeler.WriteAccessor expects.
func inverseBindMatrix(restPosition mgl32.Vec3) []float32 {
	return []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		-restPosition[0], -restPosition[1], -restPosition[2], 1,
	}
}
