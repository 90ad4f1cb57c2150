// Command avatarview is a minimal demo viewer: it builds a small blocky
// humanoid VoxelBody, drives it through Avatar.Update every frame, and
// draws the posed per-bone geometry with glview.
package main

import (
	"voxelavatar/internal/voxel"
)

// buildDemoBody fills a simple blocky humanoid into a fresh VoxelBody,
// spanning the region bands the skeleton's RegionMapper expects (head
// near y=56-63, torso down through y=34-51, legs down to y=0), so the
// demo avatar exercises every bone instead of sitting at rest with no
// geometry.
func buildDemoBody() (*voxel.VoxelBody, error) {
	b := voxel.New("avatarview-demo")
	p := b.Palette()

	skin, err := p.Add(224, 172, 132, voxel.Solid)
	if err != nil {
		return nil, err
	}
	shirt, err := p.Add(60, 90, 160, voxel.Solid)
	if err != nil {
		return nil, err
	}
	pants, err := p.Add(50, 50, 60, voxel.Solid)
	if err != nil {
		return nil, err
	}
	hair, err := p.Add(40, 26, 18, voxel.Solid)
	if err != nil {
		return nil, err
	}
	eyeClosed, err := p.Add(0, 0, 0, voxel.Solid)
	if err != nil {
		return nil, err
	}
	smile, err := p.Add(200, 40, 40, voxel.Solid)
	if err != nil {
		return nil, err
	}

	fillBox := func(x0, x1, y0, y1, z0, z1 int, idx uint8) error {
		for x := x0; x < x1; x++ {
			for y := y0; y < y1; y++ {
				for z := z0; z < z1; z++ {
					if err := b.Set(x, y, z, idx); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}

	// head (56-63)
	if err := fillBox(12, 20, 56, 64, 12, 20, uint8(skin)); err != nil {
		return nil, err
	}
	// neck/chest/spine/hips torso (34-55)
	if err := fillBox(13, 19, 44, 56, 14, 18, uint8(shirt)); err != nil {
		return nil, err
	}
	if err := fillBox(13, 19, 34, 44, 14, 18, uint8(pants)); err != nil {
		return nil, err
	}
	// hair cap on top of head
	if err := fillBox(12, 20, 61, 64, 12, 20, uint8(hair)); err != nil {
		return nil, err
	}
	// arms: left band is x 26-31, right band is x 0-5, y 44-55 (regions.go
	// band config), so these actually land on the arm bones instead of
	// falling back to the torso.
	if err := fillBox(26, 31, 44, 56, 14, 18, uint8(skin)); err != nil {
		return nil, err
	}
	if err := fillBox(0, 6, 44, 56, 14, 18, uint8(skin)); err != nil {
		return nil, err
	}
	// legs (0-33)
	if err := fillBox(13, 16, 0, 34, 14, 18, uint8(pants)); err != nil {
		return nil, err
	}
	if err := fillBox(16, 19, 0, 34, 14, 18, uint8(pants)); err != nil {
		return nil, err
	}

	if err := b.SetExpression("neutral", map[voxel.Key]uint8{}); err != nil {
		return nil, err
	}

	blinkDelta := make(map[voxel.Key]uint8)
	smileDelta := make(map[voxel.Key]uint8)
	for z := 17; z < 20; z++ {
		k, ok := voxel.TryEncode(14, 59, z)
		if ok {
			blinkDelta[k] = uint8(eyeClosed)
		}
		k, ok = voxel.TryEncode(18, 59, z)
		if ok {
			blinkDelta[k] = uint8(eyeClosed)
		}
		k, ok = voxel.TryEncode(16, 57, z)
		if ok {
			smileDelta[k] = uint8(smile)
		}
	}
	if err := b.SetExpression("blink", blinkDelta); err != nil {
		return nil, err
	}
	if err := b.SetExpression("smile", smileDelta); err != nil {
		return nil, err
	}

	return b, nil
}
