package codec

import (
	"encoding/json"
	"sort"
	"time"

	"voxelavatar/internal/voxel"
)

func unixUTC(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// jsonSpringRegion mirrors voxel.SpringRegion with a JSON-friendly key
// list instead of a set.
type jsonSpringRegion struct {
	Name      string       `json:"name"`
	VoxelKeys []voxel.Key  `json:"voxelKeys"`
	Params    jsonSpringParams `json:"params"`
}

type jsonSpringParams struct {
	Stiffness     float32 `json:"stiffness"`
	Damping       float32 `json:"damping"`
	GravityFactor float32 `json:"gravityFactor"`
}

// jsonBody is the field-named, uncompressed debug representation of a
// VoxelBody, equivalent to the binary PVAV layout (spec.md §4.3). It
// mirrors the teacher's save.SaveData: a plain struct marshaled with
// encoding/json.
type jsonBody struct {
	ID         string                      `json:"id"`
	Name       string                      `json:"name"`
	CreatorID  string                      `json:"creatorId,omitempty"`
	CreatedAt  int64                       `json:"createdAt"`
	ModifiedAt int64                       `json:"modifiedAt"`
	RenderMode uint8                       `json:"renderMode"`
	Palette    []voxel.Color               `json:"palette"`
	Voxels     map[voxel.Key]uint8         `json:"voxels"`
	Expressions map[string]map[voxel.Key]uint8 `json:"expressions,omitempty"`
	SpringRegions []jsonSpringRegion       `json:"springRegions,omitempty"`
}

// ToJSON encodes body as the field-named debug representation.
func ToJSON(body *voxel.VoxelBody) ([]byte, error) {
	meta := body.Metadata()
	jb := jsonBody{
		ID:         meta.ID,
		Name:       meta.Name,
		CreatorID:  meta.CreatorID,
		CreatedAt:  meta.CreatedAt.Unix(),
		ModifiedAt: meta.ModifiedAt.Unix(),
		RenderMode: uint8(body.RenderMode()),
		Palette:    body.Palette().All(),
		Voxels:     make(map[voxel.Key]uint8),
	}
	body.ForEachSorted(func(k voxel.Key, x, y, z int, idx uint8) {
		jb.Voxels[k] = idx
	})

	names := body.ExpressionNames()
	sort.Strings(names)
	if len(names) > 0 {
		jb.Expressions = make(map[string]map[voxel.Key]uint8, len(names))
		for _, n := range names {
			delta, _ := body.GetExpression(n)
			jb.Expressions[n] = delta
		}
	}

	for _, r := range body.SpringRegionsInOrder() {
		keys := make([]voxel.Key, 0, len(r.VoxelKeys))
		for k := range r.VoxelKeys {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		jb.SpringRegions = append(jb.SpringRegions, jsonSpringRegion{
			Name:      r.Name,
			VoxelKeys: keys,
			Params: jsonSpringParams{
				Stiffness:     r.Params.Stiffness,
				Damping:       r.Params.Damping,
				GravityFactor: r.Params.GravityFactor,
			},
		})
	}

	return json.MarshalIndent(jb, "", "  ")
}

// FromJSON decodes a ToJSON-produced document back into a VoxelBody.
func FromJSON(data []byte) (*voxel.VoxelBody, error) {
	var jb jsonBody
	if err := json.Unmarshal(data, &jb); err != nil {
		return nil, err
	}

	body := voxel.New(jb.Name)
	if err := body.SetMetadata(jb.Name, jb.CreatorID); err != nil {
		return nil, err
	}
	body.SetTimestamps(unixUTC(jb.CreatedAt), unixUTC(jb.ModifiedAt))
	body.SetRenderMode(voxel.RenderMode(jb.RenderMode))

	for _, c := range jb.Palette {
		if _, err := body.Palette().Add(c.R, c.G, c.B, c.Type); err != nil {
			return nil, err
		}
	}
	for k, idx := range jb.Voxels {
		if err := body.SetKey(k, idx); err != nil {
			return nil, err
		}
	}
	for name, delta := range jb.Expressions {
		if err := body.SetExpression(name, delta); err != nil {
			return nil, err
		}
	}
	for _, r := range jb.SpringRegions {
		keys := make(map[voxel.Key]struct{}, len(r.VoxelKeys))
		for _, k := range r.VoxelKeys {
			keys[k] = struct{}{}
		}
		region := &voxel.SpringRegion{
			Name:      r.Name,
			VoxelKeys: keys,
			Params: voxel.SpringParams{
				Stiffness:     r.Params.Stiffness,
				Damping:       r.Params.Damping,
				GravityFactor: r.Params.GravityFactor,
			},
		}
		if err := body.AddSpringRegion(region); err != nil {
			return nil, err
		}
	}

	return body, nil
}
