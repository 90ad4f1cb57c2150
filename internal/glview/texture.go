package glview

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"voxelavatar/internal/voxel"
)

// PaletteTexture uploads a Palette's colors as a 1D RGBA texture indexed
// by palette index, adapted from the teacher's block texture array
// loader (one slot per entry instead of one layer per block face).
type PaletteTexture struct {
	ID   uint32
	Size int32
}

// UploadPalette builds a 1D texture from p, one RGBA texel per palette
// entry.
func UploadPalette(p *voxel.Palette) *PaletteTexture {
	colors := p.All()
	pixels := make([]uint8, len(colors)*4)
	for i, c := range colors {
		pixels[i*4+0] = c.R
		pixels[i*4+1] = c.G
		pixels[i*4+2] = c.B
		pixels[i*4+3] = 255
	}

	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_1D, textureID)
	gl.TexImage1D(gl.TEXTURE_1D, 0, gl.RGBA, int32(len(colors)), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.TexParameteri(gl.TEXTURE_1D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_1D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_1D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)

	return &PaletteTexture{ID: textureID, Size: int32(len(colors))}
}

// Bind activates the palette texture on the given texture unit.
func (t *PaletteTexture) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_1D, t.ID)
}

// Delete releases the texture.
func (t *PaletteTexture) Delete() {
	if t.ID != 0 {
		gl.DeleteTextures(1, &t.ID)
		t.ID = 0
	}
}
