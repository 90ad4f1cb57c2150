package voxel

import "voxelavatar/internal/avatarerr"

// MaxPaletteSize is the fixed 16-slot cap, per spec.md §3.
const MaxPaletteSize = 16

// Palette is an ordered, ≤16-entry indexed color table. It is owned data
// per VoxelBody (spec.md §3), not a shared global registry — contrast the
// teacher's package-level block.Registry map.
type Palette struct {
	colors []Color
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{colors: make([]Color, 0, MaxPaletteSize)}
}

// Size returns the number of populated slots.
func (p *Palette) Size() int {
	return len(p.colors)
}

// Add appends a color, returning its index. Fails with ErrPaletteFull once
// 16 slots are occupied.
func (p *Palette) Add(r, g, b uint8, t ColorType) (int, error) {
	if len(p.colors) >= MaxPaletteSize {
		return 0, avatarerr.ErrPaletteFull
	}
	p.colors = append(p.colors, Color{R: r, G: g, B: b, Type: t})
	return len(p.colors) - 1, nil
}

// Set overwrites an existing slot in place.
func (p *Palette) Set(i int, r, g, b uint8, t ColorType) error {
	if i < 0 || i >= len(p.colors) {
		return avatarerr.ErrInvalidPaletteIndex
	}
	p.colors[i] = Color{R: r, G: g, B: b, Type: t}
	return nil
}

// Get returns the color at i.
func (p *Palette) Get(i int) (Color, error) {
	if i < 0 || i >= len(p.colors) {
		return Color{}, avatarerr.ErrInvalidPaletteIndex
	}
	return p.colors[i], nil
}

// All returns the palette's colors in index order. The returned slice is a
// copy; mutating it does not affect the palette.
func (p *Palette) All() []Color {
	out := make([]Color, len(p.colors))
	copy(out, p.colors)
	return out
}

// FindClosest returns the index of the color minimizing squared Euclidean
// distance in RGB space to (r,g,b). Returns false if the palette is empty.
func (p *Palette) FindClosest(r, g, b uint8) (int, bool) {
	if len(p.colors) == 0 {
		return 0, false
	}
	best := 0
	bestDist := rgbDistSq(p.colors[0], r, g, b)
	for i := 1; i < len(p.colors); i++ {
		d := rgbDistSq(p.colors[i], r, g, b)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best, true
}

func rgbDistSq(c Color, r, g, b uint8) int {
	dr := int(c.R) - int(r)
	dg := int(c.G) - int(g)
	db := int(c.B) - int(b)
	return dr*dr + dg*dg + db*db
}

// ToBinary packs the palette as 4 bytes per color (r,g,b,type), in index
// order — the on-disk layout spec.md §6 requires.
func (p *Palette) ToBinary() []byte {
	out := make([]byte, 0, len(p.colors)*4)
	for _, c := range p.colors {
		out = append(out, c.R, c.G, c.B, byte(c.Type))
	}
	return out
}

// PaletteFromBinary decodes a ToBinary-produced byte slice back into a
// Palette.
func PaletteFromBinary(data []byte) (*Palette, error) {
	if len(data)%4 != 0 {
		return nil, avatarerr.ErrTruncated
	}
	p := NewPalette()
	for i := 0; i+4 <= len(data); i += 4 {
		if _, err := p.Add(data[i], data[i+1], data[i+2], ColorType(data[i+3])); err != nil {
			return nil, err
		}
	}
	return p, nil
}
