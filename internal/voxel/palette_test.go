package voxel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelavatar/internal/avatarerr"
)

func TestPaletteAddAndFull(t *testing.T) {
	p := NewPalette()
	for i := 0; i < MaxPaletteSize; i++ {
		idx, err := p.Add(uint8(i), 0, 0, Solid)
		require.NoError(t, err)
		require.Equal(t, i, idx)
	}
	_, err := p.Add(1, 2, 3, Solid)
	require.ErrorIs(t, err, avatarerr.ErrPaletteFull)
}

func TestPaletteFindClosest(t *testing.T) {
	p := NewPalette()
	_, _ = p.Add(255, 0, 0, Solid)
	_, _ = p.Add(0, 255, 0, Solid)
	_, _ = p.Add(0, 0, 255, Solid)

	idx, ok := p.FindClosest(250, 10, 5)
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

func TestPaletteBinaryRoundTrip(t *testing.T) {
	p := NewPalette()
	_, _ = p.Add(10, 20, 30, Solid)
	_, _ = p.Add(40, 50, 60, Emissive)

	data := p.ToBinary()
	require.Len(t, data, 8)

	p2, err := PaletteFromBinary(data)
	require.NoError(t, err)
	require.Equal(t, p.All(), p2.All())
}

func TestPaletteGetInvalidIndex(t *testing.T) {
	p := NewPalette()
	_, err := p.Get(0)
	require.Error(t, err)
}
