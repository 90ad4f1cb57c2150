package voxel

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for x := 0; x < SizeX; x += 3 {
		for y := 0; y < SizeY; y += 5 {
			for z := 0; z < SizeZ; z += 3 {
				k := Encode(x, y, z)
				gx, gy, gz := Decode(k)
				if gx != x || gy != y || gz != z {
					t.Fatalf("decode(encode(%d,%d,%d)) = (%d,%d,%d)", x, y, z, gx, gy, gz)
				}
			}
		}
	}
}

func TestDecodeEncodeRoundTripAllKeys(t *testing.T) {
	for k := 0; k < MaxVoxels; k += 97 {
		x, y, z := Decode(Key(k))
		if Encode(x, y, z) != Key(k) {
			t.Fatalf("encode(decode(%d)) != %d", k, k)
		}
	}
	// Boundary keys explicitly.
	for _, k := range []int{0, MaxVoxels - 1} {
		x, y, z := Decode(Key(k))
		if Encode(x, y, z) != Key(k) {
			t.Fatalf("encode(decode(%d)) != %d", k, k)
		}
	}
}

func TestInBounds(t *testing.T) {
	if !InBounds(0, 0, 0) {
		t.Fatal("origin should be in bounds")
	}
	if InBounds(-1, 0, 0) || InBounds(32, 0, 0) || InBounds(0, 64, 0) || InBounds(0, 0, 32) {
		t.Fatal("out-of-range coordinates should not be in bounds")
	}
}
