// Package mathutil provides small numeric helpers shared across the avatar
// runtime: clamping, interpolation, and a deterministic seeded RNG.
package mathutil

import "math"

// Clamp restricts value between min and max.
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Clamp32 is the float32 variant of Clamp.
func Clamp32(value, min, max float32) float32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Lerp32 is the float32 variant of Lerp.
func Lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Smoothstep performs smooth cubic interpolation, clamped to [0,1] on input.
func Smoothstep(edge0, edge1, x float64) float64 {
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Smoothstep01 applies Smoothstep over the fixed [0,1] domain.
func Smoothstep01(x float64) float64 {
	return Smoothstep(0, 1, x)
}

// Smootherstep performs even smoother (quintic) interpolation.
func Smootherstep(edge0, edge1, x float64) float64 {
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * t * (t*(t*6-15) + 10)
}

// Mod performs modulo that works correctly with negative integers.
func Mod(n, m int) int {
	return ((n % m) + m) % m
}

// ModFloat performs modulo for float64 that works correctly with negatives.
func ModFloat(n, m float64) float64 {
	return math.Mod(math.Mod(n, m)+m, m)
}

// ModFloat32 is the float32 variant of ModFloat.
func ModFloat32(n, m float32) float32 {
	return float32(ModFloat(float64(n), float64(m)))
}
