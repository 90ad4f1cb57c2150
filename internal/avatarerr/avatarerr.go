// Package avatarerr defines the closed set of expected failure modes from
// spec.md §7. None of these are panics: the module's expected failures
// return one of these sentinels (optionally wrapped with
// fmt.Errorf("...: %w", err)), to be compared with errors.Is. Gzip and
// JSON decoding failures and an unknown PVAV compression prefix are
// returned by internal/codec as errors that match none of them.
package avatarerr

import "errors"

var (
	// ErrInvalidPosition is returned when a voxel coordinate falls outside
	// the fixed [0,32)x[0,64)x[0,32) box.
	ErrInvalidPosition = errors.New("avatarerr: position out of bounds")

	// ErrInvalidPaletteIndex is returned when a palette index does not
	// name a slot in the palette.
	ErrInvalidPaletteIndex = errors.New("avatarerr: invalid palette index")

	// ErrPaletteFull is returned by Palette.Add when adding would exceed
	// the 16-slot limit.
	ErrPaletteFull = errors.New("avatarerr: palette is full")

	// ErrNameTooLong is returned when a name exceeds its field's byte cap.
	ErrNameTooLong = errors.New("avatarerr: name exceeds maximum length")

	// ErrSpringKeyConflict is returned when a voxel key is added to a
	// spring region it already belongs to via another region.
	ErrSpringKeyConflict = errors.New("avatarerr: voxel key already belongs to a spring region")

	// ErrBadMagic is returned when a PVAV container's magic bytes do not
	// match "PVAV".
	ErrBadMagic = errors.New("avatarerr: bad PVAV magic")

	// ErrUnsupportedVersion is returned when a container's major version
	// exceeds the implementation's.
	ErrUnsupportedVersion = errors.New("avatarerr: unsupported PVAV major version")

	// ErrTruncated is returned when a container ends before its declared
	// fields are fully read.
	ErrTruncated = errors.New("avatarerr: truncated PVAV container")
)
