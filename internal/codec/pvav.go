// Package codec implements the PVAV binary container (spec.md §4.3, §6):
// a length-prefixed header, metadata, palette, RLE-encoded voxel runs,
// optional expression deltas and spring regions, with an optional single
// gzip-wrap byte. A field-named JSON variant (json.go) mirrors the same
// data for debugging.
//
// Nothing in the example corpus hand-rolls a binary TLV/RLE container (the
// teacher persists state as indented JSON via encoding/json — see
// internal/save/manager.go); encoding/binary and compress/gzip are used
// here because no pack dependency offers this kind of codec.
package codec

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"voxelavatar/internal/avatarerr"
	"voxelavatar/internal/voxel"
)

const (
	magic          = "PVAV"
	currentVersion = 1
	headerSize     = 16

	flagHasExpressions  = 1 << 0
	flagHasSpringRegions = 1 << 1
)

// Options controls serialization behavior.
type Options struct {
	// Gzip wraps the PVAV blob behind a single-byte 0x00/0x01 prefix when
	// true (spec.md §4.3 step 5).
	Gzip bool
}

// run is one RLE-encoded span of same-palette-index, contiguous-key
// voxels.
type run struct {
	startKey     voxel.Key
	paletteIndex uint8
	length       uint8
}

// Serialize encodes body into a PVAV container per spec.md §4.3/§6.
func Serialize(body *voxel.VoxelBody, opts Options) ([]byte, error) {
	var buf bytes.Buffer

	flags := byte(0)
	if len(body.ExpressionNames()) > 0 {
		flags |= flagHasExpressions
	}
	springs := body.SpringRegionsInOrder()
	if len(springs) > 0 {
		flags |= flagHasSpringRegions
	}

	runs := buildRuns(body)
	meta := body.Metadata()
	palette := body.Palette()

	header := make([]byte, headerSize)
	copy(header[0:4], magic)
	header[4] = currentVersion
	header[5] = flags
	binary.LittleEndian.PutUint16(header[6:8], uint16(body.Len()))
	header[8] = byte(palette.Size())
	header[9] = byte(len(body.ExpressionNames()))
	header[10] = byte(len(springs))
	header[11] = byte(body.RenderMode())
	// bytes 12..16 reserved, left zero
	buf.Write(header)

	if err := writeLenPrefixedString(&buf, meta.Name, 255); err != nil {
		return nil, err
	}
	if err := writeLenPrefixedString(&buf, meta.CreatorID, 255); err != nil {
		return nil, err
	}
	writeU64(&buf, uint64(meta.CreatedAt.Unix()))
	writeU64(&buf, uint64(meta.ModifiedAt.Unix()))

	buf.Write(palette.ToBinary())

	binary.Write(&buf, binary.LittleEndian, uint16(len(runs)))
	for _, r := range runs {
		binary.Write(&buf, binary.LittleEndian, r.startKey)
		buf.WriteByte(r.paletteIndex)
		buf.WriteByte(r.length)
	}

	if flags&flagHasExpressions != 0 {
		names := body.ExpressionNamesInOrder()
		for _, name := range names {
			delta, _ := body.GetExpression(name)
			if err := writeLenPrefixedString(&buf, name, 32); err != nil {
				return nil, err
			}
			binary.Write(&buf, binary.LittleEndian, uint16(len(delta)))
			for _, k := range sortedKeys(delta) {
				binary.Write(&buf, binary.LittleEndian, k)
				buf.WriteByte(delta[k])
			}
		}
	}

	if flags&flagHasSpringRegions != 0 {
		for _, region := range springs {
			if err := writeLenPrefixedString(&buf, region.Name, 32); err != nil {
				return nil, err
			}
			writeF32(&buf, region.Params.Stiffness)
			writeF32(&buf, region.Params.Damping)
			writeF32(&buf, region.Params.GravityFactor)
			keys := make([]voxel.Key, 0, len(region.VoxelKeys))
			for k := range region.VoxelKeys {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
			binary.Write(&buf, binary.LittleEndian, uint16(len(keys)))
			for _, k := range keys {
				binary.Write(&buf, binary.LittleEndian, k)
			}
		}
	}

	payload := buf.Bytes()
	if !opts.Gzip {
		return append([]byte{0x00}, payload...), nil
	}

	var gzBuf bytes.Buffer
	zw := gzip.NewWriter(&gzBuf)
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("codec: gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("codec: gzip close: %w", err)
	}
	return append([]byte{0x01}, gzBuf.Bytes()...), nil
}

// Deserialize decodes a PVAV container produced by Serialize. All failures
// are fatal for the whole container — there is no partial recovery
// (spec.md §4.3).
func Deserialize(data []byte) (*voxel.VoxelBody, error) {
	if len(data) < 1 {
		return nil, avatarerr.ErrTruncated
	}
	prefix, rest := data[0], data[1:]
	switch prefix {
	case 0x00:
		// uncompressed
	case 0x01:
		zr, err := gzip.NewReader(bytes.NewReader(rest))
		if err != nil {
			return nil, fmt.Errorf("codec: gzip reader: %w", err)
		}
		decompressed, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("codec: gzip read: %w", err)
		}
		rest = decompressed
	default:
		return nil, fmt.Errorf("codec: unknown compression prefix %d", prefix)
	}

	r := bytes.NewReader(rest)
	if r.Len() < headerSize {
		return nil, avatarerr.ErrTruncated
	}
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, avatarerr.ErrTruncated
	}
	if string(header[0:4]) != magic {
		return nil, avatarerr.ErrBadMagic
	}
	version := header[4]
	if version > currentVersion {
		return nil, avatarerr.ErrUnsupportedVersion
	}
	flags := header[5]
	paletteSize := int(header[8])
	expressionCount := int(header[9])
	springRegionCount := int(header[10])
	renderMode := voxel.RenderMode(header[11])

	name, err := readLenPrefixedString(r)
	if err != nil {
		return nil, err
	}
	creator, err := readLenPrefixedString(r)
	if err != nil {
		return nil, err
	}
	createdAt, err := readU64(r)
	if err != nil {
		return nil, err
	}
	modifiedAt, err := readU64(r)
	if err != nil {
		return nil, err
	}

	paletteBytes := make([]byte, paletteSize*4)
	if _, err := io.ReadFull(r, paletteBytes); err != nil {
		return nil, avatarerr.ErrTruncated
	}
	palette, err := voxel.PaletteFromBinary(paletteBytes)
	if err != nil {
		return nil, err
	}

	body := voxel.New(name)
	if err := body.SetMetadata(name, creator); err != nil {
		return nil, err
	}
	body.SetTimestamps(unixUTC(createdAt), unixUTC(modifiedAt))
	body.SetRenderMode(renderMode)
	for i := 0; i < palette.Size(); i++ {
		c, _ := palette.Get(i)
		if _, err := body.Palette().Add(c.R, c.G, c.B, c.Type); err != nil {
			return nil, err
		}
	}

	runCount, err := readU16(r)
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(runCount); i++ {
		startKey, err := readU16(r)
		if err != nil {
			return nil, err
		}
		idxByte, err := r.ReadByte()
		if err != nil {
			return nil, avatarerr.ErrTruncated
		}
		length, err := r.ReadByte()
		if err != nil {
			return nil, avatarerr.ErrTruncated
		}
		if int(idxByte) >= body.Palette().Size() {
			return nil, avatarerr.ErrInvalidPaletteIndex
		}
		for off := 0; off < int(length); off++ {
			k := startKey + voxel.Key(off)
			if err := body.SetKey(k, idxByte); err != nil {
				return nil, err
			}
		}
	}

	if flags&flagHasExpressions != 0 {
		for i := 0; i < expressionCount; i++ {
			expName, err := readLenPrefixedString(r)
			if err != nil {
				return nil, err
			}
			deltaCount, err := readU16(r)
			if err != nil {
				return nil, err
			}
			delta := make(map[voxel.Key]uint8, deltaCount)
			for j := 0; j < int(deltaCount); j++ {
				k, err := readU16(r)
				if err != nil {
					return nil, err
				}
				idx, err := r.ReadByte()
				if err != nil {
					return nil, avatarerr.ErrTruncated
				}
				delta[k] = idx
			}
			if err := body.SetExpression(expName, delta); err != nil {
				return nil, err
			}
		}
	}

	if flags&flagHasSpringRegions != 0 {
		for i := 0; i < springRegionCount; i++ {
			regionName, err := readLenPrefixedString(r)
			if err != nil {
				return nil, err
			}
			stiffness, err := readF32(r)
			if err != nil {
				return nil, err
			}
			damping, err := readF32(r)
			if err != nil {
				return nil, err
			}
			gravity, err := readF32(r)
			if err != nil {
				return nil, err
			}
			voxelCount, err := readU16(r)
			if err != nil {
				return nil, err
			}
			keys := make(map[voxel.Key]struct{}, voxelCount)
			for j := 0; j < int(voxelCount); j++ {
				k, err := readU16(r)
				if err != nil {
					return nil, err
				}
				keys[k] = struct{}{}
			}
			region := &voxel.SpringRegion{
				Name:      regionName,
				VoxelKeys: keys,
				Params: voxel.SpringParams{
					Stiffness:     stiffness,
					Damping:       damping,
					GravityFactor: gravity,
				},
			}
			if err := body.AddSpringRegion(region); err != nil {
				return nil, err
			}
		}
	}

	return body, nil
}

// buildRuns sorts voxels per (y,x,z) and greedily merges contiguous,
// same-palette-index spans into RLE runs (spec.md §4.3 step 3).
func buildRuns(body *voxel.VoxelBody) []run {
	var runs []run
	var cur *run

	body.ForEachSorted(func(k voxel.Key, x, y, z int, idx uint8) {
		if cur != nil &&
			idx == cur.paletteIndex &&
			k == cur.startKey+voxel.Key(cur.length) &&
			cur.length < 255 {
			cur.length++
			return
		}
		if cur != nil {
			runs = append(runs, *cur)
		}
		cur = &run{startKey: k, paletteIndex: idx, length: 1}
	})
	if cur != nil {
		runs = append(runs, *cur)
	}
	return runs
}

func sortedKeys(m map[voxel.Key]uint8) []voxel.Key {
	keys := make([]voxel.Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func writeLenPrefixedString(buf *bytes.Buffer, s string, maxLen int) error {
	if len(s) > maxLen {
		return avatarerr.ErrNameTooLong
	}
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
	return nil
}

func readLenPrefixedString(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", avatarerr.ErrTruncated
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", avatarerr.ErrTruncated
	}
	return string(data), nil
}

// writeU64 splits v into hi/lo uint32 halves, each little-endian, matching
// spec.md §6's "u64 LE split as hi:lo u32" field layout.
func writeU64(buf *bytes.Buffer, v uint64) {
	hi := uint32(v >> 32)
	lo := uint32(v)
	binary.Write(buf, binary.LittleEndian, hi)
	binary.Write(buf, binary.LittleEndian, lo)
}

func readU64(r *bytes.Reader) (int64, error) {
	var hi, lo uint32
	if err := binary.Read(r, binary.LittleEndian, &hi); err != nil {
		return 0, avatarerr.ErrTruncated
	}
	if err := binary.Read(r, binary.LittleEndian, &lo); err != nil {
		return 0, avatarerr.ErrTruncated
	}
	return int64(uint64(hi)<<32 | uint64(lo)), nil
}

func readU16(r *bytes.Reader) (uint16, error) {
	var v uint16
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, avatarerr.ErrTruncated
	}
	return v, nil
}

func writeF32(buf *bytes.Buffer, v float32) {
	binary.Write(buf, binary.LittleEndian, v)
}

func readF32(r *bytes.Reader) (float32, error) {
	var v float32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, avatarerr.ErrTruncated
	}
	return v, nil
}
