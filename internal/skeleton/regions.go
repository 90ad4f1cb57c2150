package skeleton

// yBands lists the non-arm Y bands in descending order, since
// RegionMapper.Assign descends from head to toes (spec.md §4.4 rule 3).
// Leg/foot/toes bands are resolved per-side by the caller.
var yBands = []struct {
	minY, maxYEx int
	name         string // "head", "neck", ... "toes"
}{
	{56, 64, "head"},
	{52, 56, "neck"},
	{44, 52, "chest"},
	{38, 44, "spine"},
	{34, 38, "hips"},
	{20, 34, "upperLeg"},
	{6, 20, "lowerLeg"},
	{3, 6, "foot"},
	{0, 3, "toes"},
}

const (
	rightArmXMin, rightArmXMaxEx = 0, 6
	leftArmXMin, leftArmXMaxEx   = 26, 32
	armYMin, armYMaxEx           = 44, 56
	midlineX                     = 16
)

// BandConfig holds the arm-band bounds RegionMapper uses; the Y-band table
// itself is fixed (spec.md §6) and lives in the package-level yBands
// slice. Replacing a mapper's config invalidates its assignment cache
// (spec.md §4.4).
type BandConfig struct {
	ArmYMin      int
	ArmYMaxEx    int
	RightArmXMin int
	RightArmXMaxEx int
	LeftArmXMin  int
	LeftArmXMaxEx int
	MidlineX     int
}

// DefaultBandConfig returns the band table fixed by spec.md §6.
func DefaultBandConfig() BandConfig {
	return BandConfig{
		ArmYMin: armYMin, ArmYMaxEx: armYMaxEx,
		RightArmXMin: rightArmXMin, RightArmXMaxEx: rightArmXMaxEx,
		LeftArmXMin: leftArmXMin, LeftArmXMaxEx: leftArmXMaxEx,
		MidlineX: midlineX,
	}
}

// RegionMapper assigns one primary bone name to every voxel position,
// cached by (x,y,z) position (spec.md §4.4).
type RegionMapper struct {
	config BandConfig
	cache  map[[3]int]BoneName
}

// NewRegionMapper builds a mapper using the default band config.
func NewRegionMapper() *RegionMapper {
	return &RegionMapper{
		config: DefaultBandConfig(),
		cache:  make(map[[3]int]BoneName),
	}
}

// SetBandConfig replaces the band tables and invalidates the cache.
func (m *RegionMapper) SetBandConfig(cfg BandConfig) {
	m.config = cfg
	m.cache = make(map[[3]int]BoneName)
}

// Assign returns the primary bone for (x,y,z), first-match-wins per
// spec.md §4.4's three rules.
func (m *RegionMapper) Assign(x, y, z int) BoneName {
	key := [3]int{x, y, z}
	if cached, ok := m.cache[key]; ok {
		return cached
	}
	name := m.assignUncached(x, y, z)
	m.cache[key] = name
	return name
}

func (m *RegionMapper) assignUncached(x, y, z int) BoneName {
	c := m.config

	// Rule 1: right arm.
	if y >= c.ArmYMin && y < c.ArmYMaxEx && x >= c.RightArmXMin && x < c.RightArmXMaxEx {
		return armSegment(x-c.RightArmXMin, c.RightArmXMaxEx-c.RightArmXMin, y, false)
	}
	// Rule 2: left arm, symmetric.
	if y >= c.ArmYMin && y < c.ArmYMaxEx && x >= c.LeftArmXMin && x < c.LeftArmXMaxEx {
		// Mirror so that 0 is the outer (hand) edge and max is the inner
		// (shoulder, nearest chest) edge, matching the right-arm band's
		// orientation.
		width := c.LeftArmXMaxEx - c.LeftArmXMin
		mirrored := width - 1 - (x - c.LeftArmXMin)
		return armSegment(mirrored, width, y, true)
	}

	// Rule 3: descend Y bands.
	for _, band := range yBands {
		if y < band.minY || y >= band.maxYEx {
			continue
		}
		left := x >= c.MidlineX
		switch band.name {
		case "head":
			return Head
		case "neck":
			return Neck
		case "chest":
			return Chest
		case "spine":
			return Spine
		case "hips":
			return Hips
		case "upperLeg":
			if left {
				return LeftUpperLeg
			}
			return RightUpperLeg
		case "lowerLeg":
			if left {
				return LeftLowerLeg
			}
			return RightLowerLeg
		case "foot":
			if left {
				return LeftFoot
			}
			return RightFoot
		case "toes":
			if left {
				return LeftToes
			}
			return RightToes
		}
	}
	// Outside every band (shouldn't happen within the fixed 32x64x32 box,
	// since the Y bands above cover [0,64) completely) — fall back to
	// hips, the skinning fallback bone (spec.md §4.5).
	return Hips
}

// armSegment resolves the arm sub-band given a band-local x coordinate
// (0 = outer/hand edge, width-1 = inner/shoulder edge), per spec.md
// §4.4's "shoulder when x>=4 and y>=50, else upper->lower->hand as x
// decreases" rule, generalized to an arbitrary band width and mirrored
// for the left side.
func armSegment(localX, width, y int, left bool) BoneName {
	// Reproduce the spec's literal right-arm thresholds at band width 6:
	// x>=4 (i.e. localX in the top third) is the shoulder candidate.
	third := width / 3
	if third < 1 {
		third = 1
	}
	switch {
	case localX >= 2*third:
		if y >= 50 {
			if left {
				return LeftShoulder
			}
			return RightShoulder
		}
		if left {
			return LeftUpperArm
		}
		return RightUpperArm
	case localX >= third:
		if left {
			return LeftLowerArm
		}
		return RightLowerArm
	default:
		if left {
			return LeftHand
		}
		return RightHand
	}
}
