// Package expression implements ExpressionController: cross-fading
// between named voxel-delta expressions, an automatic blink overlay, and
// a queue of event-triggered emotions (spec.md §4.9).
package expression

import (
	"voxelavatar/internal/mathutil"
	"voxelavatar/internal/voxel"
)

// Neutral is the expression every avatar starts in and returns to once
// the emotion queue empties.
const Neutral = "neutral"

// DefaultBlinkName is the expression delta applied as the blink overlay.
const DefaultBlinkName = "blink"

const (
	defaultBlendDuration  = 0.2
	defaultBlinkInterval  = 4.0
	defaultBlinkVariance  = 2.0
	defaultBlinkDuration  = 0.15
)

// VoxelWeight is one entry of the apply() output contract: the palette
// index an expression wants at key, and the weight it should be blended
// in at.
type VoxelWeight struct {
	PaletteIndex uint8
	Weight       float32
}

// queuedEmotion is one pending entry in the trigger queue.
type queuedEmotion struct {
	expression string
	duration   float32
	elapsed    float32
}

// Config tunes blend and blink timing.
type Config struct {
	BlendDuration float32
	BlinkInterval float32
	BlinkVariance float32
	BlinkDuration float32
}

// DefaultConfig returns the spec.md §4.9 defaults.
func DefaultConfig() Config {
	return Config{
		BlendDuration: defaultBlendDuration,
		BlinkInterval: defaultBlinkInterval,
		BlinkVariance: defaultBlinkVariance,
		BlinkDuration: defaultBlinkDuration,
	}
}

// Controller is the ExpressionController.
type Controller struct {
	body *voxel.VoxelBody
	rng  *mathutil.SeededRNG
	cfg  Config

	currentExpression string
	targetExpression  string
	blendProgress     float32

	blinkTimer    float32
	blinkInterval float32
	isBlinking    bool
	blinkProgress float32

	queue []queuedEmotion

	// emotionDurations maps a triggered emotion name to the expression it
	// plays and how long it holds before the queue advances.
	emotionDurations map[string]struct {
		expression string
		duration   float32
	}
}

// New builds a Controller bound to body's stored expression deltas,
// seeded deterministically for reproducible blink scheduling (spec.md
// §8 S5).
func New(body *voxel.VoxelBody, seed int64) *Controller {
	c := &Controller{
		body:              body,
		rng:               mathutil.NewSeededRNG(seed),
		cfg:               DefaultConfig(),
		currentExpression: Neutral,
		targetExpression:  Neutral,
		blendProgress:      1,
		emotionDurations: make(map[string]struct {
			expression string
			duration   float32
		}),
	}
	c.blinkInterval = c.sampleBlinkInterval()
	return c
}

// SetConfig overrides blend/blink timing.
func (c *Controller) SetConfig(cfg Config) { c.cfg = cfg }

func (c *Controller) sampleBlinkInterval() float32 {
	return c.cfg.BlinkInterval + float32(c.rng.NextFloat(0, float64(c.cfg.BlinkVariance)))
}

// SetExpression sets the cross-fade target and resets blend progress.
func (c *Controller) SetExpression(name string) {
	if name == c.targetExpression {
		return
	}
	c.currentExpression = c.currentTargetOrCurrent()
	c.targetExpression = name
	c.blendProgress = 0
}

// currentTargetOrCurrent captures the in-progress blend's effective
// current expression so re-targeting mid-blend starts from where the
// avatar visually is, not from whatever the old target was.
func (c *Controller) currentTargetOrCurrent() string {
	if c.blendProgress >= 1 {
		return c.targetExpression
	}
	return c.currentExpression
}

// RegisterEmotion maps a triggerEmotion name to the expression it plays
// and the duration it holds the queue slot for.
func (c *Controller) RegisterEmotion(name, expression string, duration float32) {
	c.emotionDurations[name] = struct {
		expression string
		duration   float32
	}{expression, duration}
}

// TriggerEmotion pushes a registered emotion onto the queue. Unregistered
// names are ignored.
func (c *Controller) TriggerEmotion(name string) {
	mapping, ok := c.emotionDurations[name]
	if !ok {
		return
	}
	c.queue = append(c.queue, queuedEmotion{expression: mapping.expression, duration: mapping.duration})
}

// Update advances blend progress, the emotion queue, and the blink
// scheduler by dt.
func (c *Controller) Update(dt float32) {
	if c.blendProgress < 1 {
		c.blendProgress = mathutil.Clamp32(c.blendProgress+dt/c.cfg.BlendDuration, 0, 1)
		if c.blendProgress >= 1 {
			c.currentExpression = c.targetExpression
		}
	}

	c.updateQueue(dt)
	c.updateBlink(dt)
}

func (c *Controller) updateQueue(dt float32) {
	if len(c.queue) == 0 {
		return
	}
	head := &c.queue[0]
	if head.elapsed == 0 {
		c.SetExpression(head.expression)
	}
	head.elapsed += dt
	if head.elapsed >= head.duration {
		c.queue = c.queue[1:]
		if len(c.queue) == 0 {
			c.SetExpression(Neutral)
		}
	}
}

func (c *Controller) updateBlink(dt float32) {
	if c.isBlinking {
		c.blinkProgress += dt / c.cfg.BlinkDuration
		if c.blinkProgress >= 1 {
			c.isBlinking = false
			c.blinkProgress = 0
			c.blinkTimer = 0
			c.blinkInterval = c.sampleBlinkInterval()
		}
		return
	}

	c.blinkTimer += dt
	if c.blinkTimer >= c.blinkInterval {
		c.isBlinking = true
		c.blinkProgress = 0
	}
}

// IsBlinking reports whether a blink overlay is currently active.
func (c *Controller) IsBlinking() bool { return c.isBlinking }

// BlinkCurve evaluates the blink envelope at progress p: smoothstep
// close over [0,0.3), smoothstep open over [0.3,1] (spec.md §4.9,
// invariant 8 — C⁰-continuous, 0 at p=0, 1 at p=0.3, 0 at p=1).
func BlinkCurve(p float32) float32 {
	if p < 0.3 {
		return float32(mathutil.Smoothstep01(float64(p / 0.3)))
	}
	return float32(1 - mathutil.Smoothstep01(float64((p-0.3)/0.7)))
}

// Apply computes the interpolatedVoxels contract: for every key touched
// by the current/target expression deltas (cross-fade) or the blink
// delta (overlay), the palette index and blend weight to apply.
func (c *Controller) Apply() map[voxel.Key]VoxelWeight {
	out := make(map[voxel.Key]VoxelWeight)

	if c.blendProgress < 1 {
		currentWeight := float32(1 - mathutil.Smoothstep01(float64(c.blendProgress)))
		targetWeight := float32(mathutil.Smoothstep01(float64(c.blendProgress)))
		c.accumulate(out, c.currentExpression, currentWeight)
		c.accumulate(out, c.targetExpression, targetWeight)
	} else {
		c.accumulate(out, c.targetExpression, 1)
	}

	if c.isBlinking {
		c.accumulate(out, DefaultBlinkName, BlinkCurve(c.blinkProgress))
	}

	return out
}

func (c *Controller) accumulate(out map[voxel.Key]VoxelWeight, name string, weight float32) {
	if weight <= 0 {
		return
	}
	delta, ok := c.body.GetExpression(name)
	if !ok {
		return
	}
	for key, paletteIndex := range delta {
		out[key] = VoxelWeight{PaletteIndex: paletteIndex, Weight: weight}
	}
}
