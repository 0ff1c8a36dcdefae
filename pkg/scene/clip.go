package scene

import "github.com/Faultbox/skelanim/pkg/math"

// VectorKey is a timestamped position or scale sample.
type VectorKey struct {
	Time  float32 // Ticks
	Value math.Vec3
}

// KeyTime returns the key timestamp in ticks.
func (k VectorKey) KeyTime() float32 { return k.Time }

// QuatKey is a timestamped rotation sample.
type QuatKey struct {
	Time  float32 // Ticks
	Value math.Quat
}

// KeyTime returns the key timestamp in ticks.
func (k QuatKey) KeyTime() float32 { return k.Time }

// Channel holds the keyframes driving one node. The three sequences are
// timed independently and each is sorted by time.
type Channel struct {
	Node      string
	Positions []VectorKey
	Rotations []QuatKey
	Scales    []VectorKey
}

// Empty reports whether the channel has no keys at all.
func (c *Channel) Empty() bool {
	return len(c.Positions) == 0 && len(c.Rotations) == 0 && len(c.Scales) == 0
}

// Clip is a single looping animation.
type Clip struct {
	Name           string
	Duration       float32 // Ticks
	TicksPerSecond float32 // 0 means unspecified
	Channels       map[string]*Channel
}

// Animated reports whether any channel has more than one key.
// Clips with only single keys are static poses, not animations.
func (c *Clip) Animated() bool {
	if c.Duration <= 0 {
		return false
	}
	for _, ch := range c.Channels {
		if len(ch.Positions) > 1 || len(ch.Rotations) > 1 || len(ch.Scales) > 1 {
			return true
		}
	}
	return false
}

// HasKeys reports whether any channel carries at least one key.
func (c *Clip) HasKeys() bool {
	for _, ch := range c.Channels {
		if !ch.Empty() {
			return true
		}
	}
	return false
}
