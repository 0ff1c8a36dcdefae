package animation

import (
	"github.com/Faultbox/skelanim/pkg/math"
	"github.com/Faultbox/skelanim/pkg/scene"
)

// Transform is a decomposed local transform.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// IdentityTransform returns the neutral transform.
func IdentityTransform() Transform {
	return Transform{Rotation: math.QuatIdentity(), Scale: math.Vec3One}
}

// Matrix composes translation * rotation * scale.
func (t Transform) Matrix() math.Mat4 {
	return math.FromTRS(t.Translation, t.Rotation, t.Scale)
}

// SamplePosition interpolates position keys at the given tick.
func SamplePosition(keys []scene.VectorKey, ticks float32) math.Vec3 {
	return sampleVector(keys, ticks, math.Vec3{})
}

// SampleScale interpolates scale keys at the given tick.
func SampleScale(keys []scene.VectorKey, ticks float32) math.Vec3 {
	return sampleVector(keys, ticks, math.Vec3One)
}

func sampleVector(keys []scene.VectorKey, ticks float32, def math.Vec3) math.Vec3 {
	switch len(keys) {
	case 0:
		return def
	case 1:
		return keys[0].Value
	}

	i := Locate(keys, ticks)
	k0, k1 := keys[i], keys[i+1]
	t := Fraction(k0.Time, k1.Time, ticks)
	return k0.Value.Lerp(k1.Value, t)
}

// SampleRotation interpolates rotation keys at the given tick.
func SampleRotation(keys []scene.QuatKey, ticks float32) math.Quat {
	switch len(keys) {
	case 0:
		return math.QuatIdentity()
	case 1:
		return keys[0].Value
	}

	i := Locate(keys, ticks)
	k0, k1 := keys[i], keys[i+1]
	t := Fraction(k0.Time, k1.Time, ticks)
	return k0.Value.Slerp(k1.Value, t)
}

// SampleChannel evaluates all three sequences of a channel. Each sequence
// falls back to its identity value independently when empty.
func SampleChannel(ch *scene.Channel, ticks float32) Transform {
	return Transform{
		Translation: SamplePosition(ch.Positions, ticks),
		Rotation:    SampleRotation(ch.Rotations, ticks),
		Scale:       SampleScale(ch.Scales, ticks),
	}
}

// LocalTransform returns a node's local transform at the given tick.
// Nodes without a channel keep their bind transform.
func LocalTransform(ch *scene.Channel, bind math.Mat4, ticks float32) math.Mat4 {
	if ch == nil {
		return bind
	}
	return SampleChannel(ch, ticks).Matrix()
}
