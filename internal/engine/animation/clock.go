package animation

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/skelanim/pkg/scene"
)

// DefaultTicksPerSecond is used for clips that do not declare a rate.
const DefaultTicksPerSecond float32 = 25

// Ticks converts wall-clock seconds to a tick position inside the clip.
// The clip loops: the result is seconds*rate wrapped into [0, Duration).
// defaultRate replaces a missing clip rate; clips without a positive
// duration always evaluate at tick 0.
func Ticks(clip *scene.Clip, seconds, defaultRate float32) float32 {
	if clip == nil || clip.Duration <= 0 {
		return 0
	}
	rate := clip.TicksPerSecond
	if rate <= 0 {
		rate = defaultRate
	}
	if rate <= 0 {
		rate = DefaultTicksPerSecond
	}

	ticks := math32.Mod(seconds*rate, clip.Duration)
	if ticks < 0 {
		ticks += clip.Duration
	}
	return ticks
}
