// Package animation samples keyframe channels into local node transforms.
package animation

// Keyed is a keyframe with a timestamp in ticks.
type Keyed interface {
	KeyTime() float32
}

// Locate returns the index i of the keyframe pair (i, i+1) bracketing time,
// so that keys[i].KeyTime() <= time < keys[i+1].KeyTime().
//
// Times before the first key resolve to the first pair and times at or past
// the last key resolve to the last pair. keys must hold at least two entries.
func Locate[K Keyed](keys []K, time float32) int {
	for i := 0; i < len(keys)-1; i++ {
		if time < keys[i+1].KeyTime() {
			return i
		}
	}
	return len(keys) - 2
}

// Fraction returns where time falls inside [t0, t1], clamped to [0, 1].
// A zero-length interval yields 0 so the first key wins.
// Times past the last key therefore hold its value instead of
// extrapolating the final segment.
func Fraction(t0, t1, time float32) float32 {
	dt := t1 - t0
	if dt <= 0 {
		return 0
	}
	f := (time - t0) / dt
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
