package psyche

import "time"

// Circadian window boundaries, minutes from midnight. The curve is flat zero
// through the waking window, flat at LazinessPeak through deep night, with
// eased ramps between so there is no jump at any boundary.
const (
	wakeStart  = 10 * 60 // 10:00 — fully awake
	wakeEnd    = 22 * 60 // 22:00 — ramp up begins
	peakStart  = 1 * 60  // 01:00 — deep fatigue begins
	peakEnd    = 5 * 60  // 05:00 — ramp down begins
	rampDownTo = 8 * 60  // 08:00 — ramp down ends (flat zero until wakeStart)

	// LazinessPeak is the deep-night fatigue ceiling.
	LazinessPeak = 0.9
)

// Laziness maps wall-clock time of day to a fatigue scalar in [0, 0.9].
// Pure function; only the clock reading matters.
func Laziness(t time.Time) float64 {
	m := float64(t.Hour()*60 + t.Minute())

	switch {
	case m >= wakeStart && m < wakeEnd:
		return 0
	case m >= wakeEnd: // 22:00–24:00, first part of the rise toward 01:00
		return LazinessPeak * smoothstep((m-wakeEnd)/float64(24*60-wakeEnd+peakStart))
	case m < peakStart: // 00:00–01:00, remainder of the rise
		return LazinessPeak * smoothstep((m+float64(24*60-wakeEnd))/float64(24*60-wakeEnd+peakStart))
	case m < peakEnd: // 01:00–05:00
		return LazinessPeak
	case m < rampDownTo: // 05:00–08:00
		return LazinessPeak * (1 - smoothstep((m-peakEnd)/float64(rampDownTo-peakEnd)))
	default: // 08:00–10:00
		return 0
	}
}

// Tolerance is how much patience is left for the current message: fatigue
// costs tolerance, and so do demanding needs and repeated topics.
func Tolerance(laziness float64, need UnderlyingNeed, topicRepeated bool) float64 {
	t := 1 - clamp01(laziness)
	if need == NeedComfort || need == NeedVent {
		t -= 0.2
	}
	if topicRepeated {
		t -= 0.2
	}
	return clamp01(t)
}

// smoothstep eases x in [0,1] with zero slope at both ends.
func smoothstep(x float64) float64 {
	x = clamp01(x)
	return x * x * (3 - 2*x)
}
