package psyche

import (
	"math"
	"time"
)

// EmotionConfig holds the tunables of the V-A-R update. Injected explicitly;
// no package-level state.
type EmotionConfig struct {
	ValenceBaseline float64 // resting valence, usually 0
	ArousalBaseline float64 // resting arousal, 0.5
	ValenceDecay    float64 // per hour toward baseline
	ArousalDecay    float64 // per hour toward baseline
	ResentmentDecay float64 // per hour toward zero
	SoftBoundary    float64 // exponent shrinking movement near the valence rails
	ApologyRelief   float64 // fraction of resentment discharged by an apology
}

// DefaultEmotionConfig returns the stock tuning.
func DefaultEmotionConfig() EmotionConfig {
	return EmotionConfig{
		ValenceBaseline: 0,
		ArousalBaseline: 0.5,
		ValenceDecay:    0.04,
		ArousalDecay:    0.05,
		ResentmentDecay: 0.03,
		SoftBoundary:    1.5,
		ApologyRelief:   0.4,
	}
}

// Stimulus is the perception-derived emotional push applied in one turn.
type Stimulus struct {
	DeltaValence    float64
	DeltaArousal    float64
	DeltaResentment float64
}

// Meltdown reports the derived crisis emotional state. Not stored; recomputed
// from whatever state is current.
func Meltdown(e EmotionState) bool {
	return e.Resentment > 0.8 && e.Valence < -0.7
}

// DecayEmotion moves the state toward baseline for the elapsed wall-clock
// time. Negative elapsed is treated as zero. The linear pull factor is capped
// at 1 so a very long gap lands exactly on baseline instead of overshooting.
func DecayEmotion(cfg EmotionConfig, e EmotionState, elapsed time.Duration) EmotionState {
	if elapsed < 0 {
		elapsed = 0
	}
	h := elapsed.Hours()

	out := e
	out.Valence += (cfg.ValenceBaseline - out.Valence) * capPull(cfg.ValenceDecay*h)
	out.Arousal += (cfg.ArousalBaseline - out.Arousal) * capPull(cfg.ArousalDecay*h)
	out.Resentment -= out.Resentment * capPull(cfg.ResentmentDecay*h)
	ClampEmotion(&out)
	return out
}

// UpdateEmotion runs one full turn of emotion dynamics: decay for elapsed
// time first, then the stimulus with soft-boundary damping, resentment
// suppression of positive valence, and meltdown gating. Output is always
// clamped.
func UpdateEmotion(cfg EmotionConfig, cur EmotionState, st Stimulus, elapsed time.Duration, now time.Time) EmotionState {
	out := DecayEmotion(cfg, cur, elapsed)

	dv := st.DeltaValence
	if dv > 0 {
		// Accumulated grudge attenuates anything pleasant.
		dv *= 1 - sigmoid(10*(out.Resentment-0.5))
		if Meltdown(out) {
			dv = 0
		}
	}

	// Movement shrinks near the rails: emotional inertia at the extremes.
	out.Valence += dv * math.Pow(1-math.Abs(out.Valence), cfg.SoftBoundary)
	out.Arousal += st.DeltaArousal
	out.Resentment += st.DeltaResentment
	out.UpdatedAt = now
	ClampEmotion(&out)
	return out
}

// ApplyApology is the only non-gradual resentment discharge path: it drops
// resentment by the configured fraction immediately.
func ApplyApology(cfg EmotionConfig, e EmotionState, now time.Time) EmotionState {
	out := e
	out.Resentment *= 1 - cfg.ApologyRelief
	out.UpdatedAt = now
	ClampEmotion(&out)
	return out
}

func capPull(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
