package psyche

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvariantViolation marks a candidate state that must not be committed.
// The previous valid state stays in place and the write is dropped.
var ErrInvariantViolation = errors.New("psyche: state invariant violation")

// CheckEmotion verifies the V-A-R ranges before commit.
func CheckEmotion(e EmotionState) error {
	if bad(e.Valence) || e.Valence < -1 || e.Valence > 1 {
		return fmt.Errorf("%w: valence=%v", ErrInvariantViolation, e.Valence)
	}
	if bad(e.Arousal) || e.Arousal < 0 || e.Arousal > 1 {
		return fmt.Errorf("%w: arousal=%v", ErrInvariantViolation, e.Arousal)
	}
	if bad(e.Resentment) || e.Resentment < 0 || e.Resentment > 1 {
		return fmt.Errorf("%w: resentment=%v", ErrInvariantViolation, e.Resentment)
	}
	return nil
}

// CheckPersonality verifies trait and plasticity ranges before commit.
func CheckPersonality(p PersonalityState) error {
	for name, v := range map[string]float64{
		"openness":          p.Traits.Openness,
		"conscientiousness": p.Traits.Conscientiousness,
		"extraversion":      p.Traits.Extraversion,
		"agreeableness":     p.Traits.Agreeableness,
		"neuroticism":       p.Traits.Neuroticism,
		"plasticity":        p.Plasticity,
	} {
		if bad(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s=%v", ErrInvariantViolation, name, v)
		}
	}
	if p.TotalInteractions < 0 {
		return fmt.Errorf("%w: total_interactions=%d", ErrInvariantViolation, p.TotalInteractions)
	}
	return nil
}

// CheckIntimacy verifies intimacy ranges before commit.
func CheckIntimacy(s IntimacyState) error {
	if bad(s.Intimacy) || s.Intimacy < 0 || s.Intimacy > 1 {
		return fmt.Errorf("%w: intimacy=%v", ErrInvariantViolation, s.Intimacy)
	}
	if bad(s.GrowthCoefficient) || s.GrowthCoefficient < 0 || s.GrowthCoefficient > 1 {
		return fmt.Errorf("%w: growth_coefficient=%v", ErrInvariantViolation, s.GrowthCoefficient)
	}
	return nil
}

func bad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
