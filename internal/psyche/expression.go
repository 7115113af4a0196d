package psyche

import "math"

// CompileExpression derives the per-turn expression constraints from the
// fatigue-suppressed traits, intimacy and resentment, bounded by the tone
// valve. Deterministic, no randomness. A hostile valve or a meltdown forces
// the most restrictive profile regardless of traits; override precedence is
// safety > hostility > normal (the safety override lives above this function
// and skips it entirely).
func CompileExpression(eff TraitSet, intimacy, resentment float64, tone ToneLevel, meltdown bool) ExpressionProfile {
	hostile := tone == ToneHostile || meltdown
	if hostile {
		return ExpressionProfile{
			MaxSentences:     1,
			MetaphorDensity:  0,
			EmotionalLeakage: clamp01(resentment),
		}
	}

	distant := intimacy < 0.3
	reach := 0.8
	if distant {
		reach = 0.3
	}

	p := ExpressionProfile{
		MaxSentences:      clampSentences(int(math.Round(eff.Extraversion*3 + 1))),
		MetaphorDensity:   clamp01(eff.Openness * reach),
		EmotionalLeakage:  clamp01(eff.Neuroticism*0.5 + resentment*0.3),
		InitiativeAllowed: tone == ToneNormal && intimacy > 0.4,
		EmojiAllowed:      tone == ToneNormal && eff.Extraversion > 0.3,
		PlayfulAllowed:    tone == ToneNormal && eff.Openness > 0.4 && intimacy > 0.2,
		RoleplayAllowed:   tone == ToneNormal && intimacy > 0.6,
	}

	// The valve's hard cap always wins over the trait-driven cap.
	limit := ConstraintsFor(tone)
	if p.MaxSentences > limit.MaxSentences {
		p.MaxSentences = limit.MaxSentences
	}
	if !limit.AllowMetaphor {
		p.MetaphorDensity = 0
	}
	if !limit.AllowEmoji {
		p.EmojiAllowed = false
	}
	return p
}

func clampSentences(n int) int {
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}
