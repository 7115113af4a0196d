package psyche

// The reaction compass and tone valve are stateless: recomputed every turn
// from current state, never cached across turns.

// CompassInput bundles everything the stance decision reads.
type CompassInput struct {
	Traits        TraitSet
	Emotion       EmotionState
	Intimacy      float64
	Offensiveness int // 0..10
}

// Dominance scores the urge to push back rather than yield.
func Dominance(in CompassInput) float64 {
	return (1-in.Traits.Agreeableness)*0.4 +
		in.Traits.Extraversion*0.2 +
		(1-clamp01(in.Intimacy))*0.3 +
		in.Emotion.Resentment*0.5
}

// Heat scores how hot, as opposed to cold, the reaction runs.
func Heat(in CompassInput) float64 {
	return in.Traits.Neuroticism*0.6 + in.Emotion.Arousal*0.4
}

// Stance maps perceived hostility onto a social stance via the
// Dominance/Heat quadrants. Below the offensiveness threshold the stance is
// always Neutral: no point bristling at small talk.
func Stance(in CompassInput) SocialStance {
	if in.Offensiveness < 3 {
		return StanceNeutral
	}
	d, h := Dominance(in), Heat(in)
	switch {
	case d > 0.5 && h > 0.5:
		return StanceExplosive
	case d > 0.5:
		return StanceColdDismissal
	case h > 0.5:
		return StanceVulnerable
	default:
		return StanceWithdrawal
	}
}

// ValveLevel is the 3-level escalation gating expression. Independent of the
// stance: the valve decides how much is allowed, the stance decides the
// flavor of what remains.
func ValveLevel(offensiveness int, resentment, laziness float64) ToneLevel {
	switch {
	case offensiveness > 6 || resentment > 0.8:
		return ToneHostile
	case laziness > 0.6 || resentment > 0.4:
		return ToneCold
	default:
		return ToneNormal
	}
}

// ToneConstraints is the fixed, enumerated constraint set for a valve level.
// Never free text.
type ToneConstraints struct {
	MaxSentences  int
	AllowApology  bool
	AllowMetaphor bool
	AllowEmoji    bool
	AllowWarmth   bool
}

// ConstraintsFor returns the hard constraint set for a valve level.
func ConstraintsFor(level ToneLevel) ToneConstraints {
	switch level {
	case ToneHostile:
		return ToneConstraints{MaxSentences: 2}
	case ToneCold:
		return ToneConstraints{MaxSentences: 3, AllowApology: true, AllowMetaphor: true}
	default:
		return ToneConstraints{MaxSentences: 5, AllowApology: true, AllowMetaphor: true, AllowEmoji: true, AllowWarmth: true}
	}
}
