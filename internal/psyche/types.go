package psyche

import "time"

// EmotionState — V-A-R emotional axes for one agent. Mutated only by the
// emotion engine; one agent owns exactly one instance.
type EmotionState struct {
	Valence    float64   `json:"valence"`    // -1..1
	Arousal    float64   `json:"arousal"`    // 0..1
	Resentment float64   `json:"resentment"` // 0..1
	UpdatedAt  time.Time `json:"updated_at"`
}

// TraitSet — five-factor trait values, all 0..1.
type TraitSet struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

// PersonalityState — evolvable traits plus plasticity. Genesis is the one-time
// locked snapshot; once GenesisLockedAt is set, direct trait writes are refused
// and only Evolve may adjust Traits.
type PersonalityState struct {
	Traits            TraitSet  `json:"traits"`
	Plasticity        float64   `json:"plasticity"` // 0..1
	TotalInteractions int       `json:"total_interactions"`
	Genesis           *TraitSet `json:"genesis,omitempty"`
	GenesisLockedAt   time.Time `json:"genesis_locked_at,omitempty"`
}

// GenesisLocked reports whether the genesis snapshot has been captured.
func (p *PersonalityState) GenesisLocked() bool {
	return !p.GenesisLockedAt.IsZero()
}

// IntimacyState — bounded closeness scalar with growth throttling.
// CoolingUntil is the zero time when no cooldown is active.
type IntimacyState struct {
	Intimacy          float64   `json:"intimacy"`           // 0..1
	GrowthCoefficient float64   `json:"growth_coefficient"` // 0..1, default 1
	CoolingUntil      time.Time `json:"cooling_until,omitempty"`
	LastInteractionAt time.Time `json:"last_interaction_at,omitempty"`
}

// Cooling reports whether growth-coefficient recovery is suppressed at now.
func (s IntimacyState) Cooling(now time.Time) bool {
	return !s.CoolingUntil.IsZero() && now.Before(s.CoolingUntil)
}

// SocialStance — derived from Dominance/Heat, recomputed each turn, never
// persisted as authoritative state.
type SocialStance int

const (
	StanceNeutral SocialStance = iota
	StanceExplosive
	StanceColdDismissal
	StanceVulnerable
	StanceWithdrawal
)

func (s SocialStance) String() string {
	switch s {
	case StanceExplosive:
		return "explosive"
	case StanceColdDismissal:
		return "cold_dismissal"
	case StanceVulnerable:
		return "vulnerable"
	case StanceWithdrawal:
		return "withdrawal"
	default:
		return "neutral"
	}
}

// ToneLevel — discrete constraint-escalation level gating expression.
type ToneLevel int

const (
	ToneNormal ToneLevel = iota
	ToneCold
	ToneHostile
)

func (t ToneLevel) String() string {
	switch t {
	case ToneCold:
		return "cold"
	case ToneHostile:
		return "hostile"
	default:
		return "normal"
	}
}

// UnderlyingNeed — what the user is reaching for beneath the surface text.
type UnderlyingNeed string

const (
	NeedChitchat   UnderlyingNeed = "chitchat"
	NeedComfort    UnderlyingNeed = "comfort"
	NeedVent       UnderlyingNeed = "vent"
	NeedAdvice     UnderlyingNeed = "advice"
	NeedValidation UnderlyingNeed = "validation"
)

// SocialEvent — discrete relational events detected in a message.
type SocialEvent string

const (
	EventCompliment SocialEvent = "compliment"
	EventGratitude  SocialEvent = "gratitude"
	EventInsult     SocialEvent = "insult"
	EventApology    SocialEvent = "apology"
	EventConfession SocialEvent = "confession"
	EventSelfHarm   SocialEvent = "self_harm"
)

// ExpressionProfile — per-turn generation constraints. Computed fresh each
// turn, never mutated in place.
type ExpressionProfile struct {
	MaxSentences      int     // 1..5
	MetaphorDensity   float64 // 0..1
	EmotionalLeakage  float64 // 0..1
	InitiativeAllowed bool
	EmojiAllowed      bool
	PlayfulAllowed    bool
	RoleplayAllowed   bool
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clamp11(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}

// ClampEmotion forces all axes back into range. Applied after every update.
func ClampEmotion(e *EmotionState) {
	e.Valence = clamp11(e.Valence)
	e.Arousal = clamp01(e.Arousal)
	e.Resentment = clamp01(e.Resentment)
}

// ClampTraits forces every trait into [0,1].
func ClampTraits(t *TraitSet) {
	t.Openness = clamp01(t.Openness)
	t.Conscientiousness = clamp01(t.Conscientiousness)
	t.Extraversion = clamp01(t.Extraversion)
	t.Agreeableness = clamp01(t.Agreeableness)
	t.Neuroticism = clamp01(t.Neuroticism)
}
