package psyche

import "strings"

// PerceptionRecord is the structured output of a message classifier. The
// producer (rule-based or model-based) is opaque to the engines; only this
// contract matters.
type PerceptionRecord struct {
	Offensiveness  int            `json:"offensiveness"` // 0..10
	UnderlyingNeed UnderlyingNeed `json:"underlying_need"`
	SurfaceValence float64        `json:"surface_valence"` // -1..1
	SurfaceArousal float64        `json:"surface_arousal"` // 0..1
	SocialEvents   []SocialEvent  `json:"social_events,omitempty"`
	Confidence     float64        `json:"confidence"` // 0..1
}

// DefaultPerception is the conservative fallback used when a producer
// returns malformed or missing fields. It never blocks the turn.
func DefaultPerception() PerceptionRecord {
	return PerceptionRecord{
		Offensiveness:  0,
		UnderlyingNeed: NeedChitchat,
		Confidence:     0,
	}
}

// Severity converts the 0..10 offensiveness score to the normalized 0..1
// representation every downstream formula uses.
func (r PerceptionRecord) Severity() float64 {
	return clamp01(float64(r.Offensiveness) / 10)
}

// HasEvent reports whether a social event was detected.
func (r PerceptionRecord) HasEvent(ev SocialEvent) bool {
	for _, e := range r.SocialEvents {
		if e == ev {
			return true
		}
	}
	return false
}

// Crisis reports a self-harm signal. Checked before anything else in the
// pipeline; detection failures upstream must resolve toward true.
func (r PerceptionRecord) Crisis() bool {
	return r.HasEvent(EventSelfHarm)
}

// NormalizePerception forces a record back into contract ranges and maps
// unknown enum values to their conservative defaults.
func NormalizePerception(r PerceptionRecord) PerceptionRecord {
	if r.Offensiveness < 0 {
		r.Offensiveness = 0
	}
	if r.Offensiveness > 10 {
		r.Offensiveness = 10
	}
	switch r.UnderlyingNeed {
	case NeedChitchat, NeedComfort, NeedVent, NeedAdvice, NeedValidation:
	default:
		r.UnderlyingNeed = NeedChitchat
	}
	r.SurfaceValence = clamp11(r.SurfaceValence)
	r.SurfaceArousal = clamp01(r.SurfaceArousal)
	r.Confidence = clamp01(r.Confidence)

	events := r.SocialEvents[:0]
	for _, e := range r.SocialEvents {
		switch e {
		case EventCompliment, EventGratitude, EventInsult, EventApology, EventConfession, EventSelfHarm:
			events = append(events, e)
		}
	}
	r.SocialEvents = events
	return r
}

var crisisPhrases = []string{
	"kill myself", "end my life", "want to die", "suicide",
	"hurt myself", "self harm", "no reason to live",
}

var insultWords = []string{
	"idiot", "stupid", "shut up", "useless", "pathetic", "hate you",
}

// ClassifyMessage is the always-available rule-based perception producer.
// Cheap heuristics over caps, punctuation and keyword lists; a model-based
// producer can replace it but this one is the floor the pipeline falls
// back to.
func ClassifyMessage(content string) PerceptionRecord {
	rec := DefaultPerception()
	content = strings.TrimSpace(content)
	if content == "" {
		return rec
	}
	lower := strings.ToLower(content)
	rec.Confidence = 0.4

	for _, p := range crisisPhrases {
		if strings.Contains(lower, p) {
			rec.SocialEvents = append(rec.SocialEvents, EventSelfHarm)
			rec.UnderlyingNeed = NeedComfort
			rec.SurfaceValence = -0.8
			rec.SurfaceArousal = 0.7
			return rec
		}
	}

	upper, letters := 0, 0
	for _, c := range content {
		if c >= 'A' && c <= 'Z' {
			upper++
			letters++
		} else if c >= 'a' && c <= 'z' {
			letters++
		}
	}
	shouting := letters > 3 && upper*100/maxInt(letters, 1) > 60

	switch {
	case containsAny(lower, insultWords):
		rec.Offensiveness = 6
		rec.SurfaceValence = -0.6
		rec.SurfaceArousal = 0.7
		rec.SocialEvents = append(rec.SocialEvents, EventInsult)
		rec.UnderlyingNeed = NeedVent
	case shouting && strings.Contains(content, "!"):
		rec.Offensiveness = 4
		rec.SurfaceValence = -0.3
		rec.SurfaceArousal = 0.8
		rec.UnderlyingNeed = NeedVent
	case strings.Contains(lower, "sorry") || strings.Contains(lower, "apolog"):
		rec.SurfaceValence = 0.2
		rec.SurfaceArousal = 0.4
		rec.SocialEvents = append(rec.SocialEvents, EventApology)
	case strings.Contains(lower, "thank") || strings.Contains(lower, "🙏"):
		rec.SurfaceValence = 0.5
		rec.SurfaceArousal = 0.4
		rec.SocialEvents = append(rec.SocialEvents, EventGratitude)
	case strings.Contains(lower, "love you") || strings.Contains(lower, "miss you"):
		rec.SurfaceValence = 0.7
		rec.SurfaceArousal = 0.5
		rec.SocialEvents = append(rec.SocialEvents, EventConfession)
		rec.UnderlyingNeed = NeedValidation
	case strings.HasSuffix(content, "?"):
		rec.SurfaceValence = 0.1
		rec.SurfaceArousal = 0.3
		rec.UnderlyingNeed = NeedAdvice
	default:
		rec.SurfaceValence = 0.1
		rec.SurfaceArousal = 0.3
	}
	return NormalizePerception(rec)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
