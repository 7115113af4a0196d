package ai

import "soulkit/internal/psyche"

// Params are the generation knobs chosen for one turn.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// DefaultParams is the normal selection before any emotional override.
func DefaultParams() Params {
	return Params{Temperature: 0.8, MaxTokens: 320}
}

// Emotional hard-override thresholds. Bit-exact by contract: strictly below
// -0.6 valence clips the reply short, strictly above 0.8 arousal runs hot.
const (
	lowValenceCutoff  = -0.6
	lowValenceTokens  = 20
	highArousalCutoff = 0.8
	highArousalTemp   = 1.1
)

// ApplyEmotionOverrides applies the hard generation-parameter overrides after
// normal parameter selection. Order does not matter; the overrides are
// independent.
func ApplyEmotionOverrides(p Params, e psyche.EmotionState) Params {
	if e.Valence < lowValenceCutoff {
		p.MaxTokens = lowValenceTokens
	}
	if e.Arousal > highArousalCutoff {
		p.Temperature = highArousalTemp
	}
	return p
}

// Reduced returns the fallback parameters for the single retry after a
// completion failure: cooler and shorter, to give the service an easier job.
func Reduced(p Params) Params {
	p.Temperature = 0.7
	if p.MaxTokens > 128 {
		p.MaxTokens = 128
	}
	return p
}
