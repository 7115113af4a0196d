package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"soulkit/internal/psyche"
)

func TestEmotionOverridesExactThresholds(t *testing.T) {
	base := DefaultParams()

	// Low valence forces the 20-token clip.
	p := ApplyEmotionOverrides(base, psyche.EmotionState{Valence: -0.61})
	assert.Equal(t, 20, p.MaxTokens)
	assert.Equal(t, base.Temperature, p.Temperature)

	// Exactly -0.6 is not below the cutoff.
	p = ApplyEmotionOverrides(base, psyche.EmotionState{Valence: -0.6})
	assert.Equal(t, base.MaxTokens, p.MaxTokens)

	// High arousal forces temperature 1.1.
	p = ApplyEmotionOverrides(base, psyche.EmotionState{Arousal: 0.81})
	assert.Equal(t, 1.1, p.Temperature)

	p = ApplyEmotionOverrides(base, psyche.EmotionState{Arousal: 0.8})
	assert.Equal(t, base.Temperature, p.Temperature)

	// Both can apply at once.
	p = ApplyEmotionOverrides(base, psyche.EmotionState{Valence: -0.9, Arousal: 0.95})
	assert.Equal(t, 20, p.MaxTokens)
	assert.Equal(t, 1.1, p.Temperature)
}

func TestReducedParams(t *testing.T) {
	p := Reduced(Params{Temperature: 1.1, MaxTokens: 500})
	assert.Equal(t, 0.7, p.Temperature)
	assert.Equal(t, 128, p.MaxTokens)

	// An already short budget is not raised.
	p = Reduced(Params{Temperature: 0.9, MaxTokens: 20})
	assert.Equal(t, 20, p.MaxTokens)
}
