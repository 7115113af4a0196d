package psyche

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostileForcesRestrictiveProfile(t *testing.T) {
	rich := TraitSet{Openness: 1, Extraversion: 1, Agreeableness: 1}

	p := CompileExpression(rich, 0.9, 0.9, ToneHostile, false)
	assert.Equal(t, 1, p.MaxSentences)
	assert.Equal(t, 0.0, p.MetaphorDensity)
	assert.False(t, p.InitiativeAllowed)
	assert.False(t, p.EmojiAllowed)
	assert.False(t, p.PlayfulAllowed)
	assert.False(t, p.RoleplayAllowed)

	// Meltdown forces the same profile even at a normal valve level.
	m := CompileExpression(rich, 0.9, 0.9, ToneNormal, true)
	assert.Equal(t, p, m)
}

func TestMaxSentencesFromExtraversion(t *testing.T) {
	cases := []struct {
		extraversion float64
		want         int
	}{
		{0.0, 1},
		{0.5, 3},
		{1.0, 4},
	}
	for _, tc := range cases {
		p := CompileExpression(TraitSet{Extraversion: tc.extraversion}, 0.5, 0, ToneNormal, false)
		assert.Equal(t, tc.want, p.MaxSentences, "extraversion=%v", tc.extraversion)
	}
}

func TestColdValveCapsProfile(t *testing.T) {
	rich := TraitSet{Openness: 0.8, Extraversion: 1}
	p := CompileExpression(rich, 0.8, 0.2, ToneCold, false)
	assert.LessOrEqual(t, p.MaxSentences, 3)
	assert.False(t, p.EmojiAllowed)
	assert.False(t, p.InitiativeAllowed)
	assert.False(t, p.RoleplayAllowed)
}

func TestDistanceLimitsMetaphor(t *testing.T) {
	traits := TraitSet{Openness: 0.8}
	close := CompileExpression(traits, 0.7, 0, ToneNormal, false)
	distant := CompileExpression(traits, 0.1, 0, ToneNormal, false)
	assert.Greater(t, close.MetaphorDensity, distant.MetaphorDensity)
}

func TestCompileExpressionDeterministic(t *testing.T) {
	traits := TraitSet{Openness: 0.6, Extraversion: 0.7, Neuroticism: 0.4}
	a := CompileExpression(traits, 0.5, 0.3, ToneNormal, false)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a, CompileExpression(traits, 0.5, 0.3, ToneNormal, false))
	}
}
