package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGenesis = `
name: Mara
bio: A quiet painter who grew up by the sea.
speech: warm, a little wry, never formal
language: en
traits:
  openness: 0.8
  conscientiousness: 0.5
  extraversion: 0.4
  agreeableness: 0.7
  neuroticism: 0.3
plasticity: 0.9
emotion:
  valence: 0.2
  arousal: 0.4
`

func TestParseGenesis(t *testing.T) {
	g, err := ParseGenesis([]byte(sampleGenesis))
	require.NoError(t, err)

	assert.Equal(t, "Mara", g.Name)
	assert.Equal(t, 0.8, g.Traits.Openness)
	assert.Equal(t, 0.9, g.Plasticity)
	assert.Equal(t, 0.2, g.Emotion.Valence)
}

func TestParseGenesisDefaults(t *testing.T) {
	g, err := ParseGenesis([]byte("name: Mara\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.8, g.Plasticity)
	assert.Equal(t, 0.5, g.Emotion.Arousal)
}

func TestParseGenesisRejectsBadValues(t *testing.T) {
	_, err := ParseGenesis([]byte("traits:\n  openness: 0.5\n"))
	assert.Error(t, err, "missing name")

	_, err = ParseGenesis([]byte("name: X\ntraits:\n  openness: 1.5\n"))
	assert.Error(t, err, "trait out of range")

	_, err = ParseGenesis([]byte("name: X\nemotion:\n  valence: -2\n"))
	assert.Error(t, err, "valence out of range")

	_, err = ParseGenesis([]byte("name: [broken"))
	assert.Error(t, err, "malformed yaml")
}

func TestNewPersonalityLocksGenesis(t *testing.T) {
	g, err := ParseGenesis([]byte(sampleGenesis))
	require.NoError(t, err)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	p := g.NewPersonality(now)

	require.True(t, p.GenesisLocked())
	assert.Equal(t, g.TraitSet(), *p.Genesis)
	assert.Equal(t, now, p.GenesisLockedAt)

	err = p.SetTraits(g.TraitSet())
	assert.Error(t, err, "direct edits refused after lock")
}

func TestNewEmotionClamped(t *testing.T) {
	g, err := ParseGenesis([]byte(sampleGenesis))
	require.NoError(t, err)

	e := g.NewEmotion(time.Now())
	assert.Equal(t, 0.2, e.Valence)
	assert.Equal(t, 0.4, e.Arousal)
	assert.Equal(t, 0.0, e.Resentment)
}
