package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"soulkit/internal/psyche"
)

// Genesis describes a companion as authored: identity, voice and the
// trait vector the agent is born with. Loaded once from YAML; the trait
// vector becomes the immutable genesis anchor on first contact.
type Genesis struct {
	Name     string `yaml:"name"`
	Bio      string `yaml:"bio"`
	Speech   string `yaml:"speech"`
	Language string `yaml:"language"`

	Traits struct {
		Openness          float64 `yaml:"openness"`
		Conscientiousness float64 `yaml:"conscientiousness"`
		Extraversion      float64 `yaml:"extraversion"`
		Agreeableness     float64 `yaml:"agreeableness"`
		Neuroticism       float64 `yaml:"neuroticism"`
	} `yaml:"traits"`

	Plasticity float64 `yaml:"plasticity"`

	Emotion struct {
		Valence float64 `yaml:"valence"`
		Arousal float64 `yaml:"arousal"`
	} `yaml:"emotion"`
}

// LoadGenesis reads and validates a genesis file.
func LoadGenesis(path string) (*Genesis, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("genesis: read %s: %w", path, err)
	}
	return ParseGenesis(b)
}

// ParseGenesis decodes and validates genesis YAML.
func ParseGenesis(b []byte) (*Genesis, error) {
	g := &Genesis{}
	if err := yaml.Unmarshal(b, g); err != nil {
		return nil, fmt.Errorf("genesis: parse: %w", err)
	}
	if g.Name == "" {
		return nil, fmt.Errorf("genesis: name is required")
	}
	for label, v := range map[string]float64{
		"openness":          g.Traits.Openness,
		"conscientiousness": g.Traits.Conscientiousness,
		"extraversion":      g.Traits.Extraversion,
		"agreeableness":     g.Traits.Agreeableness,
		"neuroticism":       g.Traits.Neuroticism,
		"plasticity":        g.Plasticity,
	} {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("genesis: %s must be within [0,1], got %v", label, v)
		}
	}
	if g.Emotion.Valence < -1 || g.Emotion.Valence > 1 {
		return nil, fmt.Errorf("genesis: emotion valence must be within [-1,1], got %v", g.Emotion.Valence)
	}
	if g.Plasticity == 0 {
		g.Plasticity = 0.8
	}
	if g.Emotion.Arousal == 0 {
		g.Emotion.Arousal = 0.5
	}
	return g, nil
}

// TraitSet returns the authored trait vector.
func (g *Genesis) TraitSet() psyche.TraitSet {
	return psyche.TraitSet{
		Openness:          g.Traits.Openness,
		Conscientiousness: g.Traits.Conscientiousness,
		Extraversion:      g.Traits.Extraversion,
		Agreeableness:     g.Traits.Agreeableness,
		Neuroticism:       g.Traits.Neuroticism,
	}
}

// NewPersonality builds a born agent's personality with the genesis
// anchor locked at the given time.
func (g *Genesis) NewPersonality(now time.Time) psyche.PersonalityState {
	p := psyche.PersonalityState{
		Traits:     g.TraitSet(),
		Plasticity: g.Plasticity,
	}
	_ = p.LockGenesis(now)
	return p
}

// NewEmotion builds a born agent's initial emotion state.
func (g *Genesis) NewEmotion(now time.Time) psyche.EmotionState {
	e := psyche.EmotionState{
		Valence:   g.Emotion.Valence,
		Arousal:   g.Emotion.Arousal,
		UpdatedAt: now,
	}
	psyche.ClampEmotion(&e)
	return e
}
