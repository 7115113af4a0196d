package psyche

import (
	"errors"
	"math"
	"time"
)

// ErrGenesisLocked is returned when direct trait assignment is attempted
// after the genesis snapshot has been captured.
var ErrGenesisLocked = errors.New("psyche: genesis locked, direct trait writes refused")

// PersonalityConfig holds the evolution tunables.
type PersonalityConfig struct {
	NegativeWeight float64 // extra weight on negative feedback
	PlasticityEta  float64 // η in (1-η)^(n/100)
	PacingHalfLife float64 // hours until a new shift reaches ~63% strength
	FatigueWeights TraitSet
}

// DefaultPersonalityConfig returns the stock tuning. Fatigue weights say how
// strongly fatigue suppresses each trait in the effective view.
func DefaultPersonalityConfig() PersonalityConfig {
	return PersonalityConfig{
		NegativeWeight: 1.2,
		PlasticityEta:  0.1,
		PacingHalfLife: 12,
		FatigueWeights: TraitSet{
			Openness:          0.9,
			Conscientiousness: 0.8,
			Extraversion:      0.5,
			Agreeableness:     0.3,
			Neuroticism:       0.1,
		},
	}
}

// LockGenesis captures the one-time immutable trait snapshot. Rejects a
// second call; the snapshot is only ever read afterward.
func (p *PersonalityState) LockGenesis(now time.Time) error {
	if p.GenesisLocked() {
		return ErrGenesisLocked
	}
	snap := p.Traits
	p.Genesis = &snap
	p.GenesisLockedAt = now
	return nil
}

// SetTraits is the direct-edit interface used during initial configuration.
// Once genesis is locked it refuses all writes; only Evolve may adjust traits
// from then on.
func (p *PersonalityState) SetTraits(t TraitSet) error {
	if p.GenesisLocked() {
		return ErrGenesisLocked
	}
	ClampTraits(&t)
	p.Traits = t
	return nil
}

// Feedback is one turn's worth of evolutionary pressure on the traits.
type Feedback struct {
	Direction  int           // +1 or -1
	Magnitude  float64       // 0..1
	Activation TraitSet      // per-trait activation, 0..1 each
	Intimacy   float64       // current intimacy, scales trust in the signal
	SinceShift time.Duration // elapsed since the last applied shift
}

// EffectivePlasticity returns plasticity damped by lifetime interaction
// count: settled minds move less.
func EffectivePlasticity(cfg PersonalityConfig, plasticity float64, interactions int) float64 {
	return clamp01(plasticity * math.Pow(1-cfg.PlasticityEta, float64(interactions)/100))
}

// Evolve applies one feedback step to every trait:
// ΔTrait_i = D·M·A_i·I·P(t) scaled by effective plasticity, with negative
// feedback weighted heavier than positive. Each trait is clamped
// independently and TotalInteractions increments by one.
func Evolve(cfg PersonalityConfig, cur PersonalityState, fb Feedback) PersonalityState {
	out := cur

	dir := 1.0
	weight := 1.0
	if fb.Direction < 0 {
		dir = -1
		weight = cfg.NegativeWeight
	}

	pacing := 1 - math.Exp(-math.Max(0, fb.SinceShift.Hours())/cfg.PacingHalfLife)
	scale := dir * weight * clamp01(fb.Magnitude) * clamp01(fb.Intimacy) * pacing *
		EffectivePlasticity(cfg, cur.Plasticity, cur.TotalInteractions)

	out.Traits.Openness += scale * clamp01(fb.Activation.Openness)
	out.Traits.Conscientiousness += scale * clamp01(fb.Activation.Conscientiousness)
	out.Traits.Extraversion += scale * clamp01(fb.Activation.Extraversion)
	out.Traits.Agreeableness += scale * clamp01(fb.Activation.Agreeableness)
	out.Traits.Neuroticism += scale * clamp01(fb.Activation.Neuroticism)
	ClampTraits(&out.Traits)

	out.TotalInteractions++
	return out
}

// EffectiveTraits is the fatigue-suppressed read-only view consumed
// downstream. The stored traits are never modified by fatigue.
func EffectiveTraits(cfg PersonalityConfig, base TraitSet, fatigue float64) TraitSet {
	fatigue = clamp01(fatigue)
	out := TraitSet{
		Openness:          base.Openness * (1 - fatigue*cfg.FatigueWeights.Openness),
		Conscientiousness: base.Conscientiousness * (1 - fatigue*cfg.FatigueWeights.Conscientiousness),
		Extraversion:      base.Extraversion * (1 - fatigue*cfg.FatigueWeights.Extraversion),
		Agreeableness:     base.Agreeableness * (1 - fatigue*cfg.FatigueWeights.Agreeableness),
		Neuroticism:       base.Neuroticism * (1 - fatigue*cfg.FatigueWeights.Neuroticism),
	}
	ClampTraits(&out)
	return out
}
