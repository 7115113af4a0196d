package psyche

import (
	"math"
	"time"
)

// IntimacyConfig holds the growth and penalty tunables.
type IntimacyConfig struct {
	BaseRate        float64       // β, nominal growth per quality unit
	ValenceBonus    float64       // how much positive valence amplifies growth
	GapPenalty      float64       // per-hour penalty for long silences
	MinGapFactor    float64       // floor of the silence penalty
	DeductionRate   float64       // intimacy lost per severity unit on hostility
	CoeffDegrade    float64       // growth coefficient lost per severity unit
	CoeffRecovery   float64       // growth coefficient regained per hour, outside cooldown
	CooldownBase    time.Duration // cooldown floor for any hostile event
	CooldownPerUnit time.Duration // extra cooldown per severity unit
}

// DefaultIntimacyConfig returns the stock tuning.
func DefaultIntimacyConfig() IntimacyConfig {
	return IntimacyConfig{
		BaseRate:        0.02,
		ValenceBonus:    0.3,
		GapPenalty:      0.05,
		MinGapFactor:    0.2,
		DeductionRate:   0.05,
		CoeffDegrade:    0.1,
		CoeffRecovery:   0.02,
		CooldownBase:    2 * time.Hour,
		CooldownPerUnit: 6 * time.Hour,
	}
}

// GrowIntimacy applies one turn of diminishing-returns growth:
// ΔI = Q·E·T·B(I) with E the valence amplifier, T the silence throttle and
// B(I) the saturation curve scaled by the growth coefficient. Also recovers
// the growth coefficient when no cooldown is active. Pure function of the
// inputs.
func GrowIntimacy(cfg IntimacyConfig, cur IntimacyState, quality, valence, hoursSinceLast float64, now time.Time) IntimacyState {
	out := cur

	if !out.Cooling(now) {
		rec := cfg.CoeffRecovery * math.Max(0, hoursSinceLast)
		out.GrowthCoefficient = clamp01(out.GrowthCoefficient + rec)
	}

	e := 1 + clamp11(valence)*cfg.ValenceBonus
	t := math.Max(cfg.MinGapFactor, 1-math.Max(0, hoursSinceLast)*cfg.GapPenalty)
	b := cfg.BaseRate * math.Sqrt(1-clamp01(out.Intimacy)) * out.GrowthCoefficient

	out.Intimacy = clamp01(out.Intimacy + clamp01(quality)*e*t*b)
	out.LastInteractionAt = now
	return out
}

// ApplyHostility applies the immediate relational damage of a hostile event:
// a direct intimacy deduction, growth coefficient degradation, and a cooldown
// during which coefficient recovery is suppressed. Severity is normalized
// 0..1 (offensiveness / 10).
func ApplyHostility(cfg IntimacyConfig, cur IntimacyState, severity float64, now time.Time) IntimacyState {
	severity = clamp01(severity)
	out := cur
	out.Intimacy = clamp01(out.Intimacy - severity*cfg.DeductionRate)
	out.GrowthCoefficient = clamp01(out.GrowthCoefficient - severity*cfg.CoeffDegrade)

	cooldown := cfg.CooldownBase + time.Duration(severity*float64(cfg.CooldownPerUnit))
	until := now.Add(cooldown)
	if until.After(out.CoolingUntil) {
		out.CoolingUntil = until
	}
	out.LastInteractionAt = now
	return out
}
