package session

import "soulkit/internal/psyche"

// Event-driven adjustments applied on top of the surface affect signals.
const (
	complimentLift = 0.20
	gratitudeLift  = 0.15
	confessionLift = 0.10
	insultDrop     = 0.35
	insultSpike    = 0.20
)

// stimulusFor maps one perception record onto emotion deltas. Low tolerance
// amplifies the negative side only; good news lands the same at 3am.
func stimulusFor(rec psyche.PerceptionRecord, tolerance float64) psyche.Stimulus {
	sev := rec.Severity()

	dv := rec.SurfaceValence * 0.3
	if rec.HasEvent(psyche.EventCompliment) {
		dv += complimentLift
	}
	if rec.HasEvent(psyche.EventGratitude) {
		dv += gratitudeLift
	}
	if rec.HasEvent(psyche.EventConfession) {
		dv += confessionLift
	}
	if rec.HasEvent(psyche.EventInsult) {
		dv -= insultDrop
	}
	dv -= sev * 0.5
	if dv < 0 {
		dv *= 2 - clamp01(tolerance)
	}

	da := (rec.SurfaceArousal - 0.5) * 0.4
	da += sev * 0.3
	if rec.HasEvent(psyche.EventInsult) {
		da += insultSpike
	}

	return psyche.Stimulus{
		DeltaValence:    dv,
		DeltaArousal:    da,
		DeltaResentment: sev * 0.25,
	}
}

// interactionQuality condenses a perception record into the single quality
// scalar the intimacy engine consumes, in [-1, 1].
func interactionQuality(rec psyche.PerceptionRecord) float64 {
	q := rec.SurfaceValence * 0.6
	if rec.HasEvent(psyche.EventCompliment) {
		q += 0.3
	}
	if rec.HasEvent(psyche.EventGratitude) {
		q += 0.25
	}
	if rec.HasEvent(psyche.EventConfession) {
		q += 0.2
	}
	q -= rec.Severity()
	if q < -1 {
		return -1
	}
	if q > 1 {
		return 1
	}
	return q
}

// activationFor decides which traits this turn pressures and how hard.
func activationFor(rec psyche.PerceptionRecord) psyche.TraitSet {
	switch {
	case rec.HasEvent(psyche.EventInsult):
		return psyche.TraitSet{Neuroticism: 0.9, Agreeableness: 0.4}
	case rec.HasEvent(psyche.EventCompliment), rec.HasEvent(psyche.EventGratitude):
		return psyche.TraitSet{Extraversion: 0.6, Agreeableness: 0.8}
	case rec.HasEvent(psyche.EventConfession):
		return psyche.TraitSet{Openness: 0.7, Agreeableness: 0.6}
	}
	switch rec.UnderlyingNeed {
	case psyche.NeedComfort, psyche.NeedVent:
		return psyche.TraitSet{Agreeableness: 0.6, Neuroticism: 0.3}
	case psyche.NeedAdvice:
		return psyche.TraitSet{Openness: 0.6, Conscientiousness: 0.5}
	default:
		return psyche.TraitSet{
			Openness: 0.3, Conscientiousness: 0.3, Extraversion: 0.3,
			Agreeableness: 0.3, Neuroticism: 0.3,
		}
	}
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
