package psyche

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPerceptionIsConservative(t *testing.T) {
	r := DefaultPerception()
	assert.Equal(t, 0, r.Offensiveness)
	assert.Equal(t, NeedChitchat, r.UnderlyingNeed)
	assert.Equal(t, 0.0, r.Confidence)
	assert.False(t, r.Crisis())
}

func TestNormalizePerceptionClampsAndDefaults(t *testing.T) {
	r := NormalizePerception(PerceptionRecord{
		Offensiveness:  42,
		UnderlyingNeed: "interpretive_dance",
		SurfaceValence: -3,
		SurfaceArousal: 9,
		Confidence:     2,
		SocialEvents:   []SocialEvent{"mystery", EventInsult},
	})
	assert.Equal(t, 10, r.Offensiveness)
	assert.Equal(t, NeedChitchat, r.UnderlyingNeed)
	assert.Equal(t, -1.0, r.SurfaceValence)
	assert.Equal(t, 1.0, r.SurfaceArousal)
	assert.Equal(t, 1.0, r.Confidence)
	assert.Equal(t, []SocialEvent{EventInsult}, r.SocialEvents)
}

func TestSeverityNormalization(t *testing.T) {
	assert.Equal(t, 0.0, PerceptionRecord{Offensiveness: 0}.Severity())
	assert.InDelta(t, 0.4, PerceptionRecord{Offensiveness: 4}.Severity(), 1e-9)
	assert.Equal(t, 1.0, PerceptionRecord{Offensiveness: 10}.Severity())
}

func TestClassifyMessageCrisis(t *testing.T) {
	r := ClassifyMessage("I just want to end my life")
	assert.True(t, r.Crisis())
	assert.Equal(t, NeedComfort, r.UnderlyingNeed)
}

func TestClassifyMessageInsult(t *testing.T) {
	r := ClassifyMessage("you are a useless idiot")
	assert.True(t, r.HasEvent(EventInsult))
	assert.GreaterOrEqual(t, r.Offensiveness, 3)
	assert.Less(t, r.SurfaceValence, 0.0)
}

func TestClassifyMessageApologyAndGratitude(t *testing.T) {
	r := ClassifyMessage("I'm sorry about yesterday")
	assert.True(t, r.HasEvent(EventApology))
	assert.Equal(t, 0, r.Offensiveness)

	r = ClassifyMessage("thank you, that helped a lot")
	assert.True(t, r.HasEvent(EventGratitude))
	assert.Greater(t, r.SurfaceValence, 0.0)
}

func TestClassifyMessageEmpty(t *testing.T) {
	r := ClassifyMessage("   ")
	assert.Equal(t, DefaultPerception(), r)
}
