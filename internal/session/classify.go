package session

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"soulkit/internal/ai"
	"soulkit/internal/psyche"
)

// classifyPrompt asks the completion service for structured perception
// only. It never sees agent state and its output is re-validated before
// any engine consumes it.
const classifyPrompt = `You are a perception module. Read the user message and output ONLY a JSON object with these keys:
offensiveness (integer 0-10), underlying_need (one of: chitchat, comfort, vent, advice, validation), surface_valence (number -1..1), surface_arousal (number 0..1), social_events (array, any of: compliment, gratitude, insult, apology, confession, self_harm), confidence (number 0..1).
No prose, no markdown, JSON only.`

const classifyTimeout = 8 * time.Second

var perceptionJSONRe = regexp.MustCompile(`\{[^{}]*"offensiveness"\s*:\s*[-\d.]+[\s\S]*?\}`)

type perceptionWire struct {
	Offensiveness  int      `json:"offensiveness"`
	UnderlyingNeed string   `json:"underlying_need"`
	SurfaceValence float64  `json:"surface_valence"`
	SurfaceArousal float64  `json:"surface_arousal"`
	SocialEvents   []string `json:"social_events"`
	Confidence     float64  `json:"confidence"`
}

// classify produces the perception record for one message. The completion
// service gets first shot; on any failure the rule classifier answers. A
// crisis flag from the rule classifier always survives, whatever the
// service said.
func (m *Manager) classify(ctx context.Context, text string) psyche.PerceptionRecord {
	ruled := psyche.ClassifyMessage(text)

	rec, ok := m.classifyLLM(ctx, text)
	if !ok {
		return ruled
	}
	if ruled.Crisis() && !rec.Crisis() {
		rec.SocialEvents = append(rec.SocialEvents, psyche.EventSelfHarm)
	}
	return psyche.NormalizePerception(rec)
}

func (m *Manager) classifyLLM(ctx context.Context, text string) (psyche.PerceptionRecord, bool) {
	if m.provider == nil {
		return psyche.PerceptionRecord{}, false
	}

	cctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	reduced := ai.Reduced(ai.DefaultParams())
	out, err := m.provider.Complete(cctx, ai.Request{
		System:      classifyPrompt,
		Messages:    []ai.Message{{Role: "user", Content: text}},
		Temperature: reduced.Temperature,
		MaxTokens:   reduced.MaxTokens,
	})
	if err != nil {
		m.log.Debug().Err(err).Msg("perception completion failed, rule fallback")
		return psyche.PerceptionRecord{}, false
	}

	raw := strings.TrimSpace(out)
	if idx := perceptionJSONRe.FindStringIndex(raw); len(idx) > 0 {
		raw = raw[idx[0]:idx[1]]
	}
	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			raw = raw[i : j+1]
		}
	}

	var wire perceptionWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		m.log.Debug().Err(err).Msg("perception parse failed, rule fallback")
		return psyche.PerceptionRecord{}, false
	}

	rec := psyche.PerceptionRecord{
		Offensiveness:  wire.Offensiveness,
		UnderlyingNeed: psyche.UnderlyingNeed(wire.UnderlyingNeed),
		SurfaceValence: wire.SurfaceValence,
		SurfaceArousal: wire.SurfaceArousal,
		Confidence:     wire.Confidence,
	}
	for _, ev := range wire.SocialEvents {
		rec.SocialEvents = append(rec.SocialEvents, psyche.SocialEvent(ev))
	}
	return rec, true
}
