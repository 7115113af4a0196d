package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"soulkit/internal/ai"
	"soulkit/internal/memory"
	"soulkit/internal/prompt"
	"soulkit/internal/psyche"
	"soulkit/internal/store"
)

// maxTurnBuffer caps the short-term transcript kept in the agent record.
// Reflection condenses and clears it long before this bound matters.
const maxTurnBuffer = 40

// Reply is the outcome of one processed turn.
type Reply struct {
	Text   string
	Tone   psyche.ToneLevel
	Stance psyche.SocialStance
	Crisis bool
}

// ProcessTurn runs the full pipeline for one incoming message. State is
// committed only after the completion succeeds and the new state passes
// invariant checks; any failure leaves the agent exactly as it was.
func (m *Manager) ProcessTurn(ctx context.Context, agentID, text string) (Reply, error) {
	h := m.handle(agentID)
	h.mu.Lock()
	defer h.mu.Unlock()

	now := m.now()
	turnID := uuid.NewString()
	log := m.log.With().Str("agent", agentID).Str("turn", turnID).Logger()

	rec, err := m.loadOrCreate(agentID, now)
	if err != nil {
		return Reply{}, err
	}

	// Self-harm signals bypass the whole decision chain, including the
	// call limiter: the fixed response costs no completion. The rule pass
	// runs first so a crisis is caught even when the budget is spent.
	if psyche.ClassifyMessage(text).Crisis() {
		return m.crisisTurn(log, agentID, rec, text, now)
	}

	// The limiter gates here, before perception spends its completion.
	if m.limiter != nil && !m.limiter.Allow(agentID, now) {
		log.Warn().Msg("turn refused by call limiter")
		return Reply{}, ErrRateLimited
	}

	perc := m.classify(ctx, text)
	if perc.Crisis() {
		return m.crisisTurn(log, agentID, rec, text, now)
	}

	elapsed := now.Sub(rec.Emotion.UpdatedAt)
	laziness := psyche.Laziness(now)
	tolerance := psyche.Tolerance(laziness, perc.UnderlyingNeed, topicRepeated(rec.Turns, text))

	// Advance engines on working copies; nothing is committed yet.
	emotion := psyche.UpdateEmotion(m.emoCfg, rec.Emotion, stimulusFor(perc, tolerance), elapsed, now)
	if perc.HasEvent(psyche.EventApology) {
		emotion = psyche.ApplyApology(m.emoCfg, emotion, now)
	}

	quality := interactionQuality(perc)
	sinceLast := now.Sub(rec.Intimacy.LastInteractionAt)
	intimacy := rec.Intimacy
	if sev := perc.Severity(); sev >= 0.3 || perc.HasEvent(psyche.EventInsult) {
		intimacy = psyche.ApplyHostility(m.intCfg, intimacy, sev, now)
	} else {
		intimacy = psyche.GrowIntimacy(m.intCfg, intimacy, quality, emotion.Valence, sinceLast.Hours(), now)
	}

	dir := 1
	if quality < 0 {
		dir = -1
	}
	personality := psyche.Evolve(m.perCfg, rec.Personality, psyche.Feedback{
		Direction:  dir,
		Magnitude:  abs(quality),
		Activation: activationFor(perc),
		Intimacy:   intimacy.Intimacy,
		SinceShift: sinceLast,
	})

	eff := psyche.EffectiveTraits(m.perCfg, personality.Traits, laziness)
	compass := psyche.CompassInput{
		Traits:        eff,
		Emotion:       emotion,
		Intimacy:      intimacy.Intimacy,
		Offensiveness: perc.Offensiveness,
	}
	stance := psyche.Stance(compass)
	tone := psyche.ValveLevel(perc.Offensiveness, emotion.Resentment, laziness)
	constraints := psyche.ConstraintsFor(tone)
	meltdown := psyche.Meltdown(emotion)
	profile := psyche.CompileExpression(eff, intimacy.Intimacy, emotion.Resentment, tone, meltdown)

	system := prompt.Assemble(prompt.State{
		Persona:     m.Persona(),
		Emotion:     emotion,
		Intimacy:    intimacy.Intimacy,
		Stance:      stance,
		Tone:        tone,
		Constraints: constraints,
		Profile:     profile,
		Laziness:    laziness,
		Meltdown:    meltdown,
		Summary:     rec.Summary,
		Memories:    m.recentMemories(agentID),
	}, m.budget)

	params := ai.ApplyEmotionOverrides(ai.DefaultParams(), emotion)
	req := ai.Request{
		System:      system,
		Messages:    historyMessages(rec.Turns, text, m.budget.MaxShortContext),
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}

	log.Debug().
		Str("stance", stance.String()).
		Str("tone", tone.String()).
		Int("offensiveness", perc.Offensiveness).
		Float64("laziness", laziness).
		Msg("turn pipeline decided")

	out, err := ai.CompleteWithRetry(ctx, m.provider, m.pacer, req)
	if err != nil {
		// Cancelled or failed completions never touch committed state.
		log.Error().Err(err).Msg("completion failed, state discarded")
		return Reply{}, err
	}
	out = strings.TrimSpace(out)
	if m.limiter != nil {
		m.limiter.Record(agentID, m.now())
	}

	// Invariant gate: a corrupt candidate state is rejected wholesale and
	// the agent keeps its previous psyche.
	if err := firstErr(
		psyche.CheckEmotion(emotion),
		psyche.CheckPersonality(personality),
		psyche.CheckIntimacy(intimacy),
	); err != nil {
		log.Error().Err(err).Msg("candidate state rejected, keeping previous")
	} else {
		rec.Emotion = emotion
		rec.Personality = personality
		rec.Intimacy = intimacy
	}

	rec.Turns = appendTurns(rec.Turns, text, out, now)
	rec.UpdatedAt = now
	if err := m.store.SaveAgent(agentID, rec); err != nil {
		return Reply{}, err
	}

	m.recordEpisode(agentID, perc, quality, text)
	m.armReflection(h)

	return Reply{Text: out, Tone: tone, Stance: stance}, nil
}

// crisisTurn writes the fixed, pre-approved response. No engine runs, no
// tone is applied.
func (m *Manager) crisisTurn(log zerolog.Logger, agentID string, rec store.AgentRecord, text string, now time.Time) (Reply, error) {
	log.Warn().Msg("crisis signal, fixed response")
	rec.Turns = appendTurns(rec.Turns, text, prompt.CrisisResponse, now)
	rec.UpdatedAt = now
	if err := m.store.SaveAgent(agentID, rec); err != nil {
		return Reply{}, err
	}
	return Reply{Text: prompt.CrisisResponse, Crisis: true}, nil
}

// recentMemories surfaces the freshest episodes for the prompt assembler.
func (m *Manager) recentMemories(agentID string) []string {
	if m.episodes == nil {
		return nil
	}
	eps, err := m.episodes.Recent(agentID, 5)
	if err != nil {
		m.log.Error().Err(err).Str("agent", agentID).Msg("episode recall failed")
		return nil
	}
	out := make([]string, 0, len(eps))
	for _, ep := range eps {
		out = append(out, ep.Content)
	}
	return out
}

// recordEpisode writes notable turns into long-term memory.
func (m *Manager) recordEpisode(agentID string, perc psyche.PerceptionRecord, quality float64, text string) {
	if m.episodes == nil {
		return
	}
	var ep memory.Episode
	switch {
	case perc.Severity() >= 0.5:
		ep = memory.Episode{Kind: memory.KindConflict, Salience: perc.Severity(), Valence: -perc.Severity()}
	case perc.HasEvent(psyche.EventConfession):
		ep = memory.Episode{Kind: memory.KindMilestone, Salience: 0.8, Valence: quality}
	case quality > 0.5:
		ep = memory.Episode{Kind: memory.KindExchange, Salience: quality, Valence: quality}
	default:
		return
	}
	ep.AgentID = agentID
	ep.Content = prompt.TrimToChars(text, 200)
	if _, err := m.episodes.Insert(ep); err != nil {
		m.log.Error().Err(err).Str("agent", agentID).Msg("episode insert failed")
	}
}

// historyMessages converts the turn buffer plus the incoming message into
// the provider history, newest-first trimmed to the character budget.
func historyMessages(turns []store.Turn, incoming string, maxChars int) []ai.Message {
	budget := maxChars - len(incoming)
	start := len(turns)
	for start > 0 {
		next := budget - len(turns[start-1].Content)
		if next < 0 {
			break
		}
		budget = next
		start--
	}

	msgs := make([]ai.Message, 0, len(turns)-start+1)
	for _, t := range turns[start:] {
		msgs = append(msgs, ai.Message{Role: t.Role, Content: t.Content})
	}
	return append(msgs, ai.Message{Role: "user", Content: incoming})
}

func appendTurns(turns []store.Turn, user, assistant string, now time.Time) []store.Turn {
	turns = append(turns,
		store.Turn{Role: "user", Content: user, At: now},
		store.Turn{Role: "assistant", Content: assistant, At: now},
	)
	if len(turns) > maxTurnBuffer {
		turns = turns[len(turns)-maxTurnBuffer:]
	}
	return turns
}

// topicRepeated is a cheap sameness check against the previous user turn.
func topicRepeated(turns []store.Turn, incoming string) bool {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role != "user" {
			continue
		}
		prev := strings.ToLower(strings.TrimSpace(turns[i].Content))
		cur := strings.ToLower(strings.TrimSpace(incoming))
		if prev == "" || cur == "" {
			return false
		}
		n := 24
		if len(prev) < n || len(cur) < n {
			return prev == cur
		}
		return prev[:n] == cur[:n]
	}
	return false
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
