package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"soulkit/internal/ai"
	"soulkit/internal/memory"
	"soulkit/internal/prompt"
)

// summarizePrompt merges the turn buffer into the running relationship
// summary. No personality, just condensation.
const summarizePrompt = `You are a summarizer. Merge the "Current summary" with the "Recent conversation" into one concise relationship summary, written from the companion's point of view. Output ONLY the new summary text, no preamble. Keep important facts, promises, conflicts and emotional turns. Maximum 2 short paragraphs.`

const summarizeTimeout = 30 * time.Second

// Episode store upkeep, run after each reflection and on startup.
const (
	episodeScoreFloor   = 0.05
	episodeDecayLambda  = 0.02
	maxEpisodesPerAgent = 200
)

// armReflection resets the idle timer for an agent. Caller holds the
// handle lock. Bumping the generation invalidates a timer that already
// fired but is still waiting on the lock.
func (m *Manager) armReflection(h *agentHandle) {
	if m.reflectIdle <= 0 {
		return
	}
	if h.reflect != nil {
		h.reflect.Stop()
	}
	h.reflectGen++
	id, gen := h.id, h.reflectGen
	h.reflect = time.AfterFunc(m.reflectIdle, func() {
		if err := m.reflect(context.Background(), id, gen, true); err != nil {
			m.log.Error().Err(err).Str("agent", id).Msg("idle reflection failed")
		}
	})
}

// Reflect condenses the agent's turn buffer into its relationship summary
// and records a reflection episode, then clears the buffer. A no-op when
// there is nothing new to condense.
func (m *Manager) Reflect(ctx context.Context, agentID string) error {
	return m.reflect(ctx, agentID, 0, false)
}

func (m *Manager) reflect(ctx context.Context, agentID string, gen uint64, checkGen bool) error {
	h := m.handle(agentID)
	h.mu.Lock()
	defer h.mu.Unlock()

	// A turn landed after this timer fired; its own timer supersedes us.
	if checkGen && gen != h.reflectGen {
		return nil
	}

	rec, found, err := m.store.LoadAgent(agentID)
	if err != nil {
		return err
	}
	if !found || len(rec.Turns) == 0 {
		return nil
	}

	if m.limiter != nil && !m.limiter.Allow(agentID, m.now()) {
		m.log.Debug().Str("agent", agentID).Msg("reflection skipped, call budget spent")
		return nil
	}

	var transcript strings.Builder
	for _, t := range rec.Turns {
		if t.Role == "assistant" {
			transcript.WriteString("Companion: ")
		} else {
			transcript.WriteString("User: ")
		}
		transcript.WriteString(t.Content)
		transcript.WriteString("\n")
	}

	content := "Current summary:\n" + rec.Summary + "\n\nRecent conversation:\n" + transcript.String()
	if len(content) > 8000 {
		content = content[len(content)-8000:]
	}

	cctx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	if m.pacer != nil {
		if err := m.pacer.Wait(cctx); err != nil {
			return err
		}
	}
	out, err := m.provider.Complete(cctx, ai.Request{
		System:      summarizePrompt,
		Messages:    []ai.Message{{Role: "user", Content: content}},
		Temperature: 0.4,
		MaxTokens:   320,
	})
	if err != nil {
		return err
	}
	if m.limiter != nil {
		m.limiter.Record(agentID, m.now())
	}
	merged := strings.TrimSpace(out)
	if merged == "" {
		return fmt.Errorf("session: summarizer returned empty")
	}

	rec.Summary = prompt.TrimToChars(merged, m.budget.MaxSummary)
	rec.Turns = nil
	rec.UpdatedAt = m.now()
	if err := m.store.SaveAgent(agentID, rec); err != nil {
		return err
	}

	if m.episodes != nil {
		weight := clamp01((rec.Emotion.Valence + 1) / 2)
		_, err := m.episodes.Insert(memory.Episode{
			AgentID:  agentID,
			Kind:     memory.KindReflection,
			Content:  prompt.TrimToChars(merged, 400),
			Salience: 0.4 + 0.3*weight,
			Valence:  rec.Emotion.Valence,
		})
		if err != nil {
			m.log.Error().Err(err).Str("agent", agentID).Msg("reflection episode insert failed")
		}
		m.sweepEpisodes(agentID)
	}

	m.log.Info().Str("agent", agentID).Int("summary_len", len(rec.Summary)).Msg("reflection merged")
	return nil
}

// sweepEpisodes decays faded episodes and caps the per-agent count.
func (m *Manager) sweepEpisodes(agentID string) {
	updated, deleted, err := m.episodes.DecaySweep(episodeScoreFloor, episodeDecayLambda)
	if err != nil {
		m.log.Error().Err(err).Msg("episode decay sweep failed")
		return
	}
	if err := m.episodes.EnforceLimit(agentID, maxEpisodesPerAgent); err != nil {
		m.log.Error().Err(err).Str("agent", agentID).Msg("episode limit enforcement failed")
		return
	}
	if updated+deleted > 0 {
		m.log.Debug().Int("updated", updated).Int("deleted", deleted).Msg("episode decay sweep")
	}
}

// Maintain runs the episode decay sweep across every agent that has
// episodes on record. Called once at startup to catch up after downtime.
func (m *Manager) Maintain() error {
	if m.episodes == nil {
		return nil
	}
	ids, err := m.episodes.ActiveAgentIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		m.sweepEpisodes(id)
	}
	return nil
}
