// Package session runs the per-turn pipeline: perceive the incoming
// message, advance the psyche engines, compile the expression profile,
// assemble the prompt and call the completion service. State is committed
// only after a turn fully succeeds.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"soulkit/internal/ai"
	"soulkit/internal/config"
	"soulkit/internal/memory"
	"soulkit/internal/prompt"
	"soulkit/internal/psyche"
	"soulkit/internal/store"
)

// ErrRateLimited is returned when the call limiter refuses a turn. The
// caller decides how to surface it; no state is touched.
var ErrRateLimited = errors.New("session: completion rate limit reached")

// Options wires a Manager. Provider and stores are required; nil Limiter
// and Pacer disable those guards (tests).
type Options struct {
	Store    *store.FileStore
	Episodes *memory.Store
	Provider ai.Provider
	Limiter  *ai.CallLimiter
	Pacer    *ai.Pacer
	Genesis  *config.Genesis
	Logger   zerolog.Logger

	// ReflectionIdle is how long an agent sits quiet before the idle
	// summarizer runs. Zero disables reflection.
	ReflectionIdle time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Manager owns every live agent. All turn processing for one agent is
// serialized behind its handle lock; different agents proceed in parallel.
type Manager struct {
	store    *store.FileStore
	episodes *memory.Store
	provider ai.Provider
	limiter  *ai.CallLimiter
	pacer    *ai.Pacer
	genesis  *config.Genesis
	log      zerolog.Logger

	emoCfg psyche.EmotionConfig
	intCfg psyche.IntimacyConfig
	perCfg psyche.PersonalityConfig
	budget prompt.Budget

	reflectIdle time.Duration
	now         func() time.Time

	mu     sync.Mutex
	agents map[string]*agentHandle
}

type agentHandle struct {
	mu         sync.Mutex
	id         string
	reflect    *time.Timer
	reflectGen uint64
}

// NewManager builds a Manager from options and engine defaults.
func NewManager(opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:       opts.Store,
		episodes:    opts.Episodes,
		provider:    opts.Provider,
		limiter:     opts.Limiter,
		pacer:       opts.Pacer,
		genesis:     opts.Genesis,
		log:         opts.Logger,
		emoCfg:      psyche.DefaultEmotionConfig(),
		intCfg:      psyche.DefaultIntimacyConfig(),
		perCfg:      psyche.DefaultPersonalityConfig(),
		budget:      prompt.DefaultBudget(),
		reflectIdle: opts.ReflectionIdle,
		now:         now,
		agents:      make(map[string]*agentHandle),
	}
}

func (m *Manager) handle(agentID string) *agentHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.agents[agentID]
	if !ok {
		h = &agentHandle{id: agentID}
		m.agents[agentID] = h
	}
	return h
}

// loadOrCreate returns the agent record, birthing it from genesis on
// first contact. Caller holds the handle lock.
func (m *Manager) loadOrCreate(agentID string, now time.Time) (store.AgentRecord, error) {
	rec, found, err := m.store.LoadAgent(agentID)
	if err != nil {
		return store.AgentRecord{}, err
	}
	if found {
		return rec, nil
	}

	rec = store.AgentRecord{
		Emotion:     m.genesis.NewEmotion(now),
		Personality: m.genesis.NewPersonality(now),
		Intimacy:    psyche.IntimacyState{GrowthCoefficient: 1, LastInteractionAt: now},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.log.Info().Str("agent", agentID).Msg("agent born from genesis")
	if err := m.store.SaveAgent(agentID, rec); err != nil {
		return store.AgentRecord{}, err
	}
	return rec, nil
}

// Persona returns the authored identity used by the prompt assembler.
func (m *Manager) Persona() prompt.Persona {
	return prompt.Persona{
		Name:     m.genesis.Name,
		Bio:      m.genesis.Bio,
		Speech:   m.genesis.Speech,
		Language: m.genesis.Language,
	}
}

// FactoryReset destroys an agent: psyche state, turn buffer and every
// episode. The genesis file is untouched; the next turn births a fresh
// agent from it.
func (m *Manager) FactoryReset(agentID string) error {
	h := m.handle(agentID)
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.reflect != nil {
		h.reflect.Stop()
		h.reflect = nil
	}
	h.reflectGen++
	if err := m.store.ResetAgent(agentID); err != nil {
		return err
	}
	if m.episodes != nil {
		if err := m.episodes.WipeAgent(agentID); err != nil {
			return err
		}
	}
	m.log.Info().Str("agent", agentID).Msg("factory reset")
	return nil
}

// Close stops all reflection timers.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.agents {
		h.mu.Lock()
		if h.reflect != nil {
			h.reflect.Stop()
			h.reflect = nil
		}
		h.mu.Unlock()
	}
}
