package store

import (
	"fmt"
	"time"

	"soulkit/internal/psyche"
)

// Turn is one entry of the short-term conversation buffer.
type Turn struct {
	Role    string    `json:"role"` // "user" | "assistant"
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// AgentRecord is the full persisted aggregate for one agent identity.
// Created once at initialization from configuration, mutated exactly once
// per completed turn, destroyed only by factory reset.
type AgentRecord struct {
	Emotion     psyche.EmotionState     `json:"emotion"`
	Personality psyche.PersonalityState `json:"personality"`
	Intimacy    psyche.IntimacyState    `json:"intimacy"`
	Summary     string                  `json:"summary,omitempty"`
	Turns       []Turn                  `json:"turns,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func agentKey(agentID string) string {
	return "agent:" + agentID
}

// LoadAgent fetches the record for agentID; found is false for a new agent.
func (s *FileStore) LoadAgent(agentID string) (AgentRecord, bool, error) {
	var rec AgentRecord
	found, err := s.Get(agentKey(agentID), &rec)
	if err != nil {
		return AgentRecord{}, found, err
	}
	return rec, found, nil
}

// SaveAgent persists the record for agentID and flushes to disk so a crash
// never loses a committed turn.
func (s *FileStore) SaveAgent(agentID string, rec AgentRecord) error {
	if err := s.Put(agentKey(agentID), rec); err != nil {
		return err
	}
	if err := s.Flush(); err != nil {
		return fmt.Errorf("store: save agent %s: %w", agentID, err)
	}
	return nil
}

// ResetAgent removes the agent's record. Long-term memory rows are the
// memory package's to clear; the session layer orders the two under the
// agent lock so a reset is observed atomically.
func (s *FileStore) ResetAgent(agentID string) error {
	s.Delete(agentKey(agentID))
	return s.Flush()
}
