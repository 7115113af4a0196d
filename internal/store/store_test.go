package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulkit/internal/psyche"
)

func openTemp(t *testing.T) *FileStore {
	t.Helper()
	s, err := OpenWithInterval(filepath.Join(t.TempDir(), "state.json"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAgentRoundTrip(t *testing.T) {
	s := openTemp(t)

	_, found, err := s.LoadAgent("mara")
	require.NoError(t, err)
	assert.False(t, found)

	rec := AgentRecord{
		Emotion:     psyche.EmotionState{Valence: 0.4, Arousal: 0.6, Resentment: 0.1},
		Personality: psyche.PersonalityState{Traits: psyche.TraitSet{Openness: 0.7}, Plasticity: 0.8},
		Intimacy:    psyche.IntimacyState{Intimacy: 0.3, GrowthCoefficient: 1},
		Summary:     "likes jazz",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.SaveAgent("mara", rec))

	got, found, err := s.LoadAgent("mara")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.Emotion.Valence, got.Emotion.Valence)
	assert.Equal(t, rec.Personality.Traits.Openness, got.Personality.Traits.Openness)
	assert.Equal(t, "likes jazz", got.Summary)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	s, err := OpenWithInterval(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.SaveAgent("a", AgentRecord{Summary: "hello"}))
	require.NoError(t, s.Close())

	s2, err := OpenWithInterval(path, 0)
	require.NoError(t, err)
	defer s2.Close()

	got, found, err := s2.LoadAgent("a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "hello", got.Summary)
}

func TestResetAgentClearsRecord(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.SaveAgent("a", AgentRecord{Summary: "x"}))
	require.NoError(t, s.ResetAgent("a"))

	_, found, err := s.LoadAgent("a")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCorruptFileSurfacesError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := OpenWithInterval(path, 0)
	assert.Error(t, err)
}

func TestFlushIsAtomicAndIdempotent(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Put("k", map[string]int{"v": 1}))
	require.NoError(t, s.Flush())
	// Unchanged data: second flush is a no-op and must not error.
	require.NoError(t, s.Flush())

	// No stray tmp file left behind.
	matches, _ := filepath.Glob(s.file + ".tmp")
	assert.Empty(t, matches)
}

func TestFailedFlushStaysDirty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	s, err := OpenWithInterval(path, 0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("k", "v1"))
	require.NoError(t, s.Flush())

	// Point the store at an unwritable location so the next flush fails.
	s.file = filepath.Join(dir, "gone", "state.json")
	require.NoError(t, s.Put("k", "v2"))
	require.Error(t, s.Flush())

	// After the path comes back the same data must still flush to disk.
	s.file = path
	require.NoError(t, s.Flush())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "v2")
}
