package memory

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "episodes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndRecent(t *testing.T) {
	s := openTemp(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, content := range []string{"first", "second", "third"} {
		_, err := s.Insert(Episode{
			AgentID:   "a",
			Kind:      KindExchange,
			Content:   content,
			Salience:  0.5,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	got, err := s.Recent("a", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Content)
	assert.Equal(t, "second", got[1].Content)
}

func TestRecentScopedByAgent(t *testing.T) {
	s := openTemp(t)
	_, err := s.Insert(Episode{AgentID: "a", Kind: KindExchange, Content: "mine"})
	require.NoError(t, err)
	_, err = s.Insert(Episode{AgentID: "b", Kind: KindExchange, Content: "theirs"})
	require.NoError(t, err)

	got, err := s.Recent("a", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "mine", got[0].Content)
}

func TestSinceOrdersOldestFirst(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i, content := range []string{"old", "mid", "new"} {
		_, err := s.Insert(Episode{
			AgentID:   "a",
			Kind:      KindReflection,
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		})
		require.NoError(t, err)
	}

	got, err := s.Since("a", base.Add(12*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "mid", got[0].Content)
	assert.Equal(t, "new", got[1].Content)
}

func TestDecaySweepPrunesFaded(t *testing.T) {
	s := openTemp(t)

	old := time.Now().UTC().Add(-90 * 24 * time.Hour)
	_, err := s.Insert(Episode{AgentID: "a", Kind: KindExchange, Content: "faded", Salience: 0.2, CreatedAt: old})
	require.NoError(t, err)
	_, err = s.Insert(Episode{AgentID: "a", Kind: KindMilestone, Content: "fresh", Salience: 0.9})
	require.NoError(t, err)

	updated, deleted, err := s.DecaySweep(0.05, 0.02)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, 1, deleted)

	got, err := s.Recent("a", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Content)
}

func TestEnforceLimitDropsLowSalience(t *testing.T) {
	s := openTemp(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	saliences := []float64{0.1, 0.9, 0.5}
	for i, sal := range saliences {
		_, err := s.Insert(Episode{
			AgentID:   "a",
			Kind:      KindExchange,
			Content:   "ep",
			Salience:  sal,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	require.NoError(t, s.EnforceLimit("a", 2))

	got, err := s.Recent("a", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.GreaterOrEqual(t, e.Salience, 0.5)
	}
}

func TestWipeAgent(t *testing.T) {
	s := openTemp(t)
	_, err := s.Insert(Episode{AgentID: "a", Kind: KindExchange, Content: "x"})
	require.NoError(t, err)
	_, err = s.Insert(Episode{AgentID: "b", Kind: KindExchange, Content: "y"})
	require.NoError(t, err)

	require.NoError(t, s.WipeAgent("a"))

	gone, err := s.Recent("a", 10)
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := s.Recent("b", 10)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	ids, err := s.ActiveAgentIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}
