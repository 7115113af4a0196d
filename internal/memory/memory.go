// Package memory persists episodic history in SQLite. Each episode is a
// condensed record of something that happened between the agent and its
// human: a notable exchange, a reflection summary, a conflict. Episodes
// feed the prompt assembler as long-term context and decay over time so
// the table stays at conversational scale.
package memory

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Kind labels what produced an episode.
type Kind string

const (
	KindExchange   Kind = "exchange"
	KindReflection Kind = "reflection"
	KindConflict   Kind = "conflict"
	KindMilestone  Kind = "milestone"
)

// Episode is one stored memory row.
type Episode struct {
	ID        int64
	AgentID   string
	Kind      Kind
	Content   string
	Salience  float64
	Valence   float64
	CreatedAt time.Time
}

// Store wraps a SQLite connection for episodic persistence.
type Store struct {
	db *sql.DB
}

const timeLayout = "2006-01-02 15:04:05"

// Open opens (or creates) the episode database and runs migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("memory: mkdir %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("memory: open db: %w", err)
	}

	// Single connection avoids write contention at this scale.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)

	var version int
	s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)

	if version < 1 {
		if _, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS episodes (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				agent_id   TEXT NOT NULL,
				kind       TEXT NOT NULL DEFAULT 'exchange',
				content    TEXT NOT NULL,
				salience   REAL NOT NULL DEFAULT 0.5,
				valence    REAL NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL DEFAULT (datetime('now'))
			);
			CREATE INDEX IF NOT EXISTS idx_episodes_agent   ON episodes(agent_id);
			CREATE INDEX IF NOT EXISTS idx_episodes_created ON episodes(created_at);
		`); err != nil {
			return err
		}
		s.db.Exec(`INSERT INTO schema_version (version) VALUES (1)`)
	}

	return nil
}

// Insert stores a new episode and returns its ID.
func (s *Store) Insert(e Episode) (int64, error) {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := s.db.Exec(`
		INSERT INTO episodes (agent_id, kind, content, salience, valence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.AgentID, string(e.Kind), e.Content, e.Salience, e.Valence,
		created.Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const episodeCols = `id, agent_id, kind, content, salience, valence, created_at`

func scanEpisodes(rows *sql.Rows) ([]Episode, error) {
	defer rows.Close()

	var results []Episode
	for rows.Next() {
		var e Episode
		var created string
		if err := rows.Scan(&e.ID, &e.AgentID, (*string)(&e.Kind), &e.Content,
			&e.Salience, &e.Valence, &created); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(timeLayout, created)
		results = append(results, e)
	}
	return results, rows.Err()
}

// Recent returns the N most recent episodes for an agent, newest first.
func (s *Store) Recent(agentID string, limit int) ([]Episode, error) {
	rows, err := s.db.Query(`
		SELECT `+episodeCols+` FROM episodes
		WHERE agent_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`,
		agentID, limit,
	)
	if err != nil {
		return nil, err
	}
	return scanEpisodes(rows)
}

// Since returns episodes created at or after the cutoff, oldest first.
func (s *Store) Since(agentID string, cutoff time.Time) ([]Episode, error) {
	rows, err := s.db.Query(`
		SELECT `+episodeCols+` FROM episodes
		WHERE agent_id = ? AND created_at >= ?
		ORDER BY created_at ASC, id ASC`,
		agentID, cutoff.Format(timeLayout),
	)
	if err != nil {
		return nil, err
	}
	return scanEpisodes(rows)
}

// ActiveAgentIDs returns all distinct agent IDs with stored episodes.
func (s *Store) ActiveAgentIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT agent_id FROM episodes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DecaySweep fades salience exponentially with age and prunes episodes
// that have decayed below minScore. High-salience episodes fade slower.
// Returns counts of updated and deleted rows.
func (s *Store) DecaySweep(minScore, lambda float64) (updated int, deleted int, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT id, salience, created_at FROM episodes`)
	if err != nil {
		return 0, 0, err
	}

	type scored struct {
		id    int64
		score float64
	}
	var updates []scored
	var toDelete []int64

	now := time.Now().UTC()
	for rows.Next() {
		var id int64
		var salience float64
		var created string
		if err := rows.Scan(&id, &salience, &created); err != nil {
			rows.Close()
			return 0, 0, err
		}

		createdAt, _ := time.Parse(timeLayout, created)
		days := now.Sub(createdAt).Hours() / 24.0
		score := salience * math.Exp(-lambda*days/(salience+0.1))

		if score < minScore {
			toDelete = append(toDelete, id)
		} else {
			updates = append(updates, scored{id, score})
		}
	}
	rows.Close()

	stmt, err := tx.Prepare(`UPDATE episodes SET salience = ? WHERE id = ?`)
	if err != nil {
		return 0, 0, err
	}
	for _, u := range updates {
		stmt.Exec(u.score, u.id)
	}
	stmt.Close()

	for _, id := range toDelete {
		tx.Exec(`DELETE FROM episodes WHERE id = ?`, id)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return len(updates), len(toDelete), nil
}

// EnforceLimit deletes the oldest low-salience episodes past maxCount.
func (s *Store) EnforceLimit(agentID string, maxCount int) error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM episodes WHERE agent_id = ?`, agentID).Scan(&count); err != nil {
		return err
	}
	if count <= maxCount {
		return nil
	}

	excess := count - maxCount
	_, err := s.db.Exec(`
		DELETE FROM episodes WHERE id IN (
			SELECT id FROM episodes
			WHERE agent_id = ?
			ORDER BY salience ASC, created_at ASC
			LIMIT ?
		)`, agentID, excess,
	)
	return err
}

// WipeAgent removes every episode for an agent. Used by factory reset.
func (s *Store) WipeAgent(agentID string) error {
	_, err := s.db.Exec(`DELETE FROM episodes WHERE agent_id = ?`, agentID)
	return err
}

// Close shuts down the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
