// Package persistence records finished and running matches: a SQLite ledger
// of matches, standings, and events, and a zstd-compressed JSONL tick log.
// Neither is a save game; a World State is never reloaded from them.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/conquest/internal/engine"
)

// Ledger wraps a SQLite connection holding match history.
type Ledger struct {
	conn *sqlx.DB
}

// MatchRecord is one row of the matches table.
type MatchRecord struct {
	ID         string          `db:"id"`
	StartedAt  int64           `db:"started_at"` // Unix seconds
	EndedAt    int64           `db:"ended_at"`   // 0 while running
	MapType    string          `db:"map_type"`
	Width      int             `db:"width"`
	Height     int             `db:"height"`
	Nations    int             `db:"nations"`
	Difficulty float64         `db:"difficulty"`
	FinalTick  int             `db:"final_tick"`
	Winner     engine.NationID `db:"winner"`
	WinnerName string          `db:"winner_name"`
}

// EventRecord is one stored tick event.
type EventRecord struct {
	Tick        int             `db:"tick"`
	Kind        string          `db:"kind"`
	Nation      engine.NationID `db:"nation"`
	Other       engine.NationID `db:"other"`
	X           int             `db:"x"`
	Y           int             `db:"y"`
	Description string          `db:"description"`
}

// Open opens or creates a ledger at path, creating parent directories.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	l := &Ledger{conn: conn}
	if err := l.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.conn.Close()
}

func (l *Ledger) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		ended_at INTEGER NOT NULL DEFAULT 0,
		map_type TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		nations INTEGER NOT NULL,
		difficulty REAL NOT NULL,
		final_tick INTEGER NOT NULL DEFAULT 0,
		winner INTEGER NOT NULL DEFAULT -1,
		winner_name TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS standings (
		match_id TEXT NOT NULL REFERENCES matches(id),
		tick INTEGER NOT NULL,
		nation_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		tiles INTEGER NOT NULL,
		treasury REAL NOT NULL,
		strength REAL NOT NULL,
		alive INTEGER NOT NULL,
		PRIMARY KEY (match_id, tick, nation_id)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id TEXT NOT NULL REFERENCES matches(id),
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		nation INTEGER NOT NULL,
		other INTEGER NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		description TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_match_tick ON events(match_id, tick);
	`
	_, err := l.conn.Exec(schema)
	return err
}

// BeginMatch stores a header for a new match and returns its id.
func (l *Ledger) BeginMatch(s *engine.WorldState) (string, error) {
	id := uuid.NewString()
	_, err := l.conn.Exec(`INSERT INTO matches
		(id, started_at, map_type, width, height, nations, difficulty)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Unix(), s.MapType.String(), s.Width(), s.Height(), len(s.Nations), s.Difficulty,
	)
	if err != nil {
		return "", fmt.Errorf("insert match: %w", err)
	}
	return id, nil
}

// RecordStandings stores the leaderboard at the state's tick. Recording the
// same tick twice replaces the earlier rows.
func (l *Ledger) RecordStandings(matchID string, s *engine.WorldState) error {
	tx, err := l.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO standings
		(match_id, tick, nation_id, name, tiles, treasury, strength, alive)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, st := range engine.Standings(s) {
		alive := 0
		if st.Alive {
			alive = 1
		}
		if _, err := stmt.Exec(matchID, s.Tick, st.ID, st.Name, st.Tiles, st.Treasury, st.Strength, alive); err != nil {
			return fmt.Errorf("insert standing %d: %w", st.ID, err)
		}
	}
	return tx.Commit()
}

// RecordEvents appends events to the match.
func (l *Ledger) RecordEvents(matchID string, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := l.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (match_id, tick, kind, nation, other, x, y, description) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			matchID, e.Tick, e.Kind, e.Nation, e.Other, e.Pos.X, e.Pos.Y, e.Description,
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit()
}

// FinishMatch stores the result of an ended match.
func (l *Ledger) FinishMatch(matchID string, s *engine.WorldState) error {
	name := ""
	if w := s.Nation(s.Winner); w != nil {
		name = w.Name
	}
	res, err := l.conn.Exec(
		"UPDATE matches SET ended_at = ?, final_tick = ?, winner = ?, winner_name = ? WHERE id = ?",
		time.Now().UTC().Unix(), s.Tick, s.Winner, name, matchID,
	)
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish match %s: no such match", matchID)
	}
	return nil
}

// Match returns the header of one match.
func (l *Ledger) Match(matchID string) (MatchRecord, error) {
	var m MatchRecord
	err := l.conn.Get(&m, "SELECT * FROM matches WHERE id = ?", matchID)
	return m, err
}

// RecentMatches returns the most recently started matches.
func (l *Ledger) RecentMatches(limit int) ([]MatchRecord, error) {
	var out []MatchRecord
	err := l.conn.Select(&out, "SELECT * FROM matches ORDER BY started_at DESC, rowid DESC LIMIT ?", limit)
	return out, err
}

// LatestStandings returns the most recent leaderboard of a match, best first.
func (l *Ledger) LatestStandings(matchID string) ([]engine.Standing, error) {
	var out []engine.Standing
	err := l.conn.Select(&out, `SELECT nation_id, name, tiles, treasury, strength, alive
		FROM standings
		WHERE match_id = ? AND tick = (SELECT MAX(tick) FROM standings WHERE match_id = ?)
		ORDER BY tiles DESC, nation_id`,
		matchID, matchID,
	)
	return out, err
}

// RecentEvents returns the most recent N events of a match, newest first.
func (l *Ledger) RecentEvents(matchID string, limit int) ([]EventRecord, error) {
	var events []EventRecord
	err := l.conn.Select(&events,
		"SELECT tick, kind, nation, other, x, y, description FROM events WHERE match_id = ? ORDER BY id DESC LIMIT ?",
		matchID, limit,
	)
	return events, err
}
