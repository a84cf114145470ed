package persistence

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/talgya/conquest/internal/engine"
	"github.com/talgya/conquest/internal/entropy"
	"github.com/talgya/conquest/internal/world"
)

// playedState seeds two nations on a strip of plains and plays a few idle ticks.
func playedState(t *testing.T, ticks int) []*engine.WorldState {
	t.Helper()
	e := engine.New(engine.DefaultTuning(), entropy.NewSeeded(1))
	e.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	s := e.Seed(world.NewGrid(6, 1), 1, 0, world.MapContinent)

	states := []*engine.WorldState{s}
	for i := 0; i < ticks; i++ {
		s = e.AdvanceTick(s, nil)
		states = append(states, s)
	}
	return states
}

func TestLedgerRoundTrip(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	states := playedState(t, 12)
	first, last := states[0], states[len(states)-1]

	id, err := l.BeginMatch(first)
	if err != nil {
		t.Fatalf("BeginMatch: %v", err)
	}
	if err := l.RecordStandings(id, first); err != nil {
		t.Fatalf("RecordStandings: %v", err)
	}
	if err := l.RecordStandings(id, last); err != nil {
		t.Fatalf("RecordStandings: %v", err)
	}
	// Phase change events from the tick that ended free expansion.
	var withEvents *engine.WorldState
	for _, s := range states {
		if len(s.Events) > 0 {
			withEvents = s
		}
	}
	if withEvents == nil {
		t.Fatal("expected at least one tick with events")
	}
	if err := l.RecordEvents(id, withEvents.Events); err != nil {
		t.Fatalf("RecordEvents: %v", err)
	}
	if err := l.RecordEvents(id, nil); err != nil {
		t.Fatalf("RecordEvents(nil): %v", err)
	}

	// Force a result so FinishMatch has a winner to store.
	ended := last.Clone()
	ended.Phase, ended.Winner = engine.PhaseEnded, 1
	if err := l.FinishMatch(id, ended); err != nil {
		t.Fatalf("FinishMatch: %v", err)
	}

	m, err := l.Match(id)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if m.Nations != 2 || m.Width != 6 || m.MapType != "continent" || m.FinalTick != 12 {
		t.Fatalf("match = %+v", m)
	}
	if m.Winner != 1 || m.WinnerName != "Bot 1" || m.EndedAt == 0 {
		t.Fatalf("result = %+v", m)
	}

	st, err := l.LatestStandings(id)
	if err != nil {
		t.Fatalf("LatestStandings: %v", err)
	}
	if len(st) != 2 || !st[0].Alive || st[0].Treasury != last.Nation(st[0].ID).Treasury {
		t.Fatalf("standings = %+v", st)
	}

	evs, err := l.RecentEvents(id, 10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(evs) != len(withEvents.Events) || evs[0].Tick != withEvents.Tick {
		t.Fatalf("events = %+v", evs)
	}

	ms, err := l.RecentMatches(5)
	if err != nil || len(ms) != 1 || ms[0].ID != id {
		t.Fatalf("recent matches = %+v, %v", ms, err)
	}

	if err := l.FinishMatch("missing", ended); err == nil {
		t.Fatal("finishing an unknown match should fail")
	}
}

func TestEventLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "match.jsonl.zst")
	log, err := CreateEventLog(path)
	if err != nil {
		t.Fatalf("CreateEventLog: %v", err)
	}

	states := playedState(t, 10)
	for _, s := range states[1:] {
		if err := log.WriteTick(s); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := log.WriteTick(states[1]); err == nil {
		t.Fatal("writing to a closed log should fail")
	}

	entries, err := ReadEventLog(path)
	if err != nil {
		t.Fatalf("ReadEventLog: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Tick != 1 || entries[0].Phase != "free-expansion" || entries[0].Alive != 2 {
		t.Fatalf("first entry = %+v", entries[0])
	}
	last := entries[9]
	if last.Phase != "active" || len(last.Events) == 0 || last.Events[0].Kind != engine.EventPhase {
		t.Fatalf("phase change entry = %+v", last)
	}
	if last.Top == nil || last.Top.Tiles != 1 {
		t.Fatalf("top = %+v", last.Top)
	}
}
