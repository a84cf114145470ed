package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/conquest/internal/engine"
)

// TickEntry is one line of the event log.
type TickEntry struct {
	Tick   int              `json:"tick"`
	Phase  string           `json:"phase"`
	Alive  int              `json:"alive"`
	Events []engine.Event   `json:"events,omitempty"`
	Top    *engine.Standing `json:"top,omitempty"`
}

// EventLog writes one compressed JSONL entry per tick.
type EventLog struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// CreateEventLog creates (or truncates) a log file at path.
func CreateEventLog(path string) (*EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create event log: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &EventLog{f: f, enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}, nil
}

// WriteTick appends the state's tick summary and events.
func (l *EventLog) WriteTick(s *engine.WorldState) error {
	entry := TickEntry{
		Tick:   s.Tick,
		Phase:  s.Phase.String(),
		Alive:  len(s.AliveNations()),
		Events: s.Events,
	}
	if st := engine.Standings(s); len(st) > 0 {
		entry.Top = &st[0]
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return fmt.Errorf("event log closed")
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	return l.w.WriteByte('\n')
}

// Close flushes and finalizes the compressed stream.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return nil
	}
	err := l.w.Flush()
	if cerr := l.enc.Close(); err == nil {
		err = cerr
	}
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.w, l.enc, l.f = nil, nil, nil
	return err
}

// ReadEventLog decodes every entry of a closed log.
func ReadEventLog(path string) ([]TickEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []TickEntry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		var e TickEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
