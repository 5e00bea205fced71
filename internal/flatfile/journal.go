package flatfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// journalEntry is one line of the append-only mutation journal.
type journalEntry struct {
	EntryID string    `json:"entry_id"`
	Table   string    `json:"table"`
	Op      string    `json:"op"`
	Detail  string    `json:"detail,omitempty"`
	Actor   string    `json:"actor,omitempty"`
	At      time.Time `json:"at"`
}

// journal records every mutation as a JSONL line. The file is append-only;
// it never participates in table addressing.
type journal struct {
	mu   sync.Mutex
	path string
}

func newJournal(path string) *journal {
	return &journal{path: path}
}

// newEntryID generates a UUID v7, falling back to v4 if v7 generation fails.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// record appends one entry. Journal failures are surfaced to the caller:
// the mutation already happened, but the gap must not pass silently.
func (j *journal) record(table, op, detail, actor string) error {
	entry := journalEntry{
		EntryID: newEntryID(),
		Table:   table,
		Op:      op,
		Detail:  detail,
		Actor:   actor,
		At:      time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling journal entry: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing journal entry: %w", err)
	}
	return nil
}

// entries reads the whole journal, skipping malformed lines.
func (j *journal) entries() ([]journalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	var out []journalEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e journalEntry
		if err := json.Unmarshal(line, &e); err != nil {
			// Skip malformed lines; a torn tail must not hide the rest.
			continue
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return out, nil
}
