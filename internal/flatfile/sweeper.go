package flatfile

import (
	"fmt"
	"strings"

	"github.com/dukaforge/assetledger/pkg/types"
)

// SweepResult reports the outcome of rewriting one table during a sweep.
// A sweep is best-effort: one failing table does not stop the rest, but the
// failure is carried in Err instead of being dropped.
type SweepResult struct {
	Table       string
	RowsChanged int
	Err         error
}

// Sweeper keeps attachment-filename references inside tables consistent with
// the attachment filesystem. It is invoked by the file collaborator whenever
// an attachment is deleted or renamed.
type Sweeper struct {
	backend *Backend
}

// OnFileRemoved clears every field equal to name across all tables.
func (s *Sweeper) OnFileRemoved(name string) ([]SweepResult, error) {
	return s.sweep(name, "")
}

// OnFileRenamed rewrites every field equal to oldName to newName.
func (s *Sweeper) OnFileRenamed(oldName, newName string) ([]SweepResult, error) {
	return s.sweep(oldName, newName)
}

// sweep rewrites references to oldName in every table. The scan is
// unconditional: a reference can sit in any column of any table, and the
// reverse index only covers declared attachment columns, so trusting it here
// would let references survive.
func (s *Sweeper) sweep(oldName, newName string) ([]SweepResult, error) {
	if err := s.backend.checkAttached(); err != nil {
		return nil, err
	}
	if oldName == "" {
		return nil, fmt.Errorf("attachment name must not be empty: %w", types.ErrInvalidData)
	}

	all, err := s.backend.Tables()
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, len(all))
	for _, name := range all {
		changed, err := s.sweepTable(name, oldName, newName)
		results = append(results, SweepResult{Table: name, RowsChanged: changed, Err: err})
	}
	return results, nil
}

// sweepTable rewrites one table under its lock. Returns the number of rows
// changed.
func (s *Sweeper) sweepTable(name, oldName, newName string) (int, error) {
	lock := s.backend.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	f, err := Load(s.backend.tablePath(name))
	if err != nil {
		return 0, err
	}
	schema := s.backend.registry.Lookup(name, f.Header)

	changed := 0
	for _, row := range f.Rows {
		rowChanged := false
		for i, field := range row {
			if strings.TrimSpace(field) == oldName {
				row[i] = newName
				rowChanged = true
			}
		}
		if rowChanged {
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}

	if err := Save(s.backend.tablePath(name), f); err != nil {
		return 0, err
	}
	if err := s.backend.index.reindexTable(name, f, schema); err != nil {
		s.backend.logger.Warn("reverse index update failed", "table", name, "err", err)
	}
	detail := oldName
	if newName != "" {
		detail = oldName + " -> " + newName
	}
	if err := s.backend.journal.record(name, "sweep", detail, ""); err != nil {
		return changed, err
	}
	return changed, nil
}
