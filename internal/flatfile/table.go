package flatfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dukaforge/assetledger/pkg/types"
)

// table implements types.Table for one flat file. It holds no row state of
// its own: every operation is load-mutate-save under the table's mutex.
type table struct {
	name    string
	backend *Backend
}

func (t *table) Name() string {
	return t.name
}

// load reads the file and resolves its schema. Strict tables get the width
// check here so ragged rows surface before any mutation.
func (t *table) load() (*File, types.TableSchema, error) {
	f, err := Load(t.backend.tablePath(t.name))
	if err != nil {
		return nil, types.TableSchema{}, err
	}
	schema := t.backend.registry.Lookup(t.name, f.Header)
	if schema.Strict {
		if err := f.CheckWidths(); err != nil {
			return nil, types.TableSchema{}, err
		}
	}
	return f, schema, nil
}

func (t *table) Header() ([]string, error) {
	if err := t.backend.checkAttached(); err != nil {
		return nil, err
	}
	f, _, err := t.load()
	if err != nil {
		return nil, err
	}
	return f.Header, nil
}

func (t *table) Rows() ([]types.Row, error) {
	if err := t.backend.checkAttached(); err != nil {
		return nil, err
	}
	f, schema, err := t.load()
	if err != nil {
		return nil, err
	}
	return rowsOf(f, schema), nil
}

func (t *table) Get(id string) (types.Row, error) {
	if err := t.backend.checkAttached(); err != nil {
		return types.Row{}, err
	}
	f, schema, err := t.load()
	if err != nil {
		return types.Row{}, err
	}
	idIdx := types.ColumnIndex(f.Header, schema.IDColumn)
	if idIdx < 0 {
		return types.Row{}, fmt.Errorf("table %s has no id column: %w", t.name, types.ErrInvalidSchema)
	}
	i := findByID(f, idIdx, id)
	if i < 0 {
		return types.Row{}, fmt.Errorf("id %s in %s: %w", id, t.name, types.ErrRowNotFound)
	}
	return makeRow(i, f.Rows[i], idIdx), nil
}

func (t *table) Append(fields []string) (types.Row, error) {
	if err := t.backend.checkAttached(); err != nil {
		return types.Row{}, err
	}
	lock := t.backend.lockFor(t.name)
	lock.Lock()
	defer lock.Unlock()

	f, schema, err := t.load()
	if err != nil {
		return types.Row{}, err
	}
	row, err := t.appendLocked(f, schema, fields)
	if err != nil {
		return types.Row{}, err
	}
	if err := t.saveLocked(f, schema, "append", row.ID); err != nil {
		return types.Row{}, err
	}
	return row, nil
}

// appendLocked assigns the next id, defaults the status, stamps the actor,
// and adds the row to f. The caller saves.
func (t *table) appendLocked(f *File, schema types.TableSchema, fields []string) (types.Row, error) {
	row, err := normalizeFields(fields, f.Width())
	if err != nil {
		return types.Row{}, err
	}
	idIdx := types.ColumnIndex(f.Header, schema.IDColumn)
	if idIdx >= 0 {
		row[idIdx] = strconv.Itoa(nextID(f, idIdx))
	}
	if statusIdx := types.ColumnIndex(f.Header, schema.StatusColumn); statusIdx >= 0 {
		if strings.TrimSpace(row[statusIdx]) == "" {
			row[statusIdx] = types.StatusOpen.String()
		}
	}
	if userIdx := types.ColumnIndex(f.Header, schema.UserColumn); userIdx >= 0 {
		if actor := t.actor(); actor != "" && strings.TrimSpace(row[userIdx]) == "" {
			row[userIdx] = actor
		}
	}
	f.Rows = append(f.Rows, row)
	return makeRow(len(f.Rows)-1, row, idIdx), nil
}

func (t *table) Update(ref types.RowRef, fields []string) error {
	if err := t.backend.checkAttached(); err != nil {
		return err
	}
	events, err := t.update(ref, fields)
	if err != nil {
		return err
	}
	// Events run outside the table lock: the sweep they trigger takes the
	// lock of every table it rewrites, including possibly this one.
	return t.backend.emit(events)
}

func (t *table) update(ref types.RowRef, fields []string) ([]FileReferenceChanged, error) {
	lock := t.backend.lockFor(t.name)
	lock.Lock()
	defer lock.Unlock()

	f, schema, err := t.load()
	if err != nil {
		return nil, err
	}
	idIdx := types.ColumnIndex(f.Header, schema.IDColumn)

	var target int
	if pos, ok := ref.Position(); ok {
		switch {
		case pos < 0 || pos > len(f.Rows):
			return nil, fmt.Errorf("%s in %s (%d data rows): %w",
				ref, t.name, len(f.Rows), types.ErrInvalidRowIndex)
		case pos == len(f.Rows):
			// Grow-on-write: one past the end appends.
			row, err := t.appendLocked(f, schema, fields)
			if err != nil {
				return nil, err
			}
			return nil, t.saveLocked(f, schema, "append", row.ID)
		default:
			target = pos
		}
	} else {
		id, _ := ref.ID()
		if idIdx < 0 {
			return nil, fmt.Errorf("table %s has no id column: %w", t.name, types.ErrInvalidSchema)
		}
		target = findByID(f, idIdx, id)
		if target < 0 {
			return nil, fmt.Errorf("%s in %s: %w", ref, t.name, types.ErrRowNotFound)
		}
	}

	row, err := normalizeFields(fields, f.Width())
	if err != nil {
		return nil, err
	}
	old := f.Rows[target]
	// A blank id field keeps the row's identity instead of erasing it.
	if idIdx >= 0 && idIdx < len(old) && strings.TrimSpace(row[idIdx]) == "" {
		row[idIdx] = old[idIdx]
	}
	f.Rows[target] = row

	events := signedReferenceEvents(t.name, f.Header, schema, old, row)
	rowID := ""
	if idIdx >= 0 {
		rowID = strings.TrimSpace(row[idIdx])
	}
	if err := t.saveLocked(f, schema, "update", rowID); err != nil {
		return nil, err
	}
	return events, nil
}

func (t *table) SetStatus(id string, status types.Status) error {
	if err := t.backend.checkAttached(); err != nil {
		return err
	}
	lock := t.backend.lockFor(t.name)
	lock.Lock()
	defer lock.Unlock()

	f, schema, err := t.load()
	if err != nil {
		return err
	}
	idIdx := types.ColumnIndex(f.Header, schema.IDColumn)
	statusIdx := types.ColumnIndex(f.Header, schema.StatusColumn)
	if idIdx < 0 || statusIdx < 0 {
		return fmt.Errorf("table %s needs id and status columns: %w", t.name, types.ErrInvalidSchema)
	}
	i := findByID(f, idIdx, id)
	if i < 0 {
		return fmt.Errorf("id %s in %s: %w", id, t.name, types.ErrRowNotFound)
	}

	from, err := types.ParseStatus(strings.TrimSpace(f.Rows[i][statusIdx]))
	if err != nil {
		// Legacy rows hold the odd blank or stray value; the policy sees
		// the zero status and decides.
		from = 0
	}
	if err := schema.Policy()(from, status); err != nil {
		return fmt.Errorf("%s -> %s in %s: %w", from, status, t.name, err)
	}
	f.Rows[i][statusIdx] = status.String()
	return t.saveLocked(f, schema, "status", strings.TrimSpace(f.Rows[i][idIdx]))
}

func (t *table) Search(token string) ([]types.Row, error) {
	if err := t.backend.checkAttached(); err != nil {
		return nil, err
	}
	if err := validateToken(token); err != nil {
		return nil, err
	}
	f, schema, err := t.load()
	if err != nil {
		return nil, err
	}
	idIdx := types.ColumnIndex(f.Header, schema.IDColumn)
	var matches []types.Row
	for i, row := range f.Rows {
		if rowMatches(row, token) {
			matches = append(matches, makeRow(i, row, idIdx))
		}
	}
	return matches, nil
}

func (t *table) SearchAndDelete(token string) (int, error) {
	if err := t.backend.checkAttached(); err != nil {
		return 0, err
	}
	if err := validateToken(token); err != nil {
		return 0, err
	}
	lock := t.backend.lockFor(t.name)
	lock.Lock()
	defer lock.Unlock()

	f, schema, err := t.load()
	if err != nil {
		return 0, err
	}
	kept := f.Rows[:0:0]
	removed := 0
	for _, row := range f.Rows {
		if rowMatches(row, token) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	if removed == 0 {
		return 0, nil
	}
	f.Rows = kept
	if err := t.saveLocked(f, schema, "purge", token); err != nil {
		return 0, err
	}
	return removed, nil
}

// saveLocked persists the table, refreshes its slice of the reverse index,
// and journals the mutation. Index failures degrade the advisory reference
// listing and are logged, not raised; the mutation itself has already
// succeeded.
func (t *table) saveLocked(f *File, schema types.TableSchema, op, detail string) error {
	if err := Save(t.backend.tablePath(t.name), f); err != nil {
		return err
	}
	if err := t.backend.index.reindexTable(t.name, f, schema); err != nil {
		t.backend.logger.Warn("reverse index update failed", "table", t.name, "err", err)
	}
	if err := t.backend.journal.record(t.name, op, detail, t.actor()); err != nil {
		return fmt.Errorf("journaling %s on %s: %w", op, t.name, err)
	}
	return nil
}

func (t *table) actor() string {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if t.backend.identity == nil {
		return ""
	}
	return t.backend.identity.CurrentActor()
}

// signedReferenceEvents reports a rewritten signed-document reference. Only
// the schema's signed column triggers the rename-and-sweep flow; edits to
// other attachment columns change the row, not the disk.
func signedReferenceEvents(tableName string, header []string, schema types.TableSchema, old, updated []string) []FileReferenceChanged {
	if schema.SignedColumn == "" {
		return nil
	}
	col := types.ColumnIndex(header, schema.SignedColumn)
	if col < 0 || col >= len(old) || col >= len(updated) {
		return nil
	}
	oldName := strings.TrimSpace(old[col])
	newName := strings.TrimSpace(updated[col])
	if oldName == "" || newName == "" || oldName == newName {
		return nil
	}
	return []FileReferenceChanged{{
		Table:  tableName,
		Column: schema.SignedColumn,
		Dir:    schema.Attachments[schema.SignedColumn],
		Old:    oldName,
		New:    newName,
	}}
}

// normalizeFields pads fields with empty strings up to width. More fields
// than columns is a caller bug, not raggedness to tolerate.
func normalizeFields(fields []string, width int) ([]string, error) {
	if len(fields) > width {
		return nil, fmt.Errorf("%d fields for %d columns: %w",
			len(fields), width, types.ErrMalformedTable)
	}
	row := make([]string, width)
	copy(row, fields)
	return row, nil
}

// nextID returns max(existing ids)+1, treating non-numeric id fields as
// absent. Ids are never reused, soft-deleted rows included, because those
// rows are still present.
func nextID(f *File, idIdx int) int {
	maxID := 0
	for _, row := range f.Rows {
		if idIdx >= len(row) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(row[idIdx]))
		if err == nil && n > maxID {
			maxID = n
		}
	}
	return maxID + 1
}

// findByID returns the data-row index whose id column equals id after
// trimming, or -1.
func findByID(f *File, idIdx int, id string) int {
	want := strings.TrimSpace(id)
	for i, row := range f.Rows {
		if idIdx < len(row) && strings.TrimSpace(row[idIdx]) == want {
			return i
		}
	}
	return -1
}

func makeRow(index int, fields []string, idIdx int) types.Row {
	r := types.Row{Index: index, Fields: fields}
	if idIdx >= 0 && idIdx < len(fields) {
		r.ID = strings.TrimSpace(fields[idIdx])
	}
	return r
}

func rowsOf(f *File, schema types.TableSchema) []types.Row {
	idIdx := types.ColumnIndex(f.Header, schema.IDColumn)
	rows := make([]types.Row, 0, len(f.Rows))
	for i, row := range f.Rows {
		rows = append(rows, makeRow(i, row, idIdx))
	}
	return rows
}

// rowMatches reports whether some column equals token exactly (trimmed).
// Exact equality keeps record lookup apart from the UI's substring filter.
func rowMatches(row []string, token string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) == token {
			return true
		}
	}
	return false
}

// validateToken enforces pure-digit search keys before any file is touched.
func validateToken(token string) error {
	if token == "" {
		return types.ErrInvalidToken
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return fmt.Errorf("%q: %w", token, types.ErrInvalidToken)
		}
	}
	return nil
}
