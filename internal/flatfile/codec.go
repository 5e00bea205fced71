package flatfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dukaforge/assetledger/pkg/types"
)

// versionMarker is the optional first line of a table file. Files created by
// this store carry it; legacy files without it round-trip unchanged.
const versionMarker = "#v1"

// File is a decoded table: the header row, the data rows, and enough load
// state to detect out-of-band modification on save.
type File struct {
	Versioned bool
	Header    []string
	Rows      [][]string

	// Load fingerprint. Zero for files built in memory.
	loadedFrom string
	size       int64
	modTime    time.Time
}

// NewFile returns an empty versioned table with the given header.
func NewFile(header []string) *File {
	return &File{Versioned: true, Header: header}
}

// Width returns the header column count.
func (f *File) Width() int {
	return len(f.Header)
}

// CheckWidths verifies that every data row has exactly the header's field
// count. Legacy tables are ragged in places; only strict tables run this.
func (f *File) CheckWidths() error {
	for i, row := range f.Rows {
		if len(row) != len(f.Header) {
			return fmt.Errorf("data row %d has %d fields, header has %d: %w",
				i, len(row), len(f.Header), types.ErrMalformedTable)
		}
	}
	return nil
}

// checkFields rejects field values that would be indistinguishable from the
// separators on disk. The format has no escaping, so these would silently
// shift every following column.
func checkFields(fields []string) error {
	for _, v := range fields {
		if strings.ContainsAny(v, ";\n") {
			return fmt.Errorf("field %q: %w", v, types.ErrInvalidData)
		}
	}
	return nil
}

// Load reads and decodes the table file at path.
// Returns ErrTableNotFound if the file does not exist and ErrMalformedTable
// if it is empty (the header row must always exist).
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), types.ErrTableNotFound)
		}
		return nil, fmt.Errorf("opening table %s: %w", path, err)
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat table %s: %w", path, err)
	}

	f := &File{loadedFrom: path, size: info.Size(), modTime: info.ModTime()}
	scanner := bufio.NewScanner(fh)
	lineNo := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		if lineNo == 1 && line == versionMarker {
			f.Versioned = true
			continue
		}
		if f.Header == nil {
			f.Header = strings.Split(line, ";")
			continue
		}
		f.Rows = append(f.Rows, strings.Split(line, ";"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading table %s: %w", path, err)
	}
	if f.Header == nil {
		return nil, fmt.Errorf("table %s is empty: %w", filepath.Base(path), types.ErrMalformedTable)
	}
	return f, nil
}

// Save encodes f and atomically replaces the file at path using the
// temp-file, fsync, rename pattern. When f was loaded from the same path and
// the file changed on disk since that load, Save refuses with
// ErrConcurrentModification instead of clobbering the other writer.
func Save(path string, f *File) error {
	if err := checkFields(f.Header); err != nil {
		return err
	}
	for _, row := range f.Rows {
		if err := checkFields(row); err != nil {
			return err
		}
	}

	if f.loadedFrom == path {
		info, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			return fmt.Errorf("%s deleted since load: %w", filepath.Base(path), types.ErrConcurrentModification)
		case err != nil:
			return fmt.Errorf("stat table %s: %w", path, err)
		case info.Size() != f.size || !info.ModTime().Equal(f.modTime):
			return fmt.Errorf("%s: %w", filepath.Base(path), types.ErrConcurrentModification)
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".table-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	if f.Versioned {
		if _, err := w.WriteString(versionMarker + "\n"); err != nil {
			return fail("writing marker", err)
		}
	}
	if _, err := w.WriteString(strings.Join(f.Header, ";") + "\n"); err != nil {
		return fail("writing header", err)
	}
	for _, row := range f.Rows {
		if _, err := w.WriteString(strings.Join(row, ";") + "\n"); err != nil {
			return fail("writing row", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	// Refresh the fingerprint so repeated saves of the same File succeed.
	if info, err := os.Stat(path); err == nil {
		f.loadedFrom = path
		f.size = info.Size()
		f.modTime = info.ModTime()
	}
	return nil
}
