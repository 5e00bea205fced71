package flatfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidFileName rejects attachment names that could escape their
// directory. Attachment names come from user input and end up in paths.
var ErrInvalidFileName = errors.New("invalid attachment file name")

// Files manages the attachment directories next to the table store. Deleting
// or renaming an attachment through Files triggers the sweeper, so no table
// keeps pointing at a file that is gone.
type Files struct {
	backend *Backend
	root    string
}

// checkName rejects empty names and anything path-like.
func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%q: %w", name, ErrInvalidFileName)
	}
	return nil
}

func (a *Files) path(dir, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if dir == "" || dir != filepath.Base(dir) {
		return "", fmt.Errorf("directory %q: %w", dir, ErrInvalidFileName)
	}
	return filepath.Join(a.root, dir, name), nil
}

// Exists reports whether the attachment exists in the named directory.
func (a *Files) Exists(dir, name string) (bool, error) {
	if err := a.backend.checkAttached(); err != nil {
		return false, err
	}
	p, err := a.path(dir, name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat attachment: %w", err)
	}
	return true, nil
}

// Delete removes the attachment and sweeps every table reference to it.
func (a *Files) Delete(dir, name string) ([]SweepResult, error) {
	if err := a.backend.checkAttached(); err != nil {
		return nil, err
	}
	p, err := a.path(dir, name)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing attachment: %w", err)
	}
	return a.backend.Sweeper().OnFileRemoved(name)
}

// Rename moves the attachment and rewrites every table reference to the old
// name.
func (a *Files) Rename(dir, oldName, newName string) ([]SweepResult, error) {
	if err := a.backend.checkAttached(); err != nil {
		return nil, err
	}
	oldPath, err := a.path(dir, oldName)
	if err != nil {
		return nil, err
	}
	newPath, err := a.path(dir, newName)
	if err != nil {
		return nil, err
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return nil, fmt.Errorf("renaming attachment: %w", err)
	}
	return a.backend.Sweeper().OnFileRenamed(oldName, newName)
}

// promoteReference handles the signed-document flow behind a
// FileReferenceChanged event: the old (unsigned) file is renamed to the new
// name, a stale old copy is removed if the signed file already exists, and
// the sweep fixes every other table still naming the old file.
func (a *Files) promoteReference(ev FileReferenceChanged) error {
	if ev.Dir != "" {
		oldPath, err := a.path(ev.Dir, ev.Old)
		if err != nil {
			return err
		}
		newPath, err := a.path(ev.Dir, ev.New)
		if err != nil {
			return err
		}
		if _, err := os.Stat(newPath); err == nil {
			// The signed copy exists already; drop the unsigned one.
			if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing stale attachment: %w", err)
			}
		} else if err := os.Rename(oldPath, newPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("renaming attachment: %w", err)
		}
	}

	results, err := a.backend.Sweeper().OnFileRenamed(ev.Old, ev.New)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("sweeping %s after rename: %w", r.Table, r.Err)
		}
	}
	return nil
}
