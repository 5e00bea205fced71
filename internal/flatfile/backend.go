package flatfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dukaforge/assetledger/pkg/types"
)

// FileReferenceChanged describes an attachment reference rewritten by a
// mutation. Handlers registered on the backend receive it after the mutation
// has been persisted and its table lock released.
type FileReferenceChanged struct {
	Table  string
	Column string
	Dir    string
	Old    string
	New    string
}

// Backend implements types.Store over a directory of semicolon-delimited
// table files. Every mutation on a table runs under that table's mutex so
// load-mutate-save is atomic with respect to other in-process writers.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	registry *types.Registry

	lockMu     sync.Mutex
	tableLocks map[string]*sync.Mutex

	identity types.IdentityResolver
	logger   *slog.Logger
	index    *refIndex
	journal  *journal
	sweeper  *Sweeper
	files    *Files

	handlers []func(FileReferenceChanged) error
}

// NewBackend creates a detached backend. Call Attach with a Config before
// use.
func NewBackend() *Backend {
	b := &Backend{
		tableLocks: make(map[string]*sync.Mutex),
		logger:     slog.Default(),
	}
	// Collaborators exist from construction so calls on a detached backend
	// fail with ErrStoreDetached instead of a nil dereference.
	b.sweeper = &Sweeper{backend: b}
	b.files = &Files{backend: b}
	return b
}

// SetIdentityResolver installs the actor source stamped into user columns.
// Must be called before mutations that should carry an actor.
func (b *Backend) SetIdentityResolver(r types.IdentityResolver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.identity = r
}

// SetLogger replaces the backend logger. Defaults to slog.Default().
func (b *Backend) SetLogger(l *slog.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if l != nil {
		b.logger = l
	}
}

// OnFileReferenceChanged registers a handler for attachment-reference
// events emitted by the mutation engine.
func (b *Backend) OnFileReferenceChanged(fn func(FileReferenceChanged) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// Attach initializes the backend: creates the data directory, loads the
// schema registry, opens the attachment reverse index and the audit journal,
// and wires the sweeper and file collaborators.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	config.DataDir = dataDir

	registry := types.NewRegistry()
	if config.SchemaFile != "" {
		var err error
		registry, err = types.LoadRegistry(config.SchemaFile)
		if err != nil {
			return err
		}
	}

	index, err := openRefIndex(filepath.Join(dataDir, "refindex.db"))
	if err != nil {
		return fmt.Errorf("opening reverse index: %w", err)
	}

	b.config = config
	b.registry = registry
	b.index = index
	b.journal = newJournal(filepath.Join(dataDir, "journal.jsonl"))
	attachRoot := config.AttachmentsDir
	if attachRoot == "" {
		attachRoot = filepath.Dir(dataDir)
	}
	b.files.root = attachRoot
	b.attached = true

	// The signed-document flow: a rewritten reference renames the file on
	// disk and the sweep fixes every other table that still names the old
	// file.
	b.handlers = append(b.handlers, b.files.promoteReference)

	if err := b.rebuildIndexLocked(); err != nil {
		b.attached = false
		index.close()
		return fmt.Errorf("rebuilding reverse index: %w", err)
	}
	return nil
}

// Detach releases backend resources. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.index != nil {
		if err := b.index.close(); err != nil {
			return fmt.Errorf("closing reverse index: %w", err)
		}
		b.index = nil
	}
	b.attached = false
	b.handlers = nil
	b.tableLocks = make(map[string]*sync.Mutex)
	return nil
}

// GetTable returns the accessor for the named table file.
// Returns ErrTableNotFound if the file does not exist.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	if _, err := os.Stat(b.tablePath(name)); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, types.ErrTableNotFound)
		}
		return nil, fmt.Errorf("stat table %s: %w", name, err)
	}
	return &table{name: name, backend: b}, nil
}

// CreateTable creates an empty table file with the given header.
// The new file carries the format version marker.
func (b *Backend) CreateTable(name string, header []string) (types.Table, error) {
	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("header must not be empty: %w", types.ErrMalformedTable)
	}
	lock := b.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	// O_EXCL claims the path, so two creates of the same table cannot both
	// pass an existence check, in-process or across processes.
	path := b.tablePath(name)
	claim, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("table %s already exists", name)
		}
		return nil, fmt.Errorf("creating table %s: %w", name, err)
	}
	claim.Close()
	if err := Save(path, NewFile(header)); err != nil {
		os.Remove(path)
		return nil, err
	}
	return &table{name: name, backend: b}, nil
}

// Tables lists every table file in the data directory, sorted by name.
func (b *Backend) Tables() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.tableNamesLocked()
}

// Sweeper returns the referential-integrity sweeper.
func (b *Backend) Sweeper() *Sweeper {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sweeper
}

// Files returns the attachment file collaborator.
func (b *Backend) Files() *Files {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.files
}

// AttachmentReferences lists the tables whose declared attachment columns
// reference fileName, per the reverse index. The listing is advisory: it
// covers only columns the schema registry marks as attachment references,
// which is why the sweeper scans every table instead of consulting it.
func (b *Backend) AttachmentReferences(fileName string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.index.candidates(fileName)
}

func (b *Backend) tableNamesLocked() ([]string, error) {
	entries, err := os.ReadDir(b.config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("listing data dir: %w", err)
	}
	ext := b.config.TableExtension()
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

// tablePath maps a table name to its file. Names never address outside the
// data directory; anything path-like is rejected at the call sites through
// GetTable's stat.
func (b *Backend) tablePath(name string) string {
	return filepath.Join(b.config.DataDir, filepath.Base(name)+b.config.TableExtension())
}

// lockFor returns the mutex serializing mutations of one table.
func (b *Backend) lockFor(name string) *sync.Mutex {
	b.lockMu.Lock()
	defer b.lockMu.Unlock()
	l, ok := b.tableLocks[name]
	if !ok {
		l = &sync.Mutex{}
		b.tableLocks[name] = l
	}
	return l
}

// checkAttached returns ErrStoreDetached when the backend is not attached.
func (b *Backend) checkAttached() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrStoreDetached
	}
	return nil
}

// emit delivers file-reference events to every handler. Called with no table
// lock held: handlers sweep other tables and take their locks.
func (b *Backend) emit(events []FileReferenceChanged) error {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, ev := range events {
		for _, fn := range handlers {
			if err := fn(ev); err != nil {
				return fmt.Errorf("file reference handler: %w", err)
			}
		}
	}
	return nil
}

// rebuildIndexLocked reindexes every table. Runs during Attach so sweeps can
// trust the index for files that predate this process.
func (b *Backend) rebuildIndexLocked() error {
	names, err := b.tableNamesLocked()
	if err != nil {
		return err
	}
	for _, name := range names {
		f, err := Load(b.tablePath(name))
		if err != nil {
			// A ragged or unreadable table must not block Attach; the
			// sweep falls back to scanning it.
			b.logger.Warn("skipping table during reindex", "table", name, "err", err)
			continue
		}
		schema := b.registry.Lookup(name, f.Header)
		if err := b.index.reindexTable(name, f, schema); err != nil {
			return err
		}
	}
	return nil
}
