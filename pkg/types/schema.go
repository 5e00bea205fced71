package types

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrSchemaInvalid reports a schema registry file that fails validation.
var ErrSchemaInvalid = errors.New("schema registry is invalid")

// TableSchema describes the column roles of one table. Column names refer to
// entries of the table's header row; the file itself stays untyped text.
type TableSchema struct {
	// IDColumn names the auto-increment identity column, "" when absent.
	IDColumn string `yaml:"id_column"`
	// StatusColumn names the lifecycle column, "" when absent.
	StatusColumn string `yaml:"status_column"`
	// UserColumn names the actor column stamped on append, "" when absent.
	UserColumn string `yaml:"user_column"`
	// Attachments maps an attachment-reference column to the directory its
	// filenames must live in (uploads, pdf, invoices, ...).
	Attachments map[string]string `yaml:"attachments"`
	// SignedColumn names the attachment column whose files get renamed when
	// a document is digitally signed. Must also appear in Attachments.
	SignedColumn string `yaml:"signed_column"`
	// Transitions selects the status policy: "" or "accept-all" keeps the
	// historical any-to-any behavior, "strict" enforces the workflow DAG.
	Transitions string `yaml:"transitions"`
	// Strict upgrades header/field-count mismatches from tolerated legacy
	// raggedness to ErrMalformedTable.
	Strict bool `yaml:"strict"`
}

// Policy returns the transition policy selected by the schema.
func (s TableSchema) Policy() TransitionPolicy {
	if s.Transitions == "strict" {
		return StrictWorkflow
	}
	return AcceptAll
}

// registryFile is the on-disk shape of the schema registry YAML.
type registryFile struct {
	Tables map[string]TableSchema `yaml:"tables"`
}

// Registry maps table names to their schemas. Tables missing from the
// registry fall back to header-based inference.
type Registry struct {
	tables map[string]TableSchema
}

// NewRegistry returns an empty registry; every lookup infers from headers.
func NewRegistry() *Registry {
	return &Registry{tables: map[string]TableSchema{}}
}

// LoadRegistry reads the schema registry YAML from path. A missing file is
// not an error; it yields an empty registry.
func LoadRegistry(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRegistry(), nil
		}
		return nil, fmt.Errorf("reading schema registry: %w", err)
	}
	var f registryFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	for name, s := range f.Tables {
		if s.SignedColumn != "" {
			if _, ok := s.Attachments[s.SignedColumn]; !ok {
				return nil, fmt.Errorf("%w: table %s: signed_column %q not in attachments",
					ErrSchemaInvalid, name, s.SignedColumn)
			}
		}
	}
	if f.Tables == nil {
		f.Tables = map[string]TableSchema{}
	}
	return &Registry{tables: f.Tables}, nil
}

// Lookup returns the registered schema for a table, or an inferred one built
// from the header: columns literally named "id", "status" and "user" take
// those roles, nothing else is assumed.
func (r *Registry) Lookup(table string, header []string) TableSchema {
	if s, ok := r.tables[table]; ok {
		return s
	}
	var s TableSchema
	for _, col := range header {
		switch strings.TrimSpace(col) {
		case "id":
			s.IDColumn = "id"
		case "status":
			s.StatusColumn = "status"
		case "user":
			s.UserColumn = "user"
		}
	}
	return s
}

// Registered reports whether the table has an explicit registry entry.
func (r *Registry) Registered(table string) bool {
	_, ok := r.tables[table]
	return ok
}

// ColumnIndex returns the position of name in header, or -1.
func ColumnIndex(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, col := range header {
		if strings.TrimSpace(col) == name {
			return i
		}
	}
	return -1
}
