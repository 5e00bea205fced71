package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	// DataDir is the single directory holding every table file.
	DataDir string `json:"data_dir" yaml:"data_dir"`
	// AttachmentsDir is the parent of the named attachment directories
	// (uploads, pdf, invoices and so on). Empty means DataDir's parent.
	AttachmentsDir string `json:"attachments_dir" yaml:"attachments_dir"`
	// SchemaFile is the path of the schema registry YAML. Empty means no
	// registry; column roles are inferred from each table's header.
	SchemaFile string `json:"schema_file" yaml:"schema_file"`
	// Extension is the table file suffix, ".csv" by default.
	Extension string `json:"extension" yaml:"extension"`
}

// Supported backend names.
const (
	BackendFlatFile = "flatfile"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendFlatFile: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// TableExtension returns the configured table file suffix.
func (c Config) TableExtension() string {
	if c.Extension == "" {
		return ".csv"
	}
	return c.Extension
}

// IdentityResolver supplies the acting user stamped into user columns on
// append. The CLI resolves it from config or the environment; servers would
// resolve it from the request context.
type IdentityResolver interface {
	CurrentActor() string
}
