// Package integration exercises the flat-file store end to end through its
// public API.
package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dukaforge/assetledger/internal/flatfile"
	"github.com/dukaforge/assetledger/pkg/types"
)

const schemaYAML = `tables:
  assets:
    id_column: id
    status_column: status
    user_column: user
    attachments:
      invoice: invoices
      request: requests
    signed_column: request
`

// actor is the identity stamped on rows created during the tests.
type actor struct{}

func (actor) CurrentActor() string { return "integration" }

// setupStore attaches a backend over an isolated temp tree with the test
// schema and attachment directories. Each test gets its own store.
func setupStore(t *testing.T) (*flatfile.Backend, string) {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "tables")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	for _, dir := range []string{"invoices", "requests"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	schemaPath := filepath.Join(root, "schemas.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(schemaYAML), 0o644))

	b := flatfile.NewBackend()
	b.SetIdentityResolver(actor{})
	require.NoError(t, b.Attach(types.Config{
		Backend:        types.BackendFlatFile,
		DataDir:        dataDir,
		AttachmentsDir: root,
		SchemaFile:     schemaPath,
	}))
	t.Cleanup(func() { _ = b.Detach() })
	return b, root
}

// flatfileBackend attaches a fresh backend over an existing store root, as a
// second process would.
func flatfileBackend(t *testing.T, root string) *flatfile.Backend {
	t.Helper()
	b := flatfile.NewBackend()
	b.SetIdentityResolver(actor{})
	require.NoError(t, b.Attach(types.Config{
		Backend:        types.BackendFlatFile,
		DataDir:        filepath.Join(root, "tables"),
		AttachmentsDir: root,
		SchemaFile:     filepath.Join(root, "schemas.yaml"),
	}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

// mustTable retrieves a table by name or fails the test.
func mustTable(t *testing.T, b *flatfile.Backend, name string) types.Table {
	t.Helper()
	tbl, err := b.GetTable(name)
	require.NoError(t, err)
	return tbl
}
