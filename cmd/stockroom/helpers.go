// Shared helpers for stockroom CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dukaforge/assetledger/internal/flatfile"
	"github.com/dukaforge/assetledger/pkg/types"
)

// envIdentity resolves the mutation actor from config.yaml, falling back to
// the USER environment variable.
type envIdentity struct {
	actor string
}

func (e envIdentity) CurrentActor() string {
	if e.actor != "" {
		return e.actor
	}
	return os.Getenv("USER")
}

// attachBackend resolves the data directory, creates a flat-file backend, and
// attaches it. The caller must defer backend.Detach().
func attachBackend() (*flatfile.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend:        types.BackendFlatFile,
		DataDir:        dataDir,
		AttachmentsDir: configAttachmentsDir,
		SchemaFile:     configSchemaFile,
	}

	backend := flatfile.NewBackend()
	backend.SetLogger(logger)
	backend.SetIdentityResolver(envIdentity{actor: configActor})
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}

	return backend, nil
}

// printRows writes rows either as indented JSON or as semicolon-joined lines
// prefixed with the row position, matching the on-disk layout.
func printRows(header []string, rows []types.Row) error {
	if flagJSON {
		out, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal rows: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("   %s\n", strings.Join(header, ";"))
	for _, row := range rows {
		fmt.Printf("%2d %s\n", row.Index, strings.Join(row.Fields, ";"))
	}
	return nil
}

// isTableNotFound returns true if the error wraps ErrTableNotFound.
func isTableNotFound(err error) bool {
	return errors.Is(err, types.ErrTableNotFound)
}

// isRowNotFound returns true if the error wraps ErrRowNotFound.
func isRowNotFound(err error) bool {
	return errors.Is(err, types.ErrRowNotFound)
}

// userErr prints the error with a command prefix and exits with the
// user-error code.
func userErr(prefix string, err error) {
	fmt.Fprintln(os.Stderr, prefix+":", err)
	os.Exit(exitUserError)
}

// sysErr prints the error with a command prefix and exits with the
// system-error code.
func sysErr(prefix string, err error) {
	fmt.Fprintln(os.Stderr, prefix+":", err)
	os.Exit(exitSysError)
}
