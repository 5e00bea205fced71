package types

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const registryYAML = `tables:
  laptops:
    id_column: id
    status_column: status
    user_column: user
    attachments:
      invoice: invoices
      request: requests
    signed_column: request
    transitions: strict
  printers:
    id_column: id
    status_column: status
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRegistry(t *testing.T) {
	t.Run("registered table", func(t *testing.T) {
		r, err := LoadRegistry(writeRegistry(t, registryYAML))
		if err != nil {
			t.Fatal(err)
		}
		s := r.Lookup("laptops", nil)
		if s.IDColumn != "id" || s.UserColumn != "user" {
			t.Fatalf("unexpected schema: %+v", s)
		}
		if s.Attachments["invoice"] != "invoices" {
			t.Fatalf("expected invoice dir, got %q", s.Attachments["invoice"])
		}
		if err := s.Policy()(StatusArchived, StatusOpen); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("strict table must reject archived->open, got %v", err)
		}
	})

	t.Run("missing file yields empty registry", func(t *testing.T) {
		r, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if r.Registered("laptops") {
			t.Fatal("empty registry must not register tables")
		}
	})

	t.Run("signed column must be an attachment", func(t *testing.T) {
		bad := "tables:\n  x:\n    signed_column: doc\n"
		if _, err := LoadRegistry(writeRegistry(t, bad)); !errors.Is(err, ErrSchemaInvalid) {
			t.Fatalf("expected ErrSchemaInvalid, got %v", err)
		}
	})
}

func TestLookupInference(t *testing.T) {
	r := NewRegistry()
	s := r.Lookup("monitors", []string{"id", "status", "name", "user"})
	if s.IDColumn != "id" || s.StatusColumn != "status" || s.UserColumn != "user" {
		t.Fatalf("inference failed: %+v", s)
	}
	if s.Transitions != "" {
		t.Fatal("inferred schema keeps accept-all transitions")
	}

	s = r.Lookup("notes", []string{"text", "author"})
	if s.IDColumn != "" || s.StatusColumn != "" {
		t.Fatalf("no roles expected: %+v", s)
	}
}

func TestColumnIndex(t *testing.T) {
	header := []string{"id", " status ", "name"}
	if i := ColumnIndex(header, "status"); i != 1 {
		t.Fatalf("expected 1, got %d", i)
	}
	if i := ColumnIndex(header, "missing"); i != -1 {
		t.Fatalf("expected -1, got %d", i)
	}
	if i := ColumnIndex(header, ""); i != -1 {
		t.Fatalf("empty name must not match, got %d", i)
	}
}
