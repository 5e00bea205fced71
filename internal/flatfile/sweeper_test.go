package flatfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukaforge/assetledger/pkg/types"
)

func TestSweepOnFileRemoved(t *testing.T) {
	b := newTestBackend(t)

	results, err := b.Sweeper().OnFileRemoved("inv-1.pdf")
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("sweep of %s failed: %v", r.Table, r.Err)
		}
		total += r.RowsChanged
	}
	if total != 1 {
		t.Fatalf("expected 1 row changed, got %d", total)
	}

	// No table may still reference the removed file.
	for _, name := range []string{"assets", "orders"} {
		tbl := mustTable(t, b, name)
		rows, err := tbl.Rows()
		if err != nil {
			t.Fatal(err)
		}
		for _, row := range rows {
			for _, field := range row.Fields {
				if field == "inv-1.pdf" {
					t.Fatalf("stale reference in %s: %v", name, row.Fields)
				}
			}
		}
	}

	// The reference was cleared, not the row.
	row, err := mustTable(t, b, "assets").Get("1")
	if err != nil {
		t.Fatal(err)
	}
	if row.Fields[4] != "" {
		t.Fatalf("expected cleared invoice field, got %q", row.Fields[4])
	}
}

func TestSweepOnFileRenamed(t *testing.T) {
	b := newTestBackend(t)

	results, err := b.Sweeper().OnFileRenamed("req-1.pdf", "req-1-signed.pdf")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("sweep of %s failed: %v", r.Table, r.Err)
		}
	}

	row, err := mustTable(t, b, "assets").Get("1")
	if err != nil {
		t.Fatal(err)
	}
	if row.Fields[5] != "req-1-signed.pdf" {
		t.Fatalf("expected renamed reference, got %q", row.Fields[5])
	}
}

// TestSweepUndeclaredColumn plants a file name in a column the schema does
// not declare as an attachment reference. The reverse index never sees such a
// value, so the sweep must not let the index talk it out of scanning the
// table.
func TestSweepUndeclaredColumn(t *testing.T) {
	b := newTestBackend(t)
	tbl := mustTable(t, b, "assets")

	// doc-7.pdf lands in the name column, which is not in the assets
	// schema's attachments map.
	if _, err := tbl.Append([]string{"", "", "doc-7.pdf", "", "", ""}); err != nil {
		t.Fatal(err)
	}
	refs, err := b.AttachmentReferences("doc-7.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 0 {
		t.Fatalf("index should not cover undeclared columns, got %v", refs)
	}

	results, err := b.Sweeper().OnFileRemoved("doc-7.pdf")
	if err != nil {
		t.Fatal(err)
	}
	swept := map[string]bool{}
	total := 0
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("sweep of %s failed: %v", r.Table, r.Err)
		}
		swept[r.Table] = true
		total += r.RowsChanged
	}
	if !swept["assets"] {
		t.Fatalf("assets was not swept: %v", swept)
	}
	if total != 1 {
		t.Fatalf("expected 1 row changed, got %d", total)
	}

	rows, err := tbl.Rows()
	if err != nil {
		t.Fatal(err)
	}
	for _, row := range rows {
		for _, field := range row.Fields {
			if field == "doc-7.pdf" {
				t.Fatalf("stale reference survives sweep: %v", row.Fields)
			}
		}
	}
}

func TestSweepEmptyName(t *testing.T) {
	b := newTestBackend(t)
	if _, err := b.Sweeper().OnFileRemoved(""); !errors.Is(err, types.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestFilesDelete(t *testing.T) {
	b := newTestBackend(t)
	root := b.files.root
	path := filepath.Join(root, "invoices", "inv-1.pdf")
	if err := os.WriteFile(path, []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := b.Files().Delete("invoices", "inv-1.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected sweep results")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("attachment file must be gone")
	}
	row, _ := mustTable(t, b, "assets").Get("1")
	if row.Fields[4] != "" {
		t.Fatalf("reference not cleared: %q", row.Fields[4])
	}
}

func TestFilesRename(t *testing.T) {
	b := newTestBackend(t)
	root := b.files.root
	oldPath := filepath.Join(root, "invoices", "inv-2.pdf")
	if err := os.WriteFile(oldPath, []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := b.Files().Rename("invoices", "inv-2.pdf", "inv-2-final.pdf"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "invoices", "inv-2-final.pdf")); err != nil {
		t.Fatal("renamed file missing")
	}
	row, _ := mustTable(t, b, "assets").Get("2")
	if row.Fields[4] != "inv-2-final.pdf" {
		t.Fatalf("reference not rewritten: %q", row.Fields[4])
	}
}

func TestFilesNameValidation(t *testing.T) {
	b := newTestBackend(t)

	if _, err := b.Files().Exists("invoices", "../escape.pdf"); !errors.Is(err, ErrInvalidFileName) {
		t.Fatalf("expected ErrInvalidFileName, got %v", err)
	}
	if _, err := b.Files().Delete("../tables", "x.pdf"); !errors.Is(err, ErrInvalidFileName) {
		t.Fatalf("expected ErrInvalidFileName, got %v", err)
	}
}

// TestSignedDocumentFlow drives the update hook: rewriting the signed-column
// reference renames the file on disk and sweeps the old name everywhere.
func TestSignedDocumentFlow(t *testing.T) {
	b := newTestBackend(t)
	root := b.files.root
	unsigned := filepath.Join(root, "requests", "req-1.pdf")
	if err := os.WriteFile(unsigned, []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Another table row referencing the same request document.
	if _, err := b.CreateTable("approvals", []string{"id", "request"}); err != nil {
		t.Fatal(err)
	}
	reg, err := b.GetTable("approvals")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Append([]string{"", "req-1.pdf"}); err != nil {
		t.Fatal(err)
	}

	tbl := mustTable(t, b, "assets")
	err = tbl.Update(types.ByID("1"),
		[]string{"1", "1", "Laptop", "alice", "inv-1.pdf", "req-1-signed.pdf"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(root, "requests", "req-1-signed.pdf")); err != nil {
		t.Fatal("signed file missing on disk")
	}
	if _, err := os.Stat(unsigned); !os.IsNotExist(err) {
		t.Fatal("unsigned copy must be gone")
	}

	rows, err := reg.Rows()
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Fields[1] != "req-1-signed.pdf" {
		t.Fatalf("cross-table reference not swept: %v", rows[0].Fields)
	}
}
