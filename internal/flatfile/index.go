package flatfile

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/dukaforge/assetledger/pkg/types"
)

//go:embed schema.sql
var indexSchemaSQL string

// refIndex maps attachment filenames to the table rows whose declared
// attachment columns reference them. It backs the advisory reference listing;
// it is rebuilt on Attach and refreshed per mutated table.
type refIndex struct {
	db *sql.DB
}

func openRefIndex(path string) (*refIndex, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(indexSchemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing index schema: %w", err)
	}
	return &refIndex{db: db}, nil
}

func (x *refIndex) close() error {
	return x.db.Close()
}

// reindexTable replaces the index slice of one table from its current rows.
// Only columns the schema marks as attachment references are indexed.
func (x *refIndex) reindexTable(name string, f *File, schema types.TableSchema) error {
	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("starting index tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM attachment_refs WHERE table_name = ?", name); err != nil {
		return fmt.Errorf("clearing index for %s: %w", name, err)
	}

	idIdx := types.ColumnIndex(f.Header, schema.IDColumn)
	for col := range schema.Attachments {
		colIdx := types.ColumnIndex(f.Header, col)
		if colIdx < 0 {
			continue
		}
		for _, row := range f.Rows {
			if colIdx >= len(row) {
				continue
			}
			fileName := strings.TrimSpace(row[colIdx])
			if fileName == "" {
				continue
			}
			rowID := ""
			if idIdx >= 0 && idIdx < len(row) {
				rowID = strings.TrimSpace(row[idIdx])
			}
			if _, err := tx.Exec(
				"INSERT INTO attachment_refs (file_name, table_name, row_id, column_name) VALUES (?, ?, ?, ?)",
				fileName, name, rowID, col); err != nil {
				return fmt.Errorf("indexing %s.%s: %w", name, col, err)
			}
		}
	}
	return tx.Commit()
}

// candidates returns the tables whose index slice references fileName.
func (x *refIndex) candidates(fileName string) ([]string, error) {
	rows, err := x.db.Query(
		"SELECT DISTINCT table_name FROM attachment_refs WHERE file_name = ?", fileName)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning index row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
