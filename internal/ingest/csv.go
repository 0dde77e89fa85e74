package ingest

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSVFile loads a CSV file into a SQLite table. The first record is the
// header; the table is created if it does not exist, with column types
// inferred from the data. Returns the number of rows inserted.
func CSVFile(ctx context.Context, db *sql.DB, path, table string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return CSV(ctx, db, f, table)
}

// CSV loads CSV data from r into a SQLite table named table.
func CSV(ctx context.Context, db *sql.DB, r io.Reader, table string) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = sanitizeIdentifier(name)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read csv rows: %w", err)
	}

	if err := createTable(ctx, db, table, columns, records); err != nil {
		return 0, err
	}
	return insertRecords(ctx, db, table, columns, records)
}

// createTable creates the target table if missing, with one column per
// header entry typed by what the data holds.
func createTable(ctx context.Context, db *sql.DB, table string, columns []string, records [][]string) error {
	decls := make([]string, len(columns))
	for i, col := range columns {
		decls[i] = fmt.Sprintf("%q %s", col, columnAffinity(records, i))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", table, strings.Join(decls, ", "))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// insertRecords writes every record inside a single transaction.
func insertRecords(ctx context.Context, db *sql.DB, table string, columns []string, records [][]string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %q VALUES (%s)", table, placeholders))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, record := range records {
		if len(record) != len(columns) {
			return 0, fmt.Errorf("row %d has %d cells, header has %d", inserted+1, len(record), len(columns))
		}
		args := make([]any, len(record))
		for i, cell := range record {
			args[i] = typedCell(cell)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", inserted+1, err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return inserted, nil
}

// columnAffinity picks the SQLite type for column i: INTEGER when every
// non-empty cell parses as an integer, REAL when every non-empty cell
// parses as a number, TEXT otherwise.
func columnAffinity(records [][]string, i int) string {
	affinity := "INTEGER"
	sawValue := false
	for _, record := range records {
		if i >= len(record) || record[i] == "" {
			continue
		}
		sawValue = true
		cell := record[i]
		if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			affinity = "REAL"
			continue
		}
		return "TEXT"
	}
	if !sawValue {
		return "TEXT"
	}
	return affinity
}

// typedCell converts a CSV cell to its natural Go type so numeric columns
// store numbers, not digit strings. Empty cells become NULL.
func typedCell(cell string) any {
	if cell == "" {
		return nil
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}

// sanitizeIdentifier makes a header entry usable as a column name: spaces
// become underscores and anything outside [A-Za-z0-9_] is dropped.
func sanitizeIdentifier(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), "_")
	if cleaned == "" {
		return "column"
	}
	return cleaned
}
