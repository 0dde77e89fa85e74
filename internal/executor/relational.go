package executor

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Relational executes query text against a SQLite database.
type Relational struct {
	db *sql.DB
}

// OpenRelational creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenRelational(path string) (*Relational, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &ExecutionError{Code: ErrCodeConnection, Backend: "relational", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &ExecutionError{Code: ErrCodeConnection, Backend: "relational", Err: err}
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, &ExecutionError{Code: ErrCodeConnection, Backend: "relational", Err: err}
	}

	return &Relational{db: db}, nil
}

// NewRelational wraps an already-open database handle, for callers that
// manage the connection themselves (tests, ingestion).
func NewRelational(db *sql.DB) *Relational {
	return &Relational{db: db}
}

// Close closes the database connection.
func (r *Relational) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// DB returns the underlying sql.DB for schema discovery and ingestion.
func (r *Relational) DB() *sql.DB {
	return r.db
}

// Query runs the given query text and materializes every row. Cell values
// come back as the driver's native Go types; BLOB columns are copied so the
// rows stay valid after the cursor closes.
func (r *Relational) Query(ctx context.Context, text string) (*Result, error) {
	rows, err := r.db.QueryContext(ctx, text)
	if err != nil {
		return nil, &ExecutionError{Code: ErrCodeQueryFailed, Backend: "relational", Query: text, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &ExecutionError{Code: ErrCodeDecode, Backend: "relational", Query: text, Err: err}
	}

	result := &Result{Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		cells := make([]any, len(columns))
		refs := make([]any, len(columns))
		for i := range cells {
			refs[i] = &cells[i]
		}
		if err := rows.Scan(refs...); err != nil {
			return nil, &ExecutionError{Code: ErrCodeDecode, Backend: "relational", Query: text, Err: err}
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := cells[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = cells[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &ExecutionError{Code: ErrCodeDecode, Backend: "relational", Query: text, Err: err}
	}
	return result, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
