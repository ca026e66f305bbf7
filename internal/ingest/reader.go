// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	// DuckDB driver - reads CSV, Parquet and JSON source files in place
	_ "github.com/duckdb/duckdb-go/v2"
)

// Row is one source row keyed by the file's own column names.
type Row map[string]string

// RowReader reads at most limit rows from a tabular source.
type RowReader interface {
	ReadRows(ctx context.Context, path string, limit int) ([]Row, error)
}

// DuckDBReader reads source files through an in-memory DuckDB connection.
type DuckDBReader struct {
	db *sql.DB
}

// NewDuckDBReader opens an in-memory DuckDB connection.
func NewDuckDBReader() (*DuckDBReader, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &DuckDBReader{db: db}, nil
}

// Close releases the DuckDB connection.
func (r *DuckDBReader) Close() error {
	return r.db.Close()
}

// ReadRows returns up to limit rows, every value rendered as a string.
// SQL NULL becomes "".
func (r *DuckDBReader) ReadRows(ctx context.Context, path string, limit int) ([]Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", tableFunction(path), limit)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", path, err)
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	out := make([]Row, 0, limit)
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = stringify(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", path, err)
	}
	return out, nil
}

// tableFunction picks the DuckDB reader for the file extension. CSV is read
// as all-varchar so that mixed columns never fail type sniffing.
func tableFunction(path string) string {
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return "read_parquet(" + quoted + ")"
	case ".json", ".ndjson", ".jsonl":
		return "read_json_auto(" + quoted + ")"
	default:
		return "read_csv(" + quoted + ", header = true, all_varchar = true)"
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return fmt.Sprint(val)
	}
}
