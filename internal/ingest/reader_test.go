// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDuckDBReader_ReadsCSVWithLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movies.csv")
	content := `title,overview,genres,release_date,popularity
Dune,"A desert planet, spice and sandworms.","[{'id': 878, 'name': 'Science Fiction'}]",2021-10-22,83.5
Heat,,Crime,1995-12-15,
Alien,In space no one can hear you scream.,Horror,1979-05-25,40
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	reader, err := NewDuckDBReader()
	if err != nil {
		t.Fatalf("NewDuckDBReader() error = %v", err)
	}
	defer reader.Close()

	rows, err := reader.ReadRows(context.Background(), path, 2)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["title"] != "Dune" || rows[0]["overview"] != "A desert planet, spice and sandworms." {
		t.Errorf("unexpected first row: %v", rows[0])
	}
	if rows[0]["popularity"] != "83.5" {
		t.Errorf("popularity should stay textual, got %q", rows[0]["popularity"])
	}
	if rows[1]["overview"] != "" || rows[1]["popularity"] != "" {
		t.Errorf("empty cells should read as empty strings: %v", rows[1])
	}
}

func TestDuckDBReader_MissingFile(t *testing.T) {
	reader, err := NewDuckDBReader()
	if err != nil {
		t.Fatalf("NewDuckDBReader() error = %v", err)
	}
	defer reader.Close()

	if _, err := reader.ReadRows(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), 10); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTableFunction(t *testing.T) {
	tests := map[string]string{
		"a.parquet":  "read_parquet('a.parquet')",
		"b.jsonl":    "read_json_auto('b.jsonl')",
		"o'neil.csv": "read_csv('o''neil.csv', header = true, all_varchar = true)",
	}
	for in, want := range tests {
		if got := tableFunction(in); got != want {
			t.Errorf("tableFunction(%q) = %q, want %q", in, got, want)
		}
	}
}
