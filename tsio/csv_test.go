package tsio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCSVParsesValueColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "series.csv")
	content := "date,value\n2020-01-01,10.5\n2020-01-02,11.0\n2020-01-03,9.75\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	ts, err := LoadCSV(path, "value")
	if err != nil {
		t.Fatal(err)
	}
	if ts.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", ts.Len())
	}
	values := ts.Values()
	if values[0] != 10.5 || values[1] != 11.0 || values[2] != 9.75 {
		t.Fatalf("unexpected values: %v", values)
	}
}

func TestLoadCSVRejectsUnknownColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "series.csv")
	os.WriteFile(path, []byte("date,value\n1,2\n"), 0644)

	if _, err := LoadCSV(path, "nonexistent"); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestLoadCSVRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	os.WriteFile(path, []byte("date,value\n"), 0644)

	if _, err := LoadCSV(path, "value"); err == nil {
		t.Fatal("expected error for header-only file")
	}
}
