package ratetables

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
}

func TestLoadParsesBothSeries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "average-wage-index.csv", "Year,Value\n2020,55628.60\n2021,60575.07\n")
	writeFile(t, dir, "bend-points.csv", "Year,Bend1,Bend2\n2024,1174,7078\n")

	tables, err := New(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tables.AverageWageIndex[2021] != 60575.07 {
		t.Errorf("AverageWageIndex[2021] = %v, want 60575.07", tables.AverageWageIndex[2021])
	}
	if tables.BendPoints[2024] != [2]float64{1174, 7078} {
		t.Errorf("BendPoints[2024] = %v, want [1174 7078]", tables.BendPoints[2024])
	}
}

func TestLoadMissingFilesYieldEmptySeries(t *testing.T) {
	dir := t.TempDir()

	tables, err := New(dir).Load()
	if err != nil {
		t.Fatalf("Load with no CSVs present should not error: %v", err)
	}
	if len(tables.AverageWageIndex) != 0 || len(tables.BendPoints) != 0 {
		t.Fatalf("expected empty series, got %+v", tables)
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "average-wage-index.csv", "Year,Value\n2020,55628.60\nnot-a-year,123\n2022,63795.13\n")

	tables, err := New(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tables.AverageWageIndex) != 2 {
		t.Fatalf("len(AverageWageIndex) = %d, want 2 (malformed row skipped)", len(tables.AverageWageIndex))
	}
}

func TestLoadMissingColumnErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "average-wage-index.csv", "Year,Amount\n2020,1\n")

	if _, err := New(dir).Load(); err == nil {
		t.Fatal("expected an error when the Value column is missing")
	}
}
