package variables

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "variables.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadYAMLDefaultBucketAndOverride(t *testing.T) {
	path := writeTempYAML(t, `
amounts:
  default:
    rent: 1000
  pessimistic:
    rent: 1500
dates:
  default:
    retireDate: "2030-01-01"
`)

	r, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}

	got, err := r.ResolveAmount(context.Background(), "rent", "pessimistic")
	if err != nil {
		t.Fatalf("ResolveAmount: %v", err)
	}
	if got != 1500 {
		t.Fatalf("rent under pessimistic = %v, want 1500", got)
	}

	got, err = r.ResolveAmount(context.Background(), "rent", "optimistic")
	if err != nil {
		t.Fatalf("ResolveAmount: %v", err)
	}
	if got != 1000 {
		t.Fatalf("rent under optimistic (falls to default) = %v, want 1000", got)
	}

	d, err := r.ResolveDate(context.Background(), "retireDate", "anything")
	if err != nil {
		t.Fatalf("ResolveDate: %v", err)
	}
	if d.Format("2006-01-02") != "2030-01-01" {
		t.Fatalf("retireDate = %v, want 2030-01-01", d)
	}
}

func TestLoadYAMLInvalidDateErrors(t *testing.T) {
	path := writeTempYAML(t, `
dates:
  default:
    retireDate: "not-a-date"
`)
	if _, err := LoadYAML(path); err == nil {
		t.Fatal("expected an error for a malformed date variable")
	}
}

func TestLoadYAMLMissingFileErrors(t *testing.T) {
	if _, err := LoadYAML(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Fatal("expected an error for a missing variables file")
	}
}

func TestLoadDistributions(t *testing.T) {
	path := writeTempYAML(t, `
distributions:
  marketReturn:
    mean: 0.07
    stdDev: 0.15
`)

	dists, err := LoadDistributions(path)
	if err != nil {
		t.Fatalf("LoadDistributions: %v", err)
	}
	got, ok := dists["marketReturn"]
	if !ok {
		t.Fatal("expected a marketReturn distribution entry")
	}
	if got.Mean != 0.07 || got.StdDev != 0.15 {
		t.Fatalf("marketReturn = %+v, want {Mean:0.07 StdDev:0.15}", got)
	}
}
