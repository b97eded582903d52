package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"projector/internal/models"
)

func TestLoadAccountsParsesJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.json")
	body := `[{"id":"acct","name":"Checking","type":"Checking","balance":1000}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	accounts, err := loadAccounts(path)
	if err != nil {
		t.Fatalf("loadAccounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != "acct" {
		t.Fatalf("loadAccounts = %+v, want one account with ID acct", accounts)
	}
}

func TestLoadAccountsMissingFileErrors(t *testing.T) {
	if _, err := loadAccounts(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing accounts file")
	}
}

func TestWriteResultToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.json")
	result := &models.ProjectResult{Accounts: []models.AccountResult{{Name: "Checking"}}}

	if err := writeResult(result, path); err != nil {
		t.Fatalf("writeResult: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got models.ProjectResult
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Accounts) != 1 || got.Accounts[0].Name != "Checking" {
		t.Fatalf("round-tripped result = %+v, want one Checking account", got)
	}
}

func TestRunEndToEndWritesResultFile(t *testing.T) {
	dir := t.TempDir()
	accountsPath := filepath.Join(dir, "accounts.json")
	body := `[{"id":"acct","name":"Checking","type":"Checking","balance":1000}]`
	if err := os.WriteFile(accountsPath, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	outPath := filepath.Join(dir, "out.json")

	err := run(accountsPath, "", "", outPath, "2025-01-01", "2025-03-31", "", false, 0, "", "", 64, "", false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile(out): %v", err)
	}
	var result models.ProjectResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(result.Accounts) != 1 {
		t.Fatalf("len(result.Accounts) = %d, want 1", len(result.Accounts))
	}
}

func TestRunBadEndDateErrors(t *testing.T) {
	dir := t.TempDir()
	accountsPath := filepath.Join(dir, "accounts.json")
	if err := os.WriteFile(accountsPath, []byte(`[]`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	err := run(accountsPath, "", "", "", "", "not-a-date", "", false, 0, "", "", 64, "", false)
	if err == nil {
		t.Fatal("expected an error for a malformed -end date")
	}
}
