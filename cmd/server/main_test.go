package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"projector/internal/models"
)

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)

	handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("status field = %q, want %q", body.Status, "ok")
	}
}

func TestHandleProjectSuccess(t *testing.T) {
	applicableDate, err := time.Parse("2006-01-02", "2025-01-01")
	if err != nil {
		t.Fatalf("parsing applicable date: %v", err)
	}

	reqBody := projectRequest{
		Accounts: []models.Account{
			{
				ID:      "checking",
				Name:    "Checking",
				Type:    models.Checking,
				Balance: 1000,
				Interests: []models.Interest{
					{ApplicableDate: applicableDate, APR: 0.12, Compounded: models.Month},
				},
			},
		},
		End: "2025-03-31",
	}

	buf, err := json.Marshal(reqBody)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}

	handler := handleProject(models.RateTables{}, models.CachePolicy{})
	rec := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/project", bytes.NewReader(buf))

	handler(rec, httpReq)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var result models.ProjectResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(result.Accounts) != 1 {
		t.Fatalf("len(Accounts) = %d, want 1", len(result.Accounts))
	}
	if len(result.Accounts[0].ConsolidatedActivity) == 0 {
		t.Fatalf("expected at least one consolidated activity")
	}
}

func TestHandleProjectBadJSON(t *testing.T) {
	handler := handleProject(models.RateTables{}, models.CachePolicy{})
	rec := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/project", bytes.NewReader([]byte("{not json")))

	handler(rec, httpReq)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleProjectBadEndDate(t *testing.T) {
	reqBody := projectRequest{End: "not-a-date"}
	buf, _ := json.Marshal(reqBody)

	handler := handleProject(models.RateTables{}, models.CachePolicy{})
	rec := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/project", bytes.NewReader(buf))

	handler(rec, httpReq)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRequestResolverDefaultBucket(t *testing.T) {
	req := projectRequest{
		Amounts: map[string]map[string]float64{
			"default": {"rent": 1500},
		},
		Dates: map[string]map[string]string{
			"default": {"retirementDate": "2040-01-01"},
		},
	}

	resolver := requestResolver(req)
	ctx := context.Background()

	amount, err := resolver.ResolveAmount(ctx, "rent", "anySimulation")
	if err != nil {
		t.Fatalf("ResolveAmount: %v", err)
	}
	if amount != 1500 {
		t.Fatalf("amount = %v, want 1500", amount)
	}

	date, err := resolver.ResolveDate(ctx, "retirementDate", "anySimulation")
	if err != nil {
		t.Fatalf("ResolveDate: %v", err)
	}
	if date.Format("2006-01-02") != "2040-01-01" {
		t.Fatalf("date = %v, want 2040-01-01", date)
	}
}
