package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"projector/internal/models"
	"projector/internal/testutil"
)

// TestRouterHealthEndpoint mirrors the teacher's own router-level
// httptest.Server + testutil.AssertResponse health check, pointed at this
// adapter's /api/health route instead.
func TestRouterHealthEndpoint(t *testing.T) {
	cleanup := testutil.SetTestEnv(t, t.TempDir())
	defer cleanup()

	router := newRouter(models.RateTables{}, models.CachePolicy{})
	ts := testutil.NewTestServer(t, router)
	defer ts.Close()

	resp := ts.GET("/api/health")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		Contains(`"status":"ok"`)
}

// TestRouterProjectEndpoint exercises a full request/response round trip
// through the real chi router, not just the bare handler.
func TestRouterProjectEndpoint(t *testing.T) {
	router := newRouter(models.RateTables{}, models.CachePolicy{})
	ts := testutil.NewTestServer(t, router)
	defer ts.Close()

	body, err := json.Marshal(projectRequest{
		Accounts: []models.Account{{ID: "acct", Name: "Account", Balance: 500}},
		End:      "2025-02-01",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	resp := ts.POST("/project", "application/json", bytes.NewReader(body))
	assertion := testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON()

	var result models.ProjectResult
	raw := assertion.Body()
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		t.Fatalf("decoding response: %v, body=%s", err, raw)
	}
	if len(result.Accounts) != 1 {
		t.Fatalf("len(Accounts) = %d, want 1", len(result.Accounts))
	}
}

func TestRouterProjectEndpointBadRequest(t *testing.T) {
	router := newRouter(models.RateTables{}, models.CachePolicy{})
	ts := testutil.NewTestServer(t, router)
	defer ts.Close()

	resp := ts.POST("/project", "application/json", bytes.NewReader([]byte("not json")))
	testutil.AssertResponse(t, resp).Status(400)
}
