package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"projector/internal/models"
)

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{500, "$500"},
		{-500, "-$500"},
		{1500, "$1.5k"},
		{2500000, "$2.50M"},
		{-2500000, "-$2.50M"},
	}
	for _, c := range cases {
		if got := FormatMoney(c.amount); got != c.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", c.amount, got, c.want)
		}
	}
}

func TestFormatMoneyFull(t *testing.T) {
	if got := FormatMoneyFull(1234.5); got != "$1234.50" {
		t.Fatalf("FormatMoneyFull(1234.5) = %q, want $1234.50", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate should not touch short strings, got %q", got)
	}
	got := truncate("a very long category name", 10)
	if len(got) != 10 || !strings.HasSuffix(got, "...") {
		t.Fatalf("truncate(long, 10) = %q, want length 10 ending in ...", got)
	}
}

func TestSummarizeComputesStartEndAndInterest(t *testing.T) {
	acct := models.AccountResult{
		Name: "Checking",
		ConsolidatedActivity: []models.ConsolidatedActivity{
			{ID: "a1", Category: "Interest", Amount: 10, Balance: 1010},
			{ID: "AUTO-PULL_1", Category: "Ignore.Transfer", Amount: 100, Balance: 1110},
			{ID: "a3", Category: "Groceries", Amount: -50, Balance: 1060},
		},
	}
	s := summarize(acct)
	if s.startBalance != 1000 {
		t.Errorf("startBalance = %v, want 1000", s.startBalance)
	}
	if s.endBalance != 1060 {
		t.Errorf("endBalance = %v, want 1060", s.endBalance)
	}
	if s.totalInterest != 10 {
		t.Errorf("totalInterest = %v, want 10", s.totalInterest)
	}
	if s.autoPullCount != 1 {
		t.Errorf("autoPullCount = %d, want 1", s.autoPullCount)
	}
	if s.activityCount != 3 {
		t.Errorf("activityCount = %d, want 3", s.activityCount)
	}
}

func TestSummarizeEmptyActivity(t *testing.T) {
	s := summarize(models.AccountResult{Name: "Empty"})
	if s.startBalance != 0 || s.endBalance != 0 || s.activityCount != 0 {
		t.Fatalf("expected zero-value summary for an account with no activity, got %+v", s)
	}
}

func TestGenerateProducesAValidPDF(t *testing.T) {
	result := &models.ProjectResult{
		Metadata: models.ProjectMetadata{
			ActualStartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		Accounts: []models.AccountResult{
			{
				Name: "Checking",
				ConsolidatedActivity: []models.ConsolidatedActivity{
					{ID: "a1", Name: "Paycheck", Category: "Income", Amount: 2000, Balance: 2000},
				},
			},
		},
	}

	data, err := Generate(result)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Generate returned no bytes")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("Generate output does not look like a PDF, starts with %q", data[:minInt(8, len(data))])
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
