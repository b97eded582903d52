package accounts

import (
	"testing"

	"projector/internal/models"
)

func TestManagerByIDAndByName(t *testing.T) {
	mgr := New([]models.Account{{ID: "a1", Name: "Checking"}, {ID: "a2", Name: "Savings"}})

	if a, ok := mgr.ByID("a1"); !ok || a.Name != "Checking" {
		t.Fatalf("ByID(a1) = %+v, %v", a, ok)
	}
	if a, ok := mgr.ByName("Savings"); !ok || a.ID != "a2" {
		t.Fatalf("ByName(Savings) = %+v, %v", a, ok)
	}
	if _, ok := mgr.ByID("missing"); ok {
		t.Fatal("ByID(missing) should report not found")
	}
}

func TestManagerAllPreservesInputOrder(t *testing.T) {
	mgr := New([]models.Account{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}})
	all := mgr.All()
	if len(all) != 3 || all[0].ID != "a1" || all[2].ID != "a3" {
		t.Fatalf("All() = %+v, want input order preserved", all)
	}
}

func TestManagerPullCandidatesSortedByPriorityExcludingNegative(t *testing.T) {
	mgr := New([]models.Account{
		{ID: "never", Name: "Never", PullPriority: -1},
		{ID: "second", Name: "Second", PullPriority: 1},
		{ID: "first", Name: "First", PullPriority: 0},
	})

	candidates := mgr.PullCandidates()
	if len(candidates) != 2 {
		t.Fatalf("len(PullCandidates) = %d, want 2 (negative priority excluded)", len(candidates))
	}
	if candidates[0].ID != "first" || candidates[1].ID != "second" {
		t.Fatalf("PullCandidates order = [%s %s], want [first second]", candidates[0].ID, candidates[1].ID)
	}
}

func TestManagerRetirementAccounts(t *testing.T) {
	mgr := New([]models.Account{
		{ID: "plain"},
		{ID: "pensioned", Pension: &models.Pension{}},
		{ID: "ss", SocialSecurity: &models.SocialSecurity{}},
	})
	got := mgr.RetirementAccounts()
	if len(got) != 2 {
		t.Fatalf("len(RetirementAccounts) = %d, want 2", len(got))
	}
}

func TestManagerInterestPayAccountsAndTaxEligible(t *testing.T) {
	mgr := New([]models.Account{
		{ID: "save", Name: "Save", InterestPayAccount: "Checking"},
		{ID: "check", Name: "Checking"},
		{ID: "invest", Name: "Invest", PerformsPulls: true},
	})

	pay := mgr.InterestPayAccounts()
	if !pay["Checking"] {
		t.Fatalf("InterestPayAccounts() = %+v, want Checking present", pay)
	}

	eligible := mgr.TaxEligibleAccounts()
	if len(eligible) != 2 {
		t.Fatalf("len(TaxEligibleAccounts) = %d, want 2 (Checking via interest-pay, Invest via performsPulls)", len(eligible))
	}
}
