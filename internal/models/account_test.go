package models

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestAccountValidatePullRequiresMinimumBalance(t *testing.T) {
	a := &Account{Name: "Check", PerformsPulls: true}
	if err := a.Validate(); err == nil {
		t.Fatal("expected an error: performsPulls without minimumBalance")
	}
}

func TestAccountValidatePushRequiresPushAccount(t *testing.T) {
	a := &Account{Name: "Check", PerformsPushes: true, MinimumBalance: floatPtr(500)}
	if err := a.Validate(); err == nil {
		t.Fatal("expected an error: performsPushes without pushAccount")
	}
}

func TestAccountValidateOK(t *testing.T) {
	a := &Account{
		Name: "Check", PerformsPushes: true,
		MinimumBalance: floatPtr(500), PushAccount: "Savings",
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestAccountValidatePlainAccountNeedsNothing(t *testing.T) {
	a := &Account{Name: "Check"}
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate on a plain account should not error: %v", err)
	}
}
