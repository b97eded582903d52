package variables

import (
	"context"
	"testing"
	"time"
)

func TestStaticResolverSimulationOverridesDefault(t *testing.T) {
	r := NewStaticResolver()
	r.SetAmount("", "rent", 1000)
	r.SetAmount("pessimistic", "rent", 1500)

	got, err := r.ResolveAmount(context.Background(), "rent", "pessimistic")
	if err != nil {
		t.Fatalf("ResolveAmount: %v", err)
	}
	if got != 1500 {
		t.Fatalf("ResolveAmount(pessimistic) = %v, want 1500", got)
	}

	got, err = r.ResolveAmount(context.Background(), "rent", "optimistic")
	if err != nil {
		t.Fatalf("ResolveAmount: %v", err)
	}
	if got != 1000 {
		t.Fatalf("ResolveAmount(optimistic) should fall back to default = 1000, got %v", got)
	}
}

func TestStaticResolverUnknownAmountErrors(t *testing.T) {
	r := NewStaticResolver()
	if _, err := r.ResolveAmount(context.Background(), "missing", "default"); err == nil {
		t.Fatal("expected an error for an unregistered variable")
	}
}

func TestStaticResolverDateOverridesDefault(t *testing.T) {
	r := NewStaticResolver()
	defaultDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	overrideDate := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	r.SetDate("", "retireDate", defaultDate)
	r.SetDate("aggressive", "retireDate", overrideDate)

	got, err := r.ResolveDate(context.Background(), "retireDate", "aggressive")
	if err != nil {
		t.Fatalf("ResolveDate: %v", err)
	}
	if !got.Equal(overrideDate) {
		t.Fatalf("ResolveDate(aggressive) = %v, want %v", got, overrideDate)
	}

	got, err = r.ResolveDate(context.Background(), "retireDate", "default")
	if err != nil {
		t.Fatalf("ResolveDate: %v", err)
	}
	if !got.Equal(defaultDate) {
		t.Fatalf("ResolveDate(default) = %v, want %v", got, defaultDate)
	}
}

func TestStaticResolverUnknownDateErrors(t *testing.T) {
	r := NewStaticResolver()
	if _, err := r.ResolveDate(context.Background(), "missing", "default"); err == nil {
		t.Fatal("expected an error for an unregistered date variable")
	}
}
