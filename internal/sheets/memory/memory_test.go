package memory

import (
	"context"
	"testing"

	"carteira/internal/core"
)

func TestStoreUpsertAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, e := range []core.LedgerEntry{
		{UUID: "a", Description: "Mercado"},
		{UUID: "b", Description: "Padaria"},
		{UUID: "a", Description: "Mercado grande"},
	} {
		if _, err := s.AppendEntry(ctx, e); err != nil {
			t.Fatalf("append %s: %v", e.UUID, err)
		}
	}

	got := s.Entries()
	if len(got) != 2 || got[0].Description != "Mercado grande" || got[1].UUID != "b" {
		t.Fatalf("unexpected entries %+v", got)
	}

	if err := s.DeleteEntry(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteEntry(ctx, "zzz"); err != nil {
		t.Fatal(err)
	}
	if got := s.Entries(); len(got) != 1 || got[0].UUID != "b" {
		t.Fatalf("after delete: %+v", got)
	}

	if _, err := s.AppendEntry(ctx, core.LedgerEntry{}); err == nil {
		t.Fatal("entry without uuid must be rejected")
	}
}
