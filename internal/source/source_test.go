package source

import (
	"context"
	"testing"

	"github.com/lukman83/promobot/internal/models"
)

type stubAdapter struct {
	name     string
	products []models.Product
	calls    int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Search(ctx context.Context, q Query) []models.Product {
	s.calls++
	return s.products
}

func TestMergeFirstOccurrenceWins(t *testing.T) {
	partner := []models.Product{
		{ID: "A1", Name: "Fone", Store: "S1"},
		{ID: "A2", Name: "Cabo"},
	}
	market := []models.Product{
		{ID: "A1", Name: "Fone (marketplace)", Store: "S2"},
		{ID: "ML-9", Name: "Mouse"},
	}

	got := Merge(partner, market)
	if len(got) != 3 {
		t.Fatalf("expected 3 products, got %d", len(got))
	}
	if got[0].ID != "A1" || got[0].Store != "S1" {
		t.Errorf("expected partner A1 to survive, got %+v", got[0])
	}
	if got[1].ID != "A2" || got[2].ID != "ML-9" {
		t.Errorf("order not preserved: %v %v", got[1].ID, got[2].ID)
	}
}

func TestMergeNoDuplicateIDs(t *testing.T) {
	list := []models.Product{{ID: "A1"}, {ID: "A1"}, {ID: ""}, {ID: "B"}, {ID: "B"}}
	got := Merge(list)
	seen := map[string]bool{}
	for _, p := range got {
		if seen[p.ID] {
			t.Fatalf("duplicate id %q in merged list", p.ID)
		}
		seen[p.ID] = true
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
}

func TestRegistryOrderAndDuplicates(t *testing.T) {
	r := NewRegistry()
	a := &stubAdapter{name: "affiliate", products: []models.Product{{ID: "A1"}}}
	b := &stubAdapter{name: "marketplace", products: []models.Product{{ID: "A1", Name: "dup"}, {ID: "ML-1"}}}
	if err := r.Register(a); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(b); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(a); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	got := r.SearchAll(context.Background(), Query{Keyword: "fone", Limit: 5})
	if len(got) != 2 || got[0].ID != "A1" || got[0].Name != "" || got[1].ID != "ML-1" {
		t.Fatalf("expected merged results in registration order: %+v", got)
	}
	if _, err := r.Get("missing"); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestReportProgress(t *testing.T) {
	var msgs []string
	ctx := WithProgress(context.Background(), func(m string) { msgs = append(msgs, m) })
	ReportProgress(ctx, "hello")
	ReportProgress(context.Background(), "ignored")
	if len(msgs) != 1 || msgs[0] != "hello" {
		t.Fatalf("unexpected progress messages: %v", msgs)
	}
}
