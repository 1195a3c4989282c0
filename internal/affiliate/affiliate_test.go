package affiliate

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lukman83/promobot/internal/source"
)

var quiet = log.New(io.Discard, "", 0)

func TestSearchNormalizesOffers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v3/tok/offer/_search") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("keyword") != "fone" || r.URL.Query().Get("size") != "5" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"offers":[
			{"id":123,"name":"Fone <b>JBL</b>","price":99.9,"priceFrom":199.8,"link":"http://x/1","thumbnail":"http://img/1","store":{"name":"S1"}},
			{"id":"","name":"no id","price":1,"link":"http://x/2"},
			{"id":"7","name":"","price":1,"link":"http://x/3"},
			{"id":"8","name":"Cabo","price":-5,"link":"http://x/4"}
		]}`))
	}))
	defer srv.Close()

	a := New(srv.Client(), Options{BaseURL: srv.URL, AppToken: "tok", SourceID: "src"}, quiet)
	got := a.Search(context.Background(), source.Query{Keyword: "fone", Limit: 5})
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d: %+v", len(got), got)
	}
	p := got[0]
	if p.ID != "AF-123" || p.Name != "Fone JBL" || p.Store != "S1" || p.ImageURL != "http://img/1" {
		t.Errorf("unexpected product %+v", p)
	}
	if p.OriginalPrice != 199.8 || p.DiscountPercent != 50 {
		t.Errorf("unexpected discount fields %+v", p)
	}
	if got[1].Price != 0 || got[1].Store == "" {
		t.Errorf("expected defaulted price and store, got %+v", got[1])
	}
}

func TestSearchFailSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"offers": "not-a-list"`))
	}))
	defer srv.Close()

	a := New(srv.Client(), Options{BaseURL: srv.URL, AppToken: "tok"}, quiet)
	if got := a.Search(context.Background(), source.Query{Keyword: "x"}); len(got) != 0 {
		t.Fatalf("expected empty list on malformed JSON, got %+v", got)
	}

	srv.Close()
	if got := a.Search(context.Background(), source.Query{Keyword: "x"}); len(got) != 0 {
		t.Fatalf("expected empty list on network error, got %+v", got)
	}
}

func TestSearchWithoutTokenMakesNoCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	a := New(srv.Client(), Options{BaseURL: srv.URL}, quiet)
	if got := a.Search(context.Background(), source.Query{Keyword: "x"}); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
	if called {
		t.Fatal("expected no network call without app token")
	}
}
