package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lukman83/promobot/internal/caption"
	"github.com/lukman83/promobot/internal/models"
	"github.com/lukman83/promobot/internal/pipeline"
	"github.com/lukman83/promobot/internal/source"
	"github.com/lukman83/promobot/internal/store"
)

type fixedSource struct {
	name     string
	products []models.Product
}

func (f fixedSource) Name() string { return f.name }

func (f fixedSource) Search(context.Context, source.Query) []models.Product { return f.products }

type recordingRunner struct{ keyword string }

func (r *recordingRunner) RunKeyword(ctx context.Context, keyword string) pipeline.Summary {
	r.keyword = keyword
	return pipeline.Summary{RunID: "run-1", Keyword: keyword, Published: 2}
}

func newTools(t *testing.T) (*tools, *store.MemoryStore) {
	t.Helper()
	reg := source.NewRegistry()
	reg.Register(fixedSource{name: "affiliate", products: []models.Product{{ID: "AF-1", Name: "Fone"}}})
	reg.Register(fixedSource{name: "marketplace", products: []models.Product{{ID: "AF-1", Name: "dup"}, {ID: "ML-2", Name: "Mouse"}}})
	st := store.NewMemoryStore()
	return &tools{Deps: Deps{
		Sources:   reg,
		Store:     st,
		Formatter: caption.NewFormatter("pt-BR", "R$"),
		Limit:     5,
	}}, st
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", res.Content[0])
	}
	return tc.Text
}

func TestSearchProductsMergesSources(t *testing.T) {
	tl, _ := newTools(t)
	res, err := tl.handleSearchProducts(context.Background(), call(map[string]any{"keyword": "fone"}))
	if err != nil || res.IsError {
		t.Fatalf("unexpected failure: %v %s", err, text(t, res))
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(text(t, res)), &products); err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 || products[0].Name != "Fone" || products[1].ID != "ML-2" {
		t.Errorf("expected AF-1 once (first occurrence) then ML-2, got %+v", products)
	}
}

func TestSearchProductsUnknownSource(t *testing.T) {
	tl, _ := newTools(t)
	res, _ := tl.handleSearchProducts(context.Background(), call(map[string]any{"keyword": "x", "source": "nope"}))
	if !res.IsError {
		t.Fatal("expected tool error")
	}
}

func TestCheckPosted(t *testing.T) {
	tl, st := newTools(t)
	st.MarkPosted(context.Background(), models.Product{ID: "AF-1"}, models.ChannelTelegram)

	res, _ := tl.handleCheckPosted(context.Background(), call(map[string]any{"ids": []any{"AF-1", "ML-2"}}))
	var out map[string]bool
	if err := json.Unmarshal([]byte(text(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if !out["AF-1"] || out["ML-2"] {
		t.Errorf("unexpected posted map %v", out)
	}
}

func TestPreviewMessage(t *testing.T) {
	tl, _ := newTools(t)
	res, _ := tl.handlePreviewMessage(context.Background(), call(map[string]any{
		"name": "Fone", "price": 99.9, "link": "http://x/A1", "channel": "whatsapp",
	}))
	got := text(t, res)
	if res.IsError || !strings.Contains(got, "*Fone*") || !strings.Contains(got, "http://x/A1") {
		t.Errorf("unexpected preview %q", got)
	}

	res, _ = tl.handlePreviewMessage(context.Background(), call(map[string]any{
		"name": "Fone", "link": "l", "channel": "fax",
	}))
	if !res.IsError {
		t.Error("expected error for unknown channel")
	}
}

func TestRunPipeline(t *testing.T) {
	tl, _ := newTools(t)
	res, _ := tl.handleRunPipeline(context.Background(), call(nil))
	if !res.IsError {
		t.Fatal("expected error without a runner")
	}

	r := &recordingRunner{}
	tl.Runner = r
	res, _ = tl.handleRunPipeline(context.Background(), call(map[string]any{"keyword": "mouse"}))
	if res.IsError || r.keyword != "mouse" || !strings.Contains(text(t, res), `"published": 2`) {
		t.Errorf("unexpected run result %q", text(t, res))
	}
}

func TestBearerAuth(t *testing.T) {
	h := BearerAuth("secret", "mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for _, tc := range []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer wrong", http.StatusUnauthorized},
		{"Basic secret", http.StatusUnauthorized},
		{"Bearer secret", http.StatusNoContent},
	} {
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("header %q: got %d, want %d", tc.header, rec.Code, tc.want)
		}
	}
}
