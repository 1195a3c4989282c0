package copywriter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lukman83/promobot/internal/caption"
	"github.com/lukman83/promobot/internal/models"
)

var quiet = log.New(io.Discard, "", 0)

func TestEnrichIsolatesFailures(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, p models.Product) (string, error) {
		if p.ID == "bad" {
			return "", errors.New("model overloaded")
		}
		return "copy for " + p.ID, nil
	})
	in := []models.Product{{ID: "a"}, {ID: "bad"}, {ID: "c"}}

	out := Enrich(context.Background(), gen, in, 2, quiet)
	if len(out) != 3 {
		t.Fatalf("expected 3 products, got %d", len(out))
	}
	if out[0].GeneratedMessage != "copy for a" || out[2].GeneratedMessage != "copy for c" {
		t.Errorf("unexpected messages %+v", out)
	}
	if out[1].GeneratedMessage != "" {
		t.Errorf("failed item should have empty message, got %q", out[1].GeneratedMessage)
	}
	if in[0].GeneratedMessage != "" {
		t.Error("input slice must not be modified")
	}
}

func TestEnrichBoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	gen := GeneratorFunc(func(ctx context.Context, p models.Product) (string, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return "ok", nil
	})
	in := make([]models.Product, 8)
	for i := range in {
		in[i].ID = string(rune('a' + i))
	}
	Enrich(context.Background(), gen, in, 2, quiet)
	if peak > 2 {
		t.Fatalf("expected at most 2 concurrent calls, saw %d", peak)
	}
}

func TestDisabledGeneratorFallsBack(t *testing.T) {
	gen := NewOpenAIGenerator(nil, OpenAIOptions{}, caption.NewFormatter("en", "$"))
	out := Enrich(context.Background(), gen, []models.Product{{ID: "A1", Name: "Fone"}}, 1, quiet)
	if out[0].GeneratedMessage != "" {
		t.Fatalf("expected empty message, got %q", out[0].GeneratedMessage)
	}
}

func TestOpenAIGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing api key header")
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "test-model" || len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "Fone") {
			t.Errorf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"test-model",
			"choices":[{"index":0,"message":{"role":"assistant","content":"  Fone em oferta!  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator(srv.Client(), OpenAIOptions{
		APIKey:  "sk-test",
		BaseURL: srv.URL + "/v1",
		Model:   "test-model",
	}, caption.NewFormatter("pt-BR", "R$"))

	text, err := gen.Generate(context.Background(), models.Product{ID: "A1", Name: "Fone", Price: 99.9, Link: "http://x/A1"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "Fone em oferta!" {
		t.Errorf("unexpected text %q", text)
	}
}
