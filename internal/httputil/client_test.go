package httputil

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

func TestGetJSONDecodesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "promobot-test" {
			t.Errorf("unexpected user agent %q", got)
		}
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		json.NewEncoder(gz).Encode(map[string]string{"hello": "world"})
		gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	client := NewHTTPClient(&LimitedTransport{
		RateLimiter: rate.NewLimiter(rate.Inf, 1),
		UserAgent:   "promobot-test",
	})

	var out map[string]string
	if err := GetJSON(context.Background(), client, srv.URL, nil, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out["hello"] != "world" {
		t.Fatalf("unexpected body: %v", out)
	}
}

func TestPostJSONStatusError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer header")
		}
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := PostJSON(context.Background(), NewHTTPClient(nil), srv.URL, BearerHeader("tok"), map[string]string{"a": "b"}, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected StatusError 502, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestBearerHeaderEmpty(t *testing.T) {
	if BearerHeader("") != nil {
		t.Fatal("expected nil header for empty token")
	}
}

func TestNewBaseTransportProxy(t *testing.T) {
	tr, err := NewBaseTransport("http://proxy.local:8080")
	if err != nil {
		t.Fatal(err)
	}
	if tr.Proxy == nil {
		t.Fatal("expected proxy func to be set")
	}
	if _, err := NewBaseTransport("://bad"); err == nil {
		t.Fatal("expected parse error")
	}
}
