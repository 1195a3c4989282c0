package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/lukman83/promobot/internal/caption"
	"github.com/lukman83/promobot/internal/models"
	"github.com/lukman83/promobot/internal/pipeline"
	"github.com/lukman83/promobot/internal/publisher"
)

func TestPrintProductsTable(t *testing.T) {
	var buf bytes.Buffer
	f := caption.NewFormatter("en", "$")
	printProductsTable(&buf, f, []models.Product{
		{ID: "AF-1", Name: "Fone", Price: 80, OriginalPrice: 100, DiscountPercent: 20, Store: "S1", Source: "affiliate", Link: "http://x/A1?utm=1"},
		{ID: "ML-2", Name: "Mouse", Price: 0, Source: "marketplace", Link: "http://x/ML2"},
	})
	out := buf.String()
	for _, want := range []string{"1. Fone  [AF-1]", "-20%", "Store: S1", "http://x/A1\n", "2. Mouse"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "utm=") {
		t.Error("tracking params should be stripped")
	}
}

func TestPrintPostedTable(t *testing.T) {
	var buf bytes.Buffer
	printPostedTable(&buf, caption.NewFormatter("en", "$"), []models.PostedProduct{
		{ProductID: "AF-1", ProductName: "Fone", ProductPrice: 99.9, PostedTelegram: true, PostedAt: time.Now()},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", buf.String())
	}
	if !strings.Contains(lines[1], "AF-1") || !strings.Contains(lines[1], "x") {
		t.Errorf("unexpected row %q", lines[1])
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, pipeline.Summary{
		RunID: "r1", Keyword: "fone", Fetched: 2, Candidates: 1,
		Selected:  []string{"AF-1"},
		Published: 1, Failed: 1,
		Results: []publisher.Result{
			{Channel: models.ChannelTelegram, ProductID: "AF-1", Success: true},
			{Channel: models.ChannelTwitter, ProductID: "AF-1", Error: "twitter: channel not configured"},
		},
	})
	out := buf.String()
	for _, want := range []string{`keyword="fone"`, "Selected: AF-1", "FAILED: twitter", "Published 1, failed 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printSummary(&buf, pipeline.Summary{RunID: "r2", Skipped: true})
	if !strings.Contains(buf.String(), "skipped") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
