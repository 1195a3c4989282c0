package cmd

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/lukman83/promobot/internal/caption"
	"github.com/lukman83/promobot/internal/models"
	"github.com/lukman83/promobot/internal/pipeline"
)

func newFormatter() *caption.Formatter {
	return caption.NewFormatter(cfg.Locale, cfg.CurrencySymbol)
}

// printProductsTable prints products in a human-friendly card layout.
func printProductsTable(w io.Writer, f *caption.Formatter, products []models.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	for i, p := range products {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, " %d. %s  [%s]\n", i+1, p.Name, p.ID)

		// Price line with optional original price and discount
		priceLine := "    Price: " + f.Price(p.Price)
		if p.HasDiscount() {
			priceLine += fmt.Sprintf("  (was %s, -%d%%)", f.Price(p.OriginalPrice), p.DiscountPercent)
		}
		if p.Store != "" {
			priceLine += "  |  Store: " + p.Store
		}
		fmt.Fprintln(w, priceLine)
		fmt.Fprintf(w, "    Source: %s\n", p.Source)
		fmt.Fprintf(w, "    %s\n", cleanURL(p.Link))
	}
}

// printPostedTable prints store records one per row.
func printPostedTable(w io.Writer, f *caption.Formatter, rows []models.PostedProduct) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "Nothing posted yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POSTED AT\tID\tNAME\tPRICE\tTG\tWA\tTW")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.PostedAt.Local().Format("2006-01-02 15:04"),
			r.ProductID,
			caption.Truncate(r.ProductName, 40),
			f.Price(r.ProductPrice),
			mark(r.PostedTelegram), mark(r.PostedWhatsapp), mark(r.PostedTwitter),
		)
	}
	tw.Flush()
}

// printSummary prints a run summary and one line per publish attempt.
func printSummary(w io.Writer, sum pipeline.Summary) {
	switch {
	case sum.Skipped:
		fmt.Fprintf(w, "Run %s skipped: another run is in progress.\n", sum.RunID)
		return
	case sum.Error != "" && len(sum.Results) == 0:
		fmt.Fprintf(w, "Run %s failed: %s\n", sum.RunID, sum.Error)
		return
	}
	fmt.Fprintf(w, "Run %s  keyword=%q  fetched=%d  candidates=%d  already posted=%d\n",
		sum.RunID, sum.Keyword, sum.Fetched, sum.Candidates, sum.AlreadyPosted)
	if len(sum.Selected) == 0 {
		fmt.Fprintln(w, "No new products to publish.")
		return
	}
	fmt.Fprintf(w, "Selected: %s\n", strings.Join(sum.Selected, ", "))
	for _, r := range sum.Results {
		status := "ok"
		if !r.Success {
			status = "FAILED"
		}
		line := fmt.Sprintf("  %-8s %-20s %s", r.Channel, r.ProductID, status)
		if r.Error != "" {
			line += ": " + r.Error
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "Published %d, failed %d in %s\n", sum.Published, sum.Failed, sum.Duration.Round(1e6))
}

func mark(b bool) string {
	if b {
		return "x"
	}
	return "-"
}

// cleanURL strips tracking query params and returns just the product page URL.
func cleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	return u.String()
}
