// Package caption turns products into channel-ready text: price formatting,
// the canned fallback template, per-channel markup and the copy prompt.
package caption

import (
	"fmt"
	"strings"

	"github.com/lukman83/promobot/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// TwitterLimit is the maximum tweet length in runes.
const TwitterLimit = 280

// Formatter renders prices and messages for one locale.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter creates a formatter for a BCP 47 locale (e.g. "pt-BR") and a
// currency symbol prefix (e.g. "R$"). Unknown locales fall back to English.
func NewFormatter(locale, symbol string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// Price formats an amount with two decimals and the locale's separators.
func (f *Formatter) Price(v float64) string {
	if v < 0 {
		v = 0
	}
	s := f.printer.Sprint(number.Decimal(v, number.Scale(2)))
	if f.symbol == "" {
		return s
	}
	return f.symbol + " " + s
}

// Fallback is the canned template used when copy generation failed.
func (f *Formatter) Fallback(p models.Product) string {
	return f.fallback(p, models.ChannelTwitter)
}

func (f *Formatter) fallback(p models.Product, ch models.Channel) string {
	var b strings.Builder
	name := p.Name
	switch ch {
	case models.ChannelTelegram:
		name = "<b>" + html.EscapeString(name) + "</b>"
	case models.ChannelWhatsApp:
		name = "*" + name + "*"
	}
	fmt.Fprintf(&b, "🔥 %s\n\n", name)

	priceLine := "💰 " + f.Price(p.Price)
	if p.HasDiscount() {
		priceLine += fmt.Sprintf(" (was %s, -%d%%)", f.Price(p.OriginalPrice), p.DiscountPercent)
	}
	b.WriteString(priceLine + "\n")
	if p.Store != "" {
		fmt.Fprintf(&b, "🏬 %s\n", escapeFor(p.Store, ch))
	}
	fmt.Fprintf(&b, "🛒 %s", escapeFor(p.Link, ch))
	return b.String()
}

// Text builds the final message for a channel. Generated copy is used when
// present, otherwise the fallback template. The link is always included.
func (f *Formatter) Text(p models.Product, ch models.Channel) string {
	gen := strings.TrimSpace(p.GeneratedMessage)
	var text string
	if gen == "" {
		text = f.fallback(p, ch)
	} else {
		text = escapeFor(gen, ch)
		if p.Link != "" && !strings.Contains(gen, p.Link) {
			text += "\n\n🛒 " + escapeFor(p.Link, ch)
		}
	}
	if ch == models.ChannelTwitter {
		text = fitTweet(text, p.Link)
	}
	return text
}

// Prompt is the copy-generation request for one product.
func (f *Formatter) Prompt(p models.Product) string {
	var b strings.Builder
	b.WriteString("Write a short, upbeat promotional message for a messaging channel.\n")
	b.WriteString("Use at most 3 short lines and a couple of emojis. Do not invent prices or facts.\n\n")
	fmt.Fprintf(&b, "Product: %s\n", p.Name)
	fmt.Fprintf(&b, "Price: %s\n", f.Price(p.Price))
	if p.HasDiscount() {
		fmt.Fprintf(&b, "Was: %s (-%d%%)\n", f.Price(p.OriginalPrice), p.DiscountPercent)
	}
	fmt.Fprintf(&b, "Store: %s\n", p.Store)
	fmt.Fprintf(&b, "Link: %s\n", p.Link)
	return b.String()
}

func escapeFor(s string, ch models.Channel) string {
	if ch == models.ChannelTelegram {
		return html.EscapeString(s)
	}
	return s
}

// fitTweet truncates text to TwitterLimit runes while keeping the link.
func fitTweet(text, link string) string {
	if len([]rune(text)) <= TwitterLimit {
		return text
	}
	suffix := ""
	if link != "" {
		suffix = "\n" + link
		text = strings.Replace(text, link, "", 1)
	}
	room := TwitterLimit - len([]rune(suffix))
	if room <= 0 {
		// The link alone does not fit; send as much of it as the limit allows.
		return Truncate(link, TwitterLimit)
	}
	return Truncate(strings.TrimSpace(text), room) + suffix
}

// Truncate shortens s to max runes, ending with "..." when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// StripTags returns the text content of an HTML fragment with whitespace
// collapsed. Partner APIs sometimes return names with highlight markup.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(b.String()), " ")
}
