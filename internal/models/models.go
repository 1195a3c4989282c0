package models

import "time"

// Channel identifies a messaging destination.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelTwitter  Channel = "twitter"
)

// Channels lists every supported channel in publish order.
var Channels = []Channel{ChannelTelegram, ChannelWhatsApp, ChannelTwitter}

// ParseChannel maps a config value to a Channel.
func ParseChannel(s string) (Channel, bool) {
	for _, c := range Channels {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Product is a deal fetched during a single pipeline run.
type Product struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	OriginalPrice    float64 `json:"original_price,omitempty"`
	DiscountPercent  int     `json:"discount_percent,omitempty"`
	Link             string  `json:"link"`
	ImageURL         string  `json:"image,omitempty"`
	Store            string  `json:"store"`
	Source           string  `json:"source"`
	GeneratedMessage string  `json:"generated_message,omitempty"`
}

// HasDiscount reports whether the product carries a usable discount.
func (p Product) HasDiscount() bool {
	return p.OriginalPrice > p.Price && p.DiscountPercent > 0
}

// PostedProduct is the persistent dedup record of a published product.
type PostedProduct struct {
	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name"`
	ProductLink    string    `json:"product_link"`
	ProductPrice   float64   `json:"product_price"`
	PostedTelegram bool      `json:"posted_telegram"`
	PostedWhatsapp bool      `json:"posted_whatsapp"`
	PostedTwitter  bool      `json:"posted_twitter"`
	PostedAt       time.Time `json:"posted_at"`
}

// PostedOn reports whether the record has the flag for c set.
func (p PostedProduct) PostedOn(c Channel) bool {
	switch c {
	case ChannelTelegram:
		return p.PostedTelegram
	case ChannelWhatsApp:
		return p.PostedWhatsapp
	case ChannelTwitter:
		return p.PostedTwitter
	}
	return false
}
