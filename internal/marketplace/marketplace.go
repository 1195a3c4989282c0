// Package marketplace searches a marketplace listing API, falling back to its
// catalog endpoint when the listing search comes back empty.
package marketplace

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lukman83/promobot/internal/caption"
	"github.com/lukman83/promobot/internal/httputil"
	"github.com/lukman83/promobot/internal/models"
	"github.com/lukman83/promobot/internal/source"
)

const (
	Name           = "marketplace"
	DefaultBaseURL = "https://api.mercadolibre.com"
	DefaultSite    = "MLB"
	DefaultStore   = "Mercado Livre"
	idPrefix       = "ML-"
)

type Options struct {
	BaseURL     string
	Site        string
	AccessToken string
}

// Adapter implements source.Adapter for the marketplace API.
type Adapter struct {
	client *http.Client
	opts   Options
	logger *log.Logger
}

func New(client *http.Client, opts Options, logger *log.Logger) *Adapter {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Site == "" {
		opts.Site = DefaultSite
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{client: client, opts: opts, logger: logger}
}

func (a *Adapter) Name() string { return Name }

// Search tries the listing search first and the catalog search second.
func (a *Adapter) Search(ctx context.Context, q source.Query) []models.Product {
	if q.Limit <= 0 {
		q.Limit = 10
	}

	products, err := a.searchListings(ctx, q)
	if err != nil {
		a.logger.Printf("[%s] listing search %q failed: %v", Name, q.Keyword, err)
	}
	if len(products) > 0 {
		source.ReportProgress(ctx, fmt.Sprintf("Found %d listings via %s", len(products), Name))
		return products
	}

	source.ReportProgress(ctx, "Listing search empty, trying catalog search...")
	products, err = a.searchCatalog(ctx, q)
	if err != nil {
		a.logger.Printf("[%s] catalog search %q failed: %v", Name, q.Keyword, err)
		return nil
	}
	source.ReportProgress(ctx, fmt.Sprintf("Found %d catalog products via %s", len(products), Name))
	return products
}

func (a *Adapter) searchListings(ctx context.Context, q source.Query) ([]models.Product, error) {
	v := url.Values{}
	v.Set("q", q.Keyword)
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	u := fmt.Sprintf("%s/sites/%s/search?%s", a.opts.BaseURL, url.PathEscape(a.opts.Site), v.Encode())

	var resp listingResponse
	if err := httputil.GetJSON(ctx, a.client, u, httputil.BearerHeader(a.opts.AccessToken), &resp); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(resp.Results))
	for _, l := range resp.Results {
		if p, ok := l.toProduct(); ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (a *Adapter) searchCatalog(ctx context.Context, q source.Query) ([]models.Product, error) {
	v := url.Values{}
	v.Set("status", "active")
	v.Set("site_id", a.opts.Site)
	v.Set("q", q.Keyword)
	u := fmt.Sprintf("%s/products/search?%s", a.opts.BaseURL, v.Encode())

	var resp catalogResponse
	if err := httputil.GetJSON(ctx, a.client, u, httputil.BearerHeader(a.opts.AccessToken), &resp); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(resp.Results))
	for _, c := range resp.Results {
		if len(products) >= q.Limit {
			break
		}
		if p, ok := c.toProduct(); ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// listingResponse is the shape of the listing search endpoint.
type listingResponse struct {
	Results []listing `json:"results"`
}

type listing struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Price             *float64 `json:"price"`
	OriginalPrice     *float64 `json:"original_price"`
	Permalink         string   `json:"permalink"`
	Thumbnail         string   `json:"thumbnail"`
	OfficialStoreName string   `json:"official_store_name"`
	Seller            struct {
		Nickname string `json:"nickname"`
	} `json:"seller"`
}

func (l listing) toProduct() (models.Product, bool) {
	store := l.OfficialStoreName
	if store == "" {
		store = l.Seller.Nickname
	}
	return normalize(l.ID, l.Title, l.Permalink, l.Thumbnail, store, l.Price, l.OriginalPrice)
}

// catalogResponse is the shape of the catalog search endpoint.
type catalogResponse struct {
	Results []catalogProduct `json:"results"`
}

type catalogProduct struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Permalink string `json:"permalink"`
	Pictures  []struct {
		URL string `json:"url"`
	} `json:"pictures"`
	BuyBoxWinner *struct {
		ItemID        string   `json:"item_id"`
		Price         *float64 `json:"price"`
		OriginalPrice *float64 `json:"original_price"`
	} `json:"buy_box_winner"`
}

func (c catalogProduct) toProduct() (models.Product, bool) {
	var price, original *float64
	id := c.ID
	if c.BuyBoxWinner != nil {
		price, original = c.BuyBoxWinner.Price, c.BuyBoxWinner.OriginalPrice
		if c.BuyBoxWinner.ItemID != "" {
			id = c.BuyBoxWinner.ItemID
		}
	}
	image := ""
	if len(c.Pictures) > 0 {
		image = c.Pictures[0].URL
	}
	return normalize(id, c.Name, c.Permalink, image, "", price, original)
}

func normalize(id, name, link, image, store string, price, original *float64) (models.Product, bool) {
	id = strings.TrimSpace(id)
	name = caption.StripTags(name)
	if id == "" || name == "" || link == "" {
		return models.Product{}, false
	}
	p := models.Product{
		ID:       idPrefix + id,
		Name:     name,
		Link:     link,
		ImageURL: image,
		Store:    store,
		Source:   Name,
	}
	if p.Store == "" {
		p.Store = DefaultStore
	}
	if price != nil && *price > 0 {
		p.Price = *price
	}
	if original != nil && *original > p.Price && p.Price > 0 {
		p.OriginalPrice = *original
		p.DiscountPercent = int(math.Round((1 - p.Price / *original) * 100))
	}
	return p, true
}
