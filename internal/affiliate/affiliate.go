// Package affiliate searches a partner affiliate offers API.
package affiliate

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
	Name           = "affiliate"
	DefaultBaseURL = "https://api.lomadee.com"
	idPrefix       = "AF-"
)

type Options struct {
	BaseURL  string
	AppToken string
	SourceID string
}

// Adapter implements source.Adapter for the affiliate offers API.
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
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{client: client, opts: opts, logger: logger}
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) Search(ctx context.Context, q source.Query) []models.Product {
	if a.opts.AppToken == "" {
		a.logger.Printf("[%s] skipped: app token not configured", Name)
		return nil
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	var resp offersResponse
	if err := httputil.GetJSON(ctx, a.client, a.searchURL(q), nil, &resp); err != nil {
		a.logger.Printf("[%s] search %q failed: %v", Name, q.Keyword, err)
		return nil
	}

	products := make([]models.Product, 0, len(resp.Offers))
	for _, o := range resp.Offers {
		p, ok := o.toProduct()
		if !ok {
			continue
		}
		products = append(products, p)
	}
	source.ReportProgress(ctx, fmt.Sprintf("Found %d offers via %s", len(products), Name))
	return products
}

func (a *Adapter) searchURL(q source.Query) string {
	v := url.Values{}
	v.Set("keyword", q.Keyword)
	v.Set("size", strconv.Itoa(q.Limit))
	if a.opts.SourceID != "" {
		v.Set("sourceId", a.opts.SourceID)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return fmt.Sprintf("%s/v3/%s/offer/_search?%s", a.opts.BaseURL, url.PathEscape(a.opts.AppToken), v.Encode())
}

type offersResponse struct {
	Offers []offer `json:"offers"`
}

type offer struct {
	ID        flexString `json:"id"`
	Name      string     `json:"name"`
	Price     float64    `json:"price"`
	PriceFrom float64    `json:"priceFrom"`
	Discount  int        `json:"discount"`
	Link      string     `json:"link"`
	Thumbnail string     `json:"thumbnail"`
	Store     struct {
		Name string `json:"name"`
	} `json:"store"`
}

func (o offer) toProduct() (models.Product, bool) {
	id := strings.TrimSpace(string(o.ID))
	name := caption.StripTags(o.Name)
	if id == "" || name == "" || o.Link == "" {
		return models.Product{}, false
	}
	price := o.Price
	if price < 0 {
		price = 0
	}
	p := models.Product{
		ID:       idPrefix + id,
		Name:     name,
		Price:    price,
		Link:     o.Link,
		ImageURL: o.Thumbnail,
		Store:    o.Store.Name,
		Source:   Name,
	}
	if o.PriceFrom > price {
		p.OriginalPrice = o.PriceFrom
		p.DiscountPercent = o.Discount
		if p.DiscountPercent <= 0 {
			p.DiscountPercent = int(math.Round((1 - price/o.PriceFrom) * 100))
		}
	}
	if p.Store == "" {
		p.Store = "Loja parceira"
	}
	return p, true
}

// flexString accepts ids sent either as JSON strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexString(s)
	return nil
}
