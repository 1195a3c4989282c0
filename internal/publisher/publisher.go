// Package publisher sends products to messaging channels and records
// successful sends in the dedup store.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lukman83/promobot/internal/caption"
	"github.com/lukman83/promobot/internal/metrics"
	"github.com/lukman83/promobot/internal/models"
	"github.com/lukman83/promobot/internal/store"
)

// ErrNotConfigured marks a channel whose credentials are missing.
var ErrNotConfigured = errors.New("channel not configured")

// Sender delivers one formatted message to a channel API.
type Sender interface {
	Channel() models.Channel
	// Configured reports whether credentials are present. Send is never
	// called on an unconfigured sender.
	Configured() bool
	Send(ctx context.Context, p models.Product, text string) (messageID string, err error)
}

// Result is the outcome of one publish attempt.
type Result struct {
	Channel   models.Channel `json:"channel"`
	ProductID string         `json:"product_id"`
	Success   bool           `json:"success"`
	MessageID string         `json:"message_id,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Publisher formats, sends and records products for one channel.
type Publisher struct {
	sender    Sender
	store     store.Store
	formatter *caption.Formatter
	logger    *log.Logger
}

func New(sender Sender, st store.Store, formatter *caption.Formatter, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{sender: sender, store: st, formatter: formatter, logger: logger}
}

func (p *Publisher) Channel() models.Channel { return p.sender.Channel() }

func (p *Publisher) Configured() bool { return p.sender.Configured() }

// Text returns the message the publisher would send for product.
func (p *Publisher) Text(product models.Product) string {
	return p.formatter.Text(product, p.sender.Channel())
}

// Publish sends product once. There is no retry: a failed send is logged and
// the product is not recorded, so a later run may offer it again.
func (p *Publisher) Publish(ctx context.Context, product models.Product) Result {
	ch := p.sender.Channel()
	res := Result{Channel: ch, ProductID: product.ID}

	if !p.sender.Configured() {
		res.Error = fmt.Errorf("%s: %w", ch, ErrNotConfigured).Error()
		metrics.IncPublish(string(ch), "not_configured")
		return res
	}

	id, err := p.sender.Send(ctx, product, p.Text(product))
	if err != nil {
		p.logger.Printf("[publisher] %s: send %s failed: %v", ch, product.ID, err)
		res.Error = err.Error()
		metrics.IncPublish(string(ch), "error")
		return res
	}
	res.Success = true
	res.MessageID = id
	metrics.IncPublish(string(ch), "ok")

	if err := p.store.MarkPosted(ctx, product, ch); err != nil {
		p.logger.Printf("[publisher] %s: sent %s but recording failed: %v", ch, product.ID, err)
		res.Error = fmt.Sprintf("record posted: %v", err)
	}
	return res
}
