// Package copywriter generates promotional copy for products.
package copywriter

import (
	"context"
	"errors"
	"log"

	"github.com/lukman83/promobot/internal/models"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds in-flight generation requests.
const DefaultConcurrency = 3

// ErrDisabled is returned by a generator without credentials.
var ErrDisabled = errors.New("copy generation not configured")

// Generator produces marketing copy for one product.
type Generator interface {
	Generate(ctx context.Context, p models.Product) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, p models.Product) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, p models.Product) (string, error) {
	return f(ctx, p)
}

// Disabled always fails with ErrDisabled so callers fall back to the template.
var Disabled Generator = GeneratorFunc(func(context.Context, models.Product) (string, error) {
	return "", ErrDisabled
})

// Enrich fills GeneratedMessage for every product with at most concurrency
// requests in flight. A failed item gets an empty message; the batch never
// aborts. The returned slice is a copy in input order.
func Enrich(ctx context.Context, gen Generator, products []models.Product, concurrency int, logger *log.Logger) []models.Product {
	if logger == nil {
		logger = log.Default()
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	out := make([]models.Product, len(products))
	copy(out, products)

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := range out {
		g.Go(func() error {
			text, err := gen.Generate(ctx, out[i])
			if err != nil {
				logger.Printf("[copywriter] %s: generation failed: %v", out[i].ID, err)
				out[i].GeneratedMessage = ""
				return nil
			}
			out[i].GeneratedMessage = text
			return nil
		})
	}
	g.Wait()
	return out
}
