// Package store records which products were already published and where.
package store

import (
	"context"

	"github.com/lukman83/promobot/internal/models"
)

// Store is the dedup store backing the publish pipeline.
type Store interface {
	// PostedIDs returns the subset of ids that already have a record.
	PostedIDs(ctx context.Context, ids []string) (map[string]bool, error)
	// MarkPosted upserts the record for p, setting the flag for ch.
	// Flags set earlier are never cleared.
	MarkPosted(ctx context.Context, p models.Product, ch models.Channel) error
	// Recent lists records ordered by posted_at, newest first.
	Recent(ctx context.Context, limit int) ([]models.PostedProduct, error)
}

// Filter partitions candidates into products without a record and products
// already posted, keeping the input order.
func Filter(ctx context.Context, s Store, candidates []models.Product) (fresh, posted []models.Product, err error) {
	if len(candidates) == 0 {
		return nil, nil, nil
	}
	ids := make([]string, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.ID)
	}
	existing, err := s.PostedIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range candidates {
		if existing[p.ID] {
			posted = append(posted, p)
			continue
		}
		fresh = append(fresh, p)
	}
	return fresh, posted, nil
}
