package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lukman83/promobot/internal/models"
)

// MemoryStore keeps records in process memory. Used for dry runs and tests.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]models.PostedProduct
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]models.PostedProduct), now: time.Now}
}

func (m *MemoryStore) PostedIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := m.rows[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (m *MemoryStore) MarkPosted(ctx context.Context, p models.Product, ch models.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rows[p.ID]
	r.ProductID = p.ID
	r.ProductName = p.Name
	r.ProductLink = p.Link
	r.ProductPrice = p.Price
	switch ch {
	case models.ChannelTelegram:
		r.PostedTelegram = true
	case models.ChannelWhatsApp:
		r.PostedWhatsapp = true
	case models.ChannelTwitter:
		r.PostedTwitter = true
	}
	r.PostedAt = m.now()
	m.rows[p.ID] = r
	return nil
}

func (m *MemoryStore) Recent(ctx context.Context, limit int) ([]models.PostedProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PostedProduct, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PostedAt.After(out[j].PostedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get returns the record for id.
func (m *MemoryStore) Get(id string) (models.PostedProduct, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	return r, ok
}
