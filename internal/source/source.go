package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/lukman83/promobot/internal/models"
)

// Query describes a keyword search against one product source.
type Query struct {
	Keyword string
	Limit   int
	Sort    string
}

// Adapter turns a keyword into normalized products.
// Search never fails: upstream errors are logged and yield an empty list.
type Adapter interface {
	Name() string
	Search(ctx context.Context, q Query) []models.Product
}

// Registry keeps adapters in registration order.
type Registry struct {
	mu       sync.RWMutex
	adapters []Adapter
	byName   map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Adapter)}
}

func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a == nil {
		return fmt.Errorf("adapter is nil")
	}
	if _, ok := r.byName[a.Name()]; ok {
		return fmt.Errorf("adapter %q already registered", a.Name())
	}
	r.byName[a.Name()] = a
	r.adapters = append(r.adapters, a)
	return nil
}

func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("source %q not registered", name)
	}
	return a, nil
}

// All returns the adapters in registration order.
func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		names = append(names, a.Name())
	}
	return names
}

// SearchAll queries every adapter sequentially in registration order and
// merges the results with Merge.
func (r *Registry) SearchAll(ctx context.Context, q Query) []models.Product {
	var lists [][]models.Product
	for _, a := range r.All() {
		ReportProgress(ctx, fmt.Sprintf("Searching '%s' on %s...", q.Keyword, a.Name()))
		lists = append(lists, a.Search(ctx, q))
	}
	return Merge(lists...)
}

// Merge drops products whose ID was already seen. The first occurrence wins
// and the input order is kept.
func Merge(lists ...[]models.Product) []models.Product {
	seen := make(map[string]struct{})
	var out []models.Product
	for _, list := range lists {
		for _, p := range list {
			if p.ID == "" {
				continue
			}
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
