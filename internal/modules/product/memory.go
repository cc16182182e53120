package product

import (
	"context"
	"sync"
	"time"
)

type memoryRepo struct {
	mu       sync.RWMutex
	products map[string]*Product
	order    []string
}

// NewMemoryRepository returns a Repository kept in process memory. List keeps insertion order.
func NewMemoryRepository() Repository {
	return &memoryRepo{products: map[string]*Product{}}
}

func (r *memoryRepo) Create(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.products[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.products[p.ID] = clone(p)
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(p), nil
}

func (r *memoryRepo) List(_ context.Context, category string) ([]*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	products := []*Product{}
	for _, id := range r.order {
		p := r.products[id]
		if category != "" && p.Category != category {
			continue
		}
		products = append(products, clone(p))
	}
	return products, nil
}

func (r *memoryRepo) Update(_ context.Context, id string, req UpdateProductRequest) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if len(req.Attributes) > 0 {
		if p.Attributes == nil {
			p.Attributes = map[string]interface{}{}
		}
		for k, v := range req.Attributes {
			p.Attributes[k] = v
		}
	}
	p.UpdatedAt = time.Now().UTC()
	return clone(p), nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func clone(p *Product) *Product {
	c := *p
	if p.Attributes != nil {
		c.Attributes = make(map[string]interface{}, len(p.Attributes))
		for k, v := range p.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}
