package note

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepo struct {
	mu    sync.RWMutex
	notes map[string]*Note
	seq   map[string]int
	next  int
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepo{notes: map[string]*Note{}, seq: map[string]int{}}
}

func (r *memoryRepo) Create(_ context.Context, n *Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[n.ID] = clone(n)
	r.seq[n.ID] = r.next
	r.next++
	return nil
}

func (r *memoryRepo) List(_ context.Context) ([]*Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	notes := make([]*Note, 0, len(r.notes))
	for _, n := range r.notes {
		notes = append(notes, clone(n))
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return r.seq[notes[i].ID] > r.seq[notes[j].ID]
	})
	return notes, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(n), nil
}

func (r *memoryRepo) Update(_ context.Context, id string, req UpdateNoteRequest) (*Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	if req.Title != nil {
		n.Title = *req.Title
	}
	if req.Content != nil {
		n.Content = *req.Content
	}
	if len(req.Attributes) > 0 {
		if n.Attributes == nil {
			n.Attributes = map[string]interface{}{}
		}
		for k, v := range req.Attributes {
			n.Attributes[k] = v
		}
	}
	n.UpdatedAt = time.Now().UTC()
	return clone(n), nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[id]; !ok {
		return ErrNotFound
	}
	delete(r.notes, id)
	delete(r.seq, id)
	return nil
}

func clone(n *Note) *Note {
	c := *n
	if n.Attributes != nil {
		c.Attributes = make(map[string]interface{}, len(n.Attributes))
		for k, v := range n.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}
