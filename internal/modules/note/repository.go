package note

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no note has the requested id.
var ErrNotFound = errors.New("note not found")

// Repository defines the interface for note storage.
type Repository interface {
	Create(ctx context.Context, n *Note) error
	// List returns every note, newest first.
	List(ctx context.Context) ([]*Note, error)
	GetByID(ctx context.Context, id string) (*Note, error)
	// Update merges the set fields of req into the note and returns the result.
	Update(ctx context.Context, id string, req UpdateNoteRequest) (*Note, error)
	Delete(ctx context.Context, id string) error
}
