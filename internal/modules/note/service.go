package note

import (
	"context"
	"time"

	"github.com/georgemunganga/shelf-api/internal/platform/document"
	"github.com/google/uuid"
)

// Service defines note business logic.
type Service interface {
	CreateNote(ctx context.Context, req CreateNoteRequest) (*Note, error)
	ListNotes(ctx context.Context) ([]*Note, error)
	GetNote(ctx context.Context, id string) (*Note, error)
	UpdateNote(ctx context.Context, id string, req UpdateNoteRequest) (*Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// CreateNoteRequest holds the data for creating a note. Any other top-level
// field of the body lands in Attributes; id and timestamps are server-managed
// and ignored.
type CreateNoteRequest struct {
	Title      string                 `json:"title"`
	Content    string                 `json:"content"`
	Attributes map[string]interface{} `json:"-"`
}

func (r CreateNoteRequest) MarshalJSON() ([]byte, error) {
	type typed CreateNoteRequest
	return document.Encode(typed(r), r.Attributes, noteFields...)
}

func (r *CreateNoteRequest) UnmarshalJSON(data []byte) error {
	type typed CreateNoteRequest
	var t typed
	extra, err := document.Decode(data, &t, noteFields...)
	if err != nil {
		return err
	}
	t.Attributes = extra
	*r = CreateNoteRequest(t)
	return nil
}

// UpdateNoteRequest holds a partial note. Nil fields are left unchanged and
// every other top-level field is set individually, keeping the rest.
type UpdateNoteRequest struct {
	Title      *string                `json:"title"`
	Content    *string                `json:"content"`
	Attributes map[string]interface{} `json:"-"`
}

func (r *UpdateNoteRequest) UnmarshalJSON(data []byte) error {
	type typed UpdateNoteRequest
	var t typed
	extra, err := document.Decode(data, &t, noteFields...)
	if err != nil {
		return err
	}
	t.Attributes = extra
	*r = UpdateNoteRequest(t)
	return nil
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service { return &service{repo: repo, now: time.Now} }

func (s *service) CreateNote(ctx context.Context, req CreateNoteRequest) (*Note, error) {
	now := s.now().UTC()
	n := &Note{
		ID:         uuid.New().String(),
		Title:      req.Title,
		Content:    req.Content,
		Attributes: req.Attributes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) ListNotes(ctx context.Context) ([]*Note, error) {
	return s.repo.List(ctx)
}

func (s *service) GetNote(ctx context.Context, id string) (*Note, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateNote(ctx context.Context, id string, req UpdateNoteRequest) (*Note, error) {
	return s.repo.Update(ctx, id, req)
}

func (s *service) DeleteNote(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
