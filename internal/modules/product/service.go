package product

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/georgemunganga/shelf-api/internal/platform/cache"
	"github.com/georgemunganga/shelf-api/internal/platform/document"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines product business logic.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	// ListProducts serves the listing for a request's query parameters through the cache.
	ListProducts(ctx context.Context, query url.Values) ([]*Product, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// CreateProductRequest holds the data for creating a product. Other top-level
// fields of the body land in Attributes.
type CreateProductRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Category    string                 `json:"category,omitempty"`
	Price       float64                `json:"price"`
	Stock       int                    `json:"stock"`
	Attributes  map[string]interface{} `json:"-"`
}

func (r CreateProductRequest) MarshalJSON() ([]byte, error) {
	type typed CreateProductRequest
	return document.Encode(typed(r), r.Attributes, productFields...)
}

func (r *CreateProductRequest) UnmarshalJSON(data []byte) error {
	type typed CreateProductRequest
	var t typed
	extra, err := document.Decode(data, &t, productFields...)
	if err != nil {
		return err
	}
	t.Attributes = extra
	*r = CreateProductRequest(t)
	return nil
}

// UpdateProductRequest holds a partial product. Nil fields are left unchanged and
// every other top-level field is set individually, keeping the rest.
type UpdateProductRequest struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Category    *string                `json:"category"`
	Price       *float64               `json:"price"`
	Stock       *int                   `json:"stock"`
	Attributes  map[string]interface{} `json:"-"`
}

func (r *UpdateProductRequest) UnmarshalJSON(data []byte) error {
	type typed UpdateProductRequest
	var t typed
	extra, err := document.Decode(data, &t, productFields...)
	if err != nil {
		return err
	}
	t.Attributes = extra
	*r = UpdateProductRequest(t)
	return nil
}

// CacheOptions configures the listing cache.
type CacheOptions struct {
	// Namespace prefixes every listing key; invalidation drops every key under it.
	Namespace string
	// TTL of a cached listing. Zero keeps entries until invalidated.
	TTL time.Duration
}

type service struct {
	repo    Repository
	cache   cache.Store
	opts    CacheOptions
	metrics *cache.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(repo Repository, store cache.Store, opts CacheOptions, metrics *cache.Metrics, logger *zap.Logger) Service {
	return &service{
		repo:    repo,
		cache:   store,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	now := s.now().UTC()
	p := &Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Attributes:  req.Attributes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.dropListingsAfterWrite(ctx, "create", p.ID)
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	p, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if err := s.invalidateListings(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.dropListingsAfterWrite(ctx, "delete", id)
	return nil
}

// dropListingsAfterWrite invalidates listings once a create or delete has been
// persisted. The write stands whatever the cache does, so a failure is logged
// and cached listings may stay stale until the next successful invalidation.
func (s *service) dropListingsAfterWrite(ctx context.Context, op, id string) {
	if err := s.invalidateListings(ctx); err != nil {
		s.logger.Warn("invalidate product listings",
			zap.String("op", op),
			zap.String("id", id),
			zap.Error(err),
		)
	}
}

// invalidateListings drops every cached listing, not just the ones holding the
// written product. A partial failure is returned as is and not retried.
func (s *service) invalidateListings(ctx context.Context) error {
	var keys []string
	for _, pattern := range cache.Patterns(s.opts.Namespace) {
		matched, err := s.cache.Keys(ctx, pattern)
		if err != nil {
			return fmt.Errorf("list cached listings: %w", err)
		}
		keys = append(keys, matched...)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		return fmt.Errorf("drop cached listings: %w", err)
	}
	s.metrics.Invalidated(s.opts.Namespace, len(keys))
	s.logger.Debug("product listings invalidated", zap.Int("keys", len(keys)))
	return nil
}
